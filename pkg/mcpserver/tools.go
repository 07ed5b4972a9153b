package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkiranj/playwright-universal-mcp/pkg/browser"
)

// NavigateInput holds parameters for the navigate tool.
type NavigateInput struct {
	URL       string `json:"url" jsonschema:"URL to navigate to (must include protocol, e.g. https://example.com)"`
	Page      string `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
	WaitUntil string `json:"wait_until,omitempty" jsonschema:"when navigation counts as done: load (default), domcontentloaded, or networkidle"`
}

// NavigateOutput reports the result of a navigation.
type NavigateOutput struct {
	Status string `json:"status"`
	URL    string `json:"url" jsonschema:"URL after navigation"`
	Title  string `json:"title,omitempty" jsonschema:"page title"`
}

func (s *Server) navigate(ctx context.Context, _ *mcp.CallToolRequest, in NavigateInput) (*mcp.CallToolResult, NavigateOutput, error) {
	if in.URL == "" {
		return invalidParams("url is required"), NavigateOutput{}, nil
	}
	if !strings.Contains(in.URL, "://") {
		return invalidParams("url must include a protocol, e.g. https://example.com"), NavigateOutput{}, nil
	}
	if in.WaitUntil != "" && !validWaitUntil[in.WaitUntil] {
		return invalidParams(fmt.Sprintf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", in.WaitUntil)), NavigateOutput{}, nil
	}
	if !s.allowlist.Allows(in.URL) {
		return invalidParams(fmt.Sprintf("url %q is not allowed by the configured allowlist", in.URL)), NavigateOutput{}, nil
	}

	var title, finalURL string
	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		if err := tab.Navigate(in.URL, browser.NavigateOptions{WaitUntil: in.WaitUntil}); err != nil {
			return err
		}
		title, _ = tab.Title()
		finalURL = tab.URL()
		return nil
	})
	if err != nil {
		return errResult(err), NavigateOutput{}, nil
	}

	s.logger.Debugf("navigated page %q to %s", in.Page, finalURL)
	return nil, NavigateOutput{Status: "ok", URL: finalURL, Title: title}, nil
}

var validWaitUntil = map[string]bool{
	"load":             true,
	"domcontentloaded": true,
	"networkidle":      true,
}

// ClickInput holds parameters for the click tool.
type ClickInput struct {
	Selector   string `json:"selector" jsonschema:"CSS selector of the element to click; visible text is tried when no element matches"`
	Page       string `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
	Button     string `json:"button,omitempty" jsonschema:"mouse button: left (default), right, or middle"`
	ClickCount int    `json:"click_count,omitempty" jsonschema:"number of clicks, 1-3"`
}

// ClickOutput reports what was clicked.
type ClickOutput struct {
	Status   string `json:"status"`
	Selector string `json:"selector"`
	Matched  string `json:"matched" jsonschema:"how the target was resolved: selector or text"`
}

func (s *Server) click(ctx context.Context, _ *mcp.CallToolRequest, in ClickInput) (*mcp.CallToolResult, ClickOutput, error) {
	if in.Selector == "" {
		return invalidParams("selector is required"), ClickOutput{}, nil
	}
	if in.Button != "" && !validButtons[in.Button] {
		return invalidParams(fmt.Sprintf("invalid button: %s (must be 'left', 'right', or 'middle')", in.Button)), ClickOutput{}, nil
	}
	if in.ClickCount != 0 && (in.ClickCount < 1 || in.ClickCount > 3) {
		return invalidParams("click_count must be between 1 and 3"), ClickOutput{}, nil
	}

	matched := "selector"
	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		clickErr := tab.Click(in.Selector, browser.ClickOptions{
			Button:     in.Button,
			ClickCount: in.ClickCount,
		})
		if clickErr == nil {
			return nil
		}
		if browser.IsConnectionLost(clickErr) {
			return clickErr
		}
		// Selector did not resolve; try the argument as visible text.
		if textErr := tab.ClickText(in.Selector); textErr != nil {
			return fmt.Errorf("could not find element with selector or text %q", in.Selector)
		}
		matched = "text"
		return nil
	})
	if err != nil {
		return errResult(err), ClickOutput{}, nil
	}
	return nil, ClickOutput{Status: "ok", Selector: in.Selector, Matched: matched}, nil
}

var validButtons = map[string]bool{
	"left":   true,
	"right":  true,
	"middle": true,
}

// TypeInput holds parameters for the type tool.
type TypeInput struct {
	Selector string `json:"selector" jsonschema:"CSS selector of the input element"`
	Text     string `json:"text" jsonschema:"text to type (an empty string clears the field)"`
	Page     string `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
}

// TypeOutput reports the typed text target.
type TypeOutput struct {
	Status   string `json:"status"`
	Selector string `json:"selector"`
}

func (s *Server) typeText(ctx context.Context, _ *mcp.CallToolRequest, in TypeInput) (*mcp.CallToolResult, TypeOutput, error) {
	if in.Selector == "" {
		return invalidParams("selector is required"), TypeOutput{}, nil
	}

	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		return tab.Type(in.Selector, in.Text, browser.TypeOptions{})
	})
	if err != nil {
		return errResult(err), TypeOutput{}, nil
	}
	return nil, TypeOutput{Status: "ok", Selector: in.Selector}, nil
}

// GetTextInput holds parameters for the get_text tool.
type GetTextInput struct {
	Selector string `json:"selector" jsonschema:"CSS selector of the element"`
	Page     string `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
}

// GetTextOutput carries element text.
type GetTextOutput struct {
	Status string `json:"status"`
	Text   string `json:"text"`
}

func (s *Server) getText(ctx context.Context, _ *mcp.CallToolRequest, in GetTextInput) (*mcp.CallToolResult, GetTextOutput, error) {
	if in.Selector == "" {
		return invalidParams("selector is required"), GetTextOutput{}, nil
	}

	var text string
	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		var tabErr error
		text, tabErr = tab.Text(in.Selector)
		return tabErr
	})
	if err != nil {
		return errResult(err), GetTextOutput{}, nil
	}
	return nil, GetTextOutput{Status: "ok", Text: text}, nil
}

// PageContentInput holds parameters for the get_page_content tool.
type PageContentInput struct {
	Page string `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
}

// PageContentOutput carries raw page HTML.
type PageContentOutput struct {
	Status  string `json:"status"`
	Content string `json:"content" jsonschema:"raw HTML of the page"`
}

func (s *Server) getPageContent(ctx context.Context, _ *mcp.CallToolRequest, in PageContentInput) (*mcp.CallToolResult, PageContentOutput, error) {
	var content string
	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		var tabErr error
		content, tabErr = tab.Content()
		return tabErr
	})
	if err != nil {
		return errResult(err), PageContentOutput{}, nil
	}
	return nil, PageContentOutput{Status: "ok", Content: content}, nil
}

// ExtractTextInput holds parameters for the extract_text tool.
type ExtractTextInput struct {
	Page      string `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"maximum characters of text to return (default 10000)"`
}

// ExtractTextOutput carries cleaned page text.
type ExtractTextOutput struct {
	Status    string `json:"status"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

const defaultExtractLength = 10000

func (s *Server) extractText(ctx context.Context, _ *mcp.CallToolRequest, in ExtractTextInput) (*mcp.CallToolResult, ExtractTextOutput, error) {
	if in.MaxLength < 0 {
		return invalidParams("max_length must not be negative"), ExtractTextOutput{}, nil
	}
	maxLength := in.MaxLength
	if maxLength == 0 {
		maxLength = defaultExtractLength
	}

	var extracted *browser.ExtractedText
	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		content, tabErr := tab.Content()
		if tabErr != nil {
			return tabErr
		}
		extracted, tabErr = browser.ExtractText(content, maxLength)
		return tabErr
	})
	if err != nil {
		return errResult(err), ExtractTextOutput{}, nil
	}
	return nil, ExtractTextOutput{
		Status:    "ok",
		Title:     extracted.Title,
		Text:      extracted.Text,
		Truncated: extracted.Truncated,
	}, nil
}

// ScreenshotInput holds parameters for the take_screenshot tool.
type ScreenshotInput struct {
	Page     string `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
	Selector string `json:"selector,omitempty" jsonschema:"CSS selector to capture one element instead of the viewport"`
}

// ScreenshotOutput accompanies the image content of a screenshot.
type ScreenshotOutput struct {
	Status string `json:"status"`
	Bytes  int    `json:"bytes" jsonschema:"size of the PNG in bytes"`
}

func (s *Server) takeScreenshot(ctx context.Context, _ *mcp.CallToolRequest, in ScreenshotInput) (*mcp.CallToolResult, ScreenshotOutput, error) {
	var shot []byte
	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		var tabErr error
		shot, tabErr = tab.Screenshot(in.Selector)
		return tabErr
	})
	if err != nil {
		return errResult(err), ScreenshotOutput{}, nil
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: shot, MIMEType: "image/png"},
		},
	}
	return result, ScreenshotOutput{Status: "ok", Bytes: len(shot)}, nil
}

// NewPageInput holds parameters for the new_page tool.
type NewPageInput struct {
	Page string `json:"page" jsonschema:"name for the new page; must not collide with an existing page"`
}

// NewPageOutput reports the created page.
type NewPageOutput struct {
	Status string `json:"status"`
	Page   string `json:"page"`
}

func (s *Server) newPage(ctx context.Context, _ *mcp.CallToolRequest, in NewPageInput) (*mcp.CallToolResult, NewPageOutput, error) {
	if in.Page == "" {
		return invalidParams("page name is required"), NewPageOutput{}, nil
	}

	if err := s.manager.CreatePage(ctx, in.Page); err != nil {
		return errResult(err), NewPageOutput{}, nil
	}
	return nil, NewPageOutput{Status: "ok", Page: in.Page}, nil
}

// SwitchPageInput holds parameters for the switch_page tool.
type SwitchPageInput struct {
	Page string `json:"page" jsonschema:"name of the page to make active"`
}

// SwitchPageOutput reports the new active page.
type SwitchPageOutput struct {
	Status string `json:"status"`
	Page   string `json:"page"`
}

func (s *Server) switchPage(ctx context.Context, _ *mcp.CallToolRequest, in SwitchPageInput) (*mcp.CallToolResult, SwitchPageOutput, error) {
	if in.Page == "" {
		return invalidParams("page name is required"), SwitchPageOutput{}, nil
	}

	if err := s.manager.SwitchPage(ctx, in.Page); err != nil {
		return errResult(err), SwitchPageOutput{}, nil
	}
	return nil, SwitchPageOutput{Status: "ok", Page: in.Page}, nil
}

// ClosePageInput holds parameters for the close_page tool.
type ClosePageInput struct {
	Page string `json:"page" jsonschema:"name of the page to close"`
}

// ClosePageOutput reports the closed page and the page now active.
type ClosePageOutput struct {
	Status     string `json:"status"`
	Page       string `json:"page"`
	ActivePage string `json:"active_page" jsonschema:"page that is active after the close"`
}

func (s *Server) closePage(ctx context.Context, _ *mcp.CallToolRequest, in ClosePageInput) (*mcp.CallToolResult, ClosePageOutput, error) {
	if in.Page == "" {
		return invalidParams("page name is required"), ClosePageOutput{}, nil
	}

	if err := s.manager.ClosePage(ctx, in.Page); err != nil {
		return errResult(err), ClosePageOutput{}, nil
	}
	return nil, ClosePageOutput{
		Status:     "ok",
		Page:       in.Page,
		ActivePage: s.manager.Info().ActivePage,
	}, nil
}

// GetPagesInput holds parameters for the get_pages tool.
type GetPagesInput struct{}

// GetPagesOutput lists open pages in creation order.
type GetPagesOutput struct {
	Status string             `json:"status"`
	Pages  []browser.PageInfo `json:"pages"`
}

func (s *Server) getPages(ctx context.Context, _ *mcp.CallToolRequest, _ GetPagesInput) (*mcp.CallToolResult, GetPagesOutput, error) {
	pages, err := s.manager.ListPages(ctx)
	if err != nil {
		return errResult(err), GetPagesOutput{}, nil
	}
	return nil, GetPagesOutput{Status: "ok", Pages: pages}, nil
}

// WaitForSelectorInput holds parameters for the wait_for_selector tool.
type WaitForSelectorInput struct {
	Selector string  `json:"selector" jsonschema:"CSS selector to wait for"`
	Page     string  `json:"page,omitempty" jsonschema:"page name (defaults to the active page)"`
	Timeout  float64 `json:"timeout,omitempty" jsonschema:"timeout in milliseconds (default 30000)"`
}

// WaitForSelectorOutput reports whether the element appeared.
type WaitForSelectorOutput struct {
	Status   string `json:"status"`
	Found    bool   `json:"found"`
	Selector string `json:"selector"`
}

func (s *Server) waitForSelector(ctx context.Context, _ *mcp.CallToolRequest, in WaitForSelectorInput) (*mcp.CallToolResult, WaitForSelectorOutput, error) {
	if in.Selector == "" {
		return invalidParams("selector is required"), WaitForSelectorOutput{}, nil
	}
	if in.Timeout < 0 {
		return invalidParams("timeout must not be negative"), WaitForSelectorOutput{}, nil
	}

	err := s.manager.WithPage(ctx, in.Page, func(tab browser.Tab) error {
		return tab.WaitForSelector(in.Selector, in.Timeout)
	})
	if err != nil {
		// A timeout means the element never showed up, which is an
		// answer rather than a failure.
		if strings.Contains(strings.ToLower(err.Error()), "timeout") {
			return nil, WaitForSelectorOutput{Status: "ok", Found: false, Selector: in.Selector}, nil
		}
		return errResult(err), WaitForSelectorOutput{}, nil
	}
	return nil, WaitForSelectorOutput{Status: "ok", Found: true, Selector: in.Selector}, nil
}

// BrowserInfoInput holds parameters for the get_browser_info tool.
type BrowserInfoInput struct{}

func (s *Server) getBrowserInfo(ctx context.Context, _ *mcp.CallToolRequest, _ BrowserInfoInput) (*mcp.CallToolResult, browser.SessionInfo, error) {
	return nil, s.manager.Info(), nil
}
