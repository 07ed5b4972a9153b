package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkiranj/playwright-universal-mcp/pkg/browser"
	"github.com/xkiranj/playwright-universal-mcp/pkg/config"
)

// stubDriver implements browser.Driver for dispatcher tests.
type stubDriver struct {
	launches int
}

func (d *stubDriver) Launch(ctx context.Context, cfg browser.LaunchConfig) (browser.Conn, error) {
	d.launches++
	return &stubConn{connected: true}, nil
}

type stubConn struct {
	connected bool
}

func (c *stubConn) NewPage() (browser.Tab, error) {
	return &stubTab{url: "about:blank"}, nil
}

func (c *stubConn) Connected() bool { return c.connected }
func (c *stubConn) Close() error    { return nil }

type stubTab struct {
	url     string
	waitErr error
}

func (t *stubTab) Navigate(url string, opts browser.NavigateOptions) error {
	t.url = url
	return nil
}

func (t *stubTab) Click(selector string, opts browser.ClickOptions) error { return nil }
func (t *stubTab) ClickText(text string) error                            { return nil }
func (t *stubTab) Type(selector, text string, opts browser.TypeOptions) error {
	return nil
}
func (t *stubTab) Text(selector string) (string, error) { return "stub text", nil }

func (t *stubTab) Content() (string, error) {
	return `<html><head><title>Stub Page</title></head><body><p>Hello</p></body></html>`, nil
}

func (t *stubTab) Screenshot(selector string) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (t *stubTab) WaitForSelector(selector string, timeout float64) error {
	return t.waitErr
}

func (t *stubTab) Title() (string, error) { return "Stub Page", nil }
func (t *stubTab) URL() string            { return t.url }
func (t *stubTab) Close() error           { return nil }

func newTestServer(t *testing.T, allowlist *config.URLAllowlist) (*Server, *stubDriver) {
	t.Helper()
	driver := &stubDriver{}
	manager := browser.NewSessionManager(driver, browser.LaunchConfig{Kind: browser.KindChromium}, nil)
	return New(manager, Options{Allowlist: allowlist}), driver
}

// decodeEnvelope unpacks the error payload from a failed tool result.
func decodeEnvelope(t *testing.T, result *mcp.CallToolResult) envelope {
	t.Helper()
	require.NotNil(t, result)
	require.True(t, result.IsError)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(text.Text), &env))
	assert.Equal(t, "error", env.Status)
	return env
}

func TestNavigate_MissingURL(t *testing.T) {
	server, driver := newTestServer(t, nil)

	result, _, err := server.navigate(context.Background(), nil, NavigateInput{})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
	assert.Contains(t, env.Message, "url is required")

	// Validation fails before any session call; nothing launched.
	assert.Equal(t, 0, driver.launches)
}

func TestNavigate_MissingProtocol(t *testing.T) {
	server, driver := newTestServer(t, nil)

	result, _, err := server.navigate(context.Background(), nil, NavigateInput{URL: "example.com"})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
	assert.Equal(t, 0, driver.launches)
}

func TestNavigate_InvalidWaitUntil(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, _, err := server.navigate(context.Background(), nil, NavigateInput{
		URL:       "https://example.com",
		WaitUntil: "eventually",
	})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
	assert.Contains(t, env.Message, "wait_until")
}

func TestNavigate_AllowlistDeny(t *testing.T) {
	cfg := config.Config{AllowedURLPatterns: []string{"https://*.example.com/*"}}
	allowlist, err := cfg.URLAllowlist()
	require.NoError(t, err)

	server, driver := newTestServer(t, allowlist)

	result, _, err := server.navigate(context.Background(), nil, NavigateInput{URL: "https://evil.test/page"})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
	assert.Contains(t, env.Message, "allowlist")
	assert.Equal(t, 0, driver.launches)
}

func TestNavigate_Success(t *testing.T) {
	server, driver := newTestServer(t, nil)

	result, out, err := server.navigate(context.Background(), nil, NavigateInput{URL: "https://example.com/home"})
	require.NoError(t, err)
	assert.Nil(t, result)

	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "https://example.com/home", out.URL)
	assert.Equal(t, "Stub Page", out.Title)
	assert.Equal(t, 1, driver.launches)
}

func TestClick_MissingSelector(t *testing.T) {
	server, driver := newTestServer(t, nil)

	result, _, err := server.click(context.Background(), nil, ClickInput{})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
	assert.Equal(t, 0, driver.launches)
}

func TestClick_InvalidButton(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, _, err := server.click(context.Background(), nil, ClickInput{
		Selector: "#btn",
		Button:   "fourth",
	})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
}

func TestClick_Success(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, out, err := server.click(context.Background(), nil, ClickInput{Selector: "#btn"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "selector", out.Matched)
}

func TestType_MissingSelector(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, _, err := server.typeText(context.Background(), nil, TypeInput{Text: "hello"})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
}

func TestGetText_Success(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, out, err := server.getText(context.Background(), nil, GetTextInput{Selector: "p"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "stub text", out.Text)
}

func TestExtractText_CleansContent(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, out, err := server.extractText(context.Background(), nil, ExtractTextInput{})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "Stub Page", out.Title)
	assert.Contains(t, out.Text, "Hello")
}

func TestTakeScreenshot_ReturnsImage(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, out, err := server.takeScreenshot(context.Background(), nil, ScreenshotInput{})
	require.NoError(t, err)

	require.NotNil(t, result)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	img, ok := result.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.NotEmpty(t, img.Data)
	assert.Equal(t, len(img.Data), out.Bytes)
}

func TestNewPage_Duplicate(t *testing.T) {
	server, _ := newTestServer(t, nil)
	ctx := context.Background()

	_, out, err := server.newPage(ctx, nil, NewPageInput{Page: "research"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)

	result, _, err := server.newPage(ctx, nil, NewPageInput{Page: "research"})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindDuplicateName, env.ErrorKind)
}

func TestSwitchPage_NotFound(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, _, err := server.switchPage(context.Background(), nil, SwitchPageInput{Page: "missing"})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindNotFound, env.ErrorKind)
}

func TestClosePage_LastPage(t *testing.T) {
	server, _ := newTestServer(t, nil)
	ctx := context.Background()

	// Force the session up so only the default page exists.
	_, _, err := server.getPages(ctx, nil, GetPagesInput{})
	require.NoError(t, err)

	result, _, err := server.closePage(ctx, nil, ClosePageInput{Page: "default"})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindLastPage, env.ErrorKind)
}

func TestClosePage_ReportsNewActive(t *testing.T) {
	server, _ := newTestServer(t, nil)
	ctx := context.Background()

	_, _, err := server.newPage(ctx, nil, NewPageInput{Page: "second"})
	require.NoError(t, err)

	result, out, err := server.closePage(ctx, nil, ClosePageInput{Page: "second"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "second", out.Page)
	assert.Equal(t, "default", out.ActivePage)
}

func TestGetPages_ListsCreationOrder(t *testing.T) {
	server, _ := newTestServer(t, nil)
	ctx := context.Background()

	_, _, err := server.newPage(ctx, nil, NewPageInput{Page: "research"})
	require.NoError(t, err)

	_, out, err := server.getPages(ctx, nil, GetPagesInput{})
	require.NoError(t, err)

	require.Len(t, out.Pages, 2)
	assert.Equal(t, "default", out.Pages[0].Name)
	assert.Equal(t, "research", out.Pages[1].Name)
	assert.True(t, out.Pages[0].Active)
}

func TestWaitForSelector_Timeout(t *testing.T) {
	server := newTestServerWithWaitErr(t, errors.New("wait failed: timeout 5000ms exceeded"))

	result, out, err := server.waitForSelector(context.Background(), nil, WaitForSelectorInput{Selector: "#gone"})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, out.Found)
	assert.Equal(t, "ok", out.Status)
}

func TestWaitForSelector_MissingSelector(t *testing.T) {
	server, _ := newTestServer(t, nil)

	result, _, err := server.waitForSelector(context.Background(), nil, WaitForSelectorInput{})
	require.NoError(t, err)

	env := decodeEnvelope(t, result)
	assert.Equal(t, kindInvalidParameter, env.ErrorKind)
}

func TestGetBrowserInfo_DoesNotLaunch(t *testing.T) {
	server, driver := newTestServer(t, nil)

	_, info, err := server.getBrowserInfo(context.Background(), nil, BrowserInfoInput{})
	require.NoError(t, err)

	assert.Equal(t, browser.KindChromium, info.Kind)
	assert.Equal(t, "unstarted", info.State)
	assert.Equal(t, 0, driver.launches)
}

// newTestServerWithWaitErr builds a server whose tabs fail WaitForSelector
// with the given error.
func newTestServerWithWaitErr(t *testing.T, waitErr error) *Server {
	t.Helper()
	manager := browser.NewSessionManager(&waitErrDriver{driver: &stubDriver{}, waitErr: waitErr},
		browser.LaunchConfig{Kind: browser.KindChromium}, nil)
	return New(manager, Options{})
}

type waitErrDriver struct {
	driver  *stubDriver
	waitErr error
}

func (d *waitErrDriver) Launch(ctx context.Context, cfg browser.LaunchConfig) (browser.Conn, error) {
	conn, err := d.driver.Launch(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &waitErrConn{Conn: conn, waitErr: d.waitErr}, nil
}

type waitErrConn struct {
	browser.Conn
	waitErr error
}

func (c *waitErrConn) NewPage() (browser.Tab, error) {
	tab, err := c.Conn.NewPage()
	if err != nil {
		return nil, err
	}
	stub, ok := tab.(*stubTab)
	if ok {
		stub.waitErr = c.waitErr
	}
	return tab, nil
}
