package browser

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/xkiranj/playwright-universal-mcp/pkg/logging"
)

// PlaywrightDriver is the production Driver backed by playwright-go. The
// Playwright runtime is started lazily on the first Launch and reused for
// subsequent relaunches.
type PlaywrightDriver struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	install bool
	logger  *logging.Logger
}

// PlaywrightDriverOptions configures the driver.
type PlaywrightDriverOptions struct {
	// InstallBrowsers runs the Playwright browser installer before the
	// first launch. Off by default; most deployments install ahead of
	// time.
	InstallBrowsers bool

	// Logger receives driver diagnostics. Optional.
	Logger *logging.Logger
}

// NewPlaywrightDriver creates a Playwright-backed driver.
func NewPlaywrightDriver(opts PlaywrightDriverOptions) *PlaywrightDriver {
	return &PlaywrightDriver{
		install: opts.InstallBrowsers,
		logger:  opts.Logger,
	}
}

// ensureRuntime starts the Playwright runtime once. Output is discarded so
// nothing leaks onto stdout, which the stdio transport owns.
func (d *PlaywrightDriver) ensureRuntime() (*playwright.Playwright, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw != nil {
		return d.pw, nil
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if d.install {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	d.pw = pw
	return pw, nil
}

// Launch starts a browser of the configured kind. Chrome and Edge run as
// chromium channels; unrecognized kinds fall back to chromium.
func (d *PlaywrightDriver) Launch(ctx context.Context, cfg LaunchConfig) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := d.ensureRuntime()
	if err != nil {
		return nil, &LaunchError{Kind: cfg.Kind, Err: err}
	}

	browserType := pw.Chromium
	var channel string
	switch cfg.Kind {
	case KindChromium, "":
	case KindFirefox:
		browserType = pw.Firefox
	case KindWebKit:
		browserType = pw.WebKit
	case KindChrome:
		channel = "chrome"
	case KindEdge:
		channel = "msedge"
	default:
		if d.logger != nil {
			d.logger.Warnf("unrecognized browser kind %q, using chromium", cfg.Kind)
		}
	}

	timeout := cfg.LaunchTimeout
	if timeout <= 0 {
		timeout = DefaultLaunchTimeout
	}

	args := append(append([]string{}, defaultBrowserArgs...), cfg.Args...)
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &cfg.Headless,
		Args:     args,
		Timeout:  &timeout,
	}
	if channel != "" {
		launchOpts.Channel = &channel
	}

	b, err := browserType.Launch(launchOpts)
	if err != nil {
		return nil, &LaunchError{Kind: cfg.Kind, Err: err}
	}

	bctx, err := b.NewContext()
	if err != nil {
		_ = b.Close()
		return nil, &LaunchError{Kind: cfg.Kind, Err: fmt.Errorf("failed to create context: %w", err)}
	}

	return &playwrightConn{browser: b, context: bctx}, nil
}

// Stop tears down the Playwright runtime. Called once at process shutdown,
// after the session manager has closed the browser.
func (d *PlaywrightDriver) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw == nil {
		return nil
	}
	pw := d.pw
	d.pw = nil
	if err := pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// playwrightConn adapts a Playwright browser plus one browser context to
// the Conn interface.
type playwrightConn struct {
	browser playwright.Browser
	context playwright.BrowserContext
}

func (c *playwrightConn) NewPage() (Tab, error) {
	page, err := c.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(DefaultTimeout)
	return &playwrightTab{page: page}, nil
}

func (c *playwrightConn) Connected() bool {
	return c.browser.IsConnected()
}

func (c *playwrightConn) Close() error {
	_ = c.context.Close() // Ignore errors, continue cleanup
	if err := c.browser.Close(); err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

// playwrightTab adapts a Playwright page to the Tab interface.
type playwrightTab struct {
	page playwright.Page
}

func (t *playwrightTab) Navigate(url string, opts NavigateOptions) error {
	gotoOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = &opts.Timeout
	}

	_, err := t.page.Goto(url, gotoOpts)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (t *playwrightTab) Click(selector string, opts ClickOptions) error {
	clickOpts := playwright.PageClickOptions{}
	if opts.Button != "" {
		button := playwright.MouseButton(opts.Button)
		clickOpts.Button = &button
	}
	if opts.ClickCount > 0 {
		clickOpts.ClickCount = &opts.ClickCount
	}
	if opts.Timeout > 0 {
		clickOpts.Timeout = &opts.Timeout
	}

	if err := t.page.Click(selector, clickOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (t *playwrightTab) ClickText(text string) error {
	if err := t.page.GetByText(text).First().Click(); err != nil {
		return fmt.Errorf("click by text failed: %w", err)
	}
	return nil
}

func (t *playwrightTab) Type(selector, text string, opts TypeOptions) error {
	fillOpts := playwright.PageFillOptions{}
	if opts.Timeout > 0 {
		fillOpts.Timeout = &opts.Timeout
	}

	if err := t.page.Fill(selector, text, fillOpts); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

func (t *playwrightTab) Text(selector string) (string, error) {
	text, err := t.page.TextContent(selector)
	if err != nil {
		return "", fmt.Errorf("text extraction failed: %w", err)
	}
	return text, nil
}

func (t *playwrightTab) Content() (string, error) {
	content, err := t.page.Content()
	if err != nil {
		return "", fmt.Errorf("content extraction failed: %w", err)
	}
	return content, nil
}

func (t *playwrightTab) Screenshot(selector string) ([]byte, error) {
	if selector != "" {
		data, err := t.page.Locator(selector).Screenshot()
		if err != nil {
			return nil, fmt.Errorf("element screenshot failed: %w", err)
		}
		return data, nil
	}

	data, err := t.page.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (t *playwrightTab) WaitForSelector(selector string, timeout float64) error {
	waitOpts := playwright.PageWaitForSelectorOptions{}
	state := playwright.WaitForSelectorStateVisible
	waitOpts.State = state
	if timeout > 0 {
		waitOpts.Timeout = &timeout
	}

	if _, err := t.page.WaitForSelector(selector, waitOpts); err != nil {
		return fmt.Errorf("wait failed: %w", err)
	}
	return nil
}

func (t *playwrightTab) Title() (string, error) {
	return t.page.Title()
}

func (t *playwrightTab) URL() string {
	return t.page.URL()
}

func (t *playwrightTab) Close() error {
	return t.page.Close()
}
