package browser

import "context"

// Driver launches browser processes. It is the seam between the session
// core and the automation library: production code uses the Playwright
// driver, tests inject fakes.
type Driver interface {
	// Launch starts a browser process with the given configuration and
	// returns a connection to it. It blocks until the browser is
	// responsive or the configured startup timeout expires.
	Launch(ctx context.Context, cfg LaunchConfig) (Conn, error)
}

// Conn is a live connection to one browser process.
type Conn interface {
	// NewPage opens a fresh page (tab) in the browser.
	NewPage() (Tab, error)

	// Connected reports whether the underlying process is still
	// reachable. Used as a cheap liveness probe before operations.
	Connected() bool

	// Close shuts the browser down, best effort.
	Close() error
}

// Tab is a single browsing context. Handles are owned by the page registry
// and must be treated as opaque capability tokens by callers; they become
// invalid when the owning browser crashes or closes.
type Tab interface {
	Navigate(url string, opts NavigateOptions) error
	Click(selector string, opts ClickOptions) error

	// ClickText clicks the first element whose visible text matches,
	// used as a fallback when a selector does not resolve.
	ClickText(text string) error

	Type(selector, text string, opts TypeOptions) error

	// Text returns the text content of the first element matching the
	// selector.
	Text(selector string) (string, error)

	// Content returns the full page HTML.
	Content() (string, error)

	// Screenshot captures the page as PNG bytes. A non-empty selector
	// limits the capture to the first matching element.
	Screenshot(selector string) ([]byte, error)

	// WaitForSelector blocks until an element matching the selector is
	// visible or the timeout (milliseconds) expires.
	WaitForSelector(selector string, timeout float64) error

	Title() (string, error)
	URL() string
	Close() error
}
