package browser

// Kind identifies which browser engine to launch.
type Kind string

const (
	// KindChromium is the default engine.
	KindChromium Kind = "chromium"

	// KindFirefox launches Firefox.
	KindFirefox Kind = "firefox"

	// KindWebKit launches WebKit.
	KindWebKit Kind = "webkit"

	// KindChrome launches branded Chrome through the chromium channel.
	KindChrome Kind = "chrome"

	// KindEdge launches Microsoft Edge through the chromium channel.
	KindEdge Kind = "msedge"
)

// LaunchConfig is the immutable launch configuration for the browser
// process. It is set once at process start and never mutated mid-session.
type LaunchConfig struct {
	// Kind selects the browser engine. Unrecognized kinds fall back to
	// chromium with a warning.
	Kind Kind

	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// Args are extra command-line arguments passed to the browser process,
	// appended after the base sandbox arguments.
	Args []string

	// LaunchTimeout bounds browser startup, in milliseconds (0 means
	// default).
	LaunchTimeout float64
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful.
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// ClickOptions configures element clicking behavior.
type ClickOptions struct {
	// Button specifies which mouse button to use (left, right, middle)
	Button string

	// ClickCount is the number of times to click (1 for single, 2 for double)
	ClickCount int

	// Timeout in milliseconds
	Timeout float64
}

// TypeOptions configures typing into an input element.
type TypeOptions struct {
	// Timeout in milliseconds
	Timeout float64
}

// PageInfo describes one registered page, as reported by ListPages.
type PageInfo struct {
	// Name is the registry key for the page.
	Name string `json:"name"`

	// URL is the page's current location.
	URL string `json:"url"`

	// Active reports whether this is the page implicitly targeted by
	// operations that omit a page name.
	Active bool `json:"active"`
}

// Default values for launch and page operations.
const (
	DefaultTimeout       = 30000.0 // 30 seconds in milliseconds
	DefaultLaunchTimeout = 30000.0
	DefaultPageName      = "default"
)

// defaultBrowserArgs are always passed to the browser process so the server
// works inside containers; extra args from configuration are appended.
var defaultBrowserArgs = []string{"--no-sandbox", "--disable-setuid-sandbox"}
