// Package browser provides the session and page-registry core of the MCP
// browser automation server, backed by Playwright.
//
// The package is built around four pieces:
//
//  1. Driver/Conn/Tab: a narrow capability interface over the automation
//     library. Production code uses the Playwright adapter; tests substitute
//     fakes.
//  2. BrowserHandle: lifecycle of a single underlying browser process
//     (launch, health check, shutdown) with an explicit state machine.
//  3. PageRegistry: named collection of open pages with at-most-one active
//     page and insertion-ordered listing.
//  4. SessionManager: composes the handle and registry, lazily launches the
//     browser on first use, recovers from crashes, and serializes all
//     browser-touching operations behind one mutex.
//
// # Session Lifecycle
//
// The browser is not launched at process start. The first operation that
// needs it triggers a launch and the creation of a registry holding one
// page named "default". If the browser process dies, the next operation
// detects it through a health check, relaunches, and rebuilds the registry
// from scratch; page names are not preserved across a relaunch. Each launch
// is tagged with a monotonically increasing generation counter so that
// handles from a dead browser are never handed out again.
//
// # Concurrency
//
// The underlying browser connection does not support concurrent use, so the
// SessionManager executes exactly one operation at a time. Callers block
// until their turn; there is no queueing layer beyond the mutex.
//
// # Example Usage
//
//	driver := browser.NewPlaywrightDriver(browser.PlaywrightDriverOptions{})
//	manager := browser.NewSessionManager(driver, browser.LaunchConfig{
//	    Kind:     browser.KindChromium,
//	    Headless: true,
//	}, logger)
//	defer manager.Shutdown()
//
//	err := manager.WithPage(ctx, "", func(tab browser.Tab) error {
//	    return tab.Navigate("https://example.com", browser.NavigateOptions{})
//	})
package browser
