package browser

import (
	"context"
	"sync"

	"github.com/xkiranj/playwright-universal-mcp/pkg/logging"
)

// SessionManager composes a BrowserHandle and a PageRegistry. The browser
// is launched lazily on first use and relaunched after a detected crash,
// with a fresh registry each time. All operations run under one mutex:
// the underlying browser connection does not support concurrent use, so
// throughput is deliberately traded for correctness.
type SessionManager struct {
	mu       sync.Mutex
	handle   *BrowserHandle
	registry *PageRegistry
	logger   *logging.Logger
}

// SessionInfo is a snapshot of the session state for reporting.
type SessionInfo struct {
	Kind       Kind     `json:"browser"`
	Headless   bool     `json:"headless"`
	State      string   `json:"state"`
	Generation uint64   `json:"generation"`
	Pages      []string `json:"pages"`
	ActivePage string   `json:"active_page"`
}

// NewSessionManager creates a manager around the given driver and launch
// configuration. Nothing is launched until the first operation.
func NewSessionManager(driver Driver, cfg LaunchConfig, logger *logging.Logger) *SessionManager {
	if logger == nil {
		logger, _ = logging.NewLogger("browser")
	}
	return &SessionManager{
		handle: NewBrowserHandle(driver, cfg),
		logger: logger,
	}
}

// ensureSession makes sure a live browser and registry exist, launching or
// relaunching as needed. Callers must hold m.mu.
func (m *SessionManager) ensureSession(ctx context.Context) error {
	if m.handle.State() == StateReady {
		if m.handle.HealthCheck() {
			return nil
		}
		// Health probe found the browser dead. Drop every page handle
		// before relaunching; their tabs died with the process.
		m.logger.Warnf("browser connection dead, relaunching")
		if m.registry != nil {
			m.registry.Teardown(false)
		}
		m.registry = nil
	}

	if err := m.handle.Launch(ctx); err != nil {
		m.logger.Errorf("browser launch failed: %v", err)
		return err
	}

	m.registry = NewPageRegistry(m.handle.Generation())
	tab, err := m.handle.Conn().NewPage()
	if err != nil {
		m.handle.MarkCrashed()
		m.registry = nil
		return &LaunchError{Kind: m.handle.cfg.Kind, Err: err}
	}
	if _, err := m.registry.CreatePage(DefaultPageName, tab); err != nil {
		return err
	}

	m.logger.Infof("browser ready (generation %d)", m.handle.Generation())
	return nil
}

// resolve returns the page handle for name, or the active page when name
// is empty. A handle whose generation does not match the current launch is
// stale and must never be returned; the registry is rebuilt per launch, so
// a mismatch indicates a relaunch raced the caller and is handled by
// rebuilding.
func (m *SessionManager) resolve(name string) (*PageHandle, error) {
	var handle *PageHandle
	var err error
	if name == "" {
		handle, err = m.registry.ActivePage()
	} else {
		handle, err = m.registry.GetPage(name)
	}
	if err != nil {
		return nil, err
	}
	if handle.Generation != m.handle.Generation() {
		return nil, &NotFoundError{Name: handle.Name}
	}
	return handle, nil
}

// WithPage resolves the target page (the active page when name is empty)
// and runs op against its tab. When op fails with a connection-lost error
// the manager relaunches the browser and retries exactly once; all other
// errors surface immediately. Page names are not preserved across a
// relaunch, so a retry that names a pre-crash page fails with a not-found
// error.
func (m *SessionManager) WithPage(ctx context.Context, name string, op func(Tab) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A caller that gave up while queued is dropped before any side
	// effect happens.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.ensureSession(ctx); err != nil {
		return err
	}

	handle, err := m.resolve(name)
	if err != nil {
		return err
	}

	opErr := op(handle.Tab)
	if opErr == nil || !IsConnectionLost(opErr) {
		return opErr
	}

	// One relaunch-and-retry cycle, then surface whatever happens.
	m.logger.Warnf("operation on page %q lost browser connection, retrying once: %v", handle.Name, opErr)
	m.handle.MarkCrashed()
	if err := m.ensureSession(ctx); err != nil {
		return err
	}
	handle, err = m.resolve(name)
	if err != nil {
		return err
	}
	if err := op(handle.Tab); err != nil {
		if IsConnectionLost(err) {
			return &ConnectionLostError{Err: err}
		}
		return err
	}
	return nil
}

// CreatePage opens a new page and registers it under name.
func (m *SessionManager) CreatePage(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.ensureSession(ctx); err != nil {
		return err
	}

	// Check the name before touching the browser so a rejected request
	// has no side effects.
	if _, err := m.registry.GetPage(name); err == nil {
		return &DuplicateNameError{Name: name}
	}

	tab, err := m.handle.Conn().NewPage()
	if err != nil {
		if IsConnectionLost(err) {
			m.handle.MarkCrashed()
			return &ConnectionLostError{Err: err}
		}
		return err
	}
	_, err = m.registry.CreatePage(name, tab)
	return err
}

// SwitchPage makes the named page active.
func (m *SessionManager) SwitchPage(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.ensureSession(ctx); err != nil {
		return err
	}
	return m.registry.SwitchActive(name)
}

// ClosePage closes and removes the named page. The last remaining page
// cannot be closed.
func (m *SessionManager) ClosePage(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.ensureSession(ctx); err != nil {
		return err
	}
	return m.registry.ClosePage(name)
}

// ListPages returns a snapshot of open pages in creation order.
func (m *SessionManager) ListPages(ctx context.Context) ([]PageInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.ensureSession(ctx); err != nil {
		return nil, err
	}
	return m.registry.ListPages(), nil
}

// Info reports the current session state without forcing a launch.
func (m *SessionManager) Info() SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := SessionInfo{
		Kind:       m.handle.cfg.Kind,
		Headless:   m.handle.cfg.Headless,
		State:      string(m.handle.State()),
		Generation: m.handle.Generation(),
	}
	if info.Kind == "" {
		info.Kind = KindChromium
	}
	if m.registry != nil {
		info.Pages = m.registry.Names()
		info.ActivePage = m.registry.ActiveName()
	}
	return info
}

// Shutdown closes all pages and the browser. Safe to call when nothing
// was ever launched.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry != nil {
		m.registry.Teardown(true)
		m.registry = nil
	}
	if err := m.handle.Close(); err != nil {
		m.logger.Warnf("browser close failed: %v", err)
		return err
	}
	return nil
}
