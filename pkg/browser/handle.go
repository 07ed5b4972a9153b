package browser

import (
	"context"
	"fmt"
	"time"
)

// HandleState is the lifecycle state of a BrowserHandle.
type HandleState string

const (
	// StateUnstarted means no launch has been attempted yet.
	StateUnstarted HandleState = "unstarted"

	// StateLaunching means a launch is in progress.
	StateLaunching HandleState = "launching"

	// StateReady means the browser is running and reachable.
	StateReady HandleState = "ready"

	// StateCrashed means the browser process died or became unreachable.
	StateCrashed HandleState = "crashed"

	// StateClosed means the handle was shut down deliberately.
	StateClosed HandleState = "closed"
)

// closeGrace bounds how long a graceful browser shutdown may take before
// the close is abandoned.
const closeGrace = 5 * time.Second

// BrowserHandle owns the lifecycle of a single underlying browser process.
// It is not safe for concurrent use: the SessionManager is its exclusive
// owner and serializes all access.
type BrowserHandle struct {
	driver     Driver
	cfg        LaunchConfig
	conn       Conn
	state      HandleState
	generation uint64
}

// NewBrowserHandle creates an unstarted handle. The configuration is fixed
// for the handle's lifetime; relaunches after a crash reuse it.
func NewBrowserHandle(driver Driver, cfg LaunchConfig) *BrowserHandle {
	return &BrowserHandle{
		driver: driver,
		cfg:    cfg,
		state:  StateUnstarted,
	}
}

// Launch starts the browser process. Only valid from the unstarted,
// crashed, or closed states; at most one live process exists per handle.
// Each successful launch bumps the generation counter.
func (h *BrowserHandle) Launch(ctx context.Context) error {
	switch h.state {
	case StateUnstarted, StateCrashed, StateClosed:
	default:
		return fmt.Errorf("cannot launch browser from state %q", h.state)
	}

	h.state = StateLaunching
	conn, err := h.driver.Launch(ctx, h.cfg)
	if err != nil {
		h.state = StateCrashed
		return err
	}

	h.conn = conn
	h.state = StateReady
	h.generation++
	return nil
}

// HealthCheck probes the browser connection. A dead probe moves the handle
// to the crashed state.
func (h *BrowserHandle) HealthCheck() bool {
	if h.state != StateReady || h.conn == nil {
		return false
	}
	if !h.conn.Connected() {
		h.state = StateCrashed
		h.conn = nil
		return false
	}
	return true
}

// MarkCrashed records that an operation observed a dead connection.
func (h *BrowserHandle) MarkCrashed() {
	if h.state == StateReady {
		h.state = StateCrashed
	}
	h.conn = nil
}

// Close shuts the browser down, best effort, within a bounded grace
// period. The handle can be relaunched afterwards.
func (h *BrowserHandle) Close() error {
	conn := h.conn
	h.conn = nil
	h.state = StateClosed

	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(closeGrace):
		return fmt.Errorf("browser close timed out after %s", closeGrace)
	}
}

// Conn returns the live connection, or nil unless the handle is ready.
func (h *BrowserHandle) Conn() Conn {
	if h.state != StateReady {
		return nil
	}
	return h.conn
}

// State returns the current lifecycle state.
func (h *BrowserHandle) State() HandleState {
	return h.state
}

// Generation returns the counter tagging the current launch. Page handles
// created under an older generation are stale.
func (h *BrowserHandle) Generation() uint64 {
	return h.generation
}
