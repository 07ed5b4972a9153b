package browser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLastPage is returned by ClosePage when the target is the only
// remaining page. A session with a live browser always retains at least
// one page.
var ErrLastPage = errors.New("cannot close the last remaining page")

// ErrNoActivePage indicates an empty registry, which the session manager
// invariants make unreachable. Seeing it means a bug, not a user error.
var ErrNoActivePage = errors.New("no active page in registry")

// LaunchError indicates the browser process failed to start or become
// responsive within the startup timeout.
type LaunchError struct {
	Kind Kind
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch %s browser: %v", e.Kind, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates a page name absent from the registry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("page %q not found", e.Name)
}

// DuplicateNameError indicates a name collision on page creation.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("page %q already exists", e.Name)
}

// ConnectionLostError wraps an operation failure classified as a lost
// browser connection. The session manager retries the operation exactly
// once after a relaunch before surfacing it.
type ConnectionLostError struct {
	Err error
}

func (e *ConnectionLostError) Error() string {
	return fmt.Sprintf("browser connection lost: %v", e.Err)
}

func (e *ConnectionLostError) Unwrap() error {
	return e.Err
}

// connectionLostMarkers are substrings of the automation library's error
// text that signal the browser process or its connection is gone.
var connectionLostMarkers = []string{
	"target closed",
	"target page, context or browser has been closed",
	"browser has been closed",
	"browser closed",
	"connection closed",
	"connection refused",
	"websocket: close",
	"broken pipe",
}

// IsConnectionLost reports whether err looks like a lost browser
// connection rather than an ordinary operation failure.
func IsConnectionLost(err error) bool {
	if err == nil {
		return false
	}
	var cl *ConnectionLostError
	if errors.As(err, &cl) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range connectionLostMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
