package mcpserver

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkiranj/playwright-universal-mcp/pkg/browser"
)

// Error kinds exposed in the response envelope. Internal error text from
// the automation library is summarized, never passed through verbatim.
const (
	kindLaunch           = "launch_error"
	kindInvalidParameter = "invalid_parameter"
	kindNotFound         = "not_found"
	kindDuplicateName    = "duplicate_name"
	kindLastPage         = "cannot_close_last_page"
	kindConnectionLost   = "connection_lost"
	kindOperation        = "operation_error"
)

// envelope is the uniform error payload placed in failed tool results.
type envelope struct {
	Status    string `json:"status"`
	ErrorKind string `json:"errorKind"`
	Message   string `json:"message"`
}

// errorKind classifies an error from the session core into the envelope
// taxonomy. Anything unrecognized is an operation error.
func errorKind(err error) string {
	var launchErr *browser.LaunchError
	var notFoundErr *browser.NotFoundError
	var dupErr *browser.DuplicateNameError
	var lostErr *browser.ConnectionLostError

	switch {
	case errors.As(err, &launchErr):
		return kindLaunch
	case errors.As(err, &notFoundErr):
		return kindNotFound
	case errors.As(err, &dupErr):
		return kindDuplicateName
	case errors.Is(err, browser.ErrLastPage):
		return kindLastPage
	case errors.As(err, &lostErr):
		return kindConnectionLost
	default:
		return kindOperation
	}
}

// summarize reduces an error to a single readable line, keeping the
// automation library's stack dumps and protocol detail out of responses.
func summarize(err error) string {
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	const maxLen = 300
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "..."
	}
	return msg
}

// errResult wraps an error into a failed tool result carrying the
// envelope.
func errResult(err error) *mcp.CallToolResult {
	return envelopeResult(errorKind(err), summarize(err))
}

// invalidParams builds a failed tool result for a validation error. These
// are produced before any session call is made.
func invalidParams(message string) *mcp.CallToolResult {
	return envelopeResult(kindInvalidParameter, message)
}

func envelopeResult(kind, message string) *mcp.CallToolResult {
	data, err := json.Marshal(envelope{
		Status:    "error",
		ErrorKind: kind,
		Message:   message,
	})
	if err != nil {
		data = []byte(`{"status":"error","errorKind":"operation_error","message":"internal error"}`)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}
}
