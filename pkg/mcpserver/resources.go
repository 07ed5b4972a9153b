package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkiranj/playwright-universal-mcp/pkg/browser"
)

// readScreenshot serves screenshot://{page} resources: a live PNG capture
// of the named page, taken at read time.
func (s *Server) readScreenshot(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	if req == nil || req.Params == nil {
		return nil, fmt.Errorf("missing resource params")
	}

	u, err := url.Parse(req.Params.URI)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URI: %w", err)
	}
	if u.Scheme != "screenshot" {
		return nil, fmt.Errorf("unsupported resource URI: %s", req.Params.URI)
	}

	name := u.Host
	if name == "" {
		name = strings.TrimPrefix(u.Path, "/")
	}
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var shot []byte
	err = s.manager.WithPage(ctx, name, func(tab browser.Tab) error {
		var tabErr error
		shot, tabErr = tab.Screenshot("")
		return tabErr
	})
	if err != nil {
		var notFound *browser.NotFoundError
		if errors.As(err, &notFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("screenshot of page %q failed: %s", name, summarize(err))
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "image/png",
				Blob:     shot,
			},
		},
	}, nil
}
