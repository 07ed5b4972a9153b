// Package mcpserver exposes the browser session core over the Model
// Context Protocol: a fixed set of typed tools, screenshot resources, and
// a normalized error envelope. Parameter validation happens here, before
// any session call, so rejected requests have no side effects.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkiranj/playwright-universal-mcp/pkg/browser"
	"github.com/xkiranj/playwright-universal-mcp/pkg/config"
	"github.com/xkiranj/playwright-universal-mcp/pkg/logging"
)

const (
	serverName    = "playwright-universal-mcp"
	serverVersion = "0.1.0"
)

// Server wires the MCP protocol surface to the browser session manager.
type Server struct {
	mcpServer *mcp.Server
	manager   *browser.SessionManager
	allowlist *config.URLAllowlist
	logger    *logging.Logger
}

// Options configures a Server.
type Options struct {
	// Allowlist restricts navigation targets. Nil allows every URL.
	Allowlist *config.URLAllowlist

	// Logger receives request diagnostics. Optional.
	Logger *logging.Logger
}

// New creates the server and registers all tools and resources.
func New(manager *browser.SessionManager, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger, _ = logging.NewLogger("mcpserver")
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
		manager:   manager,
		allowlist: opts.Allowlist,
		logger:    logger,
	}

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "navigate",
		Description: "Navigate a page to a URL.",
	}, s.navigate)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "click",
		Description: "Click an element by CSS selector, falling back to visible text.",
	}, s.click)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "type",
		Description: "Type text into an input element.",
	}, s.typeText)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_text",
		Description: "Get text content from an element.",
	}, s.getText)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_page_content",
		Description: "Get the page's raw HTML content.",
	}, s.getPageContent)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "extract_text",
		Description: "Get the page's content reduced to readable plain text.",
	}, s.extractText)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "take_screenshot",
		Description: "Take a PNG screenshot of a page or a single element.",
	}, s.takeScreenshot)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "new_page",
		Description: "Open a new named browser page.",
	}, s.newPage)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "switch_page",
		Description: "Make a named page the active page.",
	}, s.switchPage)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "close_page",
		Description: "Close a named page. The last remaining page cannot be closed.",
	}, s.closePage)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_pages",
		Description: "List open pages and which one is active.",
	}, s.getPages)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "wait_for_selector",
		Description: "Wait for an element to become visible.",
	}, s.waitForSelector)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_browser_info",
		Description: "Report the browser session state and open pages.",
	}, s.getBrowserInfo)

	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "page_screenshot",
		Description: "Live PNG screenshot of a named page.",
		URITemplate: "screenshot://{page}",
		MIMEType:    "image/png",
	}, s.readScreenshot)

	return s
}

// Run serves MCP requests over the given transport until the context is
// cancelled or the transport closes.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Infof("serving MCP requests")
	return s.mcpServer.Run(ctx, transport)
}
