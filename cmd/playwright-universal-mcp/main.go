// Package main provides the playwright-universal-mcp server binary: an MCP
// server exposing browser automation tools over stdio, delegating browser
// control to Playwright.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/xkiranj/playwright-universal-mcp/pkg/browser"
	"github.com/xkiranj/playwright-universal-mcp/pkg/config"
	"github.com/xkiranj/playwright-universal-mcp/pkg/logging"
	"github.com/xkiranj/playwright-universal-mcp/pkg/mcpserver"
)

const version = "0.1.0"

// cliFlags holds the raw command-line values before they are merged over
// the config file.
type cliFlags struct {
	Browser     string
	Headless    bool
	Headful     bool
	Debug       bool
	BrowserArgs stringList
	ConfigFile  string
	Install     bool
	ShowVersion bool
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint([]string(*s))
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

func main() {
	flags, setFlags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("playwright-universal-mcp v%s\n", version)
		return
	}

	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	applyFlags(&cfg, flags, setFlags)

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses command-line flags, returning the values and the set
// of flags the user passed explicitly.
func parseFlags() (*cliFlags, map[string]bool) {
	flags := &cliFlags{}

	flag.StringVar(&flags.Browser, "browser", "chromium", "Browser to use: chromium, firefox, webkit, chrome, or msedge")
	flag.BoolVar(&flags.Headless, "headless", true, "Run the browser in headless mode")
	flag.BoolVar(&flags.Headful, "headful", false, "Run the browser in headful mode (with a window)")
	flag.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	flag.Var(&flags.BrowserArgs, "browser-arg", "Additional browser argument (can be repeated)")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to a YAML configuration file")
	flag.BoolVar(&flags.Install, "install", false, "Install Playwright browsers before launching")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "playwright-universal-mcp - browser automation over the Model Context Protocol\n\n")
		fmt.Fprintf(os.Stderr, "Usage: playwright-universal-mcp [options]\n\n")
		fmt.Fprintf(os.Stderr, "The server speaks MCP on stdin/stdout; logs go to a file, never stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return flags, set
}

// applyFlags lays explicitly passed flags over the file configuration.
func applyFlags(cfg *config.Config, flags *cliFlags, set map[string]bool) {
	if set["browser"] {
		cfg.Browser = flags.Browser
	}
	if set["headless"] {
		cfg.Headless = flags.Headless
	}
	if flags.Headful {
		cfg.Headless = false
	}
	if set["debug"] {
		cfg.Debug = flags.Debug
	}
	if len(flags.BrowserArgs) > 0 {
		cfg.BrowserArgs = append(cfg.BrowserArgs, flags.BrowserArgs...)
	}
	if set["install"] {
		cfg.InstallBrowsers = flags.Install
	}
}

func run(cfg config.Config) error {
	logging.SetDebug(cfg.Debug)

	logger, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "file logging unavailable: %v\n", logErr)
	}
	defer logger.Close()

	allowlist, err := cfg.URLAllowlist()
	if err != nil {
		return err
	}

	mode := "headless"
	if !cfg.Headless {
		mode = "headful"
	}
	logger.Infof("starting playwright-universal-mcp v%s (%s, %s)", version, cfg.Browser, mode)

	driverLogger, _ := logging.NewLogger("driver")
	defer driverLogger.Close()
	driver := browser.NewPlaywrightDriver(browser.PlaywrightDriverOptions{
		InstallBrowsers: cfg.InstallBrowsers,
		Logger:          driverLogger,
	})

	sessionLogger, _ := logging.NewLogger("session")
	defer sessionLogger.Close()
	manager := browser.NewSessionManager(driver, cfg.LaunchConfig(), sessionLogger)

	serverLogger, _ := logging.NewLogger("mcpserver")
	defer serverLogger.Close()
	server := mcpserver.New(manager, mcpserver.Options{
		Allowlist: allowlist,
		Logger:    serverLogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := server.Run(ctx, &mcp.StdioTransport{})

	logger.Infof("shutting down, cleaning up browser resources")
	if err := manager.Shutdown(); err != nil {
		logger.Warnf("session shutdown: %v", err)
	}
	if err := driver.Stop(); err != nil {
		logger.Warnf("driver stop: %v", err)
	}

	if runErr != nil && ctx.Err() == nil {
		return runErr
	}
	return nil
}
