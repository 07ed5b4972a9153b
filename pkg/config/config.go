// Package config holds the server's startup configuration: browser kind,
// headless mode, extra launch arguments, and the optional navigation URL
// allowlist. Configuration is read once at process start from an optional
// YAML file plus command-line flags, and is immutable afterwards.
package config

import (
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/xkiranj/playwright-universal-mcp/pkg/browser"
)

// Config is the server configuration.
type Config struct {
	// Browser selects the engine: chromium, firefox, webkit, chrome, or
	// msedge.
	Browser string `yaml:"browser"`

	// Headless runs the browser without a visible window.
	Headless bool `yaml:"headless"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug"`

	// BrowserArgs are extra arguments for the browser process, appended
	// after the built-in sandbox arguments.
	BrowserArgs []string `yaml:"browser_args"`

	// AllowedURLPatterns restricts navigation to URLs matching at least
	// one glob pattern (e.g. "https://*.example.com/*"). Empty means no
	// restriction.
	AllowedURLPatterns []string `yaml:"allowed_url_patterns"`

	// LaunchTimeoutMs bounds browser startup in milliseconds. Zero uses
	// the built-in default.
	LaunchTimeoutMs float64 `yaml:"launch_timeout_ms"`

	// InstallBrowsers runs the Playwright browser installer before the
	// first launch.
	InstallBrowsers bool `yaml:"install_browsers"`
}

// Default returns the configuration used when no file or flags override
// it: headless chromium with container-safe arguments.
func Default() Config {
	return Config{
		Browser:  string(browser.KindChromium),
		Headless: true,
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// LaunchConfig converts the configuration into the browser package's
// immutable launch configuration.
func (c Config) LaunchConfig() browser.LaunchConfig {
	return browser.LaunchConfig{
		Kind:          browser.Kind(c.Browser),
		Headless:      c.Headless,
		Args:          c.BrowserArgs,
		LaunchTimeout: c.LaunchTimeoutMs,
	}
}

// URLAllowlist compiles the allowed URL patterns. A nil allowlist means
// navigation is unrestricted.
func (c Config) URLAllowlist() (*URLAllowlist, error) {
	if len(c.AllowedURLPatterns) == 0 {
		return nil, nil
	}

	globs := make([]glob.Glob, 0, len(c.AllowedURLPatterns))
	for _, pattern := range c.AllowedURLPatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid URL pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return &URLAllowlist{globs: globs, patterns: c.AllowedURLPatterns}, nil
}

// URLAllowlist matches navigation URLs against the configured glob
// patterns.
type URLAllowlist struct {
	globs    []glob.Glob
	patterns []string
}

// Allows reports whether the URL matches at least one pattern.
func (a *URLAllowlist) Allows(url string) bool {
	if a == nil {
		return true
	}
	for _, g := range a.globs {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Patterns returns the configured pattern strings.
func (a *URLAllowlist) Patterns() []string {
	if a == nil {
		return nil
	}
	return a.patterns
}
