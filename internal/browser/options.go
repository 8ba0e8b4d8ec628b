// internal/browser/options.go
package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/hrmcheck/internal/config"
)

const (
	defaultWindowWidth  = 1366
	defaultWindowHeight = 768
)

// launchFlags returns the Chromium command line flags for cfg, keyed by flag
// name without the leading dashes. Boolean flags map to true.
func launchFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		"no-first-run":                  true,
		"no-default-browser-check":      true,
		"no-sandbox":                    true,
		"disable-gpu":                   true,
		"disable-dev-shm-usage":         true,
		"disable-background-networking": true,
		"disable-popup-blocking":        true,
		"enable-automation":             true,
	}

	if cfg.Headless {
		flags["headless"] = true
		flags["hide-scrollbars"] = true
		flags["mute-audio"] = true
	}
	if cfg.DisableCache {
		flags["disk-cache-size"] = "0"
		flags["media-cache-size"] = "0"
		flags["disable-cache"] = true
	}
	if cfg.IgnoreTLSErrors {
		flags["ignore-certificate-errors"] = true
		flags["allow-insecure-localhost"] = true
	}

	width, height := defaultWindowWidth, defaultWindowHeight
	if w := cfg.Viewport["width"]; w > 0 {
		width = w
	}
	if h := cfg.Viewport["height"]; h > 0 {
		height = h
	}
	flags["window-size"] = fmt.Sprintf("%d,%d", width, height)

	// User supplied args win over the defaults above.
	for _, arg := range cfg.Args {
		key, value, found := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if key == "" {
			continue
		}
		if found {
			flags[key] = value
		} else {
			flags[key] = true
		}
	}
	return flags
}

// DefaultAllocatorOptions builds the exec allocator options from cfg. The
// list is assembled explicitly instead of extending
// chromedp.DefaultExecAllocatorOptions so headless can be switched off.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	flags := launchFlags(cfg)
	opts := make([]chromedp.ExecAllocatorOption, 0, len(flags)+1)
	for name, value := range flags {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}
