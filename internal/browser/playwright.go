// Playwright process lifecycle: run the driver, launch Chromium, hand out
// browser contexts. Owned by main; everything else works through a
// session.Session.

package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-zhipin-crawler/internal/session"
)

// Options controls how the browser is launched.
type Options struct {
	Headless  bool
	UserAgent string
	Proxy     string
	Timeout   time.Duration
}

// Manager owns the playwright driver and the launched browser process.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// New starts the playwright driver and launches Chromium. Failures here
// wrap session.ErrSessionStartup: there is no browser to crawl with.
func New(opts Options) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: run driver: %v", session.ErrSessionStartup, err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
			"--window-size=1920,1080",
		},
	}
	if opts.Proxy != "" {
		launch.Proxy = &playwright.Proxy{Server: opts.Proxy}
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("%w: launch chromium: %v", session.ErrSessionStartup, err)
	}
	return &Manager{pw: pw, browser: browser}, nil
}

// NewContext creates a browser context, optionally seeded with cookies.
func (m *Manager) NewContext(cookies []playwright.OptionalCookie, userAgent string) (playwright.BrowserContext, error) {
	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1920, Height: 1080},
	}
	if userAgent != "" {
		opts.UserAgent = playwright.String(userAgent)
	}
	ctx, err := m.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	if len(cookies) > 0 {
		if err := ctx.AddCookies(cookies); err != nil {
			return nil, fmt.Errorf("seed cookies: %w", err)
		}
	}
	return ctx, nil
}

// Close shuts the browser down and stops the driver.
func (m *Manager) Close() error {
	var firstErr error
	if m.browser != nil {
		firstErr = m.browser.Close()
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
