package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PageSession drives one playwright page. A single mutex serializes every
// command so the popup watcher and the main crawl flow cannot have two
// driver calls in flight at once.
type PageSession struct {
	mu      sync.Mutex
	page    playwright.Page
	timeout time.Duration
	closed  bool
}

// NewPageSession wraps page. timeout is the per-command budget used when
// the caller's context carries no deadline.
func NewPageSession(page playwright.Page, timeout time.Duration) *PageSession {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PageSession{page: page, timeout: timeout}
}

// millis converts the context deadline (or the default timeout) into the
// float milliseconds playwright wants.
func (s *PageSession) millis(ctx context.Context) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 {
			return float64(left.Milliseconds())
		}
		return 1
	}
	return float64(s.timeout.Milliseconds())
}

func (s *PageSession) guard() error {
	if s.closed {
		return fmt.Errorf("session is closed")
	}
	return nil
}

func (s *PageSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(s.millis(ctx)),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (s *PageSession) Locate(ctx context.Context, selector string) (Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	loc := s.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(s.millis(ctx)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &pwElement{s: s, loc: loc}, nil
}

func (s *PageSession) All(ctx context.Context, selector string) ([]Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	locs, err := s.page.Locator(selector).All()
	if err != nil {
		return nil, fmt.Errorf("locate all %q: %w", selector, err)
	}
	out := make([]Element, len(locs))
	for i, loc := range locs {
		out[i] = &pwElement{s: s, loc: loc}
	}
	return out, nil
}

func (s *PageSession) Fill(ctx context.Context, selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	loc := s.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(s.millis(ctx)),
	})
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	if err := loc.Fill(value, playwright.LocatorFillOptions{Timeout: playwright.Float(s.millis(ctx))}); err != nil {
		return fmt.Errorf("%w: fill %q: %v", ErrStaleOrObstructed, selector, err)
	}
	return nil
}

func (s *PageSession) Click(ctx context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return err
	}
	loc := s.page.Locator(selector).First()
	err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(s.millis(ctx)),
	})
	if err != nil {
		return fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	if err := loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(s.millis(ctx))}); err != nil {
		return fmt.Errorf("%w: click %q: %v", ErrStaleOrObstructed, selector, err)
	}
	return nil
}

func (s *PageSession) Evaluate(ctx context.Context, script string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.page.Evaluate(script)
}

func (s *PageSession) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ""
	}
	return s.page.URL()
}

func (s *PageSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.page.Close()
}

// pwElement shares its session's mutex: element commands are page commands.
type pwElement struct {
	s   *PageSession
	loc playwright.Locator
}

func (e *pwElement) Text(ctx context.Context) (string, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.guard(); err != nil {
		return "", err
	}
	text, err := e.loc.TextContent(playwright.LocatorTextContentOptions{Timeout: playwright.Float(e.s.millis(ctx))})
	if err != nil {
		return "", fmt.Errorf("%w: read text: %v", ErrStaleOrObstructed, err)
	}
	return text, nil
}

func (e *pwElement) Attr(ctx context.Context, name string) (string, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.guard(); err != nil {
		return "", err
	}
	val, err := e.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(e.s.millis(ctx))})
	if err != nil {
		return "", fmt.Errorf("%w: attr %q: %v", ErrStaleOrObstructed, name, err)
	}
	return val, nil
}

func (e *pwElement) Locate(ctx context.Context, selector string) (Element, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.guard(); err != nil {
		return nil, err
	}
	loc := e.loc.Locator(selector).First()
	count, err := loc.Count()
	if err != nil || count == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &pwElement{s: e.s, loc: loc}, nil
}

func (e *pwElement) All(ctx context.Context, selector string) ([]Element, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.guard(); err != nil {
		return nil, err
	}
	locs, err := e.loc.Locator(selector).All()
	if err != nil {
		return nil, fmt.Errorf("locate all %q: %w", selector, err)
	}
	out := make([]Element, len(locs))
	for i, loc := range locs {
		out[i] = &pwElement{s: e.s, loc: loc}
	}
	return out, nil
}

func (e *pwElement) Click(ctx context.Context) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.guard(); err != nil {
		return err
	}
	if err := e.loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(e.s.millis(ctx))}); err != nil {
		return fmt.Errorf("%w: click: %v", ErrStaleOrObstructed, err)
	}
	return nil
}

func (e *pwElement) Visible(ctx context.Context) (bool, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if err := e.s.guard(); err != nil {
		return false, err
	}
	return e.loc.IsVisible()
}
