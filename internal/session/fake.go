package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
)

// FakeSession implements Session over static HTML parsed with goquery, so
// crawler logic can be exercised without a browser. Tests register pages
// by URL and script click behaviors per selector; every command issued is
// counted, which is how the watcher tests prove nothing runs after Stop.
type FakeSession struct {
	mu     sync.Mutex
	doc    *goquery.Document
	url    string
	pages  map[string]string
	clicks map[string]func(*FakeSession) error
	filled map[string]string
	closed bool

	// EvaluateFunc, when set, answers Evaluate calls. The default answer
	// is 0, which makes scroll loops terminate immediately.
	EvaluateFunc func(script string) (any, error)

	ops atomic.Int64
}

// NewFakeSession returns an empty fake showing a blank page.
func NewFakeSession() *FakeSession {
	f := &FakeSession{
		pages:  make(map[string]string),
		clicks: make(map[string]func(*FakeSession) error),
		filled: make(map[string]string),
	}
	f.setHTML("<html><body></body></html>")
	return f
}

// AddPage registers html to be served when the fake navigates to url.
func (f *FakeSession) AddPage(url, html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[url] = html
}

// OnClick scripts what clicking an element matched by selector does. The
// selector matches the clicked element's full locate path or any suffix
// of it.
func (f *FakeSession) OnClick(selector string, fn func(*FakeSession) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks[selector] = fn
}

// SetHTML replaces the current document.
func (f *FakeSession) SetHTML(html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setHTML(html)
}

func (f *FakeSession) setHTML(html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		panic(fmt.Sprintf("fake session: bad fixture html: %v", err))
	}
	f.doc = doc
}

// Remove deletes every node matching selector from the current document.
func (f *FakeSession) Remove(selector string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc.Find(selector).Remove()
}

// Ops returns how many session commands have been issued so far.
func (f *FakeSession) Ops() int64 { return f.ops.Load() }

// Filled returns the last value typed into the input matched by selector.
func (f *FakeSession) Filled(selector string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filled[selector]
}

// Closed reports whether Close has been called.
func (f *FakeSession) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeSession) guard() error {
	if f.closed {
		return fmt.Errorf("session is closed")
	}
	return nil
}

func (f *FakeSession) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	f.ops.Add(1)
	f.url = url
	if html, ok := f.pages[url]; ok {
		f.setHTML(html)
	}
	return nil
}

func (f *FakeSession) Locate(ctx context.Context, selector string) (Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	f.ops.Add(1)
	sel := f.doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &fakeElement{f: f, sel: sel, path: selector}, nil
}

func (f *FakeSession) All(ctx context.Context, selector string) ([]Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	f.ops.Add(1)
	var out []Element
	f.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &fakeElement{f: f, sel: s, path: selector})
	})
	return out, nil
}

func (f *FakeSession) Fill(ctx context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return err
	}
	f.ops.Add(1)
	if f.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	f.filled[selector] = value
	return nil
}

func (f *FakeSession) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	if err := f.guard(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.ops.Add(1)
	if f.doc.Find(selector).Length() == 0 {
		f.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	fn := f.handlerFor(selector)
	f.mu.Unlock()
	if fn != nil {
		return fn(f)
	}
	return nil
}

// handlerFor picks the scripted click behavior for a locate path. Callers
// hold f.mu.
func (f *FakeSession) handlerFor(path string) func(*FakeSession) error {
	if fn, ok := f.clicks[path]; ok {
		return fn
	}
	for sel, fn := range f.clicks {
		if strings.HasSuffix(path, sel) {
			return fn
		}
	}
	return nil
}

func (f *FakeSession) Evaluate(ctx context.Context, script string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.guard(); err != nil {
		return nil, err
	}
	f.ops.Add(1)
	if f.EvaluateFunc != nil {
		return f.EvaluateFunc(script)
	}
	return 0, nil
}

func (f *FakeSession) CurrentURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.url
}

func (f *FakeSession) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeElement struct {
	f    *FakeSession
	sel  *goquery.Selection
	path string
}

func (e *fakeElement) Text(ctx context.Context) (string, error) {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	if err := e.f.guard(); err != nil {
		return "", err
	}
	e.f.ops.Add(1)
	return e.sel.Text(), nil
}

func (e *fakeElement) Attr(ctx context.Context, name string) (string, error) {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	if err := e.f.guard(); err != nil {
		return "", err
	}
	e.f.ops.Add(1)
	val, _ := e.sel.Attr(name)
	return val, nil
}

func (e *fakeElement) Locate(ctx context.Context, selector string) (Element, error) {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	if err := e.f.guard(); err != nil {
		return nil, err
	}
	e.f.ops.Add(1)
	sel := e.sel.Find(selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, selector)
	}
	return &fakeElement{f: e.f, sel: sel, path: e.path + " " + selector}, nil
}

func (e *fakeElement) All(ctx context.Context, selector string) ([]Element, error) {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	if err := e.f.guard(); err != nil {
		return nil, err
	}
	e.f.ops.Add(1)
	var out []Element
	e.sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &fakeElement{f: e.f, sel: s, path: e.path + " " + selector})
	})
	return out, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	e.f.mu.Lock()
	if err := e.f.guard(); err != nil {
		e.f.mu.Unlock()
		return err
	}
	e.f.ops.Add(1)
	fn := e.f.handlerFor(e.path)
	e.f.mu.Unlock()
	if fn != nil {
		return fn(e.f)
	}
	return nil
}

func (e *fakeElement) Visible(ctx context.Context) (bool, error) {
	e.f.mu.Lock()
	defer e.f.mu.Unlock()
	if err := e.f.guard(); err != nil {
		return false, err
	}
	e.f.ops.Add(1)
	if e.sel.Length() == 0 {
		return false, nil
	}
	if style, ok := e.sel.Attr("style"); ok && strings.Contains(strings.ReplaceAll(style, " ", ""), "display:none") {
		return false, nil
	}
	if _, hidden := e.sel.Attr("hidden"); hidden {
		return false, nil
	}
	return true, nil
}
