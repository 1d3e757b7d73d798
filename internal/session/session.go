// Capability boundary between the crawler and whatever renders the page.
// The real implementation drives playwright; tests use the goquery-backed
// fake so nothing above this package ever talks to a browser directly.

package session

import "context"

// Element is a handle to one located DOM node.
type Element interface {
	// Text returns the node's visible text.
	Text(ctx context.Context) (string, error)

	// Attr returns the value of the named attribute, "" if unset.
	Attr(ctx context.Context, name string) (string, error)

	// Locate finds the first descendant matching selector.
	Locate(ctx context.Context, selector string) (Element, error)

	// All finds every descendant matching selector, in DOM order.
	All(ctx context.Context, selector string) ([]Element, error)

	// Click activates the node.
	Click(ctx context.Context) error

	// Visible reports whether the node is currently displayed.
	Visible(ctx context.Context) (bool, error)
}

// Session is a live handle to one controlled browser page. The underlying
// driver serializes commands per page, so implementations guard every
// command with a single lock: the popup watcher and the main crawl flow
// share one Session and must never race the driver.
type Session interface {
	// Navigate loads url in the page.
	Navigate(ctx context.Context, url string) error

	// Locate finds the first element matching selector anywhere on the
	// page. A selector that never resolves yields ErrNotFound.
	Locate(ctx context.Context, selector string) (Element, error)

	// All finds every element matching selector, in DOM order. An empty
	// result is not an error.
	All(ctx context.Context, selector string) ([]Element, error)

	// Fill clears the input matching selector and types value into it.
	Fill(ctx context.Context, selector, value string) error

	// Click activates the first element matching selector.
	Click(ctx context.Context, selector string) error

	// Evaluate runs a JavaScript expression in the page and returns its
	// result.
	Evaluate(ctx context.Context, script string) (any, error)

	// CurrentURL returns the page's current location.
	CurrentURL() string

	// Close releases the page. Commands issued after Close fail.
	Close(ctx context.Context) error
}
