package session

import "errors"

var (
	// ErrNotFound means a selector never resolved within its attempt
	// budget. Recoverable: callers may skip the field or log and move on.
	ErrNotFound = errors.New("element not found")

	// ErrStaleOrObstructed means the element existed but interacting with
	// it failed, e.g. it went stale or an overlay swallowed the click.
	ErrStaleOrObstructed = errors.New("element stale or obstructed")

	// ErrNoMorePages marks the expected end of paginated results. It is a
	// terminal condition, not a failure.
	ErrNoMorePages = errors.New("no more pages")

	// ErrSessionStartup means the browser process could not be launched.
	// Fatal: there is nothing to crawl with.
	ErrSessionStartup = errors.New("browser session startup failed")
)
