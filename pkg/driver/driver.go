// Package driver defines the synchronous browser driver surface that cookie
// management is exercised through.
//
// Every call blocks until the underlying browser (or in-process session) has
// finished the operation and then returns a plain value or an error.
package driver

import (
	"github.com/entrhq/syncdriver/pkg/cookie"
)

// Options manages the cookie jar of the driver's active browsing session.
// All lookups are relative to the currently loaded document.
type Options interface {
	// AddCookie adds c to the session. It fails without touching the jar
	// when c's domain is incompatible with the current document.
	AddCookie(c *cookie.Cookie) error

	// GetCookieNamed returns the cookie called name visible to the current
	// document, or nil when there is none.
	GetCookieNamed(name string) (*cookie.Cookie, error)

	// GetCookies returns every cookie visible to the current document.
	GetCookies() ([]*cookie.Cookie, error)

	// DeleteCookie removes the stored cookie matching c.
	DeleteCookie(c *cookie.Cookie) error

	// DeleteCookieNamed removes the cookies called name.
	DeleteCookieNamed(name string) error

	// DeleteAllCookies empties the jar. Calling it on an empty jar is a no-op.
	DeleteAllCookies() error
}

// Navigation moves the active session through its history.
type Navigation interface {
	To(url string) error
	Back() error
	Forward() error
	Refresh() error
}

// Driver is a synchronous handle on one browsing session.
type Driver interface {
	// Get loads url in the session.
	Get(url string) error

	// CurrentURL returns the URL of the loaded document.
	CurrentURL() string

	// Manage returns the cookie manager bound to this session.
	Manage() Options

	// Navigate returns the history controls for this session.
	Navigate() Navigation

	// Quit ends the session and releases its resources.
	Quit() error
}
