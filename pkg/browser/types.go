package browser

import (
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session represents an active browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context holding the session's cookie store
	Context playwright.BrowserContext

	// Page is the current active page
	Page playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// WaitUntil is the load state navigations wait for
	WaitUntil string

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// mu guards lastUsedAt and lastURL, which the manager reads from other
	// goroutines during idle cleanup
	mu         sync.Mutex
	lastUsedAt time.Time
	lastURL    string

	manager *SessionManager
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout sets the default timeout for operations (in milliseconds)
	Timeout float64

	// IgnoreHTTPSErrors accepts self-signed certificates
	IgnoreHTTPSErrors bool

	// WaitUntil is the default load state for navigations:
	// "load", "domcontentloaded" or "networkidle"
	WaitUntil string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout in milliseconds (0 means default)
	Timeout float64
}

// ClickOptions configures element clicking behavior.
type ClickOptions struct {
	// Selector identifies the element to click
	Selector string

	// Timeout in milliseconds
	Timeout float64
}

// SessionInfo contains metadata about a browser session.
type SessionInfo struct {
	Name       string
	CurrentURL string
	Headless   bool
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Default values for sessions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
	DefaultIdleTimeout    = 300 // 5 minutes in seconds
	DefaultWaitUntil      = "load"
)

var validWaitStates = map[string]bool{
	"load":             true,
	"domcontentloaded": true,
	"networkidle":      true,
}
