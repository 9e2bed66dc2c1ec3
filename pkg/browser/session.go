package browser

import (
	"fmt"
	"time"

	"github.com/entrhq/syncdriver/pkg/driver"
	"github.com/entrhq/syncdriver/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

var _ driver.Driver = (*Session)(nil)

// UpdateLastUsed updates the last-used timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.mu.Lock()
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
}

// LastUsedAt returns the time of the last operation on the session.
func (s *Session) LastUsedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsedAt
}

// LastURL returns the page URL after the most recent navigation.
func (s *Session) LastURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastURL
}

// recordURL stores the page URL after a navigation.
func (s *Session) recordURL() {
	url := s.Page.URL()
	s.mu.Lock()
	s.lastURL = url
	s.mu.Unlock()
}

// Goto navigates the session's page to the specified URL.
func (s *Session) Goto(url string, opts NavigateOptions) error {
	s.UpdateLastUsed()

	playwrightOpts := playwright.PageGotoOptions{}

	waitUntil := opts.WaitUntil
	if waitUntil == "" {
		waitUntil = s.WaitUntil
	}
	if waitUntil != "" {
		if !validWaitStates[waitUntil] {
			return fmt.Errorf("invalid wait_until value: %s", waitUntil)
		}
		state := playwright.WaitUntilState(waitUntil)
		playwrightOpts.WaitUntil = &state
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.recordURL()
	return nil
}

// Get loads url with the session's default wait state.
func (s *Session) Get(url string) error {
	return s.Goto(url, NavigateOptions{})
}

// CurrentURL returns the URL the page currently shows.
func (s *Session) CurrentURL() string {
	return s.Page.URL()
}

// Click clicks the element matching the selector, e.g. a sign-in link that
// leads to an HTTPS page.
func (s *Session) Click(opts ClickOptions) error {
	s.UpdateLastUsed()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required")
	}

	playwrightOpts := playwright.PageClickOptions{}
	if opts.Timeout > 0 {
		playwrightOpts.Timeout = &opts.Timeout
	}

	if err := s.Page.Click(opts.Selector, playwrightOpts); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}

	// Clicks may navigate
	s.recordURL()
	return nil
}

// Manage returns the cookie manager bound to the session's browser context.
func (s *Session) Manage() driver.Options {
	return &cookieOptions{session: s}
}

// Navigate returns the history controls for the session's page.
func (s *Session) Navigate() driver.Navigation {
	return &navigation{session: s}
}

// Quit closes the session. Sessions owned by a manager are also removed
// from it.
func (s *Session) Quit() error {
	if s.manager != nil {
		return s.manager.CloseSession(s.Name)
	}
	return s.release()
}

// release closes the page, context and browser, reporting the first error.
func (s *Session) release() error {
	var first error
	for _, closeFn := range []func() error{
		func() error { return s.Page.Close() },
		func() error { return s.Context.Close() },
		func() error { return s.Browser.Close() },
	} {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// navigation implements driver.Navigation on a Playwright page.
type navigation struct {
	session *Session
}

func (n *navigation) To(url string) error {
	return n.session.Get(url)
}

func (n *navigation) Back() error {
	n.session.UpdateLastUsed()
	if _, err := n.session.Page.GoBack(); err != nil {
		return fmt.Errorf("back navigation failed: %w", err)
	}
	n.session.recordURL()
	return nil
}

func (n *navigation) Forward() error {
	n.session.UpdateLastUsed()
	if _, err := n.session.Page.GoForward(); err != nil {
		return fmt.Errorf("forward navigation failed: %w", err)
	}
	n.session.recordURL()
	return nil
}

func (n *navigation) Refresh() error {
	n.session.UpdateLastUsed()
	if _, err := n.session.Page.Reload(); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	n.session.recordURL()
	return nil
}

// log returns the owning manager's logger.
func (s *Session) log() *logging.Logger {
	if s.manager != nil {
		return s.manager.log
	}
	return logging.Discard("browser")
}
