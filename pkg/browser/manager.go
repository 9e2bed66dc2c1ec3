package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entrhq/syncdriver/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// SessionManager owns the Playwright runtime and all active browser sessions.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	maxSessions int
	idleTimeout time.Duration
	initialized bool
	log         *logging.Logger
}

// NewSessionManager creates a new session manager. A nil logger discards
// log output.
func NewSessionManager(logger *logging.Logger) *SessionManager {
	if logger == nil {
		logger = logging.Discard("browser")
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		idleTimeout: time.Duration(DefaultIdleTimeout) * time.Second,
		log:         logger,
	}
}

// Initialize installs the Playwright driver and Chromium if needed and starts
// the driver. It must be called before creating any sessions.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output goes to the log instead of the terminal
	opts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   m.log.Writer(),
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	m.log.Infof("playwright started")
	return nil
}

// StartSession creates a new browser session with the given name and options.
func (m *SessionManager) StartSession(name string, opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	opts = withDefaults(opts)
	if !validWaitStates[opts.WaitUntil] {
		return nil, fmt.Errorf("invalid wait_until value: %s (must be 'load', 'domcontentloaded', or 'networkidle')", opts.WaitUntil)
	}

	browser, err := m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
		IgnoreHttpsErrors: playwright.Bool(opts.IgnoreHTTPSErrors),
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		_ = context.Close()
		_ = browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	now := time.Now()
	session := &Session{
		Name:       name,
		Browser:    browser,
		Context:    context,
		Page:       page,
		Headless:   opts.Headless,
		WaitUntil:  opts.WaitUntil,
		CreatedAt:  now,
		lastUsedAt: now,
		lastURL:    "about:blank",
		manager:    m,
	}

	m.sessions[name] = session
	m.log.Infof("started session %q (headless=%t)", name, opts.Headless)
	return session, nil
}

// withDefaults fills the zero fields of opts.
func withDefaults(opts SessionOptions) SessionOptions {
	if opts.Viewport == nil {
		opts.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.WaitUntil == "" {
		opts.WaitUntil = DefaultWaitUntil
	}
	return opts
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("session %q not found", name)
	}

	err := session.release()
	delete(m.sessions, name)
	m.log.Infof("closed session %q", name)
	return err
}

// GetSession retrieves an active session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session %q not found", name)
	}

	return session, nil
}

// ListSessions returns information about all active sessions.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, SessionInfo{
			Name:       session.Name,
			CurrentURL: session.LastURL(),
			Headless:   session.Headless,
			CreatedAt:  session.CreatedAt,
			LastUsedAt: session.LastUsedAt(),
		})
	}

	return infos
}

// HasSessions returns true if there are any active sessions.
func (m *SessionManager) HasSessions() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions) > 0
}

// CloseAll closes all active sessions.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeWhereLocked(func(*Session) bool { return true })
}

// Shutdown closes all sessions and stops Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closeWhereLocked(func(*Session) bool { return true }); err != nil {
		m.log.Warnf("errors while closing sessions: %v", err)
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
		m.log.Infof("playwright stopped")
	}

	return nil
}

// CleanupIdleSessions closes sessions that have been idle for longer than the timeout.
func (m *SessionManager) CleanupIdleSessions() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	return m.closeWhereLocked(func(s *Session) bool {
		return now.Sub(s.LastUsedAt()) > m.idleTimeout
	})
}

// closeWhereLocked closes and removes every session matching pred.
// Callers must hold m.mu.
func (m *SessionManager) closeWhereLocked(pred func(*Session) bool) error {
	var errs []error
	for name, session := range m.sessions {
		if !pred(session) {
			continue
		}
		if err := session.release(); err != nil {
			errs = append(errs, err)
		}
		delete(m.sessions, name)
		m.log.Infof("closed session %q", name)
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing sessions: %v", errs)
	}
	return nil
}

// SetMaxSessions sets the maximum number of concurrent sessions.
func (m *SessionManager) SetMaxSessions(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = max
}

// SetIdleTimeout sets the idle timeout duration.
func (m *SessionManager) SetIdleTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleTimeout = timeout
}
