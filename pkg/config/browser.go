package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser settings section
	SectionIDBrowser = "browser"

	defaultHeadless          = true
	defaultViewportWidth     = 1280
	defaultViewportHeight    = 720
	defaultBrowserTimeout    = 30 * time.Second
	defaultMaxSessions       = 5
	defaultIdleTimeout       = 5 * time.Minute
	defaultIgnoreHTTPSErrors = false
	defaultWaitUntil         = "load"
)

var waitStates = map[string]bool{
	"load":             true,
	"domcontentloaded": true,
	"networkidle":      true,
}

// BrowserSection configures the Playwright backend.
type BrowserSection struct {
	Headless          bool          `json:"headless"`
	ViewportWidth     int           `json:"viewport_width"`
	ViewportHeight    int           `json:"viewport_height"`
	Timeout           time.Duration `json:"timeout"`
	MaxSessions       int           `json:"max_sessions"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	IgnoreHTTPSErrors bool          `json:"ignore_https_errors"`
	WaitUntil         string        `json:"wait_until"`
	mu                sync.RWMutex
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Settings for the Chromium sessions used by the browser backend."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"headless":            s.Headless,
		"viewport_width":      s.ViewportWidth,
		"viewport_height":     s.ViewportHeight,
		"timeout":             s.Timeout.String(),
		"max_sessions":        s.MaxSessions,
		"idle_timeout":        s.IdleTimeout.String(),
		"ignore_https_errors": s.IgnoreHTTPSErrors,
		"wait_until":          s.WaitUntil,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	for key, value := range data {
		switch key {
		case "headless":
			s.Headless, err = asBool(key, value)
		case "viewport_width":
			s.ViewportWidth, err = asInt(key, value)
		case "viewport_height":
			s.ViewportHeight, err = asInt(key, value)
		case "timeout":
			s.Timeout, err = asDuration(key, value)
		case "max_sessions":
			s.MaxSessions, err = asInt(key, value)
		case "idle_timeout":
			s.IdleTimeout, err = asDuration(key, value)
		case "ignore_https_errors":
			s.IgnoreHTTPSErrors, err = asBool(key, value)
		case "wait_until":
			s.WaitUntil, err = asString(key, value)
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ViewportWidth <= 0 || s.ViewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", s.ViewportWidth, s.ViewportHeight)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", s.Timeout)
	}
	if s.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got %d", s.MaxSessions)
	}
	if s.IdleTimeout < time.Second {
		return fmt.Errorf("idle_timeout must be at least 1s, got %v", s.IdleTimeout)
	}
	if !waitStates[s.WaitUntil] {
		return fmt.Errorf("wait_until must be 'load', 'domcontentloaded', or 'networkidle', got %q", s.WaitUntil)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Headless = defaultHeadless
	s.ViewportWidth = defaultViewportWidth
	s.ViewportHeight = defaultViewportHeight
	s.Timeout = defaultBrowserTimeout
	s.MaxSessions = defaultMaxSessions
	s.IdleTimeout = defaultIdleTimeout
	s.IgnoreHTTPSErrors = defaultIgnoreHTTPSErrors
	s.WaitUntil = defaultWaitUntil
}

// Snapshot returns a copy of the settings that is safe to read without
// locking.
func (s *BrowserSection) Snapshot() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return BrowserSettings{
		Headless:          s.Headless,
		ViewportWidth:     s.ViewportWidth,
		ViewportHeight:    s.ViewportHeight,
		Timeout:           s.Timeout,
		MaxSessions:       s.MaxSessions,
		IdleTimeout:       s.IdleTimeout,
		IgnoreHTTPSErrors: s.IgnoreHTTPSErrors,
		WaitUntil:         s.WaitUntil,
	}
}

// BrowserSettings is a point-in-time copy of a BrowserSection.
type BrowserSettings struct {
	Headless          bool
	ViewportWidth     int
	ViewportHeight    int
	Timeout           time.Duration
	MaxSessions       int
	IdleTimeout       time.Duration
	IgnoreHTTPSErrors bool
	WaitUntil         string
}

func asBool(key string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("invalid value type for %s: expected bool, got %T", key, value)
	}
	return b, nil
}

func asString(key string, value interface{}) (string, error) {
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
	}
	return str, nil
}

func asInt(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case float64:
		// JSON numbers come as float64
		if v != float64(int(v)) {
			return 0, fmt.Errorf("invalid value for %s: %v is not an integer", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
	}
}

func asDuration(key string, value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
}
