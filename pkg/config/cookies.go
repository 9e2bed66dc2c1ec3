package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// SectionIDCookies is the identifier for the cookie settings section
const SectionIDCookies = "cookies"

// CookieSection holds cookie defaults for the CLI: a fixture file seeded
// into every new session and the names that bulk deletes keep.
type CookieSection struct {
	fixtureFile string
	protected   []string
	matchers    []glob.Glob
	mu          sync.RWMutex
}

// NewCookieSection creates a cookie section with no fixture and nothing
// protected.
func NewCookieSection() *CookieSection {
	return &CookieSection{}
}

// ID returns the section identifier.
func (s *CookieSection) ID() string {
	return SectionIDCookies
}

// Title returns the section title.
func (s *CookieSection) Title() string {
	return "Cookies"
}

// Description returns the section description.
func (s *CookieSection) Description() string {
	return "Cookie fixture file and name patterns that clear keeps."
}

// Data returns the current configuration data.
func (s *CookieSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	protected := make([]interface{}, len(s.protected))
	for i, p := range s.protected {
		protected[i] = p
	}
	return map[string]interface{}{
		"fixture_file": s.fixtureFile,
		"protected":    protected,
	}
}

// SetData updates the configuration from the provided data.
func (s *CookieSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := data["fixture_file"]; ok {
		file, err := asString("fixture_file", value)
		if err != nil {
			return err
		}
		s.fixtureFile = file
	}

	value, ok := data["protected"]
	if !ok {
		return nil
	}
	items, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("invalid protected type: expected []interface{}, got %T", value)
	}
	patterns := make([]string, 0, len(items))
	for i, item := range items {
		pattern, ok := item.(string)
		if !ok {
			return fmt.Errorf("invalid protected pattern at index %d: expected string, got %T", i, item)
		}
		patterns = append(patterns, pattern)
	}
	return s.setProtectedLocked(patterns)
}

// Validate validates the current configuration.
func (s *CookieSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, p := range s.protected {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("protected pattern at index %d is empty", i)
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *CookieSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fixtureFile = ""
	s.protected = nil
	s.matchers = nil
}

// FixtureFile returns the path of the fixture seeded into new sessions.
func (s *CookieSection) FixtureFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixtureFile
}

// SetFixtureFile sets the fixture path. Empty disables seeding.
func (s *CookieSection) SetFixtureFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtureFile = path
}

// Protected returns a copy of the protected name patterns.
func (s *CookieSection) Protected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.protected...)
}

// SetProtected replaces the protected name patterns.
func (s *CookieSection) SetProtected(patterns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setProtectedLocked(patterns)
}

func (s *CookieSection) setProtectedLocked(patterns []string) error {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return fmt.Errorf("invalid protected pattern %q: %w", p, err)
		}
		matchers = append(matchers, g)
	}
	s.protected = append([]string(nil), patterns...)
	s.matchers = matchers
	return nil
}

// IsProtected reports whether a cookie name matches any protected pattern.
func (s *CookieSection) IsProtected(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.matchers {
		if g.Match(name) {
			return true
		}
	}
	return false
}
