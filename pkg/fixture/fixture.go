// Package fixture loads cookies from YAML files and seeds them into a
// driver.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/syncdriver/pkg/cookie"
	"github.com/entrhq/syncdriver/pkg/driver"
	"gopkg.in/yaml.v3"
)

// File is the YAML document holding a list of cookie entries.
type File struct {
	Cookies []Entry `yaml:"cookies"`
}

// Entry is a single cookie in a fixture file
type Entry struct {
	Name      string     `yaml:"name"`                 // Cookie name
	Value     *string    `yaml:"value"`                // Cookie value, required but may be empty
	Path      string     `yaml:"path,omitempty"`       // Defaults to "/"
	Domain    string     `yaml:"domain,omitempty"`     // Empty means host-only
	ExpiresIn string     `yaml:"expires_in,omitempty"` // Duration relative to load time (e.g., "1h")
	Expiry    *time.Time `yaml:"expiry,omitempty"`     // Absolute RFC3339 timestamp
	Secure    bool       `yaml:"secure,omitempty"`     // HTTPS only
}

// Cookie validates the entry and builds the cookie it describes. Relative
// expiries are resolved against now.
func (e Entry) Cookie(now time.Time) (*cookie.Cookie, error) {
	if e.Name == "" {
		return nil, &cookie.ConstructionError{Field: "name", Err: cookie.ErrMissingName}
	}
	if e.Value == nil {
		return nil, &cookie.ConstructionError{Field: "value", Err: cookie.ErrMissingValue}
	}

	attrs := cookie.Attributes{
		Name:   e.Name,
		Value:  *e.Value,
		Domain: e.Domain,
		Path:   e.Path,
		Secure: e.Secure,
	}

	switch {
	case e.ExpiresIn != "" && e.Expiry != nil:
		return nil, fmt.Errorf("expires_in and expiry are mutually exclusive")
	case e.ExpiresIn != "":
		d, err := time.ParseDuration(e.ExpiresIn)
		if err != nil {
			return nil, fmt.Errorf("invalid expires_in: %w", err)
		}
		expiry := now.Add(d)
		attrs.Expiry = &expiry
	case e.Expiry != nil:
		expiry := *e.Expiry
		attrs.Expiry = &expiry
	}

	return cookie.Build(attrs)
}

// Parse decodes fixture YAML and builds its cookies, resolving relative
// expiries against the current time.
func Parse(data []byte) ([]*cookie.Cookie, error) {
	return ParseAt(data, time.Now())
}

// ParseAt is like Parse with an explicit reference time.
func ParseAt(data []byte, now time.Time) ([]*cookie.Cookie, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cookies := make([]*cookie.Cookie, 0, len(file.Cookies))
	for i, entry := range file.Cookies {
		c, err := entry.Cookie(now)
		if err != nil {
			return nil, fmt.Errorf("cookie %d: %w", i, err)
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// Load reads and parses a fixture file.
func Load(path string) ([]*cookie.Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	cookies, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}
	return cookies, nil
}

// Encode renders cookies as fixture YAML with absolute expiries.
//
// The cookies are expected as a driver reports them: domain cookies carry a
// leading dot and host-only cookies the bare host. The host of a host-only
// cookie is left out so that loading the file keeps the cookie host-only.
func Encode(cookies []*cookie.Cookie) ([]byte, error) {
	file := File{Cookies: make([]Entry, 0, len(cookies))}
	for _, c := range cookies {
		value := c.Value()
		entry := Entry{
			Name:   c.Name(),
			Value:  &value,
			Secure: c.IsSecure(),
		}
		if strings.HasPrefix(c.Domain(), ".") {
			entry.Domain = c.Domain()
		}
		if c.Path() != cookie.DefaultPath {
			entry.Path = c.Path()
		}
		if expiry, ok := c.Expiry(); ok {
			utc := expiry.UTC()
			entry.Expiry = &utc
		}
		file.Cookies = append(file.Cookies, entry)
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}

// Save writes cookies to path as fixture YAML.
func Save(path string, cookies []*cookie.Cookie) error {
	data, err := Encode(cookies)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fixture file: %w", err)
	}
	return nil
}

// Apply adds cookies to opts in order, stopping at the first failure.
func Apply(opts driver.Options, cookies []*cookie.Cookie) error {
	for i, c := range cookies {
		if err := opts.AddCookie(c); err != nil {
			return fmt.Errorf("fixture cookie %d (%s): %w", i, c.Name(), err)
		}
	}
	return nil
}
