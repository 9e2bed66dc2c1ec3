package cookie

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPath is the path used when none is supplied.
const DefaultPath = "/"

// Cookie is an immutable browser cookie.
type Cookie struct {
	name      string
	value     string
	domain    string
	path      string
	expiry    time.Time
	hasExpiry bool
	secure    bool
}

// Attributes is the explicit configuration record consumed by Build.
// Zero values mean "not supplied" and pick up the defaults.
type Attributes struct {
	// Name identifies the cookie and must not be empty
	Name string

	// Value is the cookie payload
	Value string

	// Domain scopes the cookie; empty means host-only for the current document
	Domain string

	// Path defaults to "/" when empty. Any other value is kept as given.
	Path string

	// Expiry is truncated to whole seconds; nil means a session cookie
	Expiry *time.Time

	// Secure restricts the cookie to HTTPS documents
	Secure bool
}

// Build validates attrs and returns the resulting cookie.
func Build(attrs Attributes) (*Cookie, error) {
	if attrs.Name == "" {
		return nil, constructionError("name", ErrMissingName)
	}

	path := attrs.Path
	if path == "" {
		path = DefaultPath
	}

	c := &Cookie{
		name:   attrs.Name,
		value:  attrs.Value,
		domain: attrs.Domain,
		path:   path,
		secure: attrs.Secure,
	}
	if attrs.Expiry != nil {
		c.expiry = attrs.Expiry.Truncate(time.Second)
		c.hasExpiry = true
	}
	return c, nil
}

// MustBuild is like Build but panics on error. Intended for tests and
// package-level fixtures.
func MustBuild(attrs Attributes) *Cookie {
	c, err := Build(attrs)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the cookie name.
func (c *Cookie) Name() string {
	return c.name
}

// Value returns the cookie value.
func (c *Cookie) Value() string {
	return c.value
}

// Domain returns the cookie domain, or "" when the cookie is host-only.
func (c *Cookie) Domain() string {
	return c.domain
}

// HasDomain reports whether an explicit domain was supplied.
func (c *Cookie) HasDomain() bool {
	return c.domain != ""
}

// Path returns the cookie path.
func (c *Cookie) Path() string {
	return c.path
}

// Expiry returns the second-truncated expiry and whether one was set.
func (c *Cookie) Expiry() (time.Time, bool) {
	return c.expiry, c.hasExpiry
}

// IsSecure reports whether the cookie is restricted to HTTPS documents.
func (c *Cookie) IsSecure() bool {
	return c.secure
}

// IsExpired reports whether the cookie expires at or before now.
// Session cookies never expire.
func (c *Cookie) IsExpired(now time.Time) bool {
	return c.hasExpiry && !c.expiry.After(now)
}

// Attributes returns a copy of the attributes the cookie was built from,
// after defaults were applied.
func (c *Cookie) Attributes() Attributes {
	attrs := Attributes{
		Name:   c.name,
		Value:  c.value,
		Domain: c.domain,
		Path:   c.path,
		Secure: c.secure,
	}
	if c.hasExpiry {
		expiry := c.expiry
		attrs.Expiry = &expiry
	}
	return attrs
}

// Equal reports whether both cookies carry identical attributes.
func (c *Cookie) Equal(other *Cookie) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.name == other.name &&
		c.value == other.value &&
		c.domain == other.domain &&
		c.path == other.path &&
		c.hasExpiry == other.hasExpiry &&
		c.expiry.Equal(other.expiry) &&
		c.secure == other.secure
}

// String renders the cookie like a Set-Cookie header value.
func (c *Cookie) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s; Path=%s", c.name, c.value, c.path)
	if c.domain != "" {
		fmt.Fprintf(&b, "; Domain=%s", c.domain)
	}
	if c.hasExpiry {
		fmt.Fprintf(&b, "; Expires=%s", c.expiry.UTC().Format(time.RFC1123))
	}
	if c.secure {
		b.WriteString("; Secure")
	}
	return b.String()
}
