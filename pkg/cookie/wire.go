package cookie

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// wireCookie is the WebDriver JSON cookie object.
type wireCookie struct {
	Name   string  `json:"name"`
	Value  *string `json:"value"`
	Path   string  `json:"path,omitempty"`
	Domain string  `json:"domain,omitempty"`
	Expiry *int64  `json:"expiry,omitempty"`
	Secure bool    `json:"secure"`
}

// MarshalJSON encodes the cookie as a WebDriver cookie object with the
// expiry in Unix seconds.
func (c *Cookie) MarshalJSON() ([]byte, error) {
	value := c.value
	w := wireCookie{
		Name:   c.name,
		Value:  &value,
		Path:   c.path,
		Domain: c.domain,
		Secure: c.secure,
	}
	if c.hasExpiry {
		expiry := c.expiry.Unix()
		w.Expiry = &expiry
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a WebDriver cookie object and validates it like
// Build does.
func (c *Cookie) UnmarshalJSON(data []byte) error {
	var w wireCookie
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode cookie: %w", err)
	}
	if w.Value == nil {
		if w.Name == "" {
			return constructionError("name", ErrMissingName)
		}
		return constructionError("value", ErrMissingValue)
	}

	attrs := Attributes{
		Name:   w.Name,
		Value:  *w.Value,
		Domain: w.Domain,
		Path:   w.Path,
		Secure: w.Secure,
	}
	if w.Expiry != nil {
		expiry := time.Unix(*w.Expiry, 0)
		attrs.Expiry = &expiry
	}

	built, err := Build(attrs)
	if err != nil {
		return err
	}
	*c = *built
	return nil
}

// ToHTTP converts the cookie into a net/http cookie.
func (c *Cookie) ToHTTP() *http.Cookie {
	hc := &http.Cookie{
		Name:   c.name,
		Value:  c.value,
		Path:   c.path,
		Domain: c.domain,
		Secure: c.secure,
	}
	if c.hasExpiry {
		hc.Expires = c.expiry
	}
	return hc
}

// FromHTTP builds a cookie from a net/http cookie. MaxAge is ignored.
func FromHTTP(hc *http.Cookie) (*Cookie, error) {
	if hc == nil {
		return nil, constructionError("name", ErrMissingName)
	}
	attrs := Attributes{
		Name:   hc.Name,
		Value:  hc.Value,
		Domain: hc.Domain,
		Path:   hc.Path,
		Secure: hc.Secure,
	}
	if !hc.Expires.IsZero() {
		expiry := hc.Expires
		attrs.Expiry = &expiry
	}
	return Build(attrs)
}
