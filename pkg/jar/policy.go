package jar

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/entrhq/syncdriver/pkg/cookie"
	"golang.org/x/net/publicsuffix"
)

var (
	// ErrCrossDomain is matched by every *CrossDomainError.
	ErrCrossDomain = errors.New("cookie domain does not match the current document")

	// ErrNoDocument is returned when cookies are added before a page with a
	// host has been loaded.
	ErrNoDocument = errors.New("no document with a host is loaded")
)

// CrossDomainError is returned when a cookie's domain is incompatible with
// the current document's host.
type CrossDomainError struct {
	Name   string
	Domain string
	Host   string

	// Reason describes which rule rejected the domain
	Reason string
}

func (e *CrossDomainError) Error() string {
	return fmt.Sprintf("cannot add cookie %q for domain %q on %q: %s", e.Name, e.Domain, e.Host, e.Reason)
}

// Unwrap returns ErrCrossDomain.
func (e *CrossDomainError) Unwrap() error {
	return ErrCrossDomain
}

// CheckDomain applies the same-domain policy to c for doc. It returns the
// canonical domain the cookie is stored under and whether it is host-only.
//
// A cookie without a domain is host-only for the document host. An explicit
// domain (leading dot ignored) must equal the host or be a parent of it, may
// not be a public suffix, and must equal the host exactly when the host is an
// IP address.
func CheckDomain(c *cookie.Cookie, doc Document) (string, bool, error) {
	if !doc.HasHost() {
		return "", false, fmt.Errorf("cannot add cookie %q to %s: %w", c.Name(), doc.URL, ErrNoDocument)
	}
	host := doc.Host

	if !c.HasDomain() {
		return host, true, nil
	}

	reject := func(reason string) (string, bool, error) {
		return "", false, &CrossDomainError{
			Name:   c.Name(),
			Domain: c.Domain(),
			Host:   host,
			Reason: reason,
		}
	}

	domain := canonicalDomain(c.Domain())
	if domain == "" {
		return reject("empty domain")
	}
	if domain == host {
		return domain, false, nil
	}
	if net.ParseIP(host) != nil {
		return reject("IP hosts only accept their own address")
	}
	if !strings.HasSuffix(host, "."+domain) {
		return reject("domain is not the host or a parent of it")
	}
	if suffix, _ := publicsuffix.PublicSuffix(domain); suffix == domain {
		return reject("domain is a public suffix")
	}
	return domain, false, nil
}

// CheckPath rejects cookies whose path cannot match any document path.
func CheckPath(c *cookie.Cookie) error {
	if !strings.HasPrefix(c.Path(), "/") {
		return fmt.Errorf("cannot add cookie %q with path %q: %w", c.Name(), c.Path(), cookie.ErrInvalidPath)
	}
	return nil
}

// canonicalDomain lowercases d and strips a single leading dot.
func canonicalDomain(d string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "."))
}

// domainMatch reports whether host may see a cookie stored under domain.
func domainMatch(domain string, hostOnly bool, host string) bool {
	if host == domain {
		return true
	}
	if hostOnly || net.ParseIP(host) != nil {
		return false
	}
	return strings.HasSuffix(host, "."+domain)
}

// pathMatch implements the RFC 6265 section 5.1.4 path-match rule.
func pathMatch(cookiePath, requestPath string) bool {
	if requestPath == "" {
		requestPath = "/"
	}
	if cookiePath == requestPath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}

// DomainVisible reports whether a document on host can see a cookie whose
// reported domain is domain. A leading dot marks a domain cookie; anything
// else is host-only. This is the convention browsers use when listing
// cookies.
func DomainVisible(domain, host string) bool {
	host = strings.ToLower(host)
	if strings.HasPrefix(domain, ".") {
		return domainMatch(canonicalDomain(domain), false, host)
	}
	return domainMatch(canonicalDomain(domain), true, host)
}
