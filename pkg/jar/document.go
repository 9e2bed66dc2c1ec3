package jar

import (
	"fmt"
	"net/url"
	"strings"
)

// Document describes the currently loaded page as far as cookie scoping is
// concerned.
type Document struct {
	// URL is the full document URL
	URL string

	// Scheme is the lowercased URL scheme ("http", "https", "about")
	Scheme string

	// Host is the lowercased hostname without port
	Host string

	// Path is the URL path, "/" when empty
	Path string
}

// BlankDocument is the document loaded before any navigation.
var BlankDocument = Document{URL: "about:blank", Scheme: "about", Path: "/"}

// ParseDocument parses rawURL into a Document. Only http, https and
// about:blank are accepted.
func ParseDocument(rawURL string) (Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("invalid document URL %q: %w", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "about":
		if u.Opaque != "blank" {
			return Document{}, fmt.Errorf("unsupported document URL %q", rawURL)
		}
		return BlankDocument, nil
	case "http", "https":
	default:
		return Document{}, fmt.Errorf("unsupported URL scheme %q in %q", u.Scheme, rawURL)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return Document{}, fmt.Errorf("document URL %q has no host", rawURL)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	return Document{
		URL:    u.String(),
		Scheme: scheme,
		Host:   host,
		Path:   path,
	}, nil
}

// IsSecure reports whether the document was loaded over HTTPS.
func (d Document) IsSecure() bool {
	return d.Scheme == "https"
}

// HasHost reports whether the document has a host cookies can be scoped to.
func (d Document) HasHost() bool {
	return d.Host != ""
}

// Origin returns scheme://host for the document, or "" without a host.
func (d Document) Origin() string {
	if !d.HasHost() {
		return ""
	}
	return d.Scheme + "://" + d.Host
}
