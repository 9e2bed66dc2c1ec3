package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/syncdriver/pkg/cookie"
	"github.com/entrhq/syncdriver/pkg/jar"
	"github.com/playwright-community/playwright-go"
)

// cookieOptions implements driver.Options on the browser context's cookie
// store, scoped to the page currently loaded.
type cookieOptions struct {
	session *Session
}

// document returns the page's current document.
func (o *cookieOptions) document() (jar.Document, error) {
	o.session.UpdateLastUsed()
	return jar.ParseDocument(o.session.Page.URL())
}

func (o *cookieOptions) AddCookie(c *cookie.Cookie) error {
	if c == nil {
		return fmt.Errorf("cannot add nil cookie")
	}
	doc, err := o.document()
	if err != nil {
		return err
	}

	pc, err := toPlaywright(c, doc)
	if err != nil {
		if errors.Is(err, jar.ErrCrossDomain) {
			o.session.log().Warnf("rejected cookie %q on %s: %v", c.Name(), doc.URL, err)
		}
		return err
	}

	if err := o.session.Context.AddCookies([]playwright.OptionalCookie{pc}); err != nil {
		return fmt.Errorf("failed to add cookie %q: %w", c.Name(), err)
	}
	o.session.log().Debugf("added cookie %q on %s", c.Name(), doc.URL)
	return nil
}

func (o *cookieOptions) GetCookieNamed(name string) (*cookie.Cookie, error) {
	cookies, err := o.GetCookies()
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, nil
}

func (o *cookieOptions) GetCookies() ([]*cookie.Cookie, error) {
	doc, err := o.document()
	if err != nil {
		return nil, err
	}
	if !doc.HasHost() {
		return nil, nil
	}

	pcs, err := o.session.Context.Cookies(doc.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}

	cookies := make([]*cookie.Cookie, 0, len(pcs))
	for _, pc := range visibleTo(pcs, doc) {
		c, err := fromPlaywright(pc)
		if err != nil {
			o.session.log().Warnf("skipping unreadable cookie %q: %v", pc.Name, err)
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

func (o *cookieOptions) DeleteCookie(c *cookie.Cookie) error {
	if c == nil {
		return fmt.Errorf("cannot delete nil cookie")
	}
	return o.deleteWhere(func(pc playwright.Cookie) bool {
		if pc.Name != c.Name() || pc.Path != c.Path() {
			return false
		}
		return !c.HasDomain() || canonical(pc.Domain) == canonical(c.Domain())
	})
}

func (o *cookieOptions) DeleteCookieNamed(name string) error {
	return o.deleteWhere(func(pc playwright.Cookie) bool {
		return pc.Name == name
	})
}

func (o *cookieOptions) DeleteAllCookies() error {
	o.session.UpdateLastUsed()
	if err := o.session.Context.ClearCookies(); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	o.session.log().Debugf("deleted all cookies")
	return nil
}

// deleteWhere removes the context cookies the current host can see that
// match pred. Cookies of unrelated domains are left alone.
func (o *cookieOptions) deleteWhere(pred func(playwright.Cookie) bool) error {
	doc, err := o.document()
	if err != nil {
		return err
	}
	if !doc.HasHost() {
		return nil
	}

	pcs, err := o.session.Context.Cookies()
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}

	n := 0
	for _, pc := range pcs {
		if !jar.DomainVisible(pc.Domain, doc.Host) || !pred(pc) {
			continue
		}
		err := o.session.Context.ClearCookies(playwright.BrowserContextClearCookiesOptions{
			Name:   pc.Name,
			Domain: pc.Domain,
			Path:   pc.Path,
		})
		if err != nil {
			return fmt.Errorf("failed to delete cookie %q: %w", pc.Name, err)
		}
		n++
	}
	o.session.log().Debugf("deleted %d cookie(s) on %s", n, doc.URL)
	return nil
}

// visibleTo drops secure cookies unless doc was loaded over HTTPS.
// Playwright's URL filter keeps them for localhost pages.
func visibleTo(pcs []playwright.Cookie, doc jar.Document) []playwright.Cookie {
	if doc.IsSecure() {
		return pcs
	}
	visible := make([]playwright.Cookie, 0, len(pcs))
	for _, pc := range pcs {
		if !pc.Secure {
			visible = append(visible, pc)
		}
	}
	return visible
}

// toPlaywright checks c against doc and converts it to the form Playwright
// accepts. Host-only cookies carry the bare host, domain cookies a leading dot.
func toPlaywright(c *cookie.Cookie, doc jar.Document) (playwright.OptionalCookie, error) {
	domain, hostOnly, err := jar.CheckDomain(c, doc)
	if err != nil {
		return playwright.OptionalCookie{}, err
	}
	if err := jar.CheckPath(c); err != nil {
		return playwright.OptionalCookie{}, err
	}
	if !hostOnly {
		domain = "." + domain
	}

	pc := playwright.OptionalCookie{
		Name:   c.Name(),
		Value:  c.Value(),
		Domain: playwright.String(domain),
		Path:   playwright.String(c.Path()),
		Secure: playwright.Bool(c.IsSecure()),
	}
	if expiry, ok := c.Expiry(); ok {
		pc.Expires = playwright.Float(float64(expiry.Unix()))
	}
	return pc, nil
}

// fromPlaywright converts a cookie read from the browser. Playwright reports
// session cookies with Expires == -1.
func fromPlaywright(pc playwright.Cookie) (*cookie.Cookie, error) {
	attrs := cookie.Attributes{
		Name:   pc.Name,
		Value:  pc.Value,
		Domain: pc.Domain,
		Path:   pc.Path,
		Secure: pc.Secure,
	}
	if pc.Expires > 0 {
		expiry := time.Unix(int64(pc.Expires), 0)
		attrs.Expiry = &expiry
	}
	return cookie.Build(attrs)
}

func canonical(domain string) string {
	return strings.ToLower(strings.TrimPrefix(domain, "."))
}
