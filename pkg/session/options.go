package session

import (
	"errors"
	"fmt"

	"github.com/entrhq/syncdriver/pkg/cookie"
	"github.com/entrhq/syncdriver/pkg/jar"
)

// options implements driver.Options against the session jar and its current
// document.
type options struct {
	session *Session
}

func (o *options) AddCookie(c *cookie.Cookie) error {
	doc, err := o.session.current()
	if err != nil {
		return err
	}

	if err := o.session.jar.Add(c, doc); err != nil {
		if errors.Is(err, jar.ErrCrossDomain) {
			o.session.log.Warnf("rejected cookie %q on %s: %v", c.Name(), doc.URL, err)
		}
		return err
	}
	o.session.log.Debugf("added cookie %q on %s", c.Name(), doc.URL)
	return nil
}

func (o *options) GetCookieNamed(name string) (*cookie.Cookie, error) {
	doc, err := o.session.current()
	if err != nil {
		return nil, err
	}
	return o.session.jar.Named(name, doc), nil
}

func (o *options) GetCookies() ([]*cookie.Cookie, error) {
	doc, err := o.session.current()
	if err != nil {
		return nil, err
	}
	return o.session.jar.Visible(doc), nil
}

func (o *options) DeleteCookie(c *cookie.Cookie) error {
	if c == nil {
		return fmt.Errorf("cannot delete nil cookie")
	}
	doc, err := o.session.current()
	if err != nil {
		return err
	}
	n := o.session.jar.Delete(c, doc)
	o.session.log.Debugf("deleted %d cookie(s) matching %q", n, c.Name())
	return nil
}

func (o *options) DeleteCookieNamed(name string) error {
	doc, err := o.session.current()
	if err != nil {
		return err
	}
	n := o.session.jar.DeleteNamed(name, doc)
	o.session.log.Debugf("deleted %d cookie(s) named %q", n, name)
	return nil
}

func (o *options) DeleteAllCookies() error {
	if _, err := o.session.current(); err != nil {
		return err
	}
	n := o.session.jar.Clear()
	o.session.log.Debugf("deleted all %d cookie(s)", n)
	return nil
}
