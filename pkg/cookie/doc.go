// Package cookie provides the Cookie value object handed to a driver's cookie
// manager.
//
// A Cookie is read-only once built. Every constructor funnels into Build, which
// validates the attributes, fills in defaults and truncates the expiry to whole
// seconds.
//
// # Constructor variants
//
// The positional constructors mirror the historical driver API and are keyed on
// the number of arguments:
//
//	New(name, value)                                    path "/"
//	NewWithPath(name, value, path)                      domain stays absent
//	NewWithExpiry(name, value, path, expiry)            domain stays absent
//	NewWithDomain(name, value, domain, path, expiry)    first form with a domain
//	NewSecure(name, value, domain, path, expiry, secure)
//
// The three argument form always treats its third argument as the path. A
// domain is only recognized from the five argument form onwards. FromArgs
// applies the same table to an untyped argument list, which is how the CLI
// resolves positional input.
//
// # Example Usage
//
//	c, err := cookie.NewWithDomain("sid", "abc", ".example.com", "/", time.Now().Add(time.Hour))
//	if err != nil {
//	    return err
//	}
//	err = driver.Manage().AddCookie(c)
package cookie
