// Package browser drives a real Chromium through Playwright behind the
// synchronous driver.Driver interface.
//
// # Architecture
//
// The package is built around two types:
//
// 1. Session: a Playwright browser, its isolated context and the active page
// 2. SessionManager: registry owning the Playwright runtime and every open session
//
// Playwright's Go client is already blocking, so each Session method returns
// once the browser has finished the operation.
//
// # Cookies
//
// Session.Manage returns a driver.Options backed by the browser context's
// cookie store. Playwright accepts cookies for any domain, so AddCookie runs
// the same-domain policy from package jar against the page URL before
// handing the cookie to the browser. Reads go through BrowserContext.Cookies
// with the page URL. Secure cookies are then dropped unless the page is
// HTTPS, since Playwright still returns them for http://localhost.
//
// # Session Lifecycle
//
//  1. Initialize: install and start the Playwright driver
//  2. Start: StartSession launches Chromium and opens a page
//  3. Use: Get, Navigate, Click and Manage operate on the page and context
//  4. Close: Quit or CloseSession releases the browser
//  5. Timeout: CleanupIdleSessions closes sessions idle past the timeout
//
// # Example Usage
//
//	manager := NewSessionManager(logger)
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession("cookies", SessionOptions{Headless: true})
//	if err != nil {
//	    return err
//	}
//	err = session.Get("https://example.com/")
//	c, _ := cookie.New("sid", "abc")
//	err = session.Manage().AddCookie(c)
package browser
