package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/entrhq/syncdriver/pkg/config"
	"github.com/entrhq/syncdriver/pkg/cookie"
	"github.com/entrhq/syncdriver/pkg/driver"
	"github.com/entrhq/syncdriver/pkg/fixture"
	"github.com/entrhq/syncdriver/pkg/logging"
	"github.com/gobwas/glob"
)

// command is one shell verb.
type command struct {
	usage   string
	summary string
	minArgs int
	maxArgs int
	run     func(sh *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"open":    {"open <url>", "load a page", 1, 1, (*shell).open},
		"url":     {"url", "print the current page URL", 0, 0, (*shell).url},
		"back":    {"back", "go back in history", 0, 0, (*shell).back},
		"forward": {"forward", "go forward in history", 0, 0, (*shell).forward},
		"refresh": {"refresh", "reload the current page", 0, 0, (*shell).refresh},
		"add": {
			"add <name> <value> [path [expiry]] | <name> <value> <domain> <path> <expiry> [secure]",
			"add a cookie; expiry is RFC3339, Unix seconds or -", 2, 6, (*shell).add,
		},
		"get":    {"get <name>", "show the cookie with the given name", 1, 1, (*shell).get},
		"list":   {"list [glob]", "list visible cookies, optionally filtered by name", 0, 1, (*shell).list},
		"delete": {"delete <name>", "delete cookies with the given name", 1, 1, (*shell).remove},
		"clear":  {"clear", "delete all visible cookies except protected ones", 0, 0, (*shell).clear},
		"load":   {"load <file>", "add the cookies of a YAML fixture", 1, 1, (*shell).load},
		"export": {"export <file>", "write visible cookies as a YAML fixture", 1, 1, (*shell).export},
		"help":   {"help", "list commands", 0, 0, (*shell).help},
	}
}

// shell executes commands against a driver and prints the results.
type shell struct {
	drv     driver.Driver
	cookies *config.CookieSection
	out     io.Writer
	log     *logging.Logger
}

func newShell(drv driver.Driver, cookies *config.CookieSection, out io.Writer, log *logging.Logger) *shell {
	if cookies == nil {
		cookies = config.NewCookieSection()
	}
	if log == nil {
		log = logging.Discard("cli")
	}
	return &shell{drv: drv, cookies: cookies, out: out, log: log}
}

// exec runs one command line split into words.
func (sh *shell) exec(args []string) error {
	if len(args) == 0 {
		return nil
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}

	sh.log.Debugf("exec %s %v", name, rest)
	if err := cmd.run(sh, rest); err != nil {
		sh.log.Errorf("%s failed: %v", name, err)
		return err
	}
	return nil
}

// script runs one command per line from r. Blank lines and lines starting
// with # are skipped. Failures are reported and the script continues.
func (sh *shell) script(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	failed := 0
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := sh.exec(strings.Fields(text)); err != nil {
			failed++
			fmt.Fprintln(sh.out, errorStyle.Render(fmt.Sprintf("line %d: %v", line, err)))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d command(s) failed", failed)
	}
	return nil
}

func (sh *shell) open(args []string) error {
	if err := sh.drv.Get(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, okStyle.Render("opened "+sh.drv.CurrentURL()))
	return nil
}

func (sh *shell) url(_ []string) error {
	fmt.Fprintln(sh.out, sh.drv.CurrentURL())
	return nil
}

func (sh *shell) back(_ []string) error {
	return sh.navigated(sh.drv.Navigate().Back())
}

func (sh *shell) forward(_ []string) error {
	return sh.navigated(sh.drv.Navigate().Forward())
}

func (sh *shell) refresh(_ []string) error {
	return sh.navigated(sh.drv.Navigate().Refresh())
}

func (sh *shell) navigated(err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, hintStyle.Render("at "+sh.drv.CurrentURL()))
	return nil
}

func (sh *shell) add(args []string) error {
	positional, err := cookieArgs(args)
	if err != nil {
		return err
	}
	c, err := cookie.FromArgs(positional...)
	if err != nil {
		return err
	}
	if err := sh.drv.Manage().AddCookie(c); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, okStyle.Render("added "+c.String()))
	return nil
}

func (sh *shell) get(args []string) error {
	c, err := sh.drv.Manage().GetCookieNamed(args[0])
	if err != nil {
		return err
	}
	if c == nil {
		fmt.Fprintln(sh.out, hintStyle.Render(fmt.Sprintf("no cookie named %q", args[0])))
		return nil
	}
	fmt.Fprintln(sh.out, cookieTable([]*cookie.Cookie{c}))
	return nil
}

func (sh *shell) list(args []string) error {
	cookies, err := sh.drv.Manage().GetCookies()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		g, err := glob.Compile(args[0])
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", args[0], err)
		}
		filtered := cookies[:0]
		for _, c := range cookies {
			if g.Match(c.Name()) {
				filtered = append(filtered, c)
			}
		}
		cookies = filtered
	}

	if len(cookies) == 0 {
		fmt.Fprintln(sh.out, hintStyle.Render("no cookies"))
		return nil
	}
	sort.SliceStable(cookies, func(i, j int) bool { return cookies[i].Name() < cookies[j].Name() })
	fmt.Fprintln(sh.out, cookieTable(cookies))
	return nil
}

func (sh *shell) remove(args []string) error {
	if err := sh.drv.Manage().DeleteCookieNamed(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, okStyle.Render("deleted "+args[0]))
	return nil
}

func (sh *shell) clear(_ []string) error {
	opts := sh.drv.Manage()
	if len(sh.cookies.Protected()) == 0 {
		if err := opts.DeleteAllCookies(); err != nil {
			return err
		}
		fmt.Fprintln(sh.out, okStyle.Render("cleared all cookies"))
		return nil
	}

	cookies, err := opts.GetCookies()
	if err != nil {
		return err
	}
	kept := 0
	for _, c := range cookies {
		if sh.cookies.IsProtected(c.Name()) {
			kept++
			continue
		}
		if err := opts.DeleteCookie(c); err != nil {
			return err
		}
	}
	fmt.Fprintln(sh.out, okStyle.Render(fmt.Sprintf("cleared %d cookie(s), kept %d protected", len(cookies)-kept, kept)))
	return nil
}

func (sh *shell) load(args []string) error {
	cookies, err := fixture.Load(args[0])
	if err != nil {
		return err
	}
	if err := fixture.Apply(sh.drv.Manage(), cookies); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, okStyle.Render(fmt.Sprintf("loaded %d cookie(s) from %s", len(cookies), args[0])))
	return nil
}

func (sh *shell) export(args []string) error {
	cookies, err := sh.drv.Manage().GetCookies()
	if err != nil {
		return err
	}
	if err := fixture.Save(args[0], cookies); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, okStyle.Render(fmt.Sprintf("wrote %d cookie(s) to %s", len(cookies), args[0])))
	return nil
}

func (sh *shell) help(_ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(sh.out, headerStyle.Render("Commands"))
	for _, name := range names {
		cmd := commands[name]
		fmt.Fprintf(sh.out, "  %s\n    %s\n", cmd.usage, hintStyle.Render(cmd.summary))
	}
	return nil
}

// cookieArgs converts command-line words to the positional values
// cookie.FromArgs expects for that argument count.
func cookieArgs(words []string) ([]any, error) {
	args := make([]any, len(words))
	for i, w := range words {
		args[i] = w
	}

	expiryAt := -1
	switch len(words) {
	case 4:
		expiryAt = 3
	case 5, 6:
		expiryAt = 4
	}
	if expiryAt >= 0 {
		expiry, err := parseExpiry(words[expiryAt])
		if err != nil {
			return nil, err
		}
		args[expiryAt] = expiry
	}

	if len(words) == 6 {
		secure, err := strconv.ParseBool(words[5])
		if err != nil {
			return nil, fmt.Errorf("invalid secure flag %q: %w", words[5], err)
		}
		args[5] = secure
	}
	return args, nil
}

// parseExpiry accepts "-" for no expiry, Unix seconds or RFC3339.
func parseExpiry(s string) (*time.Time, error) {
	if s == "-" || s == "" {
		return nil, nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.Unix(secs, 0)
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid expiry %q: expected RFC3339, Unix seconds or -", s)
	}
	return &t, nil
}
