package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/entrhq/syncdriver/pkg/config"
	"github.com/entrhq/syncdriver/pkg/fixture"
	"github.com/entrhq/syncdriver/pkg/jar"
	"github.com/entrhq/syncdriver/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T, protected ...string) (*shell, *session.Session, *bytes.Buffer) {
	t.Helper()
	s := session.New()
	t.Cleanup(func() { _ = s.Quit() })

	cookies := config.NewCookieSection()
	require.NoError(t, cookies.SetProtected(protected))

	var out bytes.Buffer
	return newShell(s, cookies, &out, nil), s, &out
}

func execLine(t *testing.T, sh *shell, line string) error {
	t.Helper()
	return sh.exec(strings.Fields(line))
}

func TestShell_AddGetDelete(t *testing.T) {
	sh, s, out := newTestShell(t)

	require.NoError(t, execLine(t, sh, "open http://www.example.com/news/today"))
	assert.Contains(t, out.String(), "opened http://www.example.com/news/today")

	require.NoError(t, execLine(t, sh, "add sid abc"))
	require.NoError(t, execLine(t, sh, "add scoped 1 /news"))
	require.NoError(t, execLine(t, sh, "add wide 1 example.com / -"))
	require.NoError(t, execLine(t, sh, "add tls 1 example.com / 4102444800 true"))
	assert.Equal(t, 4, s.Jar().Len())

	scoped, err := s.Manage().GetCookieNamed("scoped")
	require.NoError(t, err)
	require.NotNil(t, scoped)
	assert.Equal(t, "/news", scoped.Path())

	tls := s.Jar().All()
	var secureFound bool
	for _, c := range tls {
		if c.Name() == "tls" {
			secureFound = true
			assert.True(t, c.IsSecure())
			expiry, ok := c.Expiry()
			require.True(t, ok)
			assert.Equal(t, int64(4102444800), expiry.Unix())
		}
	}
	assert.True(t, secureFound)

	out.Reset()
	require.NoError(t, execLine(t, sh, "get sid"))
	assert.Contains(t, out.String(), "abc")

	out.Reset()
	require.NoError(t, execLine(t, sh, "get nope"))
	assert.Contains(t, out.String(), `no cookie named "nope"`)

	require.NoError(t, execLine(t, sh, "delete sid"))
	got, err := s.Manage().GetCookieNamed("sid")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestShell_AddErrors(t *testing.T) {
	sh, _, _ := newTestShell(t)

	// No page with a host yet
	assert.ErrorIs(t, execLine(t, sh, "add sid abc"), jar.ErrNoDocument)

	require.NoError(t, execLine(t, sh, "open http://www.example.com/"))

	tests := []struct {
		name        string
		line        string
		expectError string
	}{
		{"too few", "add sid", "usage: add"},
		{"too many", "add a b c d e f g", "usage: add"},
		{"bad expiry", "add a b / tomorrow", "invalid expiry"},
		{"bad secure", "add a b example.com / - maybe", "invalid secure flag"},
		{"cross domain", "add a b example.org / -", "cannot add cookie"},
		{"relative path", "add a b news", "path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execLine(t, sh, tt.line)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestShell_List(t *testing.T) {
	sh, _, out := newTestShell(t)
	require.NoError(t, execLine(t, sh, "open http://www.example.com/"))

	require.NoError(t, execLine(t, sh, "list"))
	assert.Contains(t, out.String(), "no cookies")

	require.NoError(t, execLine(t, sh, "add session_id 1"))
	require.NoError(t, execLine(t, sh, "add session_ttl 2"))
	require.NoError(t, execLine(t, sh, "add theme dark"))

	out.Reset()
	require.NoError(t, execLine(t, sh, "list session_*"))
	assert.Contains(t, out.String(), "session_id")
	assert.Contains(t, out.String(), "session_ttl")
	assert.NotContains(t, out.String(), "theme")

	out.Reset()
	require.NoError(t, execLine(t, sh, "list"))
	assert.Contains(t, out.String(), "theme")
	assert.Contains(t, out.String(), "www.example.com")

	assert.Error(t, execLine(t, sh, "list [oops"))
}

func TestShell_ClearKeepsProtected(t *testing.T) {
	sh, s, out := newTestShell(t, "csrf*")
	require.NoError(t, execLine(t, sh, "open http://www.example.com/"))

	require.NoError(t, execLine(t, sh, "add csrf_token 1"))
	require.NoError(t, execLine(t, sh, "add sid 2"))
	require.NoError(t, execLine(t, sh, "add wide 3 example.com / -"))

	require.NoError(t, execLine(t, sh, "clear"))
	assert.Contains(t, out.String(), "cleared 2 cookie(s), kept 1 protected")

	cookies, err := s.Manage().GetCookies()
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "csrf_token", cookies[0].Name())
}

func TestShell_ClearAll(t *testing.T) {
	sh, s, _ := newTestShell(t)
	require.NoError(t, execLine(t, sh, "open http://www.example.com/"))
	require.NoError(t, execLine(t, sh, "add a 1"))
	require.NoError(t, execLine(t, sh, "add b 2"))

	require.NoError(t, execLine(t, sh, "clear"))
	assert.Equal(t, 0, s.Jar().Len())
}

func TestShell_Navigation(t *testing.T) {
	sh, s, out := newTestShell(t)

	require.NoError(t, execLine(t, sh, "open http://a.example.com/"))
	require.NoError(t, execLine(t, sh, "open http://b.example.com/"))
	require.NoError(t, execLine(t, sh, "back"))
	assert.Equal(t, "http://a.example.com/", s.CurrentURL())
	require.NoError(t, execLine(t, sh, "forward"))
	assert.Equal(t, "http://b.example.com/", s.CurrentURL())
	require.NoError(t, execLine(t, sh, "refresh"))

	out.Reset()
	require.NoError(t, execLine(t, sh, "url"))
	assert.Equal(t, "http://b.example.com/\n", out.String())
}

func TestShell_LoadExport(t *testing.T) {
	sh, s, _ := newTestShell(t)
	require.NoError(t, execLine(t, sh, "open http://www.example.com/"))
	require.NoError(t, execLine(t, sh, "add sid abc"))
	require.NoError(t, execLine(t, sh, "add prefs dark example.com / 4102444800"))

	path := filepath.Join(t.TempDir(), "cookies.yaml")
	require.NoError(t, execLine(t, sh, "export "+path))

	exported, err := fixture.Load(path)
	require.NoError(t, err)
	assert.Len(t, exported, 2)

	require.NoError(t, execLine(t, sh, "clear"))
	require.Equal(t, 0, s.Jar().Len())

	require.NoError(t, execLine(t, sh, "load "+path))
	assert.Equal(t, 2, s.Jar().Len())
}

func TestShell_Script(t *testing.T) {
	sh, s, out := newTestShell(t)

	script := strings.Join([]string{
		"# seed a session",
		"open http://www.example.com/",
		"",
		"add sid abc",
		"bogus",
		"add theme dark",
	}, "\n")

	err := sh.script(strings.NewReader(script))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 command(s) failed")
	assert.Contains(t, out.String(), `line 5: unknown command "bogus"`)
	assert.Equal(t, 2, s.Jar().Len())
}

func TestShell_Help(t *testing.T) {
	sh, _, out := newTestShell(t)
	require.NoError(t, execLine(t, sh, "help"))
	for name := range commands {
		assert.Contains(t, out.String(), name)
	}
	assert.NoError(t, sh.exec(nil))
}

func TestParseExpiry(t *testing.T) {
	none, err := parseExpiry("-")
	require.NoError(t, err)
	assert.Nil(t, none)

	unix, err := parseExpiry("1700000000")
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), unix.Unix())

	rfc, err := parseExpiry("2030-01-01T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, rfc.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = parseExpiry("soon")
	assert.Error(t, err)
}
