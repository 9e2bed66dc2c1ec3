package jar

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/entrhq/syncdriver/pkg/cookie"
	"github.com/gobwas/glob"
)

// key identifies a stored cookie. domain is canonical (lowercase, no dot).
type key struct {
	name   string
	domain string
	path   string
}

// entry is a stored cookie record.
type entry struct {
	// reported is the cookie handed back to callers, with the domain filled in
	reported *cookie.Cookie
	domain   string
	hostOnly bool
	created  time.Time
	seq      uint64
}

// Jar is a session-scoped cookie store keyed on (name, domain, path).
// It is safe for concurrent use.
type Jar struct {
	mu      sync.Mutex
	entries map[key]*entry
	now     func() time.Time
	seq     uint64
}

// Option configures a Jar.
type Option func(*Jar)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(j *Jar) {
		j.now = now
	}
}

// New creates an empty jar.
func New(opts ...Option) *Jar {
	j := &Jar{
		entries: make(map[key]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Add stores c for doc after applying the same-domain policy. When the
// policy rejects the cookie the jar is left untouched. Adding a cookie that
// is already expired removes any stored cookie with the same key.
func (j *Jar) Add(c *cookie.Cookie, doc Document) error {
	if c == nil {
		return fmt.Errorf("cannot add nil cookie")
	}

	domain, hostOnly, err := CheckDomain(c, doc)
	if err != nil {
		return err
	}
	if err := CheckPath(c); err != nil {
		return err
	}

	attrs := c.Attributes()
	if hostOnly {
		attrs.Domain = domain
	} else {
		attrs.Domain = "." + domain
	}
	reported, err := cookie.Build(attrs)
	if err != nil {
		return fmt.Errorf("failed to store cookie %q: %w", c.Name(), err)
	}

	k := key{name: c.Name(), domain: domain, path: c.Path()}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	if c.IsExpired(now) {
		delete(j.entries, k)
		return nil
	}

	created := now
	if old, exists := j.entries[k]; exists {
		// Replacing keeps the original creation time (RFC 6265 5.3 step 11)
		created = old.created
	}

	j.seq++
	j.entries[k] = &entry{
		reported: reported,
		domain:   domain,
		hostOnly: hostOnly,
		created:  created,
		seq:      j.seq,
	}
	return nil
}

// Visible returns the cookies doc would see, longest path first and then in
// creation order. Secure cookies are only visible to HTTPS documents.
func (j *Jar) Visible(doc Document) []*cookie.Cookie {
	if !doc.HasHost() {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.purgeLocked()

	var matched []*entry
	for _, e := range j.entries {
		if !domainMatch(e.domain, e.hostOnly, doc.Host) {
			continue
		}
		if !pathMatch(e.reported.Path(), doc.Path) {
			continue
		}
		if e.reported.IsSecure() && !doc.IsSecure() {
			continue
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(a, b int) bool {
		pa, pb := len(matched[a].reported.Path()), len(matched[b].reported.Path())
		if pa != pb {
			return pa > pb
		}
		if !matched[a].created.Equal(matched[b].created) {
			return matched[a].created.Before(matched[b].created)
		}
		return matched[a].seq < matched[b].seq
	})

	out := make([]*cookie.Cookie, len(matched))
	for i, e := range matched {
		out[i] = e.reported
	}
	return out
}

// Named returns the first cookie called name that doc can see, or nil.
func (j *Jar) Named(name string, doc Document) *cookie.Cookie {
	for _, c := range j.Visible(doc) {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Delete removes the cookies matching c's name and path (and domain, when c
// has one) whose domain the document host can see. It returns the number of
// removed cookies.
func (j *Jar) Delete(c *cookie.Cookie, doc Document) int {
	if c == nil {
		return 0
	}
	domain := ""
	if c.HasDomain() {
		domain = canonicalDomain(c.Domain())
	}

	return j.deleteWhere(func(k key, e *entry) bool {
		if k.name != c.Name() || k.path != c.Path() {
			return false
		}
		if domain != "" && k.domain != domain {
			return false
		}
		return domainMatch(e.domain, e.hostOnly, doc.Host)
	})
}

// DeleteNamed removes every cookie called name whose domain the document
// host can see, regardless of path.
func (j *Jar) DeleteNamed(name string, doc Document) int {
	return j.deleteWhere(func(k key, e *entry) bool {
		return k.name == name && domainMatch(e.domain, e.hostOnly, doc.Host)
	})
}

// Clear removes every cookie and returns how many were stored.
func (j *Jar) Clear() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := len(j.entries)
	j.entries = make(map[key]*entry)
	return n
}

// All returns every unexpired cookie regardless of visibility, ordered by
// domain, path and name.
func (j *Jar) All() []*cookie.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.purgeLocked()

	keys := make([]key, 0, len(j.entries))
	for k := range j.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].domain != keys[b].domain {
			return keys[a].domain < keys[b].domain
		}
		if keys[a].path != keys[b].path {
			return keys[a].path < keys[b].path
		}
		return keys[a].name < keys[b].name
	})

	out := make([]*cookie.Cookie, len(keys))
	for i, k := range keys {
		out[i] = j.entries[k].reported
	}
	return out
}

// Match returns the stored cookies whose names match the glob pattern.
func (j *Jar) Match(pattern string) ([]*cookie.Cookie, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid cookie name pattern %q: %w", pattern, err)
	}

	var out []*cookie.Cookie
	for _, c := range j.All() {
		if g.Match(c.Name()) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Len returns the number of unexpired cookies.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.purgeLocked()
	return len(j.entries)
}

func (j *Jar) deleteWhere(match func(key, *entry) bool) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	removed := 0
	for k, e := range j.entries {
		if match(k, e) {
			delete(j.entries, k)
			removed++
		}
	}
	return removed
}

// purgeLocked drops expired cookies. Callers must hold j.mu.
func (j *Jar) purgeLocked() {
	now := j.now()
	for k, e := range j.entries {
		if e.reported.IsExpired(now) {
			delete(j.entries, k)
		}
	}
}
