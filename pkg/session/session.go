// Package session provides an in-process driver.Driver. A Session owns its
// cookie jar and the currently loaded document; no page content is fetched.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/syncdriver/pkg/driver"
	"github.com/entrhq/syncdriver/pkg/jar"
	"github.com/entrhq/syncdriver/pkg/logging"
	"github.com/google/uuid"
)

// ErrSessionClosed is returned by every operation after Quit.
var ErrSessionClosed = errors.New("session is closed")

// Session is a browsing session with its own cookie jar and history.
type Session struct {
	mu        sync.Mutex
	id        string
	jar       *jar.Jar
	history   []jar.Document
	pos       int
	closed    bool
	log       *logging.Logger
	createdAt time.Time
}

var _ driver.Driver = (*Session)(nil)

// Option configures a Session.
type Option func(*Session)

// WithJar makes the session use j instead of a fresh jar.
func WithJar(j *jar.Jar) Option {
	return func(s *Session) {
		s.jar = j
	}
}

// WithLogger attaches a logger for navigation and cookie operations.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// New creates a session sitting on about:blank.
func New(opts ...Option) *Session {
	s := &Session{
		id:        uuid.New().String(),
		history:   []jar.Document{jar.BlankDocument},
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.jar == nil {
		s.jar = jar.New()
	}
	if s.log == nil {
		s.log = logging.Discard("session")
	}
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Jar exposes the session's cookie jar.
func (s *Session) Jar() *jar.Jar {
	return s.jar
}

// Get loads rawURL, discarding any forward history.
func (s *Session) Get(rawURL string) error {
	doc, err := jar.ParseDocument(rawURL)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	s.history = append(s.history[:s.pos+1], doc)
	s.pos = len(s.history) - 1
	s.log.Debugf("session %s loaded %s", s.id, doc.URL)
	return nil
}

// CurrentURL returns the URL of the loaded document.
func (s *Session) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[s.pos].URL
}

// Document returns the loaded document.
func (s *Session) Document() jar.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[s.pos]
}

// Manage returns the cookie manager for this session.
func (s *Session) Manage() driver.Options {
	return &options{session: s}
}

// Navigate returns the history controls for this session.
func (s *Session) Navigate() driver.Navigation {
	return &navigation{session: s}
}

// Quit clears the jar and closes the session. Calling Quit twice is allowed.
func (s *Session) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	n := s.jar.Clear()
	s.closed = true
	s.log.Infof("session %s closed, dropped %d cookies", s.id, n)
	return nil
}

// current returns the loaded document, or ErrSessionClosed.
func (s *Session) current() (jar.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return jar.Document{}, ErrSessionClosed
	}
	return s.history[s.pos], nil
}

// navigation moves through the session history.
type navigation struct {
	session *Session
}

func (n *navigation) To(rawURL string) error {
	return n.session.Get(rawURL)
}

func (n *navigation) Back() error {
	return n.step(-1)
}

func (n *navigation) Forward() error {
	return n.step(1)
}

// Refresh reloads the current document. Cookies are untouched.
func (n *navigation) Refresh() error {
	_, err := n.session.current()
	return err
}

// step moves by delta entries; moving past either end is a no-op, like a
// browser's back button on the first page.
func (n *navigation) step(delta int) error {
	s := n.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	next := s.pos + delta
	if next < 0 || next >= len(s.history) {
		return nil
	}
	s.pos = next
	return nil
}
