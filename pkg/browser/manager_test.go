package browser

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionManager(t *testing.T) {
	manager := NewSessionManager(nil)

	assert.NotNil(t, manager.log)
	assert.Equal(t, DefaultMaxSessions, manager.maxSessions)
	assert.Equal(t, 5*time.Minute, manager.idleTimeout)
	assert.False(t, manager.HasSessions())
	assert.Empty(t, manager.ListSessions())
}

func TestSessionManager_StartSessionValidation(t *testing.T) {
	tests := []struct {
		name        string
		sessionName string
		setup       func(*SessionManager)
		expectError string
	}{
		{
			name:        "empty name",
			sessionName: "",
			expectError: "session name is required",
		},
		{
			name:        "not initialized",
			sessionName: "main",
			expectError: "session manager not initialized",
		},
		{
			name:        "session limit",
			sessionName: "main",
			setup:       func(m *SessionManager) { m.SetMaxSessions(0) },
			expectError: "maximum number of sessions (0) reached",
		},
		{
			name:        "duplicate",
			sessionName: "main",
			setup: func(m *SessionManager) {
				m.sessions["main"] = &Session{Name: "main"}
			},
			expectError: `session "main" already exists`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := NewSessionManager(nil)
			if tt.setup != nil {
				tt.setup(manager)
			}

			_, err := manager.StartSession(tt.sessionName, SessionOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestSessionManager_UnknownSession(t *testing.T) {
	manager := NewSessionManager(nil)

	_, err := manager.GetSession("missing")
	assert.EqualError(t, err, `session "missing" not found`)

	err = manager.CloseSession("missing")
	assert.EqualError(t, err, `session "missing" not found`)
}

func TestSessionManager_ShutdownUninitialized(t *testing.T) {
	manager := NewSessionManager(nil)
	assert.NoError(t, manager.CloseAll())
	assert.NoError(t, manager.Shutdown())
	assert.NoError(t, manager.CleanupIdleSessions())
}

func TestSessionManager_ConcurrentUseAndListing(t *testing.T) {
	manager := NewSessionManager(nil)
	manager.SetIdleTimeout(time.Hour)
	session := &Session{Name: "main", lastUsedAt: time.Now(), lastURL: "about:blank", manager: manager}
	manager.sessions["main"] = session

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			session.UpdateLastUsed()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = manager.ListSessions()
			_ = manager.CleanupIdleSessions()
		}
	}()
	wg.Wait()

	infos := manager.ListSessions()
	require.Len(t, infos, 1)
	assert.Equal(t, "about:blank", infos[0].CurrentURL)
	assert.WithinDuration(t, time.Now(), session.LastUsedAt(), time.Minute)
}

func TestWithDefaults(t *testing.T) {
	opts := withDefaults(SessionOptions{})
	require.NotNil(t, opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, opts.Viewport.Width)
	assert.Equal(t, DefaultViewportHeight, opts.Viewport.Height)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultWaitUntil, opts.WaitUntil)

	custom := withDefaults(SessionOptions{
		Viewport:  &Viewport{Width: 800, Height: 600},
		Timeout:   5000,
		WaitUntil: "networkidle",
	})
	assert.Equal(t, 800, custom.Viewport.Width)
	assert.Equal(t, 5000.0, custom.Timeout)
	assert.Equal(t, "networkidle", custom.WaitUntil)
}

func TestSessionManager_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	manager := NewSessionManager(nil)
	require.NoError(t, manager.Initialize())
	defer manager.Shutdown()

	_, err := manager.StartSession("bad", SessionOptions{Headless: true, WaitUntil: "never"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid wait_until value")

	session, err := manager.StartSession("main", SessionOptions{Headless: true})
	require.NoError(t, err)
	assert.True(t, manager.HasSessions())
	assert.Equal(t, "about:blank", session.LastURL())

	infos := manager.ListSessions()
	require.Len(t, infos, 1)
	assert.Equal(t, "main", infos[0].Name)

	manager.SetIdleTimeout(time.Hour)
	require.NoError(t, manager.CleanupIdleSessions())
	assert.True(t, manager.HasSessions())

	require.NoError(t, session.Quit())
	assert.False(t, manager.HasSessions())
}
