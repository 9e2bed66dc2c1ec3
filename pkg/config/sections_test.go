package config

import (
	"strings"
	"testing"
	"time"
)

func TestBrowserSection_Defaults(t *testing.T) {
	s := NewBrowserSection()

	got := s.Snapshot()
	want := BrowserSettings{
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		Timeout:        30 * time.Second,
		MaxSessions:    5,
		IdleTimeout:    5 * time.Minute,
		WaitUntil:      "load",
	}
	if got != want {
		t.Errorf("Unexpected defaults:\n got %+v\nwant %+v", got, want)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestBrowserSection_SetData(t *testing.T) {
	s := NewBrowserSection()

	// JSON-decoded values arrive as float64, bool and string
	err := s.SetData(map[string]interface{}{
		"headless":            false,
		"viewport_width":      1920.0,
		"viewport_height":     1080.0,
		"timeout":             "10s",
		"max_sessions":        2.0,
		"idle_timeout":        "1m",
		"ignore_https_errors": true,
		"wait_until":          "networkidle",
		"unknown":             "ignored",
	})
	if err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	got := s.Snapshot()
	if got.Headless || got.ViewportWidth != 1920 || got.ViewportHeight != 1080 {
		t.Errorf("Unexpected window settings: %+v", got)
	}
	if got.Timeout != 10*time.Second || got.IdleTimeout != time.Minute {
		t.Errorf("Unexpected durations: %+v", got)
	}
	if got.MaxSessions != 2 || !got.IgnoreHTTPSErrors || got.WaitUntil != "networkidle" {
		t.Errorf("Unexpected settings: %+v", got)
	}

	// Round trip through Data
	other := NewBrowserSection()
	if err := other.SetData(s.Data()); err != nil {
		t.Fatalf("SetData(Data()) failed: %v", err)
	}
	if other.Snapshot() != got {
		t.Error("Data round trip changed the settings")
	}
}

func TestBrowserSection_SetDataErrors(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"headless not bool", map[string]interface{}{"headless": "yes"}},
		{"width not number", map[string]interface{}{"viewport_width": "wide"}},
		{"fractional sessions", map[string]interface{}{"max_sessions": 1.5}},
		{"bad duration", map[string]interface{}{"timeout": "soon"}},
		{"wait not string", map[string]interface{}{"wait_until": 3.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewBrowserSection().SetData(tt.data); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestBrowserSection_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BrowserSection)
		errMsg string
	}{
		{"zero width", func(s *BrowserSection) { s.ViewportWidth = 0 }, "viewport"},
		{"zero timeout", func(s *BrowserSection) { s.Timeout = 0 }, "timeout"},
		{"no sessions", func(s *BrowserSection) { s.MaxSessions = 0 }, "max_sessions"},
		{"short idle", func(s *BrowserSection) { s.IdleTimeout = time.Millisecond }, "idle_timeout"},
		{"bad wait state", func(s *BrowserSection) { s.WaitUntil = "commit" }, "wait_until"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBrowserSection()
			tt.mutate(s)

			err := s.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %v", tt.errMsg, err)
			}

			s.Reset()
			if err := s.Validate(); err != nil {
				t.Errorf("Reset should restore valid defaults: %v", err)
			}
		})
	}
}

func TestCookieSection(t *testing.T) {
	s := NewCookieSection()
	if s.FixtureFile() != "" || len(s.Protected()) != 0 {
		t.Error("New section should be empty")
	}
	if s.IsProtected("session") {
		t.Error("Nothing should be protected by default")
	}

	err := s.SetData(map[string]interface{}{
		"fixture_file": "/tmp/cookies.yaml",
		"protected":    []interface{}{"session*", "csrf_token", "{a,b}_pref"},
	})
	if err != nil {
		t.Fatalf("SetData failed: %v", err)
	}

	if s.FixtureFile() != "/tmp/cookies.yaml" {
		t.Errorf("Unexpected fixture file %q", s.FixtureFile())
	}

	tests := []struct {
		name      string
		protected bool
	}{
		{"session", true},
		{"session_id", true},
		{"csrf_token", true},
		{"a_pref", true},
		{"b_pref", true},
		{"c_pref", false},
		{"tracking", false},
	}
	for _, tt := range tests {
		if got := s.IsProtected(tt.name); got != tt.protected {
			t.Errorf("IsProtected(%q) = %v, want %v", tt.name, got, tt.protected)
		}
	}

	data := s.Data()
	if len(data["protected"].([]interface{})) != 3 {
		t.Error("Data should include every protected pattern")
	}

	s.Reset()
	if s.IsProtected("session") || s.FixtureFile() != "" {
		t.Error("Reset should clear the section")
	}
}

func TestCookieSection_Errors(t *testing.T) {
	s := NewCookieSection()

	if err := s.SetData(map[string]interface{}{"protected": "session*"}); err == nil {
		t.Error("Expected error for non-list protected value")
	}
	if err := s.SetData(map[string]interface{}{"protected": []interface{}{1.0}}); err == nil {
		t.Error("Expected error for non-string pattern")
	}
	if err := s.SetProtected([]string{"[unclosed"}); err == nil {
		t.Error("Expected error for invalid glob")
	}
	if err := s.SetData(map[string]interface{}{"fixture_file": true}); err == nil {
		t.Error("Expected error for non-string fixture_file")
	}

	if err := s.SetProtected([]string{" "}); err != nil {
		t.Fatalf("SetProtected failed: %v", err)
	}
	if err := s.Validate(); err == nil {
		t.Error("Expected validation error for blank pattern")
	}
}
