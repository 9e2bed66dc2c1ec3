package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates the global manager from the file at configPath (or the
// default path), registers the browser and cookie sections and loads them.
// This should be called once at application startup.
func Initialize(configPath string) error {
	manager, err := Open(configPath)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = manager
	return nil
}

// Open builds a manager with the standard sections loaded from configPath
// without touching the global instance.
func Open(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	for _, section := range []Section{NewBrowserSection(), NewCookieSection()} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	return manager, nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// Browser returns the browser section of m, or nil if it is not registered.
func (m *Manager) Browser() *BrowserSection {
	section, ok := m.GetSection(SectionIDBrowser)
	if !ok {
		return nil
	}
	browser, _ := section.(*BrowserSection)
	return browser
}

// Cookies returns the cookie section of m, or nil if it is not registered.
func (m *Manager) Cookies() *CookieSection {
	section, ok := m.GetSection(SectionIDCookies)
	if !ok {
		return nil
	}
	cookies, _ := section.(*CookieSection)
	return cookies
}

// GetBrowser returns the browser section from global config.
// Returns nil if config is not initialized.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}
	return Global().Browser()
}

// GetCookies returns the cookie section from global config.
// Returns nil if config is not initialized.
func GetCookies() *CookieSection {
	if !IsInitialized() {
		return nil
	}
	return Global().Cookies()
}

// IsCookieProtected checks the global cookie section's protected patterns.
// Returns false if config is not initialized.
func IsCookieProtected(name string) bool {
	cookies := GetCookies()
	if cookies == nil {
		return false
	}
	return cookies.IsProtected(name)
}
