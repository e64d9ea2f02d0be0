package manager

import "sync"

var (
	defaultMu      sync.RWMutex
	defaultManager *Manager
)

// SetDefault installs m as the process-wide manager. It is meant for scripts
// and templates that cannot take a Manager explicitly; set it once during
// startup rather than while requests are being served.
func SetDefault(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

// Default returns the process-wide manager, or nil if none is set.
func Default() *Manager {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultManager
}

// ResetDefault clears the process-wide manager.
func ResetDefault() {
	SetDefault(nil)
}
