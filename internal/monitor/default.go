package monitor

import "sync"

// Process-wide default instance. Construction is explicit — nothing is
// created lazily — and independent Monitor instances remain fully supported
// for tests and embedding.
var (
	defaultMu      sync.Mutex
	defaultMonitor *Monitor
)

// InitDefault constructs the process-wide default monitor. Calling it when a
// default already exists returns the existing instance unchanged.
func InitDefault(opts Options) *Monitor {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultMonitor == nil {
		defaultMonitor = New(opts)
	}
	return defaultMonitor
}

// Default returns the process-wide monitor, or nil before InitDefault.
func Default() *Monitor {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultMonitor
}

// CloseDefault stops and clears the process-wide monitor. Safe to call when
// none exists.
func CloseDefault() {
	defaultMu.Lock()
	m := defaultMonitor
	defaultMonitor = nil
	defaultMu.Unlock()

	if m != nil {
		m.StopMonitoring()
	}
}
