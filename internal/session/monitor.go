package session

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// ViolationKind classifies an integrity event observed during an exam.
type ViolationKind string

const (
	ViolationCopyPaste        ViolationKind = "copy_paste"
	ViolationVisibilityChange ViolationKind = "visibility_change"
)

// VisibilityNotice is surfaced to the user immediately when the exam screen
// loses visibility.
const VisibilityNotice = "Warning: leaving the exam screen may be treated as academic dishonesty."

// FullscreenFunc requests full-screen presentation. It is invoked once, at
// session start, and its failure is never fatal.
type FullscreenFunc func() error

// ViolationCallback is invoked after each counted violation with the running
// warning total.
type ViolationCallback func(kind ViolationKind, warnings int)

// Monitor accumulates integrity warnings for one exam session. Warnings only
// ever increase and carry no consequence by themselves; the caller decides
// what, if anything, to do with them.
type Monitor struct {
	mu          sync.Mutex
	subscribed  bool
	warnings    int
	onViolation ViolationCallback
	fullscreen  FullscreenFunc
	requested   bool
}

func NewMonitor(onViolation ViolationCallback, fullscreen FullscreenFunc) *Monitor {
	return &Monitor{onViolation: onViolation, fullscreen: fullscreen}
}

// Subscribe starts counting events. Events reported before Subscribe or after
// Unsubscribe are ignored.
func (m *Monitor) Subscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = true
}

func (m *Monitor) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = false
}

// RequestFullscreen issues the one best-effort full-screen request. Denial is
// logged and otherwise ignored.
func (m *Monitor) RequestFullscreen() {
	m.mu.Lock()
	if m.requested || m.fullscreen == nil {
		m.mu.Unlock()
		return
	}
	m.requested = true
	fullscreen := m.fullscreen
	m.mu.Unlock()

	if err := fullscreen(); err != nil {
		log.Warn().Err(err).Msg("Full screen request denied")
	}
}

// ReportCopyPaste counts a clipboard or context-menu event. The returned flag
// tells the caller to suppress the default action.
func (m *Monitor) ReportCopyPaste() (suppressed bool) {
	return m.count(ViolationCopyPaste)
}

// ReportVisibilityLoss counts a tab switch or focus loss and returns the
// notice to surface to the user, if any.
func (m *Monitor) ReportVisibilityLoss() (notice string) {
	if m.count(ViolationVisibilityChange) {
		return VisibilityNotice
	}
	return ""
}

func (m *Monitor) count(kind ViolationKind) bool {
	m.mu.Lock()
	if !m.subscribed {
		m.mu.Unlock()
		return false
	}
	m.warnings++
	warnings := m.warnings
	callback := m.onViolation
	m.mu.Unlock()

	log.Warn().Str("kind", string(kind)).Int("warnings", warnings).Msg("Integrity violation recorded")
	if callback != nil {
		callback(kind, warnings)
	}
	return true
}

// Warnings returns the accumulated warning count.
func (m *Monitor) Warnings() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.warnings
}
