// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks TUI session activity for autosave and idle warnings.
package session

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks session activity, autosave scheduling, and idleness.
type Manager struct {
	mu sync.Mutex

	// Session tracking
	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	// Idle warning configuration
	idleAfter   time.Duration
	warnedOnce  bool

	// Auto-save configuration
	autoSaveEnabled  bool
	autoSaveInterval time.Duration
	lastAutoSave     time.Time
	isDirty          bool

	// Callbacks
	onIdle     func(idle time.Duration)
	onAutoSave func() error
}

// Config holds configuration for the session manager.
type Config struct {
	// IdleAfter is how long without activity before the idle warning
	// fires (default: 10 minutes). Zero disables the warning.
	IdleAfter time.Duration

	// AutoSaveEnabled enables periodic saving of dirty transcripts.
	AutoSaveEnabled bool

	// AutoSaveInterval is how often to auto-save (default: 30 seconds).
	AutoSaveInterval time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		IdleAfter:        10 * time.Minute,
		AutoSaveEnabled:  true,
		AutoSaveInterval: 30 * time.Second,
	}
}

// NewManager creates a new session manager.
func NewManager(cfg Config) *Manager {
	now := time.Now()
	return &Manager{
		sessionID:        "sess_" + now.Format("20060102_150405"),
		startTime:        now,
		lastActivity:     now,
		idleAfter:        cfg.IdleAfter,
		autoSaveEnabled:  cfg.AutoSaveEnabled,
		autoSaveInterval: cfg.AutoSaveInterval,
		lastAutoSave:     now,
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Duration returns how long the session has been running.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since the last recorded activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity updates the last activity timestamp. Called on user input;
// it also re-arms the idle warning.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
	m.warnedOnce = false
}

// MarkDirty indicates the active transcript has unsaved changes.
func (m *Manager) MarkDirty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = true
}

// MarkClean indicates the transcript has been saved.
func (m *Manager) MarkClean() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.isDirty = false
	m.lastAutoSave = time.Now()
}

// IsDirty returns whether the transcript has unsaved changes.
func (m *Manager) IsDirty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDirty
}

// =============================================================================
// CALLBACKS
// =============================================================================

// SetIdleCallback sets the function called once when the session goes idle.
func (m *Manager) SetIdleCallback(fn func(idle time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onIdle = fn
}

// SetAutoSaveCallback sets the function called for auto-save.
func (m *Manager) SetAutoSaveCallback(fn func() error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAutoSave = fn
}

// =============================================================================
// PERIODIC CHECK
// =============================================================================

// ShouldAutoSave returns true if auto-save should trigger.
func (m *Manager) ShouldAutoSave() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shouldAutoSaveLocked()
}

func (m *Manager) shouldAutoSaveLocked() bool {
	if !m.autoSaveEnabled || !m.isDirty {
		return false
	}
	return time.Since(m.lastAutoSave) >= m.autoSaveInterval
}

// IsIdle returns true once the configured idle window has elapsed.
func (m *Manager) IsIdle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.idleAfter > 0 && time.Since(m.lastActivity) >= m.idleAfter
}

// Check evaluates session state and triggers callbacks: auto-save when due,
// the idle warning once per idle stretch. Returns true when the session has
// recent activity.
func (m *Manager) Check() bool {
	m.mu.Lock()
	idle := time.Since(m.lastActivity)
	isIdle := m.idleAfter > 0 && idle >= m.idleAfter
	shouldWarn := isIdle && !m.warnedOnce
	if shouldWarn {
		m.warnedOnce = true
	}
	shouldSave := m.shouldAutoSaveLocked()
	onIdle := m.onIdle
	onAutoSave := m.onAutoSave
	m.mu.Unlock()

	// Callbacks run outside the lock so they may call back into the manager
	if shouldSave && onAutoSave != nil {
		if err := onAutoSave(); err == nil {
			m.MarkClean()
		}
	}
	if shouldWarn && onIdle != nil {
		onIdle(idle)
	}

	return !isIdle
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to check session state.
type TickMsg struct {
	Time time.Time
}

// IdleWarningMsg indicates the session has gone idle.
type IdleWarningMsg struct {
	Idle time.Duration
}

// AutoSaveMsg indicates auto-save should occur.
type AutoSaveMsg struct{}

// TickCmd returns a command that ticks once per second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick: emits AutoSaveMsg / IdleWarningMsg as due
// and schedules the next tick.
func (m *Manager) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	if m.ShouldAutoSave() {
		cmds = append(cmds, func() tea.Msg {
			return AutoSaveMsg{}
		})
	}

	m.mu.Lock()
	idle := time.Since(m.lastActivity)
	if m.idleAfter > 0 && idle >= m.idleAfter && !m.warnedOnce {
		m.warnedOnce = true
		cmds = append(cmds, func() tea.Msg {
			return IdleWarningMsg{Idle: idle}
		})
	}
	m.mu.Unlock()

	cmds = append(cmds, TickCmd())
	return tea.Batch(cmds...)
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// SetIdleAfter updates the idle warning window.
func (m *Manager) SetIdleAfter(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idleAfter = d
}

// SetAutoSaveEnabled enables or disables auto-save.
func (m *Manager) SetAutoSaveEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoSaveEnabled = enabled
}

// SetAutoSaveInterval updates the auto-save interval.
func (m *Manager) SetAutoSaveInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.autoSaveInterval = d
	}
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current session status.
type Status struct {
	SessionID string
	Duration  time.Duration
	IdleTime  time.Duration
	IsDirty   bool
	IsIdle    bool
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	idle := now.Sub(m.lastActivity)

	return Status{
		SessionID: m.sessionID,
		Duration:  now.Sub(m.startTime),
		IdleTime:  idle,
		IsDirty:   m.isDirty,
		IsIdle:    m.idleAfter > 0 && idle >= m.idleAfter,
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
