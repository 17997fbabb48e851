// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.IdleAfter != 10*time.Minute {
		t.Errorf("Default IdleAfter = %v, want 10m", cfg.IdleAfter)
	}
	if !cfg.AutoSaveEnabled {
		t.Error("Default AutoSaveEnabled should be true")
	}
	if cfg.AutoSaveInterval != 30*time.Second {
		t.Errorf("Default AutoSaveInterval = %v, want 30s", cfg.AutoSaveInterval)
	}
}

// =============================================================================
// MANAGER CREATION TESTS
// =============================================================================

func TestNewManager(t *testing.T) {
	m := NewManager(DefaultConfig())

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if !strings.HasPrefix(m.SessionID(), "sess_") {
		t.Errorf("SessionID should start with 'sess_', got %q", m.SessionID())
	}
	if m.IsDirty() {
		t.Error("new session should start clean")
	}
}

// =============================================================================
// ACTIVITY TESTS
// =============================================================================

func TestRecordActivity_ResetsIdle(t *testing.T) {
	m := NewManager(Config{IdleAfter: 20 * time.Millisecond})

	time.Sleep(30 * time.Millisecond)
	if !m.IsIdle() {
		t.Fatal("session should be idle")
	}

	m.RecordActivity()
	if m.IsIdle() {
		t.Error("activity should reset idleness")
	}
}

func TestDirtyTracking(t *testing.T) {
	m := NewManager(DefaultConfig())

	m.MarkDirty()
	if !m.IsDirty() {
		t.Error("MarkDirty did not stick")
	}
	m.MarkClean()
	if m.IsDirty() {
		t.Error("MarkClean did not stick")
	}
}

// =============================================================================
// CHECK TESTS
// =============================================================================

func TestCheck_AutoSaveFiresWhenDirtyAndDue(t *testing.T) {
	m := NewManager(Config{
		AutoSaveEnabled:  true,
		AutoSaveInterval: time.Millisecond,
	})
	m.MarkDirty()
	time.Sleep(5 * time.Millisecond)

	saved := 0
	m.SetAutoSaveCallback(func() error {
		saved++
		return nil
	})

	m.Check()
	if saved != 1 {
		t.Errorf("autosave fired %d times, want 1", saved)
	}
	if m.IsDirty() {
		t.Error("successful autosave should mark the session clean")
	}
}

func TestCheck_AutoSaveSkippedWhenClean(t *testing.T) {
	m := NewManager(Config{
		AutoSaveEnabled:  true,
		AutoSaveInterval: time.Millisecond,
	})
	time.Sleep(5 * time.Millisecond)

	saved := 0
	m.SetAutoSaveCallback(func() error {
		saved++
		return nil
	})

	m.Check()
	if saved != 0 {
		t.Errorf("autosave fired %d times on a clean session, want 0", saved)
	}
}

func TestCheck_IdleWarningFiresOnce(t *testing.T) {
	m := NewManager(Config{IdleAfter: time.Millisecond})
	time.Sleep(5 * time.Millisecond)

	warned := 0
	m.SetIdleCallback(func(time.Duration) { warned++ })

	m.Check()
	m.Check()
	if warned != 1 {
		t.Errorf("idle warning fired %d times, want 1 per idle stretch", warned)
	}

	// Activity re-arms the warning
	m.RecordActivity()
	time.Sleep(5 * time.Millisecond)
	m.Check()
	if warned != 2 {
		t.Errorf("idle warning fired %d times after re-arm, want 2", warned)
	}
}

func TestCheck_FailedAutoSaveStaysDirty(t *testing.T) {
	m := NewManager(Config{
		AutoSaveEnabled:  true,
		AutoSaveInterval: time.Millisecond,
	})
	m.MarkDirty()
	time.Sleep(5 * time.Millisecond)

	m.SetAutoSaveCallback(func() error {
		return errSave
	})

	m.Check()
	if !m.IsDirty() {
		t.Error("failed autosave must leave the session dirty for the next tick")
	}
}

var errSave = &saveError{}

type saveError struct{}

func (*saveError) Error() string { return "save failed" }

// =============================================================================
// CONCURRENCY TESTS
// =============================================================================

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordActivity()
				m.MarkDirty()
				m.GetStatus()
				m.Check()
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
