// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	ResetGlobalForTesting()

	var wg sync.WaitGroup

	// 50 writers using SetGlobal, 50 readers using Global
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.Version = "test"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_ConcurrentReload tests concurrent ReloadGlobal and Global calls.
func TestConfig_ConcurrentReload(t *testing.T) {
	ResetGlobalForTesting()

	// Initialize config first
	_ = Global()

	var wg sync.WaitGroup

	// 20 reloaders, 80 readers
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// ReloadGlobal may fail if config file doesn't exist, that's ok
			_ = ReloadGlobal()
		}()
	}

	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cfg := Global()
			if cfg == nil {
				t.Error("Global() returned nil")
			}
		}()
	}

	wg.Wait()
}

// TestConfig_GlobalInitialization tests that Global() properly initializes
// the config on first access.
func TestConfig_GlobalInitialization(t *testing.T) {
	ResetGlobalForTesting()

	cfg := Global()
	if cfg == nil {
		t.Fatal("Global() returned nil")
	}

	// Verify defaults are applied
	if cfg.Version == "" {
		t.Error("Config version should not be empty")
	}
	if cfg.API.Model == "" {
		t.Error("API model should not be empty")
	}
}

// TestConfig_SetGlobalOverwrites tests that SetGlobal properly overwrites
// the existing global config.
func TestConfig_SetGlobalOverwrites(t *testing.T) {
	ResetGlobalForTesting()

	// Initialize with defaults
	_ = Global()

	customCfg := Default()
	customCfg.Version = "custom-version"
	customCfg.API.Model = "custom-model"
	SetGlobal(customCfg)

	result := Global()
	if result.Version != "custom-version" {
		t.Errorf("Expected version 'custom-version', got '%s'", result.Version)
	}
	if result.API.Model != "custom-model" {
		t.Errorf("Expected model 'custom-model', got '%s'", result.API.Model)
	}
}

// TestConfig_Default tests that Default() returns a valid config with defaults.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.API.BaseURL != "https://generativelanguage.googleapis.com" {
		t.Errorf("Default base URL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Model != "gemini-2.0-flash" {
		t.Errorf("Default model = %q", cfg.API.Model)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("Default timeout = %d, want 60", cfg.API.TimeoutSecs)
	}
	if cfg.Chat.SimpleMode {
		t.Error("Default framing should be technical (simple_mode false)")
	}
	if cfg.Chat.MaxConversations != 100 {
		t.Errorf("Default max conversations = %d, want 100", cfg.Chat.MaxConversations)
	}
	if cfg.Server.Port != 8791 {
		t.Errorf("Default port = %d, want 8791", cfg.Server.Port)
	}

	// Defaults must pass their own validation
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: true,
		},
		{
			name:    "base URL without scheme",
			mutate:  func(c *Config) { c.API.BaseURL = "generativelanguage.googleapis.com" },
			wantErr: true,
		},
		{
			name:    "timeout zero",
			mutate:  func(c *Config) { c.API.TimeoutSecs = 0 },
			wantErr: true,
		},
		{
			name:    "timeout too large",
			mutate:  func(c *Config) { c.API.TimeoutSecs = 601 },
			wantErr: true,
		},
		{
			name:    "retries out of range",
			mutate:  func(c *Config) { c.API.MaxRetries = 11 },
			wantErr: true,
		},
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "rate limit zero",
			mutate:  func(c *Config) { c.Server.RateLimit = 0 },
			wantErr: true,
		},
		{
			name:    "negative max conversations",
			mutate:  func(c *Config) { c.Chat.MaxConversations = -1 },
			wantErr: true,
		},
		{
			name:    "autosave below minimum",
			mutate:  func(c *Config) { c.Chat.AutosaveSecs = 5 },
			wantErr: true,
		},
		{
			name:    "autosave at minimum",
			mutate:  func(c *Config) { c.Chat.AutosaveSecs = 10 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestConfig_ValidationErrorFields tests that errors name the offending field.
func TestConfig_ValidationErrorFields(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = "neon"
	cfg.Server.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	msg := err.Error()
	if !strings.Contains(msg, "ui.theme") {
		t.Errorf("error should name ui.theme: %s", msg)
	}
	if !strings.Contains(msg, "server.port") {
		t.Errorf("error should name server.port: %s", msg)
	}
}

// TestConfig_SetDefaults tests zero-value filling.
func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.API.Model != "gemini-2.0-flash" {
		t.Errorf("Model = %q after SetDefaults", cfg.API.Model)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d after SetDefaults", cfg.API.TimeoutSecs)
	}
	if cfg.Server.RateLimit != 5 {
		t.Errorf("RateLimit = %g after SetDefaults", cfg.Server.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config should validate after SetDefaults: %v", err)
	}
}

// TestConfig_SaveAndLoadRoundTrip tests TOML persistence.
func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.Model = "gemini-2.0-pro"
	cfg.Chat.SimpleMode = true
	cfg.Server.Port = 9020

	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML: %v", err)
	}

	// SECURITY: saved file must be owner-only
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.API.Model != "gemini-2.0-pro" {
		t.Errorf("Model = %q after round trip", loaded.API.Model)
	}
	if !loaded.Chat.SimpleMode {
		t.Error("SimpleMode lost in round trip")
	}
	if loaded.Server.Port != 9020 {
		t.Errorf("Port = %d after round trip", loaded.Server.Port)
	}
}

// TestConfig_LoadFromPath_FillsOmittedFields tests partial files get defaults.
func TestConfig_LoadFromPath_FillsOmittedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[api]\nmodel = \"gemini-2.0-flash-lite\"\n"
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.API.Model != "gemini-2.0-flash-lite" {
		t.Errorf("Model = %q", cfg.API.Model)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("omitted timeout should default to 60, got %d", cfg.API.TimeoutSecs)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("omitted theme should default to dark, got %q", cfg.UI.Theme)
	}
}

// TestConfig_LoadFromPath_RejectsInvalid tests validation on load.
func TestConfig_LoadFromPath_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	bad := "[ui]\ntheme = \"neon\"\n"
	if err := os.WriteFile(path, []byte(bad), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("LoadFromPath should reject invalid theme")
	}
}

// TestConfig_ApplyEnvOverrides tests GEMRUN_* environment overrides.
func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("GEMRUN_MODEL", "gemini-2.0-pro")
	t.Setenv("GEMRUN_SIMPLE", "true")
	t.Setenv("GEMRUN_PORT", "9999")
	t.Setenv("GEMRUN_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.API.Model != "gemini-2.0-pro" {
		t.Errorf("GEMRUN_MODEL not applied: %q", cfg.API.Model)
	}
	if !cfg.Chat.SimpleMode {
		t.Error("GEMRUN_SIMPLE not applied")
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("GEMRUN_PORT not applied: %d", cfg.Server.Port)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("GEMRUN_THEME not applied: %q", cfg.UI.Theme)
	}
}

// TestConfig_ApplyEnvOverrides_IgnoresBadNumbers tests malformed numeric envs.
func TestConfig_ApplyEnvOverrides_IgnoresBadNumbers(t *testing.T) {
	t.Setenv("GEMRUN_PORT", "not-a-port")
	t.Setenv("GEMRUN_TIMEOUT_SECS", "soon")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Server.Port != 8791 {
		t.Errorf("malformed GEMRUN_PORT should be ignored, got %d", cfg.Server.Port)
	}
	if cfg.API.TimeoutSecs != 60 {
		t.Errorf("malformed GEMRUN_TIMEOUT_SECS should be ignored, got %d", cfg.API.TimeoutSecs)
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	// Test Get
	val, err := cfg.Get("api.model")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "gemini-2.0-flash" {
		t.Errorf("Get('api.model') = %v, want 'gemini-2.0-flash'", val)
	}

	// Test Set with string conversion
	if err := cfg.Set("server.port", "9000"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port after Set = %d, want 9000", cfg.Server.Port)
	}

	if err := cfg.Set("chat.simple_mode", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !cfg.Chat.SimpleMode {
		t.Error("SimpleMode after Set should be true")
	}

	// Test Get with invalid key
	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
	if err := cfg.Set("invalid.key", "x"); err == nil {
		t.Error("Set() with invalid key should return error")
	}
}

// TestConfig_GetAllKeys tests that every advertised key resolves.
func TestConfig_GetAllKeys(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) failed: %v", key, err)
		}
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	original.Version = "original"

	clone := original.Clone()
	clone.Version = "cloned"
	clone.API.Model = "other-model"

	if original.Version != "original" {
		t.Error("Clone should create an independent copy")
	}
	if original.API.Model != "gemini-2.0-flash" {
		t.Error("Clone should not share section structs")
	}
}

// TestConfig_StorageDir tests the storage directory fallback.
func TestConfig_StorageDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/tmp/gemrun-test"

	dir, err := cfg.StorageDir()
	if err != nil {
		t.Fatalf("StorageDir: %v", err)
	}
	if dir != "/tmp/gemrun-test" {
		t.Errorf("StorageDir = %q, want override", dir)
	}

	cfg.Storage.Dir = ""
	dir, err = cfg.StorageDir()
	if err != nil {
		t.Fatalf("StorageDir: %v", err)
	}
	if !strings.HasSuffix(dir, ".gemrun") {
		t.Errorf("default StorageDir = %q, want ~/.gemrun", dir)
	}
}
