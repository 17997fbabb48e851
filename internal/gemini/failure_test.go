// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the Google Gemini API client for gemrun.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFailureText(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not configured", ErrNotConfigured, "gemrun auth"},
		{"auth failed", ErrAuthFailed, "rejected your key"},
		{"quota", ErrQuotaExceeded, "quota"},
		{"rate limited", ErrRateLimited, "Wait a moment"},
		{"model not found", ErrModelNotFound, "gemrun config"},
		{"blocked", ErrBlocked, "safety filter"},
		{"empty reply", ErrEmptyResponse, "empty reply"},
		{"timeout", context.DeadlineExceeded, "timed out"},
		{"canceled", context.Canceled, "Request canceled."},
		{"unknown", errors.New("dial tcp: no route to host"), "Request failed: dial tcp: no route to host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FailureText(tt.err)
			if !strings.Contains(got, tt.want) {
				t.Errorf("FailureText(%v) = %q, want substring %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFailureText_UnwrapsSentinels(t *testing.T) {
	// Errors arrive wrapped with retry context; mapping must still hit.
	wrapped := fmt.Errorf("max retries exceeded: %w", ErrRateLimited)
	got := FailureText(wrapped)
	if !strings.Contains(got, "Rate limited") {
		t.Errorf("FailureText(wrapped) = %q, want rate-limit prose", got)
	}
}

func TestFailureText_NeverEchoesAPIKey(t *testing.T) {
	// SECURITY: transcript prose comes from the error chain; make sure the
	// mapped cases never pass raw error text through.
	sentinels := []error{
		ErrNotConfigured, ErrAuthFailed, ErrQuotaExceeded, ErrRateLimited,
		ErrModelNotFound, ErrBlocked, ErrEmptyResponse,
	}
	for _, sentinel := range sentinels {
		wrapped := fmt.Errorf("request with key AIzaSecret failed: %w", sentinel)
		if got := FailureText(wrapped); strings.Contains(got, "AIzaSecret") {
			t.Errorf("FailureText leaked wrapped detail for %v: %q", sentinel, got)
		}
	}
}
