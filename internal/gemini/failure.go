// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini provides the Google Gemini API client for gemrun.
package gemini

import (
	"context"
	"errors"
)

// =============================================================================
// USABILITY: Failure Prose for the Transcript
// =============================================================================

// FailureText converts a completion error into the prose shown in place of
// the reply. The transcript keeps the failed turn, so the text has to tell
// the user what happened and what to do next without exposing internals.
func FailureText(err error) string {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "No API key configured. Run `gemrun auth` to add one."
	case errors.Is(err, ErrAuthFailed):
		return "The API rejected your key. Run `gemrun auth` to update it."
	case errors.Is(err, ErrQuotaExceeded):
		return "API quota exhausted. Check your plan and billing, then try again later."
	case errors.Is(err, ErrRateLimited):
		return "Rate limited by the API. Wait a moment and try again."
	case errors.Is(err, ErrModelNotFound):
		return "Model not available. Set a different model with `gemrun config`."
	case errors.Is(err, ErrBlocked):
		return "The safety filter blocked this exchange. Rephrase and try again."
	case errors.Is(err, ErrEmptyResponse):
		return "The model returned an empty reply. Try rephrasing your question."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Check your connection and try again."
	case errors.Is(err, context.Canceled):
		return "Request canceled."
	}
	return "Request failed: " + err.Error()
}
