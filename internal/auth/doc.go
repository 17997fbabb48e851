// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the Gemini API key encrypted at rest and pins the
// TLS posture used when talking to the API.
//
// The key lives in ~/.gemrun/credentials (0600), sealed with AES-256-GCM
// under a PBKDF2-SHA-256 key derived from a machine-scoped identity
// (hostname and uid) plus a random salt file stored alongside. A copied
// credentials file will not decrypt on another machine. GEMINI_API_KEY or
// GEMRUN_API_KEY in the environment override the stored key.
//
// # Key Types
//
//   - Store: reads, writes, and clears the sealed credentials file
//   - Status: provenance and masked form of the active key, for display
//
// # Usage
//
//	store := auth.NewStore()
//	if err := store.Set(enteredKey); err != nil {
//		return err
//	}
//
//	key, err := store.Get()
//	if errors.Is(err, auth.ErrNoKey) {
//		// prompt the user to run `gemrun auth`
//	}
//
//	st := store.Status()
//	fmt.Printf("%s (%s)\n", st.Masked, st.Source)
package auth
