// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth tests cover the sealed credentials store: key derivation,
// AES-256-GCM round trips, environment overrides, and machine binding.
package auth

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// The environment must not shadow the file under test
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvAPIKeyAlt, "")
	return NewStoreWithDir(t.TempDir())
}

// =============================================================================
// KEY DERIVATION TESTS
// =============================================================================

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := []byte("test_salt_value_test_salt_value!")

	key1 := DeriveKey("machine-secret", salt)
	key2 := DeriveKey("machine-secret", salt)
	require.True(t, bytes.Equal(key1, key2), "same secret/salt should derive same key")

	key3 := DeriveKey("machine-secret", []byte("different_salt!!different_salt!!"))
	require.False(t, bytes.Equal(key1, key3), "different salt should derive different key")

	key4 := DeriveKey("other-secret", salt)
	require.False(t, bytes.Equal(key1, key4), "different secret should derive different key")
}

func TestDeriveKey_Length(t *testing.T) {
	key := DeriveKey("secret", []byte("salt"))
	require.Equal(t, KeySize, len(key), "derived key should be %d bytes", KeySize)
}

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	require.NoError(t, err)
	require.Equal(t, SaltSize, len(salt1))

	salt2, err := GenerateSalt()
	require.NoError(t, err)
	require.False(t, bytes.Equal(salt1, salt2), "salts must be random")
}

// =============================================================================
// SEAL / UNSEAL TESTS
// =============================================================================

func TestSealUnseal_RoundTrip(t *testing.T) {
	key := DeriveKey("secret", []byte("salt"))

	sealed, err := seal(key, []byte("AIzaSyTest1234567890abcdefghijklmnop"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sealed, EncryptedPrefix), "sealed value should carry the ENC: prefix")

	plain, err := unseal(key, sealed)
	require.NoError(t, err)
	require.Equal(t, "AIzaSyTest1234567890abcdefghijklmnop", string(plain))
}

func TestSealUnseal_NonceUniqueness(t *testing.T) {
	key := DeriveKey("secret", []byte("salt"))

	sealed1, err := seal(key, []byte("same plaintext"))
	require.NoError(t, err)
	sealed2, err := seal(key, []byte("same plaintext"))
	require.NoError(t, err)
	require.NotEqual(t, sealed1, sealed2, "sealing twice must produce different ciphertexts")
}

func TestUnseal_WrongKey(t *testing.T) {
	key := DeriveKey("secret", []byte("salt"))
	sealed, err := seal(key, []byte("payload"))
	require.NoError(t, err)

	wrong := DeriveKey("other-secret", []byte("salt"))
	_, err = unseal(wrong, sealed)
	require.ErrorIs(t, err, ErrDecryptFailed)
}

func TestUnseal_MalformedValue(t *testing.T) {
	key := DeriveKey("secret", []byte("salt"))

	for _, v := range []string{"", "not-sealed", EncryptedPrefix + "!!!not-base64!!!", EncryptedPrefix} {
		_, err := unseal(key, v)
		require.Error(t, err, "unseal(%q) should fail", v)
	}
}

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStore_SetGetClear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("AIzaSyTest1234567890abcdefghijklmnop"))

	// The file on disk must not hold the key in the clear
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.NotContains(t, string(data), "AIzaSyTest")

	key, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, "AIzaSyTest1234567890abcdefghijklmnop", key)

	require.NoError(t, store.Clear())
	_, err = store.Get()
	require.ErrorIs(t, err, ErrNoKey)

	// Clearing an empty store is fine
	require.NoError(t, store.Clear())
}

func TestStore_SetEmptyKey(t *testing.T) {
	store := newTestStore(t)
	require.ErrorIs(t, store.Set(""), ErrEmptyKey)
	require.ErrorIs(t, store.Set("   "), ErrEmptyKey)
}

func TestStore_GetWithoutCredentials(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get()
	require.ErrorIs(t, err, ErrNoKey)
}

func TestStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("AIzaSyTest1234567890abcdefghijklmnop"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm(), "credentials must be owner-only")
}

func TestStore_TamperedCredentials(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("AIzaSyTest1234567890abcdefghijklmnop"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	data[len(data)-2] ^= 0xff
	require.NoError(t, os.WriteFile(store.Path(), data, 0600))

	_, err = store.Get()
	require.Error(t, err, "tampered ciphertext must not decrypt")
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestStore_EnvOverridesFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("stored-key-1234567890"))

	t.Setenv(EnvAPIKey, "env-key-1234567890")

	key, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, "env-key-1234567890", key, "environment should win over the file")

	st := store.Status()
	require.True(t, st.Configured)
	require.Equal(t, "env:"+EnvAPIKey, st.Source)
}

func TestStore_AltEnvVariable(t *testing.T) {
	store := newTestStore(t)
	t.Setenv(EnvAPIKeyAlt, "alt-env-key-1234567890")

	key, err := store.Get()
	require.NoError(t, err)
	require.Equal(t, "alt-env-key-1234567890", key)
}

// =============================================================================
// STATUS AND MASKING TESTS
// =============================================================================

func TestStore_Status(t *testing.T) {
	store := newTestStore(t)

	st := store.Status()
	require.False(t, st.Configured)
	require.Equal(t, "AES-256-GCM", st.Algorithm)

	require.NoError(t, store.Set("AIzaSyTest1234567890abcdefghijklmnop"))
	st = store.Status()
	require.True(t, st.Configured)
	require.Equal(t, "file", st.Source)
	require.NotContains(t, st.Masked, "Test1234567890abcdefghijklmn", "masked key must elide the middle")
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AIzaSyTest1234567890", "AIza...7890"},
		{"short", "*****"},
		{"", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, MaskKey(tt.in), "MaskKey(%q)", tt.in)
	}
}

func TestZeroBytes(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	ZeroBytes(b)
	require.Equal(t, []byte{0, 0, 0, 0}, b)
}
