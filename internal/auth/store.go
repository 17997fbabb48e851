// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the Gemini API key encrypted at rest.
//
// This file implements the sealed credentials file:
// - AES-256-GCM authenticated encryption
// - PBKDF2-SHA-256 key derivation from a machine-scoped identity
// - Environment variable overrides for ephemeral use
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/gemrun-tui/internal/util"
	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// SECURITY HELPER FUNCTIONS
// =============================================================================

// ZeroBytes securely zeros sensitive byte slices to prevent memory disclosure.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a sealed value (format: ENC:base64(nonce|ciphertext|tag))
const EncryptedPrefix = "ENC:"

// NonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits)
const NonceSize = 12

// KeySize is the size of the AES-256 key (32 bytes / 256 bits)
const KeySize = 32

// SaltSize is the size of the salt for key derivation (32 bytes)
const SaltSize = 32

// PBKDF2Iterations is the number of iterations for PBKDF2 key derivation.
// OWASP 2023 recommends 600,000+ for PBKDF2-SHA-256 to provide adequate
// resistance against brute-force attacks with modern hardware.
const PBKDF2Iterations = 600000

// Environment variables consulted before the credentials file.
// GEMINI_API_KEY is the name Google's own tooling uses; GEMRUN_API_KEY is
// honored for consistency with the rest of the GEMRUN_ variables.
const (
	EnvAPIKey    = "GEMINI_API_KEY"
	EnvAPIKeyAlt = "GEMRUN_API_KEY"
)

// Credential file names under the state directory.
const (
	credentialsFile = "credentials"
	saltFile        = "credentials.salt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoKey indicates no API key is configured in the environment or on disk.
	ErrNoKey = errors.New("no API key configured")
	// ErrEmptyKey indicates an attempt to store an empty API key.
	ErrEmptyKey = errors.New("API key is empty")
	// ErrInvalidCiphertext indicates the credentials file format is invalid.
	ErrInvalidCiphertext = errors.New("invalid credentials format")
	// ErrDecryptFailed indicates decryption failed (tampered file, or a
	// credentials file copied from another machine).
	ErrDecryptFailed = errors.New("credentials decryption failed: authentication tag mismatch")
)

// =============================================================================
// CREDENTIALS STORE
// =============================================================================

// Store reads, writes, and clears the sealed credentials file.
//
// The API key is sealed with AES-256-GCM under a key derived from the local
// machine identity (hostname and uid) plus a random salt file stored next to
// the credentials. Copying the credentials file to another machine leaves it
// undecryptable because the derivation inputs change.
type Store struct {
	dir string
}

// NewStore returns a credentials store rooted at ~/.gemrun.
func NewStore() *Store {
	home, err := os.UserHomeDir()
	if err != nil {
		return &Store{dir: filepath.Join(".", ".gemrun")}
	}
	return &Store{dir: filepath.Join(home, ".gemrun")}
}

// NewStoreWithDir returns a credentials store rooted at dir. Tests use this
// to avoid touching the real home directory.
func NewStoreWithDir(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the credentials file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, credentialsFile)
}

func (s *Store) saltPath() string {
	return filepath.Join(s.dir, saltFile)
}

// =============================================================================
// KEY DERIVATION
// =============================================================================

// GenerateSalt generates a cryptographically secure random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an encryption key from a secret and salt using
// PBKDF2-SHA-256 per NIST SP 800-132.
func DeriveKey(secret string, salt []byte) []byte {
	return pbkdf2.Key([]byte(secret), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// machineSecret returns the machine-scoped identity the sealing key is
// derived from. Hostname plus uid binds the credentials file to this user
// on this host; the random salt file prevents precomputed dictionaries.
func machineSecret() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "localhost"
	}
	return fmt.Sprintf("%s|uid:%d", hostname, os.Getuid())
}

// loadOrCreateSalt reads the salt file, creating it on first use.
func (s *Store) loadOrCreateSalt() ([]byte, error) {
	salt, err := os.ReadFile(s.saltPath())
	if err == nil && len(salt) == SaltSize {
		return salt, nil
	}

	salt, err = GenerateSalt()
	if err != nil {
		return nil, err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFileWithDir(s.saltPath(), salt, 0600, 0700); err != nil {
		return nil, fmt.Errorf("failed to write salt file: %w", err)
	}
	return salt, nil
}

// =============================================================================
// STORE OPERATIONS
// =============================================================================

// Set seals the API key and writes it to the credentials file.
func (s *Store) Set(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrEmptyKey
	}

	salt, err := s.loadOrCreateSalt()
	if err != nil {
		return err
	}

	derived := DeriveKey(machineSecret(), salt)
	// SECURITY: Zero key material to prevent memory disclosure
	defer ZeroBytes(derived)

	sealed, err := seal(derived, []byte(apiKey))
	if err != nil {
		return err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFileWithDir(s.Path(), []byte(sealed), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Get returns the active API key. The environment wins over the file so a
// shell-scoped key can be tried without touching the stored one.
func (s *Store) Get() (string, error) {
	if key, _ := envAPIKey(); key != "" {
		return key, nil
	}

	path := s.Path()
	ensureSecurePermissions(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoKey
		}
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}

	salt, err := os.ReadFile(s.saltPath())
	if err != nil {
		return "", fmt.Errorf("credentials salt unreadable: %w", ErrDecryptFailed)
	}

	derived := DeriveKey(machineSecret(), salt)
	// SECURITY: Zero key material to prevent memory disclosure
	defer ZeroBytes(derived)

	plaintext, err := unseal(derived, strings.TrimSpace(string(data)))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// Clear removes the credentials and salt files. Clearing an empty store is
// not an error.
func (s *Store) Clear() error {
	for _, path := range []string{s.Path(), s.saltPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// =============================================================================
// STATUS
// =============================================================================

// Status describes the active key for display without exposing it.
type Status struct {
	Configured    bool   `json:"configured"`
	Source        string `json:"source,omitempty"` // "env:GEMINI_API_KEY", "env:GEMRUN_API_KEY", "file"
	Path          string `json:"path"`
	Masked        string `json:"masked,omitempty"`
	Algorithm     string `json:"algorithm"`      // "AES-256-GCM"
	KeyDerivation string `json:"key_derivation"` // "PBKDF2-SHA-256"
}

// Status reports where the active key comes from and its masked form.
func (s *Store) Status() Status {
	st := Status{
		Path:          s.Path(),
		Algorithm:     "AES-256-GCM",
		KeyDerivation: "PBKDF2-SHA-256",
	}

	if key, name := envAPIKey(); key != "" {
		st.Configured = true
		st.Source = "env:" + name
		st.Masked = MaskKey(key)
		return st
	}

	key, err := s.Get()
	if err != nil {
		return st
	}
	st.Configured = true
	st.Source = "file"
	st.Masked = MaskKey(key)
	return st
}

// MaskKey renders an API key safe to print: first four and last four
// characters with the middle elided. Short keys are fully starred.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// envAPIKey returns the API key from the environment and the variable that
// supplied it, or empty strings when unset.
func envAPIKey() (string, string) {
	for _, name := range []string{EnvAPIKey, EnvAPIKeyAlt} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, name
		}
	}
	return "", ""
}

// ensureSecurePermissions tightens the credentials file to 0600 if a prior
// process left it wider.
// SECURITY: The sealed key is still secret material; keep it owner-only.
func ensureSecurePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.Mode().Perm() != 0600 {
		_ = os.Chmod(path, 0600)
	}
}

// =============================================================================
// SEALING
// =============================================================================

// seal encrypts plaintext with AES-256-GCM and encodes it for the file.
// Output format: ENC:base64(nonce || ciphertext || tag).
//
// The nonce is random. The store seals one short record per `gemrun auth
// set`, so the 96-bit random nonce collision bound is nowhere near reached.
func seal(key, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// unseal decodes and decrypts a sealed value produced by seal.
func unseal(key []byte, value string) ([]byte, error) {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return nil, ErrInvalidCiphertext
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64", ErrInvalidCiphertext)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	if len(raw) < gcm.NonceSize() {
		return nil, ErrInvalidCiphertext
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
