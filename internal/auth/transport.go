// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the Gemini API key encrypted at rest.
//
// This file pins the TLS posture for outbound API traffic.
package auth

import "crypto/tls"

// =============================================================================
// TLS POSTURE
// =============================================================================

// MinTLSVersion is the minimum allowed TLS version (TLS 1.2).
const MinTLSVersion = tls.VersionTLS12

// ApprovedCipherSuites lists the TLS 1.2 cipher suites offered to the API.
// Only strong AEAD suites (AES-GCM, CHACHA20-POLY1305); no CBC, RC4, or 3DES.
// TLS 1.3 negotiates its own built-in suites and ignores this list.
var ApprovedCipherSuites = []uint16{
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
}
