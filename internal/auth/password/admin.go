// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package password

import (
	"crypto/sha256"
	"crypto/subtle"
)

// AdminVerifier checks the single admin password. Hash takes precedence over Plain.
type AdminVerifier struct {
	Hash  string
	Plain string
}

// Configured reports whether a hash or a plaintext password is set.
func (a AdminVerifier) Configured() bool {
	return a.Hash != "" || a.Plain != ""
}

// UsesPlaintext reports whether the verifier falls back to a plaintext password.
func (a AdminVerifier) UsesPlaintext() bool {
	return a.Hash == "" && a.Plain != ""
}

// VerifyPassword returns nil when password matches.
func (a AdminVerifier) VerifyPassword(password string) error {
	switch {
	case a.Hash != "":
		v := DetermineValidatorAlgorithm(a.Hash)
		if v == nil {
			return ErrUnknownHashAlgorithm
		}
		return v.ValidateHash(a.Hash, password)
	case a.Plain != "":
		// hash both sides so the comparison does not leak the length
		want := sha256.Sum256([]byte(a.Plain))
		got := sha256.Sum256([]byte(password))
		if subtle.ConstantTimeCompare(want[:], got[:]) == 1 {
			return nil
		}
		return ErrMismatchedHashAndPassword
	default:
		return ErrNotConfigured
	}
}
