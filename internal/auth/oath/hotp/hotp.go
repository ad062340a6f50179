// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package hotp implements counter based one-time passwords (RFC 4226).
package hotp

import (
	"crypto/subtle"

	"github.com/promptsmith/promptsmith-api/internal/auth/oath"
)

// HOTP derives codes from a base32 seed and an explicit counter.
type HOTP struct {
	oath.OTP
}

// New returns an HOTP producing codes of length digits.
func New(seed string, length int) *HOTP {
	otp := oath.New(seed, length)
	return &HOTP{OTP: otp}
}

// Generate returns the code for counter.
func (h *HOTP) Generate(counter uint64) string {
	return h.GenerateOTP(counter)
}

// Validate compares otp with the code for counter as a fixed width string.
func (h *HOTP) Validate(otp string, counter uint64) bool {
	if len(otp) != h.Length() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(otp), []byte(h.Generate(counter))) == 1
}
