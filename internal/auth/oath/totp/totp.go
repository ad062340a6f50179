// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package totp provides a time-based one-time password (TOTP) implementation.
package totp

import (
	"math"
	"time"

	"github.com/promptsmith/promptsmith-api/internal/auth/oath/hotp"
)

// Default parameters used for admin logins.
const (
	DefaultDigits   = 6
	DefaultInterval = 30
	DefaultSkew     = 1
)

// TOTP represents a Time-based One-Time Password
type TOTP struct {
	*hotp.HOTP
	interval uint64
	skew     uint8
}

// New creates a new TOTP instance. A zero interval falls back to DefaultInterval.
func New(seed string, digits int, interval uint64, skew uint8) *TOTP {
	if interval == 0 {
		interval = DefaultInterval
	}
	return &TOTP{HOTP: hotp.New(seed, digits), interval: interval, skew: skew}
}

// Counter returns the time step counter for t. Times before the epoch map to 0.
func (totp *TOTP) Counter(t time.Time) uint64 {
	if t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix()) / totp.interval // nolint:gosec // checked for negative values above
}

// Generate generates a new TOTP.
func (totp *TOTP) Generate() string {
	return totp.GenerateCustom(time.Now().UTC())
}

// GenerateCustom generates a new TOTP with a custom time.
func (totp *TOTP) GenerateCustom(t time.Time) string {
	return totp.HOTP.Generate(totp.Counter(t))
}

// Validate checks otp against the current time.
func (totp *TOTP) Validate(otp string) bool {
	return totp.ValidateCustom(otp, time.Now().UTC())
}

// ValidateCustom checks if the provided OTP is valid at t, tolerating skew steps on
// either side. The current step is tried first.
func (totp *TOTP) ValidateCustom(otp string, t time.Time) bool {
	if len(otp) != totp.Length() {
		return false
	}

	counter := totp.Counter(t)
	counters := make([]uint64, 0, 2*int(totp.skew)+1)
	counters = append(counters, counter)

	for i := 1; i <= int(totp.skew); i++ {
		delta := uint64(i) // nolint:gosec // i is bounded by skew
		if counter >= delta {
			counters = append(counters, counter-delta)
		}
		if delta <= math.MaxUint64-counter {
			counters = append(counters, counter+delta)
		}
	}

	for _, c := range counters {
		if totp.HOTP.Validate(otp, c) {
			return true
		}
	}
	return false
}
