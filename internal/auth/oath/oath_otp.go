// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package oath implements the building blocks shared by the HOTP and TOTP algorithms:
// the lenient base32 secret codec, the HMAC code engine and secret provisioning.
package oath

import (
	"crypto/hmac"

	// SHA1 is required by RFC 4226 (HOTP) and RFC 6238 (TOTP)
	// nolint:gosec // SHA1 is used as part of HMAC-SHA1 which is still secure for this use case
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"math"
)

// OTP derives one-time codes of a fixed length from a base32 seed.
type OTP struct {
	seed      string
	otpLength int
}

// New returns an OTP for seed. An empty seed is replaced by a freshly generated secret.
func New(seed string, otpLength int) OTP {
	if seed == "" {
		s, err := GenerateSecret()
		if err != nil {
			panic(err)
		}
		seed = s
	}
	return OTP{
		seed:      seed,
		otpLength: otpLength,
	}
}

// GenerateOTP returns the code for counter, left padded with zeros to the OTP length.
func (otp *OTP) GenerateOTP(counter uint64) string {
	s := ComputeMAC(DecodeSecret(otp.seed), CounterBytes(counter))
	o := s[len(s)-1] & 0xf
	v := binary.BigEndian.Uint32(s[o : o+4])
	v &= 0x7fffffff

	modulus := uint32(math.Pow10(otp.otpLength))
	code := v % modulus

	return fmt.Sprintf("%0*d", otp.otpLength, code)
}

// GetSeed returns the base32 seed.
func (otp *OTP) GetSeed() string {
	return otp.seed
}

// Length returns the number of digits of generated codes.
func (otp *OTP) Length() int {
	return otp.otpLength
}

// ComputeMAC returns the 20 byte HMAC-SHA1 of message under key. Any key length is accepted.
func ComputeMAC(key, message []byte) []byte {
	h := hmac.New(sha1.New, key)
	h.Write(message)
	return h.Sum(nil)
}

// CounterBytes encodes counter as 8 big-endian bytes.
func CounterBytes(counter uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, counter)
	return buf
}
