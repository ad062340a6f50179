// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package oath

import "strings"

// Alphabet is the RFC 4648 base32 alphabet used for shared secrets.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// DecodeSecret decodes a base32 secret leniently. Input is case-insensitive, trailing
// padding is removed and characters outside the alphabet are skipped. Bits that do not
// fill a whole byte are dropped. It never fails: malformed input decodes to a shorter
// key that simply never produces matching codes.
func DecodeSecret(secret string) []byte {
	s := strings.TrimRight(strings.ToUpper(secret), "=")

	out := make([]byte, 0, len(s)*5/8)
	var buffer uint32
	var bits uint

	for i := 0; i < len(s); i++ {
		v := strings.IndexByte(Alphabet, s[i])
		if v < 0 {
			continue
		}
		buffer = buffer<<5 | uint32(v) // nolint:gosec // v is in [0, 31]
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
			buffer &= 1<<bits - 1
		}
	}

	return out
}

// IsCanonicalSecret reports whether secret consists only of alphabet symbols, ignoring
// case and trailing padding. A non-canonical secret still decodes, but usually means
// it was mistyped.
func IsCanonicalSecret(secret string) bool {
	s := strings.TrimRight(strings.ToUpper(secret), "=")
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
