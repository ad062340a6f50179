// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package oath

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"strings"
)

// SecretLength is the number of base32 symbols in a generated secret (160 bits).
const SecretLength = 32

// GenerateSecret returns a new shared secret of SecretLength symbols drawn uniformly
// from Alphabet using crypto/rand.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}

	// 256 is a multiple of 32, so masking keeps the distribution uniform
	var sb strings.Builder
	sb.Grow(SecretLength)
	for _, b := range buf {
		sb.WriteByte(Alphabet[b&0x1f])
	}
	return sb.String(), nil
}

// ProvisioningURI builds the otpauth URI scanned by authenticator apps.
func ProvisioningURI(secret, account, issuer string) string {
	i := escapeComponent(issuer)
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		i, escapeComponent(account), secret, i)
}

// escapeComponent percent-encodes s for use in a URI, spaces become %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
