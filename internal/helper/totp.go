// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package helper

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRCodeSize is the edge length in pixels of generated QR codes.
const QRCodeSize = 256

// GenerateTOTPQRCodePNG renders a provisioning URI as a PNG QR code.
func GenerateTOTPQRCodePNG(uri string) ([]byte, error) {
	if uri == "" {
		return nil, fmt.Errorf("failed to generate QR code: empty provisioning URI")
	}
	png, err := qrcode.Encode(uri, qrcode.Medium, QRCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// GenerateTOTPQRCode renders a provisioning URI as a base64 encoded PNG QR code, ready
// to be embedded in a data URL by the client.
func GenerateTOTPQRCode(uri string) (string, error) {
	png, err := GenerateTOTPQRCodePNG(uri)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
