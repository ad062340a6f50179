// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package password

import "errors"

var (
	ErrMismatchedHashAndPassword = errors.New("mismatched password hash and password")
	ErrUnknownHashAlgorithm      = errors.New("unknown password hash algorithm")
	ErrNotConfigured             = errors.New("admin password is not configured")
)
