// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// BcryptConfig is the configuration for bcrypt hashing.
type BcryptConfig struct {
	// Cost is the bcrypt work factor, bcrypt.DefaultCost when zero.
	Cost int
}

// BcryptHasher is the bcrypt implementation of the Hasher interface.
type BcryptHasher struct {
	*BcryptConfig
}

// DefaultBcryptConfig is the default configuration for bcrypt hashing.
var DefaultBcryptConfig = &BcryptConfig{Cost: 12}

// NewBcryptHasher returns a new bcrypt hasher, config may be nil.
func NewBcryptHasher(config *BcryptConfig) *BcryptHasher {
	if config == nil {
		config = DefaultBcryptConfig
	}
	return &BcryptHasher{config}
}

// GenerateHash generates a bcrypt hash of the given password.
func (h *BcryptHasher) GenerateHash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// BcryptValidator is the bcrypt implementation of the Validator interface.
type BcryptValidator struct{}

// ValidateHash validates the given password hash against the given password.
func (v BcryptValidator) ValidateHash(passwordHash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedHashAndPassword
	}
	return err
}
