// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package password provides password hashing and validation.
package password

import (
	"errors"
	"strings"
)

// Hasher is the interface that wraps the GenerateHash method.
type Hasher interface {
	GenerateHash(password string) (string, error)
}

// Validator is the interface that wraps the ValidateHash method.
type Validator interface {
	ValidateHash(passwordHash string, password string) error
}

var (
	// Bcrypt is the bcrypt implementation of the Hasher interface.
	Bcrypt = NewBcryptHasher(nil)
	// BcryptVal is the bcrypt implementation of the Validator interface.
	BcryptVal = BcryptValidator{}
	// DefaultHasher is the default hasher used by the package.
	DefaultHasher Hasher = Bcrypt
)

// GenerateHash generates a hash of the given password using the provided hasher algorithm.
func GenerateHash(h Hasher, password string) (string, error) {
	if h == nil {
		return "", errors.New("missing hasher")
	}
	return h.GenerateHash(password)
}

// IsBcryptHash reports whether hash looks like a modular crypt bcrypt hash.
func IsBcryptHash(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}

// DetermineValidatorAlgorithm determines the validator algorithm based on the given hash.
func DetermineValidatorAlgorithm(hash string) Validator {
	if IsBcryptHash(hash) {
		return BcryptVal
	}
	return nil
}

// ValidateHash validates the given password hash against the given password using the provided validator algorithm.
func ValidateHash(v Validator, hash string, password string) error {
	if v == nil {
		return errors.New("missing validator")
	}
	return v.ValidateHash(hash, password)
}
