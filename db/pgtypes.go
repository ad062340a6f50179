// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package db defines the database types and functions.
package db

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// NewString returns a valid pgtype.Text
func NewString(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// NewOptString returns a pgtype.Text that is NULL when s is nil
func NewOptString(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return NewString(*s)
}

// NewOptBool returns a pgtype.Bool that is NULL when b is nil
func NewOptBool(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}

// NewTimestamptz returns a valid pgtype.Timestamptz
func NewTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// TimeOrZero returns the time held by ts, or the zero time when NULL
func TimeOrZero(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}
