// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// This file needs to be manually updated with the new queries based on the file querier.go

// Package models contains the database models
package models

import (
	"context"

	"github.com/promptsmith/promptsmith-api/internal/metrics"
)

// Service is a wrapper around the database queries that records storage metrics
type Service struct {
	db      Querier
	metrics *metrics.SystemHealthMetrics
}

var _ Querier = (*Service)(nil)

// NewService creates a new Service. m may be nil.
func NewService(db Querier, m *metrics.SystemHealthMetrics) *Service {
	return &Service{db: db, metrics: m}
}

// ListActiveAdvertisements lists active advertisements, most recently updated first
func (s *Service) ListActiveAdvertisements(ctx context.Context) (ads []Advertisement, err error) {
	err = s.metrics.MeasureStorageOperation(ctx, "list_active", func() error {
		ads, err = s.db.ListActiveAdvertisements(ctx)
		return err
	})
	return ads, err
}

// ListAdvertisements lists every advertisement, most recently updated first
func (s *Service) ListAdvertisements(ctx context.Context) (ads []Advertisement, err error) {
	err = s.metrics.MeasureStorageOperation(ctx, "list", func() error {
		ads, err = s.db.ListAdvertisements(ctx)
		return err
	})
	return ads, err
}

// GetAdvertisement gets an advertisement by ID
func (s *Service) GetAdvertisement(ctx context.Context, id string) (ad Advertisement, err error) {
	err = s.metrics.MeasureStorageOperation(ctx, "get", func() error {
		ad, err = s.db.GetAdvertisement(ctx, id)
		return err
	})
	return ad, err
}

// CreateAdvertisement creates a new advertisement
func (s *Service) CreateAdvertisement(ctx context.Context, arg CreateAdvertisementParams) (ad Advertisement, err error) {
	err = s.metrics.MeasureStorageOperation(ctx, "create", func() error {
		ad, err = s.db.CreateAdvertisement(ctx, arg)
		return err
	})
	return ad, err
}

// UpdateAdvertisement applies the set fields of arg and bumps updated_at
func (s *Service) UpdateAdvertisement(ctx context.Context, arg UpdateAdvertisementParams) (ad Advertisement, err error) {
	err = s.metrics.MeasureStorageOperation(ctx, "update", func() error {
		ad, err = s.db.UpdateAdvertisement(ctx, arg)
		return err
	})
	return ad, err
}

// DeleteAdvertisement deletes an advertisement and returns the number of deleted rows
func (s *Service) DeleteAdvertisement(ctx context.Context, id string) (n int64, err error) {
	err = s.metrics.MeasureStorageOperation(ctx, "delete", func() error {
		n, err = s.db.DeleteAdvertisement(ctx, id)
		return err
	})
	return n, err
}
