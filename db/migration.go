// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

package db

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/labstack/gommon/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationHandler runs the embedded migrations
type MigrationHandler struct {
	*migrate.Migrate
}

// NewMigrationHandler opens the embedded migrations against dbURI. The caller
// registers the database driver.
func NewMigrationHandler(dbURI string) (*MigrationHandler, error) {
	d, err := iofs.New(&migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", d, dbURI)
	if err != nil {
		return nil, err
	}

	return &MigrationHandler{m}, nil
}

// MigrationStep moves step migrations up (positive) or down (negative) and returns the resulting version
func (m *MigrationHandler) MigrationStep(step int) (uint, error) {
	direction := "up"
	if step < 0 {
		direction = "down"
	}

	if err := m.Steps(step); err != nil {
		return 0, fmt.Errorf("failed to run migration %s: %w", direction, err)
	}
	ver, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, err
	}
	return ver, nil
}

// RunMigrations applies all pending up migrations
func (m *MigrationHandler) RunMigrations() error {
	log.Info("Running database migrations")
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info("Database migration: NO CHANGE")
		return nil
	}
	log.Info("Database migration: SUCCESS")
	return nil
}

// ListMigrations returns the paths of the embedded migration files
func ListMigrations() ([]string, error) {
	var files []string
	err := fs.WalkDir(&migrationFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// ViewMigration returns the content of an embedded migration file, or nil when it does not exist
func ViewMigration(file string) []byte {
	f, _ := migrationFS.ReadFile(file)
	return f
}
