// Package datastore persists estimation runs to SQLite for audit of
// production batches. Persistence is optional and off by default.
package datastore

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/timbermetrics/timbervol-go/internal/errors"
)

// Store wraps the SQLite-backed run archive.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the run archive at path and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open run archive: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("path", path).
			Build()
	}
	if err := db.AutoMigrate(&Run{}, &Result{}); err != nil {
		return nil, errors.New(fmt.Errorf("failed to migrate run archive: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun stores one estimation batch and returns its run ID. values must be
// parallel to codes and dbh; NaN entries are stored as null results.
func (s *Store) SaveRun(operation, volumeType string, codes []int, dbh, values []float64, duration time.Duration) (string, error) {
	run := Run{
		ID:         uuid.New().String(),
		Operation:  operation,
		VolumeType: volumeType,
		TreeCount:  len(codes),
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now(),
	}
	run.Results = make([]Result, len(codes))
	for i := range codes {
		result := Result{
			RunID:       run.ID,
			Row:         i,
			SpeciesCode: codes[i],
			DBH:         dbh[i],
		}
		if math.IsNaN(values[i]) {
			run.Missing++
		} else {
			v := values[i]
			result.Value = &v
		}
		run.Results[i] = result
	}

	if err := s.db.Create(&run).Error; err != nil {
		return "", errors.New(fmt.Errorf("failed to save run: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", operation).
			Build()
	}
	return run.ID, nil
}

// GetRun loads a run and its per-tree results, ordered by input row.
func (s *Store) GetRun(id string) (*Run, error) {
	var run Run
	err := s.db.Preload("Results", func(db *gorm.DB) *gorm.DB {
		return db.Order("row")
	}).First(&run, "id = ?", id).Error
	if err != nil {
		category := errors.CategoryDatabase
		if errors.Is(err, gorm.ErrRecordNotFound) {
			category = errors.CategoryNotFound
		}
		return nil, errors.New(fmt.Errorf("failed to load run %s: %w", id, err)).
			Component("datastore").
			Category(category).
			Build()
	}
	return &run, nil
}

// Runs returns the most recent runs, newest first, without results.
func (s *Store) Runs(limit int) ([]Run, error) {
	var runs []Run
	if err := s.db.Order("created_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, errors.New(fmt.Errorf("failed to list runs: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return runs, nil
}
