package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
)

const (
	errorMessageNilDatabase      = "storage: nil database"
	errorMessageInsertSubmission = "storage: insert submission"
	errorMessageListSubmissions  = "storage: list submissions"
	submissionsOrderNewestFirst  = "created_at desc"
)

// ErrNilDatabase indicates the store was built without a database handle.
var ErrNilDatabase = errors.New(errorMessageNilDatabase)

// SubmissionStore persists interest submissions in the interest_submissions table.
type SubmissionStore struct {
	database *gorm.DB
}

// NewSubmissionStore wraps a gorm database handle.
func NewSubmissionStore(database *gorm.DB) *SubmissionStore {
	return &SubmissionStore{database: database}
}

// InsertSubmission appends one record. Duplicate submissions are stored as separate rows.
func (store *SubmissionStore) InsertSubmission(ctx context.Context, submission model.InterestSubmission) error {
	if store == nil || store.database == nil {
		return ErrNilDatabase
	}
	if submission.ID == "" {
		submission.ID = NewID()
	}
	if err := store.database.WithContext(ctx).Create(&submission).Error; err != nil {
		return fmt.Errorf("%s: %w", errorMessageInsertSubmission, err)
	}
	return nil
}

// ListSubmissions returns every record ordered by created_at, newest first.
func (store *SubmissionStore) ListSubmissions(ctx context.Context) ([]model.InterestSubmission, error) {
	if store == nil || store.database == nil {
		return nil, ErrNilDatabase
	}
	var submissions []model.InterestSubmission
	if err := store.database.WithContext(ctx).
		Order(submissionsOrderNewestFirst).
		Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageListSubmissions, err)
	}
	return submissions, nil
}
