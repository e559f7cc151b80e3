package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// InterestSubmissionTableName is the fixed table contract shared with other writers of the store.
	InterestSubmissionTableName = "interest_submissions"

	// UndefinedCategory labels records whose category column is absent.
	UndefinedCategory = "undefined"

	submissionNameMaxLength     = 200
	submissionEmailMaxLength    = 320
	submissionCategoryMaxLength = 100
	submissionMessageMaxLength  = 4000

	submissionFieldName       = "name"
	submissionFieldEmail      = "email"
	submissionFieldWatchModel = "watch_model"
	submissionFieldTopFeature = "top_feature"
)

var (
	ErrMissingSubmissionField   = errors.New("missing_submission_field")
	ErrMissingSubmissionCreated = errors.New("missing_submission_created_at")
)

// InterestSubmission is one lead-capture entry. Rows are append-only.
type InterestSubmission struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"column:name;not null;size:200" json:"name"`
	Email      string    `gorm:"column:email;not null;size:320" json:"email"`
	WatchModel *string   `gorm:"column:watch_model;size:100" json:"watch_model"`
	TopFeature *string   `gorm:"column:top_feature;size:100" json:"top_feature"`
	Message    string    `gorm:"column:message;size:4000" json:"message"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

// TableName pins the table name instead of the gorm pluralization.
func (InterestSubmission) TableName() string {
	return InterestSubmissionTableName
}

// WatchModelLabel returns the watch model category or UndefinedCategory when absent.
func (submission InterestSubmission) WatchModelLabel() string {
	return categoryLabel(submission.WatchModel)
}

// TopFeatureLabel returns the feature category or UndefinedCategory when absent.
func (submission InterestSubmission) TopFeatureLabel() string {
	return categoryLabel(submission.TopFeature)
}

// InterestSubmissionInput holds the raw form values.
type InterestSubmissionInput struct {
	Name       string
	Email      string
	WatchModel string
	TopFeature string
	Message    string
	CreatedAt  time.Time
}

// NewInterestSubmission constructs a submission from trimmed form values. Only presence is checked.
func NewInterestSubmission(input InterestSubmissionInput) (InterestSubmission, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	watchModel := strings.TrimSpace(input.WatchModel)
	topFeature := strings.TrimSpace(input.TopFeature)

	requiredFields := []struct {
		name  string
		value string
	}{
		{name: submissionFieldName, value: name},
		{name: submissionFieldEmail, value: email},
		{name: submissionFieldWatchModel, value: watchModel},
		{name: submissionFieldTopFeature, value: topFeature},
	}
	for _, field := range requiredFields {
		if field.value == "" {
			return InterestSubmission{}, fmt.Errorf("%w: %s", ErrMissingSubmissionField, field.name)
		}
	}
	if input.CreatedAt.IsZero() {
		return InterestSubmission{}, ErrMissingSubmissionCreated
	}

	watchModel = truncateString(watchModel, submissionCategoryMaxLength)
	topFeature = truncateString(topFeature, submissionCategoryMaxLength)

	return InterestSubmission{
		ID:         uuid.NewString(),
		Name:       truncateString(name, submissionNameMaxLength),
		Email:      truncateString(email, submissionEmailMaxLength),
		WatchModel: &watchModel,
		TopFeature: &topFeature,
		Message:    truncateString(strings.TrimSpace(input.Message), submissionMessageMaxLength),
		CreatedAt:  input.CreatedAt.UTC(),
	}, nil
}

func categoryLabel(value *string) string {
	if value == nil {
		return UndefinedCategory
	}
	return *value
}

// truncateString keeps at most max characters. Column sizes count characters, not bytes,
// and a cut never lands inside a multi-byte rune.
func truncateString(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runeCount := 0
	for byteIndex := range value {
		if runeCount == max {
			return value[:byteIndex]
		}
		runeCount++
	}
	return value
}
