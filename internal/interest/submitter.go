// Package interest captures launch-interest submissions from the landing form.
package interest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
)

// NoticeKind distinguishes the two visual variants of the form notice.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"

	// SuccessMessage is shown after the record has been stored.
	SuccessMessage = "Thank you for your interest! We'll keep you updated."
	// FailureMessage is shown for any failure. The cause is only logged.
	FailureMessage = "There was an error submitting the form. Please try again later."
)

// ErrNilStore indicates the submitter was built without a store.
var ErrNilStore = errors.New("interest: nil submission store")

// Fields are the raw form values in the order the form collects them.
type Fields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	WatchModel string `json:"watchModel"`
	TopFeature string `json:"topFeature"`
	Message    string `json:"message"`
}

// Store appends submissions.
type Store interface {
	InsertSubmission(ctx context.Context, submission model.InterestSubmission) error
}

// FormSurface is the form the submitter reports back to.
type FormSurface interface {
	ShowNotice(kind NoticeKind, message string)
	ResetForm()
}

// SubmittedHook runs after a record is stored.
type SubmittedHook func(model.InterestSubmission)

// Option customizes a Submitter.
type Option func(*Submitter)

// WithClock replaces time.Now for the created_at stamp.
func WithClock(clock func() time.Time) Option {
	return func(submitter *Submitter) {
		if clock != nil {
			submitter.clock = clock
		}
	}
}

// WithSubmittedHook registers a callback invoked after each successful insert.
func WithSubmittedHook(hook SubmittedHook) Option {
	return func(submitter *Submitter) {
		if hook != nil {
			submitter.hooks = append(submitter.hooks, hook)
		}
	}
}

// Submitter turns form values into stored records.
type Submitter struct {
	store  Store
	logger *zap.Logger
	clock  func() time.Time
	hooks  []SubmittedHook
}

func NewSubmitter(store Store, logger *zap.Logger, options ...Option) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	submitter := &Submitter{
		store:  store,
		logger: logger,
		clock:  time.Now,
	}
	for _, option := range options {
		if option != nil {
			option(submitter)
		}
	}
	return submitter
}

// Submit stores one record built from fields. On success the form is reset and
// the success notice shown; on failure only the generic notice is shown and the
// values are kept. The returned error carries the cause for the caller.
func (submitter *Submitter) Submit(ctx context.Context, fields Fields, form FormSurface) (model.InterestSubmission, error) {
	submission, err := submitter.persist(ctx, fields)
	if err != nil {
		submitter.logger.Warn("interest_submission_failed", zap.Error(err))
		if form != nil {
			form.ShowNotice(NoticeError, FailureMessage)
		}
		return model.InterestSubmission{}, err
	}

	submitter.logger.Info("interest_submission_stored",
		zap.String("submission_id", submission.ID),
		zap.String("watch_model", submission.WatchModelLabel()),
		zap.String("top_feature", submission.TopFeatureLabel()),
	)
	if form != nil {
		form.ResetForm()
		form.ShowNotice(NoticeSuccess, SuccessMessage)
	}
	for _, hook := range submitter.hooks {
		hook(submission)
	}
	return submission, nil
}

func (submitter *Submitter) persist(ctx context.Context, fields Fields) (model.InterestSubmission, error) {
	if submitter.store == nil {
		return model.InterestSubmission{}, ErrNilStore
	}
	submission, err := model.NewInterestSubmission(model.InterestSubmissionInput{
		Name:       fields.Name,
		Email:      fields.Email,
		WatchModel: fields.WatchModel,
		TopFeature: fields.TopFeature,
		Message:    fields.Message,
		CreatedAt:  submitter.clock(),
	})
	if err != nil {
		return model.InterestSubmission{}, err
	}
	if err := submitter.store.InsertSubmission(ctx, submission); err != nil {
		return model.InterestSubmission{}, err
	}
	return submission, nil
}
