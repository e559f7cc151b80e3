// Package dashboard summarizes interest submissions and drives the live dashboard page.
package dashboard

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
)

// ErrNilSource indicates the aggregator was built without a submission source.
var ErrNilSource = errors.New("dashboard: nil submission source")

// SubmissionSource lists every stored submission, newest first.
type SubmissionSource interface {
	ListSubmissions(ctx context.Context) ([]model.InterestSubmission, error)
}

// Aggregator fetches the full record set and summarizes it.
type Aggregator struct {
	source  SubmissionSource
	logger  *zap.Logger
	clock   func() time.Time
	options SummarizeOptions
}

func NewAggregator(source SubmissionSource, logger *zap.Logger, clock func() time.Time, options SummarizeOptions) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{
		source:  source,
		logger:  logger,
		clock:   clock,
		options: options.normalized(),
	}
}

// Fetch returns the records. Failures are logged and returned unchanged.
func (aggregator *Aggregator) Fetch(ctx context.Context) ([]model.InterestSubmission, error) {
	if aggregator.source == nil {
		aggregator.logger.Error("dashboard_fetch_failed", zap.Error(ErrNilSource))
		return nil, ErrNilSource
	}
	records, err := aggregator.source.ListSubmissions(ctx)
	if err != nil {
		aggregator.logger.Error("dashboard_fetch_failed", zap.Error(err))
		return nil, err
	}
	return records, nil
}

// Summarize computes a snapshot of records relative to the aggregator clock.
func (aggregator *Aggregator) Summarize(records []model.InterestSubmission) Snapshot {
	return Summarize(records, aggregator.clock(), aggregator.options)
}

// Snapshot fetches and summarizes in one step.
func (aggregator *Aggregator) Snapshot(ctx context.Context) (Snapshot, error) {
	records, err := aggregator.Fetch(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return aggregator.Summarize(records), nil
}
