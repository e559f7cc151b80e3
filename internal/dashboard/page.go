package dashboard

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/task"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

const (
	FieldTotalSubmissions = "totalSubmissions"
	FieldLast24Hours      = "last24Hours"
	FieldTopWatch         = "topWatch"
	FieldTopFeature       = "topFeature"

	// ErrorPlaceholder replaces every summary number after a failed fetch.
	ErrorPlaceholder = "Error"
	// NonePlaceholder is shown for a top entry when there are no records.
	NonePlaceholder = "-"

	// DefaultRefreshInterval is the polling cadence of an open dashboard.
	DefaultRefreshInterval = 30 * time.Second
)

var summaryFields = []string{FieldTotalSubmissions, FieldLast24Hours, FieldTopWatch, FieldTopFeature}

// Presenter is everything a dashboard page draws on.
type Presenter interface {
	ChartPresenter
	theme.Surface
	SetText(fieldID string, value string)
}

// PageConfig wires a Page.
type PageConfig struct {
	Source          SubmissionSource
	Presenter       Presenter
	ThemeStore      theme.Store
	Logger          *zap.Logger
	RefreshInterval time.Duration
	Summary         SummarizeOptions
	Clock           func() time.Time
}

// Page is one open dashboard: it polls the store, presents each snapshot and
// keeps the charts styled for the active theme.
type Page struct {
	presenter  Presenter
	logger     *zap.Logger
	aggregator *Aggregator
	charts     *ChartRenderer
	preference *theme.Preference
	scheduler  *task.Scheduler

	sequence   atomic.Uint64
	applyMutex sync.Mutex
	last       *Snapshot
}

func NewPage(config PageConfig) *Page {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := config.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	page := &Page{
		presenter:  config.Presenter,
		logger:     logger,
		aggregator: NewAggregator(config.Source, logger, config.Clock, config.Summary),
		charts:     NewChartRenderer(config.Presenter),
		preference: theme.NewPreference(config.ThemeStore, config.Presenter),
	}
	page.preference.Subscribe(page.charts.Retheme)
	page.scheduler = task.NewScheduler(interval, func(ctx context.Context) {
		page.Refresh(ctx)
	}, task.WithImmediateRun())
	return page
}

// Start applies the stored theme, mounts the charts and begins polling with an immediate first fetch.
func (page *Page) Start(ctx context.Context) {
	page.charts.Init(page.preference.Stored())
	page.preference.Init()
	page.scheduler.Start(ctx)
}

// Stop ends polling and waits for an in-flight refresh.
func (page *Page) Stop() {
	page.scheduler.Stop()
}

// RefreshNow asks the polling loop for an early refresh.
func (page *Page) RefreshNow() {
	page.scheduler.Trigger()
}

// Refresh fetches once and presents the result unless a newer fetch was issued meanwhile.
// It reports whether the result was applied.
func (page *Page) Refresh(ctx context.Context) bool {
	token := page.sequence.Add(1)
	records, fetchErr := page.aggregator.Fetch(ctx)

	page.applyMutex.Lock()
	defer page.applyMutex.Unlock()
	if token != page.sequence.Load() {
		page.logger.Debug("dashboard_stale_fetch_discarded", zap.Uint64("token", token))
		return false
	}
	if fetchErr != nil {
		page.presentError()
		return true
	}
	snapshot := page.aggregator.Summarize(records)
	page.presentSnapshot(snapshot)
	page.last = &snapshot
	return true
}

// LastSnapshot returns the most recently presented snapshot.
func (page *Page) LastSnapshot() (Snapshot, bool) {
	page.applyMutex.Lock()
	defer page.applyMutex.Unlock()
	if page.last == nil {
		return Snapshot{}, false
	}
	return *page.last, true
}

// Theme returns the active theme.
func (page *Page) Theme() theme.Theme {
	return page.preference.Current()
}

// SetTheme switches the theme and restyles the mounted charts in place.
func (page *Page) SetTheme(next theme.Theme) {
	page.preference.Set(next)
}

// ToggleTheme flips between light and dark and returns the new theme.
func (page *Page) ToggleTheme() theme.Theme {
	return page.preference.Toggle()
}

func (page *Page) presentSnapshot(snapshot Snapshot) {
	if page.presenter != nil {
		page.presenter.SetText(FieldTotalSubmissions, strconv.Itoa(snapshot.Total))
		page.presenter.SetText(FieldLast24Hours, strconv.Itoa(snapshot.Last24Hours))
		page.presenter.SetText(FieldTopWatch, displayTop(snapshot.TopModel()))
		page.presenter.SetText(FieldTopFeature, displayTop(snapshot.TopFeature()))
	}
	page.charts.Update(snapshot)
}

func (page *Page) presentError() {
	if page.presenter == nil {
		return
	}
	for _, fieldID := range summaryFields {
		page.presenter.SetText(fieldID, ErrorPlaceholder)
	}
}

func displayTop(label string, found bool) string {
	if !found {
		return NonePlaceholder
	}
	return label
}
