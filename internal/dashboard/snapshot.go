package dashboard

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
)

const (
	// DefaultDayLabelLayout matches an en-US short date such as 4/15/2025.
	DefaultDayLabelLayout = "1/2/2006"

	recentWindow = 24 * time.Hour
)

// TimelineOrder selects how per-day buckets are ordered.
type TimelineOrder string

const (
	// TimelineOrderChronological sorts day buckets oldest first.
	TimelineOrderChronological TimelineOrder = "chronological"
	// TimelineOrderFirstSeen keeps the order in which days first appear in the newest-first fetch.
	TimelineOrderFirstSeen TimelineOrder = "first-seen"
)

// ParseTimelineOrder maps a configuration value onto a TimelineOrder.
func ParseTimelineOrder(raw string) (TimelineOrder, bool) {
	switch TimelineOrder(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TimelineOrderChronological:
		return TimelineOrderChronological, true
	case TimelineOrderFirstSeen:
		return TimelineOrderFirstSeen, true
	default:
		return "", false
	}
}

// CategoryCount is one row of a frequency table.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// FrequencyTable counts occurrences per label and remembers insertion order.
type FrequencyTable struct {
	entries []CategoryCount
	index   map[string]int
}

func (table *FrequencyTable) increment(label string) {
	table.add(label, 1)
}

func (table *FrequencyTable) add(label string, count int) {
	if table.index == nil {
		table.index = make(map[string]int)
	}
	position, found := table.index[label]
	if !found {
		table.index[label] = len(table.entries)
		table.entries = append(table.entries, CategoryCount{Label: label, Count: count})
		return
	}
	table.entries[position].Count += count
}

// Len returns the number of distinct labels.
func (table FrequencyTable) Len() int {
	return len(table.entries)
}

// Entries returns a copy of the rows in table order.
func (table FrequencyTable) Entries() []CategoryCount {
	return append([]CategoryCount{}, table.entries...)
}

// Labels returns the labels in table order.
func (table FrequencyTable) Labels() []string {
	labels := make([]string, 0, len(table.entries))
	for _, entry := range table.entries {
		labels = append(labels, entry.Label)
	}
	return labels
}

// Counts returns the counts in table order.
func (table FrequencyTable) Counts() []int {
	counts := make([]int, 0, len(table.entries))
	for _, entry := range table.entries {
		counts = append(counts, entry.Count)
	}
	return counts
}

// Count returns the count for label, zero when absent.
func (table FrequencyTable) Count(label string) int {
	position, found := table.index[label]
	if !found {
		return 0
	}
	return table.entries[position].Count
}

// Top returns the label with the highest count. Ties go to the earliest row.
func (table FrequencyTable) Top() (string, bool) {
	if len(table.entries) == 0 {
		return "", false
	}
	top := table.entries[0]
	for _, entry := range table.entries[1:] {
		if entry.Count > top.Count {
			top = entry
		}
	}
	return top.Label, true
}

func (table FrequencyTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(table.Entries())
}

// Snapshot is the summary of one fetch. It is never persisted.
type Snapshot struct {
	Total       int            `json:"total"`
	Last24Hours int            `json:"last_24_hours"`
	ByModel     FrequencyTable `json:"by_model"`
	ByFeature   FrequencyTable `json:"by_feature"`
	ByDay       FrequencyTable `json:"by_day"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// TopModel returns the most requested watch model, false when there are no records.
func (snapshot Snapshot) TopModel() (string, bool) {
	return snapshot.ByModel.Top()
}

// TopFeature returns the most requested feature, false when there are no records.
func (snapshot Snapshot) TopFeature() (string, bool) {
	return snapshot.ByFeature.Top()
}

// SummarizeOptions controls how day buckets are labelled and ordered.
type SummarizeOptions struct {
	Location       *time.Location
	DayLabelLayout string
	TimelineOrder  TimelineOrder
}

func (options SummarizeOptions) normalized() SummarizeOptions {
	if options.Location == nil {
		options.Location = time.Local
	}
	if strings.TrimSpace(options.DayLabelLayout) == "" {
		options.DayLabelLayout = DefaultDayLabelLayout
	}
	if options.TimelineOrder == "" {
		options.TimelineOrder = TimelineOrderChronological
	}
	return options
}

type dayBucket struct {
	label string
	start time.Time
	count int
}

// Summarize computes the snapshot for records fetched newest first, relative to now.
func Summarize(records []model.InterestSubmission, now time.Time, options SummarizeOptions) Snapshot {
	options = options.normalized()
	windowStart := now.Add(-recentWindow)

	snapshot := Snapshot{
		Total:       len(records),
		GeneratedAt: now,
	}

	var buckets []*dayBucket
	bucketsByLabel := make(map[string]*dayBucket)
	for _, record := range records {
		if record.CreatedAt.After(windowStart) {
			snapshot.Last24Hours++
		}
		snapshot.ByModel.increment(record.WatchModelLabel())
		snapshot.ByFeature.increment(record.TopFeatureLabel())

		localCreatedAt := record.CreatedAt.In(options.Location)
		label := localCreatedAt.Format(options.DayLabelLayout)
		bucket, found := bucketsByLabel[label]
		if !found {
			year, month, day := localCreatedAt.Date()
			bucket = &dayBucket{label: label, start: time.Date(year, month, day, 0, 0, 0, 0, options.Location)}
			bucketsByLabel[label] = bucket
			buckets = append(buckets, bucket)
		}
		bucket.count++
	}

	if options.TimelineOrder == TimelineOrderChronological {
		sort.SliceStable(buckets, func(first, second int) bool {
			return buckets[first].start.Before(buckets[second].start)
		})
	}
	for _, bucket := range buckets {
		snapshot.ByDay.add(bucket.label, bucket.count)
	}

	return snapshot
}
