package countdown

import (
	"context"
	"time"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/task"
)

// TickInterval is the countdown refresh cadence.
const TickInterval = time.Second

// TextSurface receives text updates for named fields.
type TextSurface interface {
	SetText(fieldID string, value string)
}

// TimerOption customizes a Timer.
type TimerOption func(*Timer)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) TimerOption {
	return func(timer *Timer) {
		if clock != nil {
			timer.clock = clock
		}
	}
}

// WithTickInterval overrides the one second cadence.
func WithTickInterval(interval time.Duration) TimerOption {
	return func(timer *Timer) {
		if interval > 0 {
			timer.interval = interval
		}
	}
}

// Timer renders the countdown once on start and then every tick until stopped.
type Timer struct {
	target    time.Time
	surface   TextSurface
	clock     func() time.Time
	interval  time.Duration
	scheduler *task.Scheduler
}

func NewTimer(target time.Time, surface TextSurface, options ...TimerOption) *Timer {
	timer := &Timer{
		target:   target,
		surface:  surface,
		clock:    time.Now,
		interval: TickInterval,
	}
	for _, option := range options {
		if option != nil {
			option(timer)
		}
	}
	timer.scheduler = task.NewScheduler(timer.interval, func(context.Context) {
		timer.Tick()
	}, task.WithImmediateRun())
	return timer
}

// Tick computes the countdown against the clock and writes the four fields.
func (timer *Timer) Tick() Remaining {
	remaining := Compute(timer.target, timer.clock())
	if timer.surface == nil {
		return remaining
	}
	display := remaining.Display()
	timer.surface.SetText(FieldDays, display.Days)
	timer.surface.SetText(FieldHours, display.Hours)
	timer.surface.SetText(FieldMinutes, display.Minutes)
	timer.surface.SetText(FieldSeconds, display.Seconds)
	return remaining
}

// Start begins ticking; the first tick happens immediately.
func (timer *Timer) Start(ctx context.Context) {
	timer.scheduler.Start(ctx)
}

// Stop ends the ticking and waits for an in-flight tick.
func (timer *Timer) Stop() {
	timer.scheduler.Stop()
}
