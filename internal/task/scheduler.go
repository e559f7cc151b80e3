package task

import (
	"context"
	"sync"
	"time"
)

const defaultSchedulerInterval = time.Minute

// RunnerFunc is invoked by the scheduler loop; it must return before the next run starts.
type RunnerFunc func(context.Context)

// SchedulerOption customizes a Scheduler.
type SchedulerOption func(*Scheduler)

// WithImmediateRun makes the loop run once as soon as it starts instead of waiting a full interval.
func WithImmediateRun() SchedulerOption {
	return func(scheduler *Scheduler) {
		scheduler.immediate = true
	}
}

// Scheduler runs a RunnerFunc on a fixed interval until stopped. Runs are never concurrent.
type Scheduler struct {
	interval     time.Duration
	runner       RunnerFunc
	immediate    bool
	trigger      chan struct{}
	controlMutex sync.Mutex
	cancel       context.CancelFunc
	done         chan struct{}
}

func NewScheduler(interval time.Duration, runner RunnerFunc, options ...SchedulerOption) *Scheduler {
	if interval <= 0 {
		interval = defaultSchedulerInterval
	}
	scheduler := &Scheduler{
		interval: interval,
		runner:   runner,
		trigger:  make(chan struct{}, 1),
	}
	for _, option := range options {
		if option != nil {
			option(scheduler)
		}
	}
	return scheduler
}

// Interval reports the delay between runs.
func (scheduler *Scheduler) Interval() time.Duration {
	if scheduler == nil {
		return 0
	}
	return scheduler.interval
}

// Start launches the loop. Calling Start on a running scheduler is a no-op.
func (scheduler *Scheduler) Start(ctx context.Context) {
	if scheduler == nil || scheduler.runner == nil {
		return
	}
	scheduler.controlMutex.Lock()
	if scheduler.cancel != nil {
		scheduler.controlMutex.Unlock()
		return
	}
	runtimeCtx, cancel := context.WithCancel(ctx)
	scheduler.cancel = cancel
	done := make(chan struct{})
	scheduler.done = done
	scheduler.controlMutex.Unlock()

	go scheduler.loop(runtimeCtx, done)
}

// Running reports whether the loop has been started and not stopped.
func (scheduler *Scheduler) Running() bool {
	if scheduler == nil {
		return false
	}
	scheduler.controlMutex.Lock()
	defer scheduler.controlMutex.Unlock()
	return scheduler.cancel != nil
}

// Trigger requests an early run. Requests made while a run is pending collapse into one.
func (scheduler *Scheduler) Trigger() {
	if scheduler == nil {
		return
	}
	select {
	case scheduler.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits for the in-flight run to return.
func (scheduler *Scheduler) Stop() {
	if scheduler == nil {
		return
	}
	scheduler.controlMutex.Lock()
	cancel := scheduler.cancel
	done := scheduler.done
	scheduler.cancel = nil
	scheduler.done = nil
	scheduler.controlMutex.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (scheduler *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	if scheduler.immediate {
		scheduler.run(ctx)
	}
	timer := time.NewTimer(scheduler.interval)
	defer timer.Stop()
	// Triggered runs leave the timer alone so early runs never postpone the next interval run.
	for {
		select {
		case <-ctx.Done():
			return
		case <-scheduler.trigger:
			scheduler.run(ctx)
		case <-timer.C:
			scheduler.run(ctx)
			timer.Reset(scheduler.interval)
		}
	}
}

func (scheduler *Scheduler) run(ctx context.Context) {
	if scheduler.runner == nil || ctx.Err() != nil {
		return
	}
	scheduler.runner(ctx)
}
