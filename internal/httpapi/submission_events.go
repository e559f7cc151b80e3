package httpapi

import (
	"sync"
	"time"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
)

// SubmissionEvent announces a stored interest submission to live dashboards.
type SubmissionEvent struct {
	SubmissionID string
	WatchModel   string
	TopFeature   string
	CreatedAt    time.Time
}

// SubmissionEventBroadcaster fan-outs submission events to subscribed streams.
type SubmissionEventBroadcaster struct {
	mutex        sync.Mutex
	nextID       int64
	subscribers  map[int64]chan SubmissionEvent
	closed       bool
	bufferLength int
}

const submissionEventDefaultBuffer = 8

// NewSubmissionEventBroadcaster constructs a broadcaster for submission events.
func NewSubmissionEventBroadcaster() *SubmissionEventBroadcaster {
	return &SubmissionEventBroadcaster{
		subscribers:  make(map[int64]chan SubmissionEvent),
		bufferLength: submissionEventDefaultBuffer,
	}
}

// Subscribe returns a subscription that streams submission events.
func (broadcaster *SubmissionEventBroadcaster) Subscribe() *SubmissionEventSubscription {
	if broadcaster == nil {
		return nil
	}
	broadcaster.mutex.Lock()
	defer broadcaster.mutex.Unlock()
	if broadcaster.closed {
		return nil
	}
	subscriptionID := broadcaster.nextID
	broadcaster.nextID++
	eventChannel := make(chan SubmissionEvent, broadcaster.bufferLength)
	broadcaster.subscribers[subscriptionID] = eventChannel
	return &SubmissionEventSubscription{
		broadcaster: broadcaster,
		identifier:  subscriptionID,
		events:      eventChannel,
	}
}

// Broadcast delivers the event to all active subscribers. Full subscriber buffers drop the event.
func (broadcaster *SubmissionEventBroadcaster) Broadcast(event SubmissionEvent) {
	if broadcaster == nil {
		return
	}
	broadcaster.mutex.Lock()
	defer broadcaster.mutex.Unlock()
	if broadcaster.closed || len(broadcaster.subscribers) == 0 {
		return
	}
	for _, channel := range broadcaster.subscribers {
		select {
		case channel <- event:
		default:
		}
	}
}

// BroadcastSubmission adapts a stored record into an event; it is used as the submitter hook.
func (broadcaster *SubmissionEventBroadcaster) BroadcastSubmission(submission model.InterestSubmission) {
	timestamp := submission.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	broadcaster.Broadcast(SubmissionEvent{
		SubmissionID: submission.ID,
		WatchModel:   submission.WatchModelLabel(),
		TopFeature:   submission.TopFeatureLabel(),
		CreatedAt:    timestamp,
	})
}

// Close stops the broadcaster and closes all subscriber channels.
func (broadcaster *SubmissionEventBroadcaster) Close() {
	if broadcaster == nil {
		return
	}
	broadcaster.mutex.Lock()
	if broadcaster.closed {
		broadcaster.mutex.Unlock()
		return
	}
	broadcaster.closed = true
	for identifier, channel := range broadcaster.subscribers {
		close(channel)
		delete(broadcaster.subscribers, identifier)
	}
	broadcaster.mutex.Unlock()
}

func (broadcaster *SubmissionEventBroadcaster) remove(identifier int64) {
	broadcaster.mutex.Lock()
	channel, exists := broadcaster.subscribers[identifier]
	if exists {
		delete(broadcaster.subscribers, identifier)
		close(channel)
	}
	broadcaster.mutex.Unlock()
}

// SubmissionEventSubscription represents a single subscriber to submission events.
type SubmissionEventSubscription struct {
	broadcaster *SubmissionEventBroadcaster
	identifier  int64
	events      chan SubmissionEvent
	once        sync.Once
}

// Events exposes the receive-only event channel. A nil subscription yields a nil channel.
func (subscription *SubmissionEventSubscription) Events() <-chan SubmissionEvent {
	if subscription == nil {
		return nil
	}
	return subscription.events
}

// Close unregisters the subscription and closes its channel.
func (subscription *SubmissionEventSubscription) Close() {
	if subscription == nil {
		return
	}
	subscription.once.Do(func() {
		if subscription.broadcaster != nil {
			subscription.broadcaster.remove(subscription.identifier)
		}
	})
}
