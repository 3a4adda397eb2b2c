/*
Package history records recommendation outcomes in the background.

The Tracker is a recommend.Observer: each finished request is turned into an
Event and queued without blocking the caller. A worker batches queued events
into storage. The log is analytics only; nothing reads it back into ranking.
*/
package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/khanglvm/gift-hub/internal/storage"
)

// Event is one recorded recommendation.
type Event struct {
	// RequestID uniquely identifies the request.
	RequestID string

	// QueryHash is the SHA256 hash of the intent sentence.
	QueryHash string

	Timestamp  time.Time
	Outcome    string
	BundleSize int
	TotalCost  int
	Duration   time.Duration
}

// NewEvent builds an Event from a service outcome.
func NewEvent(o recommend.Outcome) Event {
	return Event{
		RequestID:  uuid.NewString(),
		QueryHash:  storage.HashQuery(o.Query),
		Timestamp:  time.Now(),
		Outcome:    o.Kind,
		BundleSize: o.BundleSize,
		TotalCost:  o.TotalCost,
		Duration:   o.Duration,
	}
}

// ToStorage converts the event to its storage record.
func (e Event) ToStorage() storage.RecommendationRecord {
	return storage.RecommendationRecord{
		RequestID:  e.RequestID,
		QueryHash:  e.QueryHash,
		Timestamp:  e.Timestamp,
		Outcome:    e.Outcome,
		BundleSize: e.BundleSize,
		TotalCost:  e.TotalCost,
		DurationMS: e.Duration.Milliseconds(),
	}
}
