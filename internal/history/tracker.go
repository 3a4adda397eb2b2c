package history

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/khanglvm/gift-hub/internal/storage"
	"go.uber.org/zap"
)

const (
	// eventQueueSize is the buffer size for the event queue.
	// If full, events are dropped (non-blocking).
	eventQueueSize = 1000

	// batchFlushSize is the number of events that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending events are flushed.
	flushInterval = 50 * time.Millisecond
)

// Recorder persists history records.
type Recorder interface {
	RecordRecommendation(rec storage.RecommendationRecord) error
}

// Tracker records recommendation outcomes in the background with non-blocking writes.
type Tracker struct {
	store      Recorder
	logger     *zap.Logger
	eventQueue chan Event
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
	dropped    atomic.Int64
}

var _ recommend.Observer = (*Tracker)(nil)

// NewTracker creates a tracker and starts its background worker.
func NewTracker(store Recorder, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		store:      store,
		logger:     logger,
		eventQueue: make(chan Event, eventQueueSize),
		stopChan:   make(chan struct{}),
	}

	t.wg.Add(1)
	go t.processEvents()

	return t
}

// Observe queues the outcome of a finished request.
func (t *Tracker) Observe(o recommend.Outcome) {
	t.Track(NewEvent(o))
}

// Track queues an event (non-blocking).
// If the queue is full, the event is dropped and a warning is logged.
func (t *Tracker) Track(event Event) {
	if t.store == nil {
		return
	}

	select {
	case t.eventQueue <- event:
	default:
		t.dropped.Add(1)
		t.logger.Warn("history queue full, dropping event", zap.String("request_id", event.RequestID))
	}
}

// Stop shuts down the tracker, flushing queued events.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.wg.Wait()
	})
}

// Dropped returns the number of events dropped on a full queue.
func (t *Tracker) Dropped() int64 {
	return t.dropped.Load()
}

// processEvents runs in the background, batching and flushing events.
func (t *Tracker) processEvents() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, batchFlushSize)

	for {
		select {
		case event := <-t.eventQueue:
			batch = append(batch, event)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]Event, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// Drain whatever is still queued, then exit.
			for {
				select {
				case event := <-t.eventQueue:
					batch = append(batch, event)
					if len(batch) >= batchFlushSize {
						t.flush(batch)
						batch = make([]Event, 0, batchFlushSize)
					}
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to storage.
func (t *Tracker) flush(events []Event) {
	for _, event := range events {
		if err := t.store.RecordRecommendation(event.ToStorage()); err != nil {
			t.logger.Warn("failed to record recommendation", zap.String("request_id", event.RequestID), zap.Error(err))
		}
	}
}

// QueueLen returns the current number of queued events.
func (t *Tracker) QueueLen() int {
	return len(t.eventQueue)
}
