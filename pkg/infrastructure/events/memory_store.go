package events

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var _ EventStore = (*InMemoryEventStore)(nil)

// InMemoryEventStore is a bounded in-process journal. Once it holds more than its retention the
// oldest events are dropped from the journal and from their streams; versions and sequences keep
// counting. Handlers run on their own goroutines.
type InMemoryEventStore struct {
	mu          sync.RWMutex
	journal     []Record
	streams     map[string][]Record
	versions    map[string]int
	next        int
	retention   int
	subscribers map[string][]EventHandler

	running sync.WaitGroup
	logger  *zap.Logger
}

// StoreOption configures an InMemoryEventStore
type StoreOption func(*InMemoryEventStore)

// WithRetention bounds the journal to the most recent n events. n <= 0 keeps everything.
func WithRetention(n int) StoreOption {
	return func(s *InMemoryEventStore) {
		s.retention = n
	}
}

// NewInMemoryEventStore creates an empty journal
func NewInMemoryEventStore(logger *zap.Logger, opts ...StoreOption) *InMemoryEventStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InMemoryEventStore{
		streams:     make(map[string][]Record),
		versions:    make(map[string]int),
		subscribers: make(map[string][]EventHandler),
		logger:      logger.Named("events"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendEvent stamps the event with its stream version and journal sequence, stores it and
// notifies subscribers
func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	if streamID == "" {
		return fmt.Errorf("stream id cannot be empty")
	}

	s.mu.Lock()
	s.versions[streamID]++
	rec := Record{
		EventType:     event.Type(),
		Stream:        streamID,
		EventData:     event.Data(),
		EventTime:     event.Timestamp(),
		EventVersion:  s.versions[streamID],
		EventSequence: s.next,
	}
	s.next++
	s.journal = append(s.journal, rec)
	s.streams[streamID] = append(s.streams[streamID], rec)
	s.evict()

	var handlers []EventHandler
	for _, h := range s.subscribers[rec.EventType] {
		if h.CanHandle(rec.EventType) {
			handlers = append(handlers, h)
		}
	}
	s.running.Add(len(handlers))
	s.mu.Unlock()

	for _, h := range handlers {
		go s.dispatch(h, rec)
	}
	return nil
}

// evict drops the oldest events beyond the retention. The oldest journal event is always the
// head of its stream.
func (s *InMemoryEventStore) evict() {
	if s.retention <= 0 || len(s.journal) <= s.retention {
		return
	}
	drop := len(s.journal) - s.retention
	for _, rec := range s.journal[:drop] {
		rest := s.streams[rec.Stream][1:]
		if len(rest) == 0 {
			delete(s.streams, rec.Stream)
			continue
		}
		s.streams[rec.Stream] = rest
	}
	s.journal = s.journal[drop:]
}

func (s *InMemoryEventStore) dispatch(h EventHandler, rec Record) {
	defer s.running.Done()
	if err := h.Handle(rec); err != nil {
		s.logger.Error("event handler failed",
			zap.String("type", rec.EventType),
			zap.String("stream", rec.Stream),
			zap.Int("sequence", rec.EventSequence),
			zap.Error(err))
	}
}

// ReadEvents returns the retained events of a stream with version >= fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Event{}
	for _, rec := range s.streams[streamID] {
		if rec.EventVersion >= fromVersion {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ReadAllEvents returns the retained events with sequence >= fromSequence, oldest first
func (s *InMemoryEventStore) ReadAllEvents(fromSequence int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Event{}
	if len(s.journal) == 0 {
		return out, nil
	}
	start := fromSequence - s.journal[0].EventSequence
	if start < 0 {
		start = 0
	}
	for _, rec := range s.journal[min(start, len(s.journal)):] {
		out = append(out, rec)
	}
	return out, nil
}

// Len returns the number of retained events
func (s *InMemoryEventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.journal)
}

// Drain blocks until every handler dispatched so far has returned
func (s *InMemoryEventStore) Drain() {
	s.running.Wait()
}

// Subscribe registers handler for the given event types
func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range eventTypes {
		s.subscribers[t] = append(s.subscribers[t], handler)
	}
	return nil
}

// Unsubscribe removes handler from every event type. Handlers are matched by identity.
func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for t, handlers := range s.subscribers {
		kept := handlers[:0:0]
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[t] = kept
	}
	return nil
}
