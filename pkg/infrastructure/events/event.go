package events

import (
	"time"
)

// Event is an immutable fact recorded after durable state changed
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	// Version is the event's position within its stream, starting at 1
	Version() int
	// Sequence is the event's position in the whole journal, starting at 0
	Sequence() int
}

// EventHandler reacts to appended events of the types it can handle
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends events to streams and dispatches them to subscribers by type
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromSequence int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// Record is the stored form of an event and its JSON representation
type Record struct {
	EventType     string      `json:"type"`
	Stream        string      `json:"stream_id"`
	EventData     interface{} `json:"data"`
	EventTime     time.Time   `json:"timestamp"`
	EventVersion  int         `json:"version"`
	EventSequence int         `json:"sequence"`
}

func (r Record) Type() string         { return r.EventType }
func (r Record) StreamID() string     { return r.Stream }
func (r Record) Data() interface{}    { return r.EventData }
func (r Record) Timestamp() time.Time { return r.EventTime }
func (r Record) Version() int         { return r.EventVersion }
func (r Record) Sequence() int        { return r.EventSequence }

// NewEvent builds an unsequenced event; the store assigns Version and Sequence on append
func NewEvent(eventType, streamID string, data interface{}) Event {
	return Record{
		EventType: eventType,
		Stream:    streamID,
		EventData: data,
		EventTime: time.Now().UTC(),
	}
}
