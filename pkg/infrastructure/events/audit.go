package events

import (
	"go.uber.org/zap"
)

var _ EventHandler = (*AuditLog)(nil)

// AuditLog writes scheduling events to a structured log
type AuditLog struct {
	logger *zap.Logger
	types  map[string]bool
}

// AllEventTypes lists every event the scheduler publishes
var AllEventTypes = []string{ScheduleCommittedEvent, OrderAdvancedEvent, OrderStaleEvent}

// NewAuditLog creates an audit handler for eventTypes, or for every scheduler event when none are given
func NewAuditLog(logger *zap.Logger, eventTypes ...string) *AuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(eventTypes) == 0 {
		eventTypes = AllEventTypes
	}
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	return &AuditLog{logger: logger.Named("audit"), types: types}
}

// Types returns the event types the audit log handles
func (a *AuditLog) Types() []string {
	out := make([]string, 0, len(a.types))
	for _, t := range AllEventTypes {
		if a.types[t] {
			out = append(out, t)
		}
	}
	return out
}

func (a *AuditLog) CanHandle(eventType string) bool {
	return a.types[eventType]
}

func (a *AuditLog) Handle(event Event) error {
	fields := []zap.Field{
		zap.String("type", event.Type()),
		zap.String("stream", event.StreamID()),
		zap.Int("version", event.Version()),
		zap.Int("sequence", event.Sequence()),
		zap.Time("at", event.Timestamp()),
	}

	switch data := event.Data().(type) {
	case ScheduleCommitted:
		fields = append(fields,
			zap.Stringer("commit_id", data.CommitID),
			zap.Int("scheduled", data.ScheduledCount),
			zap.Int("stale", data.StaleCount))
	case OrderAdvanced:
		fields = append(fields, zap.String("from", string(data.From)), zap.String("to", string(data.To)))
	case OrderStale:
		fields = append(fields, zap.String("expected", string(data.Expected)), zap.String("actual", string(data.Actual)))
	}

	if event.Type() == OrderStaleEvent {
		a.logger.Warn("scheduling event", fields...)
		return nil
	}
	a.logger.Info("scheduling event", fields...)
	return nil
}

// Subscribe registers the audit log with store for its event types
func (a *AuditLog) Subscribe(store EventStore) error {
	return store.Subscribe(a.Types(), a)
}
