package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types emitted after a committed invocation.
const (
	TradeCreated   = "trade.created"
	TradeFunded    = "trade.funded"
	TradeCompleted = "trade.completed"
	TradeCancelled = "trade.cancelled"
	StreamCreated  = "stream.created"
	StreamToggled  = "stream.toggled"
)

// Version is the envelope schema version.
const Version = "1.0.0"

// Event is the envelope describing one committed state change.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	EventType string          `json:"event_type"`
	RecordID  uint64          `json:"record_id"`
	Caller    string          `json:"caller,omitempty"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// New builds an event with a fresh id and the current UTC time.
func New(eventType string, recordID uint64, caller string, payload any) (*Event, error) {
	ev := &Event{
		ID:        uuid.New(),
		EventType: eventType,
		RecordID:  recordID,
		Caller:    caller,
		Version:   Version,
		Timestamp: time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("events: marshal payload: %w", err)
		}
		ev.Payload = data
	}
	return ev, nil
}

// Publisher delivers committed-state events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, ev *Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, *Event) error { return nil }

// MemPublisher records events in memory, in publish order.
type MemPublisher struct {
	mu     sync.Mutex
	events []*Event
	Err    error // returned from Publish when set
}

// Publish implements Publisher.
func (p *MemPublisher) Publish(_ context.Context, ev *Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, ev)
	return nil
}

// Events returns a copy of the recorded events.
func (p *MemPublisher) Events() []*Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Event, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the recorded event types in order.
func (p *MemPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.EventType
	}
	return out
}
