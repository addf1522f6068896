package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events to JetStream under "<prefix>.<event_type>".
type NATSPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	prefix  string
	service string
}

// NewNATSPublisher creates a JetStream-backed publisher.
func NewNATSPublisher(nc *nats.Conn, prefix, service string) (*NATSPublisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("events: jetstream: %w", err)
	}
	return &NATSPublisher{nc: nc, js: js, prefix: prefix, service: service}, nil
}

// Subject returns the subject an event of the given type is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, ev *Event) error {
	msg, err := p.message(ev)
	if err != nil {
		return err
	}
	if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		return fmt.Errorf("events: publish %s: %w", msg.Subject, err)
	}
	return nil
}

func (p *NATSPublisher) message(ev *Event) (*nats.Msg, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("events: marshal: %w", err)
	}
	return &nats.Msg{
		Subject: p.Subject(ev.EventType),
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{ev.EventType},
			"event_id":     []string{ev.ID.String()},
			"record_id":    []string{strconv.FormatUint(ev.RecordID, 10)},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
			// JetStream de-duplicates on this header.
			nats.MsgIdHdr: []string{ev.ID.String()},
		},
	}, nil
}

// Close drains and closes the underlying connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		_ = p.nc.Drain()
	}
}
