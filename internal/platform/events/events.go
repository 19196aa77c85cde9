// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package events publishes catalogue domain events to NATS.

Events are notifications, not a source of truth: a publish failure is logged
and never fails the write that caused it. When NATS_URL is empty the
[Publisher] is a no-op, so callers never branch on whether messaging exists.
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/taibuivan/comicvault/pkg/uuidv7"
)

// Options configures the NATS connection behaviour.
type Options struct {
	URL           string
	MaxReconnects int
	ReconnectWait time.Duration
}

// Connect establishes a NATS connection with the configured retry policy.
// It fails fast so the caller decides whether messaging is mandatory.
func Connect(opts Options) (*nats.Conn, error) {
	if opts.MaxReconnects == 0 {
		opts.MaxReconnects = 5
	}
	if opts.ReconnectWait == 0 {
		opts.ReconnectWait = 2 * time.Second
	}

	nc, err := nats.Connect(opts.URL,
		nats.Name("comicvault"),
		nats.MaxReconnects(opts.MaxReconnects),
		nats.ReconnectWait(opts.ReconnectWait),
		nats.RetryOnFailedConnect(false),
	)
	if err != nil {
		return nil, fmt.Errorf("events: nats connect %s (max_reconnects=%d, wait=%s): %w",
			opts.URL, opts.MaxReconnects, opts.ReconnectWait, err)
	}
	return nc, nil
}

// Envelope is the JSON payload published on every subject.
type Envelope struct {
	EventID    string          `json:"eventId"`
	Subject    string          `json:"subject"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Publisher sends events over a NATS connection. A nil *Publisher, or one
// built on a nil connection, drops every event.
type Publisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewPublisher wraps nc. nc may be nil.
func NewPublisher(nc *nats.Conn, logger *slog.Logger) *Publisher {
	return &Publisher{nc: nc, logger: logger}
}

// Publish encodes payload into an [Envelope] and sends it to subject.
func (publisher *Publisher) Publish(ctx context.Context, subject string, payload any) {
	if publisher == nil || publisher.nc == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		publisher.logger.WarnContext(ctx, "event_encode_failed", slog.String("subject", subject), slog.Any("error", err))
		return
	}

	eventID := uuidv7.New()

	body, err := json.Marshal(Envelope{
		EventID:    eventID,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		publisher.logger.WarnContext(ctx, "event_encode_failed", slog.String("subject", subject), slog.Any("error", err))
		return
	}

	if err := publisher.nc.Publish(subject, body); err != nil {
		publisher.logger.WarnContext(ctx, "event_publish_failed", slog.String("subject", subject), slog.Any("error", err))
		return
	}

	publisher.logger.DebugContext(ctx, "event_published",
		slog.String("subject", subject),
		slog.String("event_id", eventID),
	)
}

// Ping reports whether the connection is usable. A no-op publisher is always healthy.
func (publisher *Publisher) Ping() error {
	if publisher == nil || publisher.nc == nil {
		return nil
	}
	if !publisher.nc.IsConnected() {
		return fmt.Errorf("events: nats status %s", publisher.nc.Status())
	}
	return nil
}

// Close drains and closes the connection.
func (publisher *Publisher) Close() {
	if publisher == nil || publisher.nc == nil {
		return
	}
	_ = publisher.nc.Drain()
}
