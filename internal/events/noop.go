package events

import "context"

var (
	_ Publisher = (*NoopPublisher)(nil)
	_ Publisher = (*NATSPublisher)(nil)
)

// NoopPublisher drops every event. New returns it when NATS_URL is unset.
type NoopPublisher struct{}

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
