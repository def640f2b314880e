package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event topic constants
const (
	TopicGenerationPending   = "graphgen.generation.pending"
	TopicGenerationSucceeded = "graphgen.generation.succeeded"
	TopicGenerationFailed    = "graphgen.generation.failed"
	TopicGenerationRejected  = "graphgen.generation.rejected"
	TopicGenerationReset     = "graphgen.generation.reset"
)

// GenerationEvent describes one controller state transition.
type GenerationEvent struct {
	ID          string    `json:"id"`
	At          time.Time `json:"at"`
	Phase       string    `json:"phase"`
	Bound       int       `json:"bound,omitempty"`
	ArtifactURL string    `json:"artifact_url,omitempty"`
	Message     string    `json:"message,omitempty"`
	Rejection   string    `json:"rejection,omitempty"`
}

// NewGenerationEvent stamps an event with a fresh ID and the current time.
func NewGenerationEvent(phase string, bound int) GenerationEvent {
	return GenerationEvent{
		ID:    uuid.NewString(),
		At:    time.Now().UTC(),
		Phase: phase,
		Bound: bound,
	}
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// New returns a NATS publisher when url is set and a NoopPublisher otherwise.
func New(url string) (Publisher, error) {
	if url == "" {
		return &NoopPublisher{}, nil
	}
	pub, err := NewNATSPublisher(url)
	if err != nil {
		return nil, err
	}
	return pub, nil
}
