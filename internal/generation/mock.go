package generation

import (
	"context"
	"fmt"
	"time"

	"graphgen/internal/domain"
)

// DefaultMockDelay is the simulated service latency.
const DefaultMockDelay = 2 * time.Second

// MockService simulates the generation backend without any network access.
type MockService struct {
	Delay time.Duration
	Now   func() time.Time
}

// NewMockService returns a MockService that waits delay before answering.
func NewMockService(delay time.Duration) *MockService {
	return &MockService{Delay: delay, Now: time.Now}
}

// MockArtifactURL is the placeholder URL produced for bound at instant at.
func MockArtifactURL(bound int, at time.Time) string {
	return fmt.Sprintf("https://example.com/generated_graph_%d_%d.gml", bound, at.UnixMilli())
}

func (m *MockService) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", &TransportError{Err: ctx.Err()}
		case <-timer.C:
		}
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	return MockArtifactURL(req.MaxVertices, now()), nil
}
