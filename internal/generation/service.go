package generation

import (
	"context"

	"graphgen/internal/domain"
)

// Service is the graph generation backend as seen by the controller. Generate
// returns the artifact URL on success. Failures should be *ServiceError or
// *TransportError; anything else is treated as a transport failure.
type Service interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// ReadinessChecker is implemented by services that can detect missing
// configuration before a request is attempted.
type ReadinessChecker interface {
	Ready() error
}
