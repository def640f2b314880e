package domain

// Phase enumerates the request lifecycle states of a generation session.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Terminal reports whether the phase is the outcome of a dispatched request.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseFailed
}

// GenerationRequest is the parameter set sent to the generation service.
type GenerationRequest struct {
	MaxVertices int `json:"max_vertices"`
}

// GenerationResponse is the success payload returned by the generation service.
type GenerationResponse struct {
	DownloadURL string `json:"download_url"`
	Message     string `json:"message,omitempty"`
}

// ErrorResponse is the failure payload returned by the generation service.
type ErrorResponse struct {
	Message string `json:"message"`
}
