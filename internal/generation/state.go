package generation

import "graphgen/internal/domain"

// Result is the outcome of a dispatched request. Exactly one field is set.
type Result struct {
	ArtifactURL string `json:"artifact_url,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Success builds a successful result.
func Success(artifactURL string) *Result { return &Result{ArtifactURL: artifactURL} }

// Failure builds a failed result.
func Failure(message string) *Result { return &Result{Message: message} }

// Succeeded reports whether the result carries an artifact URL.
func (r *Result) Succeeded() bool { return r != nil && r.ArtifactURL != "" }

// State is a snapshot of the controller. Rejection holds the message of the
// last pre-dispatch failure and is only set while Phase is idle.
type State struct {
	Phase     domain.Phase `json:"phase"`
	Bound     int          `json:"bound"`
	Result    *Result      `json:"result,omitempty"`
	Rejection string       `json:"rejection,omitempty"`
}

func (s State) clone() State {
	if s.Result != nil {
		r := *s.Result
		s.Result = &r
	}
	return s
}
