package view

import (
	"graphgen/internal/domain"
	"graphgen/internal/generation"
)

// Kind selects which of the mutually exclusive result displays is shown.
type Kind string

const (
	KindNone    Kind = "none"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Display is everything a client needs to render the generator form.
type Display struct {
	Phase         domain.Phase `json:"phase" yaml:"phase"`
	Bound         int          `json:"bound" yaml:"bound"`
	BoundSummary  string       `json:"bound_summary,omitempty" yaml:"bound_summary,omitempty"`
	SubmitEnabled bool         `json:"submit_enabled" yaml:"submit_enabled"`
	SubmitLabel   string       `json:"submit_label" yaml:"submit_label"`
	Kind          Kind         `json:"kind" yaml:"kind"`
	Message       string       `json:"message,omitempty" yaml:"message,omitempty"`
	DownloadURL   string       `json:"download_url,omitempty" yaml:"download_url,omitempty"`
}

// Render maps a controller state onto a display in the given locale.
func Render(st generation.State, locale string) Display {
	p := printer(locale)
	d := Display{
		Phase:         st.Phase,
		Bound:         st.Bound,
		SubmitEnabled: st.Phase != domain.PhasePending,
		SubmitLabel:   p.Sprintf(labelGenerate),
		Kind:          KindNone,
	}
	if st.Bound > 0 {
		d.BoundSummary = p.Sprintf(boundSummary, st.Bound)
	}

	switch st.Phase {
	case domain.PhasePending:
		d.SubmitLabel = p.Sprintf(labelGenerating)
	case domain.PhaseSucceeded:
		if st.Result.Succeeded() {
			d.Kind = KindSuccess
			d.Message = p.Sprintf(successMessage)
			d.DownloadURL = st.Result.ArtifactURL
		}
	case domain.PhaseFailed:
		msg := generation.GenericFailureMessage
		if st.Result != nil && st.Result.Message != "" {
			msg = st.Result.Message
		}
		d.Kind = KindError
		d.Message = p.Sprintf(errorEnvelope, translate(p, msg))
	case domain.PhaseIdle:
		if st.Rejection != "" {
			d.Kind = KindError
			d.Message = translate(p, st.Rejection)
		}
	}
	return d
}

// ErrorMessage returns the user-facing text for err in the given locale.
func ErrorMessage(err error, locale string) string {
	if err == nil {
		return ""
	}
	return translate(printer(locale), generation.UserMessage(err))
}
