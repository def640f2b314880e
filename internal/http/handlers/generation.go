package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"graphgen/internal/domain"
	"graphgen/internal/generation"
	"graphgen/internal/middleware"
	"graphgen/internal/view"
)

const maxRequestBody = 4 << 10

// generationRequest accepts max_vertices as a JSON number or a string so that
// form input can be forwarded unparsed.
type generationRequest struct {
	MaxVertices json.RawMessage `json:"max_vertices"`
}

type generationResponse struct {
	view.Display
	Error string `json:"error,omitempty"`
}

func (a *App) GetGeneration(w http.ResponseWriter, r *http.Request) {
	a.respond(w, r, http.StatusOK, a.Controller.State(), nil)
}

func (a *App) SubmitGeneration(w http.ResponseWriter, r *http.Request) {
	var req generationRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || dec.Decode(&struct{}{}) != io.EOF {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	raw, err := rawBound(req.MaxVertices)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "max_vertices must be a number or a string")
		return
	}

	st, err := a.Controller.SubmitInput(r.Context(), raw)
	a.respond(w, r, statusFor(err), st, err)
}

func (a *App) ResetGeneration(w http.ResponseWriter, r *http.Request) {
	st, err := a.Controller.Reset(r.Context())
	a.respond(w, r, statusFor(err), st, err)
}

func (a *App) respond(w http.ResponseWriter, r *http.Request, code int, st generation.State, err error) {
	resp := generationResponse{
		Display: view.Render(st, middleware.LocaleFromContext(r.Context())),
		Error:   errorCode(err),
	}
	if errors.Is(err, domain.ErrRequestInProgress) {
		resp.Display.Message = generation.UserMessage(err)
		resp.Display.Kind = view.KindError
	}
	a.json(w, code, resp)
}

func rawBound(msg json.RawMessage) (string, error) {
	msg = bytes.TrimSpace(msg)
	if len(msg) == 0 || bytes.Equal(msg, []byte("null")) {
		return "", nil
	}
	if msg[0] == '"' {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(msg, &n); err != nil {
		return "", err
	}
	return strings.TrimSpace(n.String()), nil
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInvalidBound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrRequestInProgress):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrServiceFailure), errors.Is(err, domain.ErrTransportFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidBound):
		return "validation_error"
	case errors.Is(err, domain.ErrNotConfigured):
		return "configuration_error"
	case errors.Is(err, domain.ErrRequestInProgress):
		return "concurrent_request"
	case errors.Is(err, domain.ErrServiceFailure):
		return "service_error"
	case errors.Is(err, domain.ErrTransportFailure):
		return "transport_error"
	default:
		return "internal"
	}
}
