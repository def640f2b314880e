package generation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"graphgen/internal/domain"
	"graphgen/internal/events"
	"graphgen/internal/infra"
)

// Options configures a Controller.
type Options struct {
	Service   Service
	Timeout   time.Duration
	Publisher events.Publisher
	Logger    *infra.Logger
}

// Controller mediates between user input and the generation service. At most
// one request is in flight at a time; overlapping calls are rejected rather
// than queued.
type Controller struct {
	service   Service
	timeout   time.Duration
	publisher events.Publisher
	logger    *infra.Logger

	mu       sync.Mutex
	state    State
	inFlight bool
	stats    Stats
}

// Stats counts controller activity since construction.
type Stats struct {
	Submitted    uint64        `json:"submitted"`
	Rejected     uint64        `json:"rejected"`
	Conflicts    uint64        `json:"conflicts"`
	Succeeded    uint64        `json:"succeeded"`
	Failed       uint64        `json:"failed"`
	LastDuration time.Duration `json:"-"`
}

// NewController constructs an idle controller.
func NewController(opts Options) (*Controller, error) {
	if opts.Service == nil {
		return nil, errors.New("generation: service is required")
	}
	if opts.Timeout < 0 {
		return nil, errors.New("generation: timeout must not be negative")
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = &events.NoopPublisher{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Controller{
		service:   opts.Service,
		timeout:   opts.Timeout,
		publisher: publisher,
		logger:    logger,
		state:     State{Phase: domain.PhaseIdle},
	}, nil
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Stats returns a snapshot of the activity counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Submit validates bound and, if accepted, runs one generation request to
// completion. The returned state is never pending. The error is nil on success
// and otherwise one of the typed errors of this package.
func (c *Controller) Submit(ctx context.Context, bound int) (State, error) {
	req, err := ValidateBound(bound)
	return c.submit(ctx, strconv.Itoa(bound), req, err)
}

// SubmitInput is Submit for unparsed user input such as a form field.
func (c *Controller) SubmitInput(ctx context.Context, raw string) (State, error) {
	req, err := ValidateInput(raw)
	return c.submit(ctx, raw, req, err)
}

// Reset returns the controller to idle and clears any result.
func (c *Controller) Reset(ctx context.Context) (State, error) {
	c.mu.Lock()
	if c.inFlight {
		snap := c.state.clone()
		c.mu.Unlock()
		return snap, &ConcurrentRequestError{}
	}
	c.state = State{Phase: domain.PhaseIdle, Bound: c.state.Bound}
	snap := c.state.clone()
	c.mu.Unlock()

	c.logger.Debug().Msg("generation: reset")
	c.publish(ctx, events.TopicGenerationReset, snap)
	return snap, nil
}

func (c *Controller) submit(ctx context.Context, input string, req ValidatedRequest, rejectErr error) (State, error) {
	c.mu.Lock()
	c.stats.Submitted++
	if c.inFlight {
		c.stats.Conflicts++
		snap := c.state.clone()
		c.mu.Unlock()
		c.logger.Warn().Str("input", input).Msg("generation: submit rejected, request in flight")
		return snap, &ConcurrentRequestError{}
	}
	if rejectErr == nil {
		rejectErr = c.checkReady()
	}
	if rejectErr != nil {
		c.stats.Rejected++
		c.state = State{Phase: domain.PhaseIdle, Bound: c.state.Bound, Rejection: UserMessage(rejectErr)}
		snap := c.state.clone()
		c.mu.Unlock()
		c.logger.Info().Err(rejectErr).Str("input", input).Msg("generation: submit rejected")
		c.publish(ctx, events.TopicGenerationRejected, snap)
		return snap, rejectErr
	}
	c.inFlight = true
	c.state = State{Phase: domain.PhasePending, Bound: req.MaxVertices}
	pending := c.state.clone()
	c.mu.Unlock()

	c.publish(ctx, events.TopicGenerationPending, pending)
	start := time.Now()

	artifactURL, err := c.dispatch(ctx, req)

	elapsed := time.Since(start)
	c.mu.Lock()
	c.inFlight = false
	c.stats.LastDuration = elapsed
	if err != nil {
		c.stats.Failed++
		c.state = State{Phase: domain.PhaseFailed, Bound: req.MaxVertices, Result: Failure(UserMessage(err))}
	} else {
		c.stats.Succeeded++
		c.state = State{Phase: domain.PhaseSucceeded, Bound: req.MaxVertices, Result: Success(artifactURL)}
	}
	snap := c.state.clone()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error().Err(err).
			Int("max_vertices", req.MaxVertices).
			Dur("elapsed", elapsed).
			Msg("generation: request failed")
		c.publish(ctx, events.TopicGenerationFailed, snap)
		return snap, err
	}
	c.logger.Info().
		Int("max_vertices", req.MaxVertices).
		Str("artifact_url", artifactURL).
		Dur("elapsed", elapsed).
		Msg("generation: request succeeded")
	c.publish(ctx, events.TopicGenerationSucceeded, snap)
	return snap, nil
}

// Ready reports whether the configured service can accept submissions.
func (c *Controller) Ready() error { return c.checkReady() }

func (c *Controller) checkReady() error {
	if rc, ok := c.service.(ReadinessChecker); ok {
		return rc.Ready()
	}
	return nil
}

// dispatch performs exactly one service call. Panics inside the service are
// converted to transport failures so the controller never stays pending.
func (c *Controller) dispatch(ctx context.Context, req ValidatedRequest) (artifactURL string, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			artifactURL, err = "", &TransportError{Err: fmt.Errorf("service panic: %v", r)}
		}
	}()

	artifactURL, err = c.service.Generate(ctx, req.GenerationRequest)
	if err != nil {
		return "", asOutcomeError(err)
	}
	artifactURL = strings.TrimSpace(artifactURL)
	if artifactURL == "" {
		return "", &TransportError{Err: errors.New("empty download url")}
	}
	return artifactURL, nil
}

func (c *Controller) publish(ctx context.Context, topic string, s State) {
	event := events.NewGenerationEvent(string(s.Phase), s.Bound)
	event.Rejection = s.Rejection
	if s.Result != nil {
		event.ArtifactURL = s.Result.ArtifactURL
		event.Message = s.Result.Message
	}
	if err := c.publisher.Publish(context.WithoutCancel(ctx), topic, event); err != nil {
		c.logger.Warn().Err(err).Str("topic", topic).Msg("generation: publish event")
	}
}
