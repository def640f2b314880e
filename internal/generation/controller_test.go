package generation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"graphgen/internal/domain"
)

type stubService struct {
	calls   atomic.Int32
	lastReq domain.GenerationRequest
	ready   error
	fn      func(ctx context.Context, req domain.GenerationRequest) (string, error)
}

func (s *stubService) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	s.calls.Add(1)
	s.lastReq = req
	return s.fn(ctx, req)
}

func (s *stubService) Ready() error { return s.ready }

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

func newTestController(t *testing.T, svc Service, timeout time.Duration) *Controller {
	t.Helper()
	c, err := NewController(Options{Service: svc, Timeout: timeout})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestNewControllerRequiresService(t *testing.T) {
	if _, err := NewController(Options{}); err == nil {
		t.Fatal("expected error without service")
	}
	if _, err := NewController(Options{Service: NewMockService(0), Timeout: -time.Second}); err == nil {
		t.Fatal("expected error for negative timeout")
	}
}

func TestControllerStartsIdle(t *testing.T) {
	c := newTestController(t, NewMockService(0), 0)
	st := c.State()
	if st.Phase != domain.PhaseIdle || st.Result != nil || st.Rejection != "" {
		t.Fatalf("initial state = %+v, want idle and empty", st)
	}
}

func TestSubmitMockSucceeds(t *testing.T) {
	c := newTestController(t, NewMockService(10*time.Millisecond), time.Second)

	for _, n := range []int{1, 3, 50, 509, 100000} {
		st, err := c.Submit(context.Background(), n)
		if err != nil {
			t.Fatalf("Submit(%d): %v", n, err)
		}
		if st.Phase != domain.PhaseSucceeded {
			t.Fatalf("Submit(%d) phase = %s, want succeeded", n, st.Phase)
		}
		if !st.Result.Succeeded() {
			t.Fatalf("Submit(%d) result = %+v, want success", n, st.Result)
		}
		want := "generated_graph_" + strconv.Itoa(n) + "_"
		if !strings.Contains(st.Result.ArtifactURL, want) {
			t.Fatalf("artifact url %q does not contain %q", st.Result.ArtifactURL, want)
		}
		if st.Bound != n {
			t.Fatalf("bound = %d, want %d", st.Bound, n)
		}
	}
}

func TestSubmitMockWaitsForDelay(t *testing.T) {
	delay := 30 * time.Millisecond
	c := newTestController(t, NewMockService(delay), 0)

	start := time.Now()
	st, err := c.Submit(context.Background(), 50)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if elapsed := time.Since(start); elapsed < delay {
		t.Fatalf("Submit returned after %s, want at least %s", elapsed, delay)
	}
	if !strings.Contains(st.Result.ArtifactURL, "50") {
		t.Fatalf("artifact url %q does not mention 50", st.Result.ArtifactURL)
	}
}

func TestSubmitZeroIsRejectedImmediately(t *testing.T) {
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		return "unused", nil
	}}
	c := newTestController(t, svc, 0)

	start := time.Now()
	st, err := c.Submit(context.Background(), 0)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if !errors.Is(err, domain.ErrInvalidBound) {
		t.Fatalf("err should unwrap to ErrInvalidBound: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("validation should not wait")
	}
	if st.Phase != domain.PhaseIdle {
		t.Fatalf("phase = %s, want idle", st.Phase)
	}
	if !strings.Contains(st.Rejection, "valid positive number") {
		t.Fatalf("rejection = %q", st.Rejection)
	}
	if svc.calls.Load() != 0 {
		t.Fatalf("service called %d times, want 0", svc.calls.Load())
	}
}

func TestSubmitInputRejectsInvalid(t *testing.T) {
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		return "unused", nil
	}}
	c := newTestController(t, svc, 0)

	for _, raw := range []string{"", "   ", "abc", "2.5", "-3", "0", "NaN", "Inf", "1e12"} {
		st, err := c.SubmitInput(context.Background(), raw)
		if !errors.Is(err, domain.ErrInvalidBound) {
			t.Fatalf("SubmitInput(%q) err = %v, want invalid bound", raw, err)
		}
		if st.Phase != domain.PhaseIdle {
			t.Fatalf("SubmitInput(%q) phase = %s, want idle", raw, st.Phase)
		}
	}
	if svc.calls.Load() != 0 {
		t.Fatalf("service called %d times, want 0", svc.calls.Load())
	}
}

func TestSubmitInputAcceptsIntegralForms(t *testing.T) {
	svc := &stubService{fn: func(_ context.Context, req domain.GenerationRequest) (string, error) {
		return "https://graphs.example.com/g.gml", nil
	}}
	c := newTestController(t, svc, 0)

	st, err := c.SubmitInput(context.Background(), " 50.0 ")
	if err != nil {
		t.Fatalf("SubmitInput: %v", err)
	}
	if st.Phase != domain.PhaseSucceeded || svc.lastReq.MaxVertices != 50 {
		t.Fatalf("state = %+v, request = %+v", st, svc.lastReq)
	}
}

func TestSubmitServiceErrorUsesServiceMessage(t *testing.T) {
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		return "", &ServiceError{Status: 500, Message: "overload"}
	}}
	c := newTestController(t, svc, 0)

	st, err := c.Submit(context.Background(), 50)
	if !errors.Is(err, domain.ErrServiceFailure) {
		t.Fatalf("err = %v, want service failure", err)
	}
	if st.Phase != domain.PhaseFailed {
		t.Fatalf("phase = %s, want failed", st.Phase)
	}
	if !strings.Contains(st.Result.Message, "overload") {
		t.Fatalf("message = %q, want overload", st.Result.Message)
	}
	if st.Result.ArtifactURL != "" {
		t.Fatalf("failure result must not carry a url: %+v", st.Result)
	}
}

func TestSubmitFailuresWithoutMessageUseFallback(t *testing.T) {
	for name, failure := range map[string]error{
		"service without message": &ServiceError{Status: 502},
		"network":                 &TransportError{Err: errors.New("connection refused")},
		"untyped":                 errors.New("boom"),
	} {
		t.Run(name, func(t *testing.T) {
			svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
				return "", failure
			}}
			c := newTestController(t, svc, 0)

			st, err := c.Submit(context.Background(), 10)
			if err == nil {
				t.Fatal("expected error")
			}
			if st.Phase != domain.PhaseFailed {
				t.Fatalf("phase = %s, want failed", st.Phase)
			}
			if st.Result.Message != GenericFailureMessage {
				t.Fatalf("message = %q, want fallback", st.Result.Message)
			}
		})
	}
}

func TestSubmitEmptyURLIsTransportFailure(t *testing.T) {
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		return "  ", nil
	}}
	c := newTestController(t, svc, 0)

	st, err := c.Submit(context.Background(), 10)
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("err = %v, want transport failure", err)
	}
	if st.Phase != domain.PhaseFailed {
		t.Fatalf("phase = %s, want failed", st.Phase)
	}
}

func TestSubmitTimeout(t *testing.T) {
	svc := &stubService{fn: func(ctx context.Context, _ domain.GenerationRequest) (string, error) {
		<-ctx.Done()
		return "", &TransportError{Err: ctx.Err()}
	}}
	c := newTestController(t, svc, 20*time.Millisecond)

	st, err := c.Submit(context.Background(), 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if st.Phase != domain.PhaseFailed || st.Result.Message != GenericFailureMessage {
		t.Fatalf("state = %+v", st)
	}
}

func TestSubmitRecoversServicePanic(t *testing.T) {
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		panic("kaboom")
	}}
	c := newTestController(t, svc, 0)

	st, err := c.Submit(context.Background(), 10)
	if !errors.Is(err, domain.ErrTransportFailure) {
		t.Fatalf("err = %v, want transport failure", err)
	}
	if st.Phase != domain.PhaseFailed {
		t.Fatalf("phase = %s, want failed", st.Phase)
	}
	if _, err := c.Submit(context.Background(), 10); err == nil {
		t.Fatal("second submit should run and fail again, not be blocked")
	}
}

func TestSubmitConfigurationError(t *testing.T) {
	svc := &stubService{
		ready: &ConfigurationError{Reason: "backend url is empty"},
		fn: func(context.Context, domain.GenerationRequest) (string, error) {
			return "unused", nil
		},
	}
	c := newTestController(t, svc, 0)

	st, err := c.Submit(context.Background(), 50)
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("err = %v, want not configured", err)
	}
	if st.Phase != domain.PhaseIdle || st.Rejection != NotConfiguredMessage {
		t.Fatalf("state = %+v", st)
	}
	if svc.calls.Load() != 0 {
		t.Fatal("service must not be called when not configured")
	}
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		close(started)
		<-release
		return "https://graphs.example.com/a.gml", nil
	}}
	c := newTestController(t, svc, 0)

	done := make(chan State)
	go func() {
		st, _ := c.Submit(context.Background(), 7)
		done <- st
	}()
	<-started

	if st := c.State(); st.Phase != domain.PhasePending || st.Bound != 7 {
		t.Fatalf("in-flight state = %+v, want pending", st)
	}
	st, err := c.Submit(context.Background(), 8)
	if !errors.Is(err, domain.ErrRequestInProgress) {
		t.Fatalf("overlapping submit err = %v", err)
	}
	if st.Phase != domain.PhasePending || st.Bound != 7 {
		t.Fatalf("overlapping submit changed state: %+v", st)
	}
	if _, err := c.SubmitInput(context.Background(), "0"); !errors.Is(err, domain.ErrRequestInProgress) {
		t.Fatalf("overlapping invalid submit err = %v, want request in progress", err)
	}
	if _, err := c.Reset(context.Background()); !errors.Is(err, domain.ErrRequestInProgress) {
		t.Fatalf("reset while pending err = %v", err)
	}

	close(release)
	final := <-done
	if final.Phase != domain.PhaseSucceeded {
		t.Fatalf("final phase = %s", final.Phase)
	}
	if svc.calls.Load() != 1 {
		t.Fatalf("service called %d times, want 1", svc.calls.Load())
	}
}

func TestResubmitClearsPriorResult(t *testing.T) {
	fail := true
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		if fail {
			return "", &ServiceError{Status: 500, Message: "overload"}
		}
		return "https://graphs.example.com/b.gml", nil
	}}
	c := newTestController(t, svc, 0)

	if st, _ := c.Submit(context.Background(), 5); st.Phase != domain.PhaseFailed {
		t.Fatalf("first submit phase = %s", st.Phase)
	}
	fail = false
	st, err := c.Submit(context.Background(), 6)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if st.Result.Message != "" || st.Result.ArtifactURL == "" {
		t.Fatalf("stale failure leaked into result: %+v", st.Result)
	}

	st, _ = c.Submit(context.Background(), -1)
	if st.Result != nil || st.Phase != domain.PhaseIdle {
		t.Fatalf("rejected submit should clear result: %+v", st)
	}
}

func TestResetIsIdempotent(t *testing.T) {
	c := newTestController(t, NewMockService(0), 0)
	if _, err := c.Submit(context.Background(), 3); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for i := 0; i < 2; i++ {
		st, err := c.Reset(context.Background())
		if err != nil {
			t.Fatalf("Reset: %v", err)
		}
		if st.Phase != domain.PhaseIdle || st.Result != nil || st.Rejection != "" {
			t.Fatalf("after reset state = %+v", st)
		}
	}
}

func TestStateSnapshotIsIsolated(t *testing.T) {
	c := newTestController(t, NewMockService(0), 0)
	if _, err := c.Submit(context.Background(), 3); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	snap := c.State()
	snap.Result.ArtifactURL = "mutated"
	if c.State().Result.ArtifactURL == "mutated" {
		t.Fatal("State() leaked internal result pointer")
	}
}

func TestTransitionsArePublished(t *testing.T) {
	pub := &recordingPublisher{}
	c, err := NewController(Options{Service: NewMockService(0), Publisher: pub})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	_, _ = c.Submit(context.Background(), 0)
	_, _ = c.Submit(context.Background(), 4)
	_, _ = c.Reset(context.Background())

	want := []string{
		"graphgen.generation.rejected",
		"graphgen.generation.pending",
		"graphgen.generation.succeeded",
		"graphgen.generation.reset",
	}
	got := pub.Topics()
	if len(got) != len(want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("topics = %v, want %v", got, want)
		}
	}
}

func TestStatsCountOutcomes(t *testing.T) {
	fail := false
	svc := &stubService{fn: func(context.Context, domain.GenerationRequest) (string, error) {
		if fail {
			return "", &ServiceError{Status: 500}
		}
		return "https://graphs.example.com/s.gml", nil
	}}
	c := newTestController(t, svc, 0)

	_, _ = c.Submit(context.Background(), 5)
	_, _ = c.SubmitInput(context.Background(), "abc")
	fail = true
	_, _ = c.Submit(context.Background(), 6)

	got := c.Stats()
	want := Stats{Submitted: 3, Rejected: 1, Succeeded: 1, Failed: 1}
	got.LastDuration = 0
	if got != want {
		t.Fatalf("stats = %+v, want %+v", got, want)
	}
}
