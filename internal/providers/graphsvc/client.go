package graphsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"graphgen/internal/domain"
	"graphgen/internal/generation"
	"graphgen/internal/infra"
	"graphgen/internal/middleware"
)

const (
	generatePath       = "/generate-graph"
	maxResponseBytes   = 1 << 20
	maxArtifactBytes   = 256 << 20
	defaultHTTPTimeout = 45 * time.Second
)

// Options configures the generation backend client.
type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	// MaxArtifactBytes caps Fetch downloads; zero means 256 MiB.
	MaxArtifactBytes int64
}

// ErrArtifactTooLarge is wrapped by Fetch when a download exceeds the cap.
var ErrArtifactTooLarge = errors.New("graphsvc: artifact too large")

// Client talks to the graph generation backend over its JSON API.
type Client struct {
	baseURL    string
	httpClient  *http.Client
	logger      *infra.Logger
	maxArtifact int64
}

// Artifact is a downloaded generation output.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewClient constructs a client. An empty or placeholder BaseURL is accepted
// here and reported by Ready so that the controller can surface it per request.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	maxArtifact := opts.MaxArtifactBytes
	if maxArtifact <= 0 {
		maxArtifact = maxArtifactBytes
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient:  httpClient,
		logger:      logger,
		maxArtifact: maxArtifact,
	}
}

// BaseURL returns the configured backend location.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ready reports a *generation.ConfigurationError when no usable backend URL is set.
func (c *Client) Ready() error {
	if !infra.BackendURLUsable(c.baseURL) {
		return &generation.ConfigurationError{Reason: "backend url is unset"}
	}
	parsed, err := url.Parse(c.baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &generation.ConfigurationError{Reason: fmt.Sprintf("backend url %q is not absolute", c.baseURL)}
	}
	return nil
}

// Generate posts the request to /generate-graph and returns the download URL.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if err := c.Ready(); err != nil {
		return "", err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", &generation.TransportError{Err: fmt.Errorf("encode request: %w", err)}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", &generation.TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if rid := middleware.RequestIDFromContext(ctx); rid != "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &generation.TransportError{Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &generation.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", serviceError(resp.StatusCode, raw)
	}

	var decoded domain.GenerationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &generation.TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	downloadURL := strings.TrimSpace(decoded.DownloadURL)
	if downloadURL == "" {
		return "", &generation.TransportError{Err: errors.New("response has no download_url")}
	}
	c.logger.Debug().
		Int("max_vertices", req.MaxVertices).
		Str("download_url", downloadURL).
		Str("message", decoded.Message).
		Msg("graphsvc: graph generated")
	return downloadURL, nil
}

// Fetch downloads the artifact behind a download URL returned by Generate.
func (c *Client) Fetch(ctx context.Context, artifactURL string) (*Artifact, error) {
	parsed, err := url.Parse(strings.TrimSpace(artifactURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("graphsvc: invalid artifact url: %q", artifactURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, &generation.TransportError{Err: fmt.Errorf("build download request: %w", err)}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &generation.TransportError{Err: fmt.Errorf("download artifact: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return nil, serviceError(resp.StatusCode, raw)
	}
	if resp.ContentLength > c.maxArtifact {
		return nil, c.tooLarge(resp.ContentLength)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxArtifact+1))
	if err != nil {
		return nil, &generation.TransportError{Err: fmt.Errorf("read artifact: %w", err)}
	}
	if int64(len(data)) > c.maxArtifact {
		return nil, c.tooLarge(-1)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/gml"
	}
	return &Artifact{
		Filename:    artifactFilename(resp.Header.Get("Content-Disposition"), parsed),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (c *Client) tooLarge(size int64) error {
	if size < 0 {
		return &generation.TransportError{Err: fmt.Errorf("%w: more than %d bytes", ErrArtifactTooLarge, c.maxArtifact)}
	}
	return &generation.TransportError{Err: fmt.Errorf("%w: %d bytes, limit %d", ErrArtifactTooLarge, size, c.maxArtifact)}
}

// serviceError builds a ServiceError, taking the message from a JSON error
// body when one is present.
func serviceError(status int, raw []byte) error {
	var detail domain.ErrorResponse
	if err := json.Unmarshal(raw, &detail); err == nil {
		return &generation.ServiceError{Status: status, Message: strings.TrimSpace(detail.Message)}
	}
	return &generation.ServiceError{Status: status}
}

func artifactFilename(disposition string, u *url.URL) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := path.Base(params["filename"]); name != "." && name != "/" && name != "" {
				return name
			}
		}
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
