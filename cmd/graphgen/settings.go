package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"graphgen/internal/generation"
	"graphgen/internal/infra"
	"graphgen/internal/middleware"
	"graphgen/internal/providers/graphsvc"
)

const defaultTimeout = 45 * time.Second

// settings is the effective configuration for one CLI invocation.
// Precedence is flag, then environment, then profile, then default.
type settings struct {
	UseMock    bool
	BackendURL string
	Timeout    time.Duration
	MockDelay  time.Duration
	Locale     string
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func resolveSettings(cmd *cobra.Command, opts *rootOptions) (settings, error) {
	p, err := loadProfile()
	if err != nil {
		return settings{}, err
	}
	flags := cmd.Flags()
	s := settings{
		UseMock:   true,
		Timeout:   defaultTimeout,
		MockDelay: generation.DefaultMockDelay,
		Locale:    "en",
	}

	// backend url
	switch {
	case flags.Changed("backend"):
		s.BackendURL = opts.backendURL
	default:
		if v, ok := lookupEnv("GRAPHGEN_BACKEND_URL"); ok {
			s.BackendURL = v
		} else {
			s.BackendURL = p.BackendURL
		}
	}

	// mock; an explicit --backend selects the real service unless --mock is also given
	switch {
	case flags.Changed("mock"):
		s.UseMock = opts.useMock
	case flags.Changed("backend"):
		s.UseMock = false
	default:
		if v, ok := lookupEnv("GRAPHGEN_USE_MOCK"); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return settings{}, fmt.Errorf("GRAPHGEN_USE_MOCK: %w", err)
			}
			s.UseMock = b
		} else if p.UseMock != nil {
			s.UseMock = *p.UseMock
		}
	}

	// timeout
	switch {
	case flags.Changed("timeout"):
		s.Timeout = opts.timeout
	default:
		if v, ok := lookupEnv("GRAPHGEN_REQUEST_TIMEOUT_SECONDS"); ok {
			secs, err := strconv.Atoi(v)
			if err != nil {
				return settings{}, fmt.Errorf("GRAPHGEN_REQUEST_TIMEOUT_SECONDS: %w", err)
			}
			s.Timeout = time.Duration(secs) * time.Second
		} else if p.Timeout != "" {
			d, err := time.ParseDuration(p.Timeout)
			if err != nil {
				return settings{}, fmt.Errorf("profile timeout: %w", err)
			}
			s.Timeout = d
		}
	}
	if s.Timeout < 0 {
		return settings{}, fmt.Errorf("timeout must not be negative")
	}

	if v, ok := lookupEnv("GRAPHGEN_MOCK_DELAY_MS"); ok {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return settings{}, fmt.Errorf("GRAPHGEN_MOCK_DELAY_MS must be a non-negative integer")
		}
		s.MockDelay = time.Duration(ms) * time.Millisecond
	}

	// locale
	switch {
	case flags.Changed("locale"):
		s.Locale = opts.locale
	default:
		if v, ok := lookupEnv("DEFAULT_LOCALE"); ok {
			s.Locale = v
		} else if p.Locale != "" {
			s.Locale = p.Locale
		}
	}
	s.Locale = middleware.NormalizeLocale(s.Locale)

	return s, nil
}

func (s settings) service(logger *infra.Logger) generation.Service {
	if s.UseMock {
		return generation.NewMockService(s.MockDelay)
	}
	return graphsvc.NewClient(graphsvc.Options{
		BaseURL:        s.BackendURL,
		Logger:         logger,
		RequestTimeout: s.Timeout,
	})
}
