package generation

import (
	"math"
	"strconv"
	"strings"

	"graphgen/internal/domain"
)

// Validation failure reasons, in pipeline order.
const (
	ReasonRequired = "required"
	ReasonNumeric  = "not a number"
	ReasonInteger  = "not an integer"
	ReasonPositive = "must be at least 1"
	ReasonTooLarge = "too large"
)

// MaxBound caps the bound so it fits the wire format's integer on every platform.
const MaxBound = math.MaxInt32

// ValidatedRequest is a GenerationRequest that passed the validation pipeline.
type ValidatedRequest struct {
	domain.GenerationRequest
}

func notDecimal(r rune) bool { return !strings.ContainsRune("0123456789+-.eE", r) }

type candidate struct {
	raw    string
	number float64
}

type validationStep struct {
	reason string
	check  func(c *candidate) bool
}

var inputPipeline = []validationStep{
	{ReasonRequired, func(c *candidate) bool {
		c.raw = strings.TrimSpace(c.raw)
		return c.raw != ""
	}},
	{ReasonNumeric, func(c *candidate) bool {
		// decimal notation only, as a number input submits it
		if strings.ContainsFunc(c.raw, notDecimal) {
			return false
		}
		n, err := strconv.ParseFloat(c.raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return false
		}
		c.number = n
		return true
	}},
	{ReasonInteger, func(c *candidate) bool { return c.number == math.Trunc(c.number) }},
	{ReasonPositive, func(c *candidate) bool { return c.number >= 1 }},
	{ReasonTooLarge, func(c *candidate) bool { return c.number <= MaxBound }},
}

// ValidateInput runs raw user input through the ordered validation pipeline.
func ValidateInput(raw string) (ValidatedRequest, error) {
	c := &candidate{raw: raw}
	for _, step := range inputPipeline {
		if !step.check(c) {
			return ValidatedRequest{}, &ValidationError{Input: raw, Reason: step.reason}
		}
	}
	return ValidatedRequest{domain.GenerationRequest{MaxVertices: int(c.number)}}, nil
}

// ValidateBound checks an already-integral bound.
func ValidateBound(bound int) (ValidatedRequest, error) {
	switch {
	case bound < 1:
		return ValidatedRequest{}, &ValidationError{Input: strconv.Itoa(bound), Reason: ReasonPositive}
	case bound > MaxBound:
		return ValidatedRequest{}, &ValidationError{Input: strconv.Itoa(bound), Reason: ReasonTooLarge}
	}
	return ValidatedRequest{domain.GenerationRequest{MaxVertices: bound}}, nil
}
