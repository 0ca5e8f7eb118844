package web

import (
	"time"

	apperrors "bistro/internal/errors"
)

// APIVersion is reported in every response envelope.
const APIVersion = "v1"

type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Version   string    `json:"version"`
	TraceID   string    `json:"traceId,omitempty"`
}

type SuccessEnvelope struct {
	Success  bool     `json:"success"`
	Data     any      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

type ErrorBody struct {
	Code    string                       `json:"code"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Success  bool      `json:"success"`
	Error    ErrorBody `json:"error"`
	Metadata Metadata  `json:"metadata"`
}

const (
	CodeNotFound   = "NOT_FOUND"
	CodeValidation = "VALIDATION_ERROR"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
	CodeRateLimit  = "RATE_LIMITED"
)
