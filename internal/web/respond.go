package web

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "bistro/internal/errors"
)

var now = time.Now

func metadataFor(r *http.Request) Metadata {
	return Metadata{
		Timestamp: now().UTC(),
		Path:      r.URL.Path,
		Method:    r.Method,
		Version:   APIVersion,
		TraceID:   TraceIDFrom(r.Context()),
	}
}

// WriteData writes a success envelope around data.
func WriteData(w http.ResponseWriter, r *http.Request, status int, data any, logger *zap.Logger) {
	writeJSON(w, status, SuccessEnvelope{
		Success:  true,
		Data:     data,
		Metadata: metadataFor(r),
	}, logger)
}

// WriteError maps err onto a status code and error envelope. Errors that are
// not one of the typed application errors are logged and reported as a
// generic internal error so driver details never reach the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	status, body := classify(err)

	log := logger.With(
		zap.String("traceId", TraceIDFrom(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	if status == http.StatusInternalServerError {
		log.Error("unexpected error", zap.Error(err))
	} else {
		log.Warn("request failed", zap.Int("status", status), zap.String("code", body.Code), zap.Error(err))
	}

	writeJSON(w, status, ErrorEnvelope{
		Success:  false,
		Error:    body,
		Metadata: metadataFor(r),
	}, logger)
}

// WriteStatusError writes an error envelope with an explicit status and code,
// for failures raised outside the application layer (rate limiting, panics).
func WriteStatusError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger *zap.Logger) {
	writeJSON(w, status, ErrorEnvelope{
		Success:  false,
		Error:    ErrorBody{Code: code, Message: message},
		Metadata: metadataFor(r),
	}, logger)
}

func classify(err error) (int, ErrorBody) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		return http.StatusBadRequest, ErrorBody{Code: CodeValidation, Message: ve.Message, Details: ve.Details}
	}
	if nfe, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, ErrorBody{Code: CodeNotFound, Message: nfe.Message}
	}
	if ce, ok := apperrors.IsConflictError(err); ok {
		return http.StatusConflict, ErrorBody{Code: CodeConflict, Message: ce.Message}
	}
	return http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: "an unexpected error occurred"}
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
