package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bistro/internal/web"
)

// TraceID reuses an incoming X-Trace-Id or mints one, stores it on the
// request context and echoes it on the response.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(web.TraceIDHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = uuid.NewString()
		}

		w.Header().Set(web.TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(web.WithTraceID(r.Context(), traceID)))
	})
}

// AccessLog logs one line per request after it completes.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("ip", r.RemoteAddr),
				zap.Duration("duration", time.Since(start)),
				zap.String("traceId", web.TraceIDFrom(r.Context())),
			)
		})
	}
}

// Recoverer turns a panic into a logged 500 with the usual error envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic while handling request",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("traceId", web.TraceIDFrom(r.Context())),
					zap.Stack("stack"),
				)

				// A hijacked websocket connection has no response to write.
				if r.Header.Get("Connection") != "Upgrade" {
					web.WriteStatusError(w, r, http.StatusInternalServerError, web.CodeInternal,
						"an unexpected error occurred", logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
