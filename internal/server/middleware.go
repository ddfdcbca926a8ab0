package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/logger"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/metrics"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
)

// Recoverer turns a panic into a logged 500 envelope.
func Recoverer(respond *apperr.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.FromContext(r.Context()).Error("Panic recovered",
					zap.Any("error", rec),
					zap.Stack("stacktrace"),
				)
				respond.Error(w, r, "", &apperr.Error{
					Kind:    apperr.KindInternal,
					Message: "Internal server error",
					Err:     fmt.Errorf("panic: %v", rec),
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Instrument records request count and latency per route pattern.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveRequest(r.Method, route, status, time.Since(start))
		})
	}
}

// RateLimit admits requests requests per window across all clients, with
// bursts up to requests.
func RateLimit(requests int, window time.Duration, respond *apperr.Responder) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(max(1, int(window.Seconds()))))
				respond.Error(w, r, "", apperr.RateLimited())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit caps request bodies at n bytes.
func BodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
