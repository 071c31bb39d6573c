package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/breeds-proxy/internal/observability"
	"github.com/Sternrassler/breeds-proxy/pkg/breed"
	"github.com/Sternrassler/breeds-proxy/pkg/logging"
	"github.com/Sternrassler/breeds-proxy/pkg/metrics"
	"github.com/Sternrassler/breeds-proxy/pkg/pagination"
	"github.com/Sternrassler/breeds-proxy/pkg/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// breedService is the part of *service.Service the routes need.
type breedService interface {
	GetBreeds(ctx context.Context, page, limit int, search string) (pagination.Page[breed.Breed], error)
	GetBreedByID(ctx context.Context, id string) (breed.Breed, error)
}

// newRouter builds the HTTP handler with routes and middleware.
func newRouter(svc breedService, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, metrics.InstrumentHandler(pattern, h))
	}

	handle("GET /breeds", listBreedsHandler(svc))
	handle("GET /breeds/{id}", getBreedHandler(svc))
	handle("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())

	// Outermost first: request id, tracing, access log
	return requestIDMiddleware(logger,
		observability.HTTPMiddleware(
			accessLogMiddleware(mux)))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func listBreedsHandler(svc breedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		page, err := intParam(query.Get("page"), pagination.DefaultPage)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "page "+err.Error())
			return
		}
		limit, err := intParam(query.Get("limit"), pagination.DefaultLimit)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
			return
		}

		result, err := svc.GetBreeds(r.Context(), page, limit, query.Get("search"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, result)
	}
}

func getBreedHandler(svc breedService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.GetBreedByID(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, result)
	}
}

// intParam parses a positive integer query value; empty yields def.
func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer (got %q)", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("must be >= 1 (got %d)", n)
	}
	return n, nil
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pagination.ErrInvalidParams):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, breed.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Breed not found")
	case errors.Is(err, service.ErrBreedsFetchFailed):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Upstream fetch failed")
		writeError(w, r, http.StatusBadGateway, "Failed to fetch breeds")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write response")
	}
}

// requestIDMiddleware reuses an incoming X-Request-ID or assigns a new one,
// echoes it in the response and attaches a request-scoped logger to the context.
func requestIDMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		reqLogger := logging.RequestLogger(logger, id)
		ctx := reqLogger.WithContext(r.Context())

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLogMiddleware logs one line per request.
func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		logger := zerolog.Ctx(r.Context())
		if span := trace.SpanFromContext(r.Context()); span.SpanContext().IsValid() {
			span.SetAttributes(observability.AttrRequestID.String(w.Header().Get(RequestIDHeader)))
		}

		event := logger.Info()
		if rw.status >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.status).
			Int("bytes", rw.bytes).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *responseRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}
