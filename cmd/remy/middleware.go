package main

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	middlewarestd "github.com/slok/go-http-metrics/middleware/std"
)

type logger struct {
	http.Handler
}

func (l *logger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	l.Handler.ServeHTTP(w, r)
	if r.URL.Path == "/ready" || r.URL.Path == "/metrics" {
		return
	}
	slog.InfoContext(r.Context(), "request", "method", r.Method, "url", r.URL.Path, "duration", time.Since(start))
}

type recoverer struct {
	http.Handler
}

func (rec *recoverer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			slog.ErrorContext(r.Context(), "panic recovered", "error", err, "stack", debug.Stack())
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()
	rec.Handler.ServeHTTP(w, r)
}

func withMiddleware(h http.Handler) http.Handler {
	mdlw := middleware.New(middleware.Config{
		Recorder: metrics.NewRecorder(metrics.Config{}),
	})
	h = middlewarestd.Handler("", mdlw, h)
	return &logger{
		&recoverer{
			h,
		},
	}
}
