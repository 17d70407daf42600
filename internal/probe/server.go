package probe

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// rateLimitMiddleware caps request throughput on the prober's small HTTP
// surface, the same role chi middleware plays in the teacher's gateway
// router but backed by a token bucket instead of a fixed-window counter.
func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer builds the prober's HTTP surface: a /healthz liveness probe
// reflecting the outcome of the most recently run check, and a /metrics
// endpoint for reg's Prometheus gauges.
func NewServer(reg *prometheus.Registry, healthy *atomic.Bool) http.Handler {
	r := chi.NewRouter()
	r.Use(rateLimitMiddleware(rate.NewLimiter(rate.Limit(10), 20)))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if healthy == nil || healthy.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unhealthy"))
	})

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return http.TimeoutHandler(r, serverTimeout, "handler timeout")
}

// Healthy is a liveness flag the scheduler sets after each check run to
// that check's outcome, so it reflects the most recently run check.
type Healthy struct {
	flag atomic.Bool
}

// NewHealthy starts in the healthy state; the first failing check flips it.
func NewHealthy() *Healthy {
	h := &Healthy{}
	h.flag.Store(true)
	return h
}

func (h *Healthy) Set(ok bool) { h.flag.Store(ok) }
func (h *Healthy) Flag() *atomic.Bool { return &h.flag }

// serverTimeout bounds how long a handler may block, matching the 5s
// collaborator timeout used elsewhere in the prober.
const serverTimeout = 5 * time.Second
