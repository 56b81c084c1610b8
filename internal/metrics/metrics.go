// Package metrics exposes pipeline counters and stage timings to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
)

// Recorder is what the pipeline reports into
type Recorder interface {
	RunFinished(backend, outcome string)
	StageDuration(stage string, d time.Duration)
	ObservePoll(status string)
}

// Metrics holds the registered collectors
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	pollsTotal    *prometheus.CounterVec
	gatherer      prometheus.Gatherer
}

// New registers the pipeline collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_runs_total",
				Help: "Finished pipeline runs by video backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_stage_duration_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"stage"},
		),
		pollsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_job_polls_total",
				Help: "Remote synthesis status queries by reported status",
			},
			[]string{"status"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.runsTotal, m.stageDuration, m.pollsTotal)
	return m
}

func (m *Metrics) RunFinished(backend, outcome string) {
	m.runsTotal.WithLabelValues(backend, outcome).Inc()
}

func (m *Metrics) StageDuration(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObservePoll(status string) {
	if status == "" {
		status = "unknown"
	}
	m.pollsTotal.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Serve runs the /metrics endpoint on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "Metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Nop discards everything
type Nop struct{}

func (Nop) RunFinished(backend, outcome string)         {}
func (Nop) StageDuration(stage string, d time.Duration) {}
func (Nop) ObservePoll(status string)                   {}
