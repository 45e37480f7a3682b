package telemetry

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mis/api/internal/core/domain"
	"mis/api/internal/infrastructure/crypto"
)

// Metrics owns a private Prometheus registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// FieldCipherOpsTotal counts protect and reveal calls by outcome class.
	// A rising reveal/decryption rate means tampered rows or a key mismatch.
	FieldCipherOpsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mis_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mis_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		FieldCipherOpsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "mis_field_cipher_operations_total",
				Help: "Field cipher operations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records one sample per request, labelled by chi route pattern
// rather than raw path so household ids never become label values.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// InstrumentCipher wraps c so every call is counted. Values never reach a label.
func (m *Metrics) InstrumentCipher(c domain.FieldCipher) domain.FieldCipher {
	return &instrumentedCipher{next: c, ops: m.FieldCipherOpsTotal}
}

type instrumentedCipher struct {
	next domain.FieldCipher
	ops  *prometheus.CounterVec
}

func (c *instrumentedCipher) Protect(plaintext string) (string, error) {
	blob, err := c.next.Protect(plaintext)
	c.ops.WithLabelValues("protect", outcome(err)).Inc()
	return blob, err
}

func (c *instrumentedCipher) Reveal(blob string) (string, error) {
	plaintext, err := c.next.Reveal(blob)
	c.ops.WithLabelValues("reveal", outcome(err)).Inc()
	return plaintext, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, crypto.ErrMalformedInput):
		return "malformed"
	case errors.Is(err, crypto.ErrDecryption):
		return "decryption"
	case errors.Is(err, crypto.ErrEncryption):
		return "encryption"
	case errors.Is(err, crypto.ErrConfiguration):
		return "configuration"
	default:
		return "other"
	}
}
