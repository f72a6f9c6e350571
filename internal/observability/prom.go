package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Auth
	AuthFailures  *prometheus.CounterVec
	TokensIssued  prometheus.Counter
	TokensRevoked prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bloghub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bloghub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				// Sane initial defaults
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "bloghub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bloghub",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bloghub",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),

		AuthFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bloghub",
				Subsystem: "auth",
				Name:      "failures_total",
				Help:      "Rejected authentication attempts by error code.",
			},
			[]string{"code"},
		),
		TokensIssued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "bloghub",
				Subsystem: "auth",
				Name:      "tokens_issued_total",
				Help:      "Access tokens issued by successful logins.",
			},
		),
		TokensRevoked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "bloghub",
				Subsystem: "auth",
				Name:      "tokens_revoked_total",
				Help:      "Access tokens revoked through logout.",
			},
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.DbQueryDuration, p.DbErrorsTotal, p.AuthFailures, p.TokensIssued, p.TokensRevoked)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// The helpers below are safe to call on a nil *Prom.

func (p *Prom) RecordAuthFailure(code string) {
	if p == nil {
		return
	}
	p.AuthFailures.WithLabelValues(code).Inc()
}

func (p *Prom) RecordTokenIssued() {
	if p == nil {
		return
	}
	p.TokensIssued.Inc()
}

func (p *Prom) RecordTokenRevoked() {
	if p == nil {
		return
	}
	p.TokensRevoked.Inc()
}
