// Package metrics exposes Prometheus collectors for the cart, the catalog
// and the HTTP adapter.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

type Metrics struct {
	CartMutations   *prometheus.CounterVec
	CartItems       prometheus.Gauge
	CatalogRequests *prometheus.CounterVec
	CatalogDuration prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		CartMutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Applied cart mutations by kind",
		}, []string{"kind"}),
		CartItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_items",
			Help:      "Total quantity of items in the cart",
		}),
		CatalogRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Catalog fetches by result",
		}, []string{"result"}),
		CatalogDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Catalog fetch duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// ObserveStore counts every mutation of s and tracks its item count.
func (m *Metrics) ObserveStore(s *cart.Store) {
	m.CartItems.Set(float64(s.Count()))

	s.Subscribe(func(ev cart.Event) {
		m.CartMutations.WithLabelValues(string(ev.Kind)).Inc()
		m.CartItems.Set(float64(s.Count()))
	})
}

type instrumentedSource struct {
	next    port.ProductSource
	metrics *Metrics
}

// InstrumentProductSource wraps src to record fetch outcomes and latency.
func (m *Metrics) InstrumentProductSource(src port.ProductSource) port.ProductSource {
	return &instrumentedSource{next: src, metrics: m}
}

func (s *instrumentedSource) ListProducts(ctx context.Context, first int) ([]domain.Product, error) {
	start := time.Now()
	products, err := s.next.ListProducts(ctx, first)
	s.metrics.CatalogDuration.Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.CatalogRequests.WithLabelValues(result).Inc()

	return products, err
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware collects HTTP metrics labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := strconv.Itoa(rw.statusCode)

		m.HTTPRequests.WithLabelValues(r.Method, route, status).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}
