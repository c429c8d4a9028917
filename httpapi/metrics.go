package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors exposed at /metrics.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "decisiongov_http_requests_total",
			Help: "Total HTTP requests processed, by route and status code.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "decisiongov_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	registerOrReuse(m.requestsTotal)
	registerOrReuse(m.requestDuration)
	return m
}

// middleware wraps next with request counting and latency observation. The
// decision stream route is excluded from duration buckets since an SSE
// connection intentionally stays open for the life of a pipeline run and
// would otherwise skew the histogram.
func (m *metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		if !isStreamRoute(route) {
			m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

// registerOrReuse registers c with the default Prometheus registry,
// tolerating the case where a previous Server instance (e.g. in tests)
// already registered a collector with the same descriptor.
func registerOrReuse(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			panic(err)
		}
	}
}

func isStreamRoute(path string) bool {
	return len(path) > 7 && path[len(path)-7:] == "/stream"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
