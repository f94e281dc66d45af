// Package metrics exposes Prometheus metrics for the catalog server: search
// telemetry, gRPC request counters and recycle-bin purges.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	SearchesTotal       *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	SearchResults       prometheus.Histogram
	DroppedConditions   *prometheus.CounterVec
	GrpcRequestsTotal   *prometheus.CounterVec
	GrpcRequestDuration *prometheus.HistogramVec
	PurgedAssetsTotal   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcatalog_searches_total",
			Help: "Total number of advanced searches",
		}, []string{"logic", "status"}),
		SearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assetcatalog_search_duration_seconds",
			Help:    "Duration of advanced searches in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"logic"}),
		SearchResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "assetcatalog_search_results",
			Help:    "Number of matches per search before paging",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		DroppedConditions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcatalog_search_dropped_conditions_total",
			Help: "Search conditions ignored because they were unusable",
		}, []string{"field"}),
		GrpcRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "assetcatalog_grpc_requests_total",
			Help: "Total number of gRPC requests",
		}, []string{"method", "code"}),
		GrpcRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assetcatalog_grpc_request_duration_seconds",
			Help:    "Duration of gRPC requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		PurgedAssetsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "assetcatalog_purged_assets_total",
			Help: "Assets removed permanently from the recycle bin",
		}),
	}
}

// ConditionDropped counts an unusable search condition. Unknown field
// names are folded into one label value to bound cardinality.
func (m *Metrics) ConditionDropped(field string) {
	switch field {
	case "filename", "filetype", "tags", "filesize", "datecreated", "createdat", "metadata", "id", "ids":
	default:
		field = "unknown"
	}
	m.DroppedConditions.WithLabelValues(field).Inc()
}

func (m *Metrics) SearchCompleted(logic string, total int, elapsed time.Duration, err error) {
	s := "ok"
	if err != nil {
		s = "error"
	}
	m.SearchesTotal.WithLabelValues(logic, s).Inc()
	m.SearchDuration.WithLabelValues(logic).Observe(elapsed.Seconds())
	if err == nil {
		m.SearchResults.Observe(float64(total))
	}
}

func (m *Metrics) AssetsPurged(n int) {
	m.PurgedAssetsTotal.Add(float64(n))
}

// UnaryServerInterceptor records count and latency of every unary call.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		m.GrpcRequestsTotal.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		m.GrpcRequestDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		return resp, err
	}
}
