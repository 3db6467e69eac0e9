// Prometheus instrumentation for the farm API. HTTP series are labelled by
// method, registered route and status; the domain counters below carry no
// farm label.

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// No status label on the histograms.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	// Buckets reach 5MiB for CSV and PDF report exports.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_response_size_bytes",
			Help: "Size of HTTP responses in bytes.",
			Buckets: []float64{
				200, 500, 1 << 10, 2 << 10, 5 << 10, // 200B..5KiB
				10 << 10, 25 << 10, 50 << 10, // 10..50KiB
				100 << 10, 250 << 10, 500 << 10, // 100..500KiB
				1 << 20, 2 << 20, 5 << 20, // 1..5MiB
			},
		},
		[]string{"method", "path"},
	)
)

// Domain counters. They carry no farm label so cardinality stays fixed as
// farms are registered.
var (
	farmsRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dairy_farms_registered_total",
		Help: "Farms registered through the API.",
	})

	milkRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dairy_milk_litres_total",
			Help: "Litres of milk recorded, by flow (produced or sold).",
		},
		[]string{"flow"},
	)

	recordsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dairy_records_created_total",
			Help: "Herd and finance records created, by kind.",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize)
	prometheus.MustRegister(farmsRegistered, milkRecorded, recordsCreated)
}

// ObserveFarmRegistered counts a successful farm registration.
func ObserveFarmRegistered() { farmsRegistered.Inc() }

// ObserveMilk adds litres to the produced or sold flow. Negative values are
// ignored since counters only grow.
func ObserveMilk(flow string, litres float64) {
	if litres > 0 {
		milkRecorded.WithLabelValues(flow).Add(litres)
	}
}

// ObserveRecord counts a created record of the given kind.
func ObserveRecord(kind string) { recordsCreated.WithLabelValues(kind).Inc() }

// Metrics records request count, latency, in-flight gauge and response size.
// The path label is the route template, so /farms/sunrise/cows/Cow-3 and
// /farms/hilltop/cows/Cow-9 share one series; unmatched requests fall back
// to the raw path.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		dur := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		size := c.Writer.Size() // -1 when unknown

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(dur)
		if size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
