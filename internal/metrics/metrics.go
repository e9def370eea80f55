// Package metrics defines the Prometheus collectors for the storefront.
//
// Metric naming follows Prometheus conventions:
//   - storefront_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestDuration observes request latency by route, method and status.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	// GraphQLOperationsTotal counts executed GraphQL operations by name and outcome.
	GraphQLOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_graphql_operations_total",
			Help: "Total GraphQL operations by operation name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// AuthEventsTotal counts signups, signins, signouts and resets by result.
	AuthEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_events_total",
			Help: "Total authentication events by kind and result.",
		},
		[]string{"event", "result"},
	)

	// ChargesTotal counts payment processor calls by result.
	ChargesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_charges_total",
			Help: "Total card charges by result.",
		},
		[]string{"result"},
	)

	// OrdersTotal counts orders by terminal status.
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_total",
			Help: "Total orders by final status.",
		},
		[]string{"status"},
	)

	// JobRunsTotal counts background job runs by job and result.
	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_job_runs_total",
			Help: "Total background job runs by job and result.",
		},
		[]string{"job", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		GraphQLOperationsTotal,
		AuthEventsTotal,
		ChargesTotal,
		OrdersTotal,
		JobRunsTotal,
	)
}

func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware records request latency under the matched route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			HTTPRequestDuration.
				WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
