// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EntitlementDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonewise_entitlement_decisions_total",
			Help: "Entitlement decisions by feature and outcome",
		},
		[]string{"feature", "outcome"},
	)

	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonewise_provider_calls_total",
			Help: "Calls to external providers by provider, feature and outcome",
		},
		[]string{"provider", "feature", "outcome"},
	)

	ProviderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tonewise_provider_call_duration_seconds",
			Help:    "Duration of calls to external providers",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"provider", "feature"},
	)

	UsageRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonewise_usage_recorded_total",
			Help: "Successful usage counter increments by feature",
		},
		[]string{"feature"},
	)

	UsageRecordFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonewise_usage_record_failures_total",
			Help: "Usage counter increments that failed and were not retried",
		},
		[]string{"feature"},
	)

	ActionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonewise_action_failures_total",
			Help: "Failed metered actions by feature and error kind",
		},
		[]string{"feature", "kind"},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonewise_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tonewise_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(EntitlementDecisions)
	prometheus.MustRegister(ProviderCalls)
	prometheus.MustRegister(ProviderDuration)
	prometheus.MustRegister(UsageRecorded)
	prometheus.MustRegister(UsageRecordFailures)
	prometheus.MustRegister(ActionFailures)
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
}

// ObserveProviderCall records the outcome and duration of a provider call.
func ObserveProviderCall(provider, feature string, started time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ProviderCalls.WithLabelValues(provider, feature, outcome).Inc()
	ProviderDuration.WithLabelValues(provider, feature).Observe(time.Since(started).Seconds())
}

// Middleware records request counts and durations for every route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if httpErr, ok := err.(*echo.HTTPError); ok {
					status = httpErr.Code
				}
			}

			route := c.Path()
			HTTPRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			HTTPDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(started).Seconds())

			return err
		}
	}
}

// Handler returns the handler that exposes the collected metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
