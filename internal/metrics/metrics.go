package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Order feed
	FeedConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "symfx_feed_connected",
			Help: "1 while the order feed socket is open",
		},
	)
	FeedReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "symfx_feed_reconnect_attempts_total",
			Help: "Reconnect attempts made after the order feed closed",
		},
	)
	FeedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symfx_feed_messages_total",
			Help: "Order feed messages by outcome",
		},
		[]string{"outcome"}, // merged, dropped, malformed
	)

	// Order store
	StoreOrders = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "symfx_store_orders",
			Help: "Orders held in the shared store by state",
		},
		[]string{"state"},
	)
	StoreOverrides = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "symfx_store_local_overrides",
			Help: "Local rate edits awaiting a backend broadcast",
		},
	)
	StaleOverrides = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "symfx_store_stale_overrides",
			Help: "Local rate edits unanswered for longer than STALE_OVERRIDE_AFTER",
		},
	)

	// Backend writes
	SubmitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symfx_order_submits_total",
			Help: "PUT /orders/{id} calls by result",
		},
		[]string{"result"}, // ok, rejected, error
	)
	SubmitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "symfx_order_submit_duration_seconds",
			Help:    "Latency of PUT /orders/{id}",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Browser fanout
	HubClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "symfx_hub_clients",
			Help: "Browser sockets subscribed to view updates",
		},
	)

	// HTTP
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "symfx_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "symfx_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry, once
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			FeedConnected,
			FeedReconnects,
			FeedMessages,
			StoreOrders,
			StoreOverrides,
			StaleOverrides,
			SubmitsTotal,
			SubmitDuration,
			HubClients,
			HTTPRequestsTotal,
			HTTPRequestDuration,
		)
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
