package common

import "github.com/prometheus/client_golang/prometheus"

var PromCounters = map[string]*prometheus.CounterVec{
	"http_request_total": prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_request_total",
		Help: "The total number of http requests",
	}, []string{"method", "path", "status"}),

	"gateway_event_total": prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_event_total",
		Help: "The total number of gateway events received",
	}, []string{"type"}),

	"resync_page_total": prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resync_page_total",
		Help: "The total number of message pages crawled during resync",
	}, []string{"channel"}),
}

var PromHistograms = map[string]*prometheus.HistogramVec{
	"http_request_duration_seconds": prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "The duration of http requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"}),
}
