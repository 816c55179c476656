package prometheus

import (
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/travisjeffery/pipesim/simulate"
)

const namespace = "pipesim"

// NewMetrics returns server metrics registered with the default prometheus
// registerer. Call it once per process.
func NewMetrics() *simulate.Metrics {
	return &simulate.Metrics{
		RequestsHandled: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_handled",
			Help:      "Number of requests handled by the server.",
		}, nil),
		DecodeErrors: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors",
			Help:      "Number of request bodies that failed to decode.",
		}, nil),
		LegacyRequests: kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_requests",
			Help:      "Number of simulate pipeline requests sent at a version without content types.",
		}, nil),
	}
}
