package simulate

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
)

// Counter is go-kit's counter, probably only need to use Add(1) though.
type Counter = metrics.Counter

// Metrics is used for tracking metrics.
type Metrics struct {
	RequestsHandled Counter
	DecodeErrors    Counter
	LegacyRequests  Counter
}

// NopMetrics returns metrics that go nowhere.
func NopMetrics() *Metrics {
	return &Metrics{
		RequestsHandled: discard.NewCounter(),
		DecodeErrors:    discard.NewCounter(),
		LegacyRequests:  discard.NewCounter(),
	}
}
