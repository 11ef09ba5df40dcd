package inference

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK          = "ok"
	outcomeStatus      = "upstream_status"
	outcomeUnavailable = "unavailable"
	outcomeBadResponse = "bad_response"
)

// callDuration records inference latency by outcome. Buckets reach past the
// default read timeout since CPU-bound models can take minutes.
var callDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "emotion_inference_duration_seconds",
		Help:    "Duration of calls to the emotion inference endpoint.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(callDuration)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrUpstreamStatus):
		return outcomeStatus
	case errors.Is(err, ErrBadResponse):
		return outcomeBadResponse
	default:
		return outcomeUnavailable
	}
}

func observe(err error, d time.Duration) {
	callDuration.WithLabelValues(outcomeOf(err)).Observe(d.Seconds())
}
