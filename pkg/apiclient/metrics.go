package apiclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics はAPIクライアントのリクエストメトリクス。
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// WithMetrics はリクエスト数とレイテンシをregに登録して記録する。
// 同じregに既に登録済みのコレクタがあればそれを再利用する。
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		if reg == nil {
			return
		}
		c.metrics = newMetrics(reg)
	}
}

func newMetrics(reg prometheus.Registerer) *metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelops",
		Subsystem: "apiclient",
		Name:      "requests_total",
		Help:      "Total number of backend API requests by method and status code.",
	}, []string{"method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hotelops",
		Subsystem: "apiclient",
		Name:      "request_duration_seconds",
		Help:      "Backend API request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	return &metrics{
		requests: registerOrExisting(reg, requests),
		duration: registerOrExisting(reg, duration),
	}
}

func registerOrExisting[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// observe は1回のリクエスト結果を記録する。mがnilの場合は何もしない。
func (m *metrics) observe(method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
