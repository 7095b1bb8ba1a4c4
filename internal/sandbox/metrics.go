package sandbox

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// registerMetrics はHTTPメトリクスをレジストリに登録する。
func (s *Server) registerMetrics() error {
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hotelops",
		Subsystem: "sandbox",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled by the sandbox backend.",
	}, []string{"method", "route", "code"})
	s.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hotelops",
		Subsystem: "sandbox",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency of the sandbox backend.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	for _, c := range []prometheus.Collector{s.requests, s.duration} {
		if err := s.registry.Register(c); err != nil {
			return fmt.Errorf("メトリクスの登録に失敗: %w", err)
		}
	}
	return nil
}

// instrument はリクエスト数と処理時間を記録するGinミドルウェアを返す。
func (s *Server) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		s.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
