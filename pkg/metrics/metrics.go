package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AI 文本生成调用延迟（毫秒）
	GenerationCallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_call_latency_ms",
			Help:    "Text generation API call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~100s
		},
		[]string{"kind", "status"},
	)

	// 降级建议计数（AI 不可用时使用规则表）
	FallbackSuggestionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_suggestion_count",
			Help: "Total number of suggestions served from the deterministic rule table",
		},
		[]string{"kind", "reason"}, // reason: missing_key, generation_failed
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 领域事件发布计数
	EventPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_publish_count",
			Help: "Total number of domain events published",
		},
		[]string{"routing_key", "status"}, // status: success, failed
	)
)

// RecordGenerationCallLatency 记录生成调用延迟
func RecordGenerationCallLatency(kind, status string, duration time.Duration) {
	GenerationCallLatency.WithLabelValues(kind, status).Observe(float64(duration.Milliseconds()))
}

// IncrementFallbackSuggestion 增加降级建议计数
func IncrementFallbackSuggestion(kind, reason string) {
	FallbackSuggestionCount.WithLabelValues(kind, reason).Inc()
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementEventPublish 增加事件发布计数
func IncrementEventPublish(routingKey, status string) {
	EventPublishCount.WithLabelValues(routingKey, status).Inc()
}
