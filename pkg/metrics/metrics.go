package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
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

	// 账本操作计数
	LedgerOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operation_count",
			Help: "Total number of ledger operations by entity, action and outcome",
		},
		[]string{"entity", "action", "outcome"}, // outcome: ok 或错误码
	)

	// 追加预算申请状态流转计数
	RequestTransitionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_request_transition_count",
			Help: "Total number of additional request decisions",
		},
		[]string{"to"}, // to: Approved, Rejected
	)

	// 事件发布失败计数
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_event_publish_failures",
			Help: "Total number of ledger events that could not be published",
		},
		[]string{"routing_key"},
	)

	// 审计事件处理计数
	AuditEventCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_audit_event_count",
			Help: "Total number of ledger events handled by the audit worker",
		},
		[]string{"status"}, // status: stored, duplicate, failed
	)
)

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementLedgerOperation 增加账本操作计数
func IncrementLedgerOperation(entity, action, outcome string) {
	LedgerOperationCount.WithLabelValues(entity, action, outcome).Inc()
}

// IncrementRequestTransition 增加申请状态流转计数
func IncrementRequestTransition(to string) {
	RequestTransitionCount.WithLabelValues(to).Inc()
}

// IncrementEventPublishFailure 增加事件发布失败计数
func IncrementEventPublishFailure(routingKey string) {
	EventPublishFailures.WithLabelValues(routingKey).Inc()
}

// IncrementAuditEvent 增加审计事件处理计数
func IncrementAuditEvent(status string) {
	AuditEventCount.WithLabelValues(status).Inc()
}
