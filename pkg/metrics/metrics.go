/*
Package metrics 持久化适配层的 Prometheus 指标。

所有指标注册在独立的 Registry 上（而不是全局 DefaultRegisterer），
由 API 层通过 Handler 暴露。
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hexagonal"

var (
	Registry = prometheus.NewRegistry()

	// IdentifiersGenerated 生成的标识符数量，按标识符类型和策略
	IdentifiersGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "idgen",
		Name:      "generated_total",
		Help:      "Identifiers handed out by a generator.",
	}, []string{"kind"})

	// IdentifierFailures 生成失败次数
	IdentifierFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "idgen",
		Name:      "failures_total",
		Help:      "Identifier generation failures.",
	}, []string{"kind"})

	// IdentifierLatency 生成耗时（包含序列后端的往返）
	IdentifierLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "idgen",
		Name:      "duration_seconds",
		Help:      "Identifier generation latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"kind"})

	// OptimisticConflicts 乐观锁冲突次数
	OptimisticConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "store",
		Name:      "optimistic_conflicts_total",
		Help:      "Updates rejected because the stored version moved on.",
	}, []string{"kind"})

	// EventsPublished 交给事件 sink 的事件数量，result 为 ok 或 error
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Domain events handed to an event sink.",
	}, []string{"kind", "result"})

	// OutboxRelayed outbox 转发结果
	OutboxRelayed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "outbox",
		Name:      "relayed_total",
		Help:      "Outbox rows processed by the relay worker.",
	}, []string{"result"})

	// HTTPRequests API 请求数，route 为 gin 路由模板
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served by the API.",
	}, []string{"method", "route", "status"})

	// HTTPDuration API 请求耗时
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		IdentifiersGenerated,
		IdentifierFailures,
		IdentifierLatency,
		OptimisticConflicts,
		EventsPublished,
		OutboxRelayed,
		HTTPRequests,
		HTTPDuration,
	)
}

// Handler 暴露 Registry 的 HTTP handler
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
