// Metrics collection for rxlite
// 基于Prometheus的流与调度器指标采集
package rxlite

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// ============================================================================
// MetricsCollector 指标收集器
// ============================================================================

// MetricsOptions 指标收集器配置
type MetricsOptions struct {
	// Namespace 指标名前缀，缺省为rxlite
	Namespace string
	// Registerer 指标注册表，缺省为全局注册表
	Registerer prometheus.Registerer
	// Logger 结构化日志，缺省为空logger
	Logger *zap.Logger
}

// MetricsCollector 流与调度器的Prometheus指标收集器
type MetricsCollector struct {
	logger *zap.Logger

	eventsTotal         *prometheus.CounterVec
	activeSubscriptions *prometheus.GaugeVec
	tasksScheduled      *prometheus.CounterVec
	tasksCompleted      *prometheus.CounterVec
	tasksFailed         *prometheus.CounterVec
}

// NewMetricsCollector 创建指标收集器
func NewMetricsCollector(opts MetricsOptions) *MetricsCollector {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "rxlite"
	}
	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(registerer)

	return &MetricsCollector{
		logger: logger.With(zap.String("component", "metrics")),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Total stream events by kind",
		}, []string{"stream", "kind"}),
		activeSubscriptions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stream_active_subscriptions",
			Help:      "Currently live subscriptions per stream",
		}, []string{"stream"}),
		tasksScheduled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_tasks_scheduled_total",
			Help:      "Tasks handed to the scheduler",
		}, []string{"scheduler"}),
		tasksCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_tasks_completed_total",
			Help:      "Tasks that ran to completion",
		}, []string{"scheduler"}),
		tasksFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduler_tasks_failed_total",
			Help:      "Tasks that panicked during execution",
		}, []string{"scheduler"}),
	}
}

func (c *MetricsCollector) eventNext(stream string) {
	c.eventsTotal.WithLabelValues(stream, "next").Inc()
}

func (c *MetricsCollector) eventError(stream string) {
	c.eventsTotal.WithLabelValues(stream, "error").Inc()
}

func (c *MetricsCollector) eventComplete(stream string) {
	c.eventsTotal.WithLabelValues(stream, "complete").Inc()
}

func (c *MetricsCollector) subscriptionOpened(stream string) {
	c.activeSubscriptions.WithLabelValues(stream).Inc()
}

func (c *MetricsCollector) subscriptionClosed(stream string) {
	c.activeSubscriptions.WithLabelValues(stream).Dec()
}

func (c *MetricsCollector) taskScheduled(scheduler string) {
	c.tasksScheduled.WithLabelValues(scheduler).Inc()
}

func (c *MetricsCollector) taskCompleted(scheduler string) {
	c.tasksCompleted.WithLabelValues(scheduler).Inc()
}

func (c *MetricsCollector) taskFailed(scheduler string) {
	c.tasksFailed.WithLabelValues(scheduler).Inc()
	c.logger.Warn("task failed", zap.String("scheduler", scheduler))
}

// ============================================================================
// Monitor 操作符
// ============================================================================

// Monitor 为流挂接指标采集
// 按事件种类计数，并以gauge统计存活订阅数；stream用作指标标签
func (o *Observable) Monitor(collector *MetricsCollector, stream string) *Observable {
	if collector == nil {
		panic(NewArgumentError("Monitor", "collector is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		collector.subscriptionOpened(stream)
		closed := NewSubscription(func() { collector.subscriptionClosed(stream) })
		source := o.subscribe(NewObserver(func(value interface{}) {
			collector.eventNext(stream)
			observer.OnNext(value)
		}, func(err error) {
			collector.eventError(stream)
			observer.OnError(err)
			closed.Unsubscribe()
		}, func() {
			collector.eventComplete(stream)
			observer.OnComplete()
			closed.Unsubscribe()
		}))
		return NewSubscription(func() {
			source.Unsubscribe()
			closed.Unsubscribe()
		})
	})
}
