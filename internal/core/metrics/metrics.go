package metrics

import (
	"errors"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

// 调用结果标签值
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomePanic = "panic"
)

var _ pkgif.MetricsReporter = (*Metrics)(nil)

// Stats 指标快照
type Stats struct {
	Posted          int64
	Dead            int64
	Invocations     int64
	Failures        int64
	Panics          int64
	SinkFailures    int64
	TotalHandleTime time.Duration
}

// Metrics Prometheus 指标集合
type Metrics struct {
	posted       *prometheus.CounterVec
	dead         *prometheus.CounterVec
	invocations  *prometheus.CounterVec
	sinkFailures *prometheus.CounterVec
	duration     *prometheus.HistogramVec

	clock clock.Clock

	// 进程内累计值
	nPosted       atomic.Int64
	nDead         atomic.Int64
	nInvocations  atomic.Int64
	nFailures     atomic.Int64
	nPanics       atomic.Int64
	nSinkFailures atomic.Int64
	nHandleNanos  atomic.Int64
}

// Option 指标选项
type Option func(*Metrics)

// WithClock 替换计时时钟（测试使用 clock.NewMock()）
func WithClock(c clock.Clock) Option {
	return func(m *Metrics) {
		m.clock = c
	}
}

// New 创建指标并注册到 reg
//
// 同一 Registerer 上已注册的同名指标会被复用，多条总线可共享一组指标，
// 通过 bus 标签区分。
func New(reg prometheus.Registerer, namespace string, opts ...Option) (*Metrics, error) {
	m := &Metrics{
		posted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_posted_total",
			Help:      "Events posted to the bus.",
		}, []string{"bus", "event_type"}),
		dead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_events_total",
			Help:      "Events posted with no matching subscriber.",
		}, []string{"bus"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_invocations_total",
			Help:      "Handler invocations by outcome.",
		}, []string{"bus", "outcome"}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exception_handler_failures_total",
			Help:      "Failures raised by the exception handler itself.",
		}, []string{"bus"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Handler invocation latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"bus"}),
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(m)
	}

	if reg != nil {
		var err error
		if m.posted, err = register(reg, m.posted); err != nil {
			return nil, err
		}
		if m.dead, err = register(reg, m.dead); err != nil {
			return nil, err
		}
		if m.invocations, err = register(reg, m.invocations); err != nil {
			return nil, err
		}
		if m.sinkFailures, err = register(reg, m.sinkFailures); err != nil {
			return nil, err
		}
		if m.duration, err = register(reg, m.duration); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// register 注册收集器，已存在时返回已注册的实例
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// EventPosted 记录一次投递
func (m *Metrics) EventPosted(bus string, eventType reflect.Type) {
	if m == nil {
		return
	}
	m.nPosted.Add(1)
	m.posted.WithLabelValues(bus, eventType.String()).Inc()
}

// DeadEvent 记录一次无订阅者投递
func (m *Metrics) DeadEvent(bus string) {
	if m == nil {
		return
	}
	m.nDead.Add(1)
	m.dead.WithLabelValues(bus).Inc()
}

// StartInvocation 开始计时一次处理方法调用，返回的函数在调用结束时传入结果
func (m *Metrics) StartInvocation(bus string) func(err error) {
	if m == nil {
		return func(error) {}
	}
	start := m.clock.Now()
	return func(err error) {
		elapsed := m.clock.Since(start)
		outcome := outcomeOf(err)

		m.nInvocations.Add(1)
		m.nHandleNanos.Add(int64(elapsed))
		switch outcome {
		case OutcomeError:
			m.nFailures.Add(1)
		case OutcomePanic:
			m.nPanics.Add(1)
		}

		m.invocations.WithLabelValues(bus, outcome).Inc()
		m.duration.WithLabelValues(bus).Observe(elapsed.Seconds())
	}
}

// ExceptionHandlerFailed 记录一次异常处理器失败
func (m *Metrics) ExceptionHandlerFailed(bus string) {
	if m == nil {
		return
	}
	m.nSinkFailures.Add(1)
	m.sinkFailures.WithLabelValues(bus).Inc()
}

// Snapshot 返回进程内累计值
func (m *Metrics) Snapshot() Stats {
	if m == nil {
		return Stats{}
	}
	return Stats{
		Posted:          m.nPosted.Load(),
		Dead:            m.nDead.Load(),
		Invocations:     m.nInvocations.Load(),
		Failures:        m.nFailures.Load(),
		Panics:          m.nPanics.Load(),
		SinkFailures:    m.nSinkFailures.Load(),
		TotalHandleTime: time.Duration(m.nHandleNanos.Load()),
	}
}

// outcomeOf 将调用结果映射为标签值
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, types.ErrHandlerPanicked):
		return OutcomePanic
	default:
		return OutcomeError
	}
}
