package redis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ErrorClass is the error taxonomy an Observer's execution counters are
// keyed by — semantic kinds, not Go error types.
type ErrorClass int

const (
	ClassNone ErrorClass = iota
	ClassIllegalArgument
	ClassIllegalState
	ClassTimeout
	ClassRedisError
	ClassKeyNotFound
	ClassUnexpectedError
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassIllegalArgument:
		return "illegal_argument"
	case ClassIllegalState:
		return "illegal_state"
	case ClassTimeout:
		return "timeout"
	case ClassRedisError:
		return "redis_error"
	case ClassKeyNotFound:
		return "key_not_found"
	case ClassUnexpectedError:
		return "unexpected_error"
	default:
		return "unknown"
	}
}

// classify maps a DirectClient-surfaced error to its ErrorClass. ServerError
// is always ClassRedisError here — MOVED/ASK never reach this function
// because ClusterRouter consumes them before they are classified.
func classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case err == ErrInvalidArgument:
		return ClassIllegalArgument
	case err == ErrIllegalState:
		return ClassIllegalState
	case err == ErrTimeout:
		return ClassTimeout
	case err == ErrKeyNotFound, err == errNull:
		return ClassKeyNotFound
	default:
		if _, ok := err.(ServerError); ok {
			return ClassRedisError
		}
		return ClassUnexpectedError
	}
}

// PublishClass distinguishes outcomes of a PUBLISH call.
type PublishClass int

const (
	PublishOK PublishClass = iota
	PublishError
	PublishNoSubscriber
)

// LockClass distinguishes outcomes of a lock acquisition/release.
type LockClass int

const (
	LockAcquired LockClass = iota
	LockFailed
	LockError
	LockUnlockSuccess
	LockUnlockError
)

// Observer receives lifecycle and outcome events. It is an injected
// dependency, not a process-wide singleton — every ClientList, DirectClient
// and DistributedLock takes one explicitly, defaulting to NopObserver.
type Observer interface {
	OnCreated(list, host string)
	OnClosed(list, host string)
	OnRecovered(list, host string)
	OnExecution(class ErrorClass, elapsed time.Duration)
	OnSlowCall(op string, elapsed time.Duration)
	OnPublish(class PublishClass)
	OnLockAcquire(class LockClass, holdTime time.Duration)
}

// NopObserver discards every event. It is the zero-value default so a
// caller who does not care about metrics need not construct anything.
type NopObserver struct{}

func (NopObserver) OnCreated(string, string)                     {}
func (NopObserver) OnClosed(string, string)                      {}
func (NopObserver) OnRecovered(string, string)                   {}
func (NopObserver) OnExecution(ErrorClass, time.Duration)        {}
func (NopObserver) OnSlowCall(string, time.Duration)             {}
func (NopObserver) OnPublish(PublishClass)                       {}
func (NopObserver) OnLockAcquire(LockClass, time.Duration)        {}

// PrometheusObserver reports the same events as Prometheus gauges and
// counters under a configurable namespace, mirroring the
// promauto-registration style used elsewhere in the corpus for service
// metrics.
type PrometheusObserver struct {
	listHosts    *prometheus.GaugeVec
	executions   *prometheus.CounterVec
	slowCalls    *prometheus.CounterVec
	publishes    *prometheus.CounterVec
	lockOutcomes *prometheus.CounterVec
	lockHoldTime prometheus.Histogram
}

// NewPrometheusObserver registers its collectors under namespace and
// returns a ready-to-use Observer. Call it once per namespace; registering
// the same namespace twice against the default registry panics, matching
// promauto's own behavior.
func NewPrometheusObserver(namespace string) *PrometheusObserver {
	return &PrometheusObserver{
		listHosts: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "client_list_host_state",
			Help:      "1 if the host's DirectClient is available, 0 otherwise.",
		}, []string{"list", "host"}),
		executions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Command executions by outcome class.",
		}, []string{"class"}),
		slowCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slow_calls_total",
			Help:      "Commands exceeding the slow-execution threshold, by operation.",
		}, []string{"op"}),
		publishes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "PUBLISH outcomes.",
		}, []string{"class"}),
		lockOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_outcomes_total",
			Help:      "DistributedLock acquire/release outcomes.",
		}, []string{"class"}),
		lockHoldTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_hold_seconds",
			Help:      "Time between a successful tryLock and its unlock.",
		}),
	}
}

func (o *PrometheusObserver) OnCreated(list, host string) {
	o.listHosts.WithLabelValues(list, host).Set(1)
}

func (o *PrometheusObserver) OnClosed(list, host string) {
	o.listHosts.WithLabelValues(list, host).Set(0)
}

func (o *PrometheusObserver) OnRecovered(list, host string) {
	o.listHosts.WithLabelValues(list, host).Set(1)
}

func (o *PrometheusObserver) OnExecution(class ErrorClass, _ time.Duration) {
	o.executions.WithLabelValues(class.String()).Inc()
}

func (o *PrometheusObserver) OnSlowCall(op string, _ time.Duration) {
	o.slowCalls.WithLabelValues(op).Inc()
}

func (o *PrometheusObserver) OnPublish(class PublishClass) {
	label := "ok"
	switch class {
	case PublishError:
		label = "error"
	case PublishNoSubscriber:
		label = "no_subscriber"
	}
	o.publishes.WithLabelValues(label).Inc()
}

func (o *PrometheusObserver) OnLockAcquire(class LockClass, holdTime time.Duration) {
	label := "acquired"
	switch class {
	case LockFailed:
		label = "failed"
	case LockError:
		label = "error"
	case LockUnlockSuccess:
		label = "unlock_success"
	case LockUnlockError:
		label = "unlock_error"
	}
	o.lockOutcomes.WithLabelValues(label).Inc()
	if class == LockUnlockSuccess && holdTime > 0 {
		o.lockHoldTime.Observe(holdTime.Seconds())
	}
}
