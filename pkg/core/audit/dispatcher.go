package audit

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/kobbyowen/focus/pkg/core/audit/repository/dao"
	"github.com/prometheus/client_golang/prometheus"
)

// OverflowPolicy decides what a full queue gives up.
type OverflowPolicy string

const (
	DropNewest OverflowPolicy = "drop_newest"
	DropOldest OverflowPolicy = "drop_oldest"
)

// ParseOverflowPolicy falls back to DropNewest for unknown values.
func ParseOverflowPolicy(s string) OverflowPolicy {
	if OverflowPolicy(s) == DropOldest {
		return DropOldest
	}
	return DropNewest
}

type Options struct {
	QueueSize  int
	Workers    int
	Policy     OverflowPolicy
	Registerer prometheus.Registerer
}

type job struct {
	description string
	queuedAt    time.Time
}

// Dispatcher is a Recorder backed by a bounded queue and a worker pool.
// Record never blocks: when the queue is full the overflow policy drops a job.
type Dispatcher struct {
	store   dao.LogRepository
	queue   chan job
	workers int
	policy  OverflowPolicy
	metrics *Metrics

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

var _ Recorder = (*Dispatcher)(nil)

func NewDispatcher(store dao.LogRepository, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Policy == "" {
		opts.Policy = DropNewest
	}

	d := &Dispatcher{
		store:   store,
		queue:   make(chan job, opts.QueueSize),
		workers: opts.Workers,
		policy:  opts.Policy,
		metrics: NewMetrics(opts.Registerer),
	}

	if opts.Registerer != nil {
		opts.Registerer.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "focus",
			Subsystem: "audit",
			Name:      "queue_depth",
			Help:      "Change descriptions waiting for a worker",
		}, func() float64 { return float64(len(d.queue)) }))
	}
	return d
}

// Start launches the workers. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	d.wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go d.work()
	}
	hlog.Infof("[AUDIT] dispatcher started workers=%d queue=%d policy=%s", d.workers, cap(d.queue), d.policy)
}

// Record describes the change and enqueues the description.
func (d *Dispatcher) Record(ctx context.Context, before, after Snapshot) {
	description, ok := Describe(before, after)
	if !ok {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.metrics.dropped.WithLabelValues(dropClosed).Inc()
		hlog.CtxWarnf(ctx, "[AUDIT] dispatcher closed, dropping %q", description)
		return
	}

	j := job{description: description, queuedAt: time.Now()}
	select {
	case d.queue <- j:
		d.metrics.enqueued.Inc()
		return
	default:
	}

	if d.policy == DropOldest {
		select {
		case old := <-d.queue:
			d.drop(ctx, old)
		default:
		}
		select {
		case d.queue <- j:
			d.metrics.enqueued.Inc()
			return
		default:
		}
	}
	d.drop(ctx, j)
}

func (d *Dispatcher) drop(ctx context.Context, j job) {
	d.metrics.dropped.WithLabelValues(dropOverflow).Inc()
	hlog.CtxWarnf(ctx, "[AUDIT] queue full (policy=%s), dropping %q", d.policy, j.description)
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.write(j)
	}
}

func (d *Dispatcher) write(j job) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.failed.Inc()
			hlog.Errorf("[AUDIT] [PANIC RECOVERED] %v\n%s", r, debug.Stack())
		}
	}()

	entry, err := d.store.Append(context.Background(), j.description)
	if err != nil {
		d.metrics.failed.Inc()
		hlog.Errorf("[AUDIT] failed to store %q: %v", j.description, err)
		return
	}
	d.metrics.written.Inc()
	hlog.Debugf("[AUDIT] entry=%d lag=%v %s", entry.ID, time.Since(j.queuedAt), j.description)
}

// Close stops accepting changes and waits until queued ones are stored
// or ctx is done. Jobs queued on a dispatcher that was never started are discarded.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
