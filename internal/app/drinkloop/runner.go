package drinkloop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const DefaultInterval = 100 * time.Millisecond

// TickFunc runs one frame. Returned errors are logged and the loop continues.
type TickFunc func(ctx context.Context, now time.Time) error

// Runner drives a TickFunc once per frame interval. At most one loop runs
// per Runner; Start replaces a running loop instead of adding a second one.
type Runner struct {
	Name     string
	Interval time.Duration
	Tick     TickFunc
	// OnFailure is called after a tick panics or returns an error.
	OnFailure func()

	mu       sync.Mutex
	cur      *run
	frames   atomic.Uint64
	failures atomic.Uint64
}

type run struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (r *run) halt() {
	r.once.Do(func() { close(r.stop) })
	<-r.done
}

func New(name string, interval time.Duration, tick TickFunc) *Runner {
	return &Runner{Name: name, Interval: interval, Tick: tick}
}

// Start stops any loop already running, then starts a new one bound to ctx.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil {
		r.cur.halt()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	cur := &run{stop: make(chan struct{}), done: make(chan struct{})}
	r.cur = cur
	go r.loop(ctx, cur, interval)
}

// Stop halts the loop and waits for an in-flight tick to return. Stopping a
// stopped runner is a no-op. Stop must not be called from inside Tick.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur == nil {
		return
	}
	r.cur.halt()
	r.cur = nil
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur == nil {
		return false
	}
	select {
	case <-r.cur.done:
		return false
	default:
		return true
	}
}

func (r *Runner) Frames() uint64   { return r.frames.Load() }
func (r *Runner) Failures() uint64 { return r.failures.Load() }

func (r *Runner) loop(ctx context.Context, cur *run, interval time.Duration) {
	defer close(cur.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-cur.stop:
			return
		case now := <-ticker.C:
			r.frame(ctx, now)
		}
	}
}

// frame runs one tick. A panic is recovered so one bad frame never ends the loop.
func (r *Runner) frame(ctx context.Context, now time.Time) {
	r.frames.Add(1)
	if r.Tick == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.failures.Add(1)
			hlog.CtxErrorf(ctx, "drink loop %s: tick panicked: %v", r.Name, p)
			if r.OnFailure != nil {
				r.OnFailure()
			}
		}
	}()
	if err := r.Tick(ctx, now); err != nil {
		r.failures.Add(1)
		hlog.CtxWarnf(ctx, "drink loop %s: tick failed: %v", r.Name, err)
		if r.OnFailure != nil {
			r.OnFailure()
		}
	}
}
