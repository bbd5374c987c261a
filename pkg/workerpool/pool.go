// Package workerpool schedules modular exponentiations on a small, fixed set
// of compute units with a FIFO backlog. When the units cannot be started the
// pool computes inline for its whole lifetime.
package workerpool

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/korthochain/srpverifier/pkg/logger"
	"github.com/korthochain/srpverifier/pkg/srp"
)

const DefaultSize = 2

// Mode is fixed when the pool is built.
type Mode int

const (
	Concurrent Mode = iota
	Fallback
)

func (m Mode) String() string {
	switch m {
	case Concurrent:
		return "concurrent"
	case Fallback:
		return "fallback"
	}
	return "unknown"
}

type Config struct {
	Size int `yaml:"size" mapstructure:"size"`
	// Inline skips the runtime and computes on the calling goroutine.
	Inline bool `yaml:"inline" mapstructure:"inline"`
}

func DefaultConfig() Config {
	return Config{Size: DefaultSize}
}

type result struct {
	v   *big.Int
	err error
}

type task struct {
	id   uuid.UUID
	req  Request
	done chan result
	// resolved and abandoned are guarded by Pool.mu.
	resolved  bool
	abandoned bool
}

// worker is Idle when task is nil and Busy(task.id) otherwise.
type worker struct {
	unit Unit
	task *task
}

// Stats is a snapshot of the scheduler.
type Stats struct {
	Mode      Mode
	Size      int
	Busy      int
	Queued    int
	Completed uint64
	Failed    uint64
}

// Pool owns its units; callers create it with New and release it with Destroy.
type Pool struct {
	mode Mode

	mu        sync.Mutex
	workers   []*worker
	queue     []*task
	closed    bool
	completed uint64
	failed    uint64

	wg sync.WaitGroup
}

// New builds a pool of cfg.Size units from rt. A nil runtime, cfg.Inline or
// a failing Start put the pool in Fallback mode permanently.
func New(cfg Config, rt Runtime) *Pool {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}

	p := &Pool{mode: Fallback}
	if cfg.Inline || rt == nil {
		logger.Info("worker pool computing inline", zap.Bool("inline", cfg.Inline))
		return p
	}

	units, err := rt.Start(cfg.Size)
	if err == nil && len(units) == 0 {
		err = ErrNoUnits
	}
	if err != nil {
		logger.Warn("worker pool initialization failed, computing inline", zap.Error(err))
		return p
	}

	p.mode = Concurrent
	p.workers = make([]*worker, len(units))
	for i, u := range units {
		p.workers[i] = &worker{unit: u}
		p.wg.Add(1)
		go p.collect(i, u)
	}
	logger.Info("worker pool started", zap.Int("size", len(units)))
	return p
}

func (p *Pool) Mode() Mode {
	return p.mode
}

// Compute returns base^exponent mod modulus. In Concurrent mode the call
// waits for a unit; if ctx ends first the caller gets ctx.Err() and a
// still-queued task is dropped from the backlog.
func (p *Pool) Compute(ctx context.Context, base, exponent, modulus *big.Int) (*big.Int, error) {
	if err := checkOperands(base, exponent, modulus); err != nil {
		return nil, err
	}

	if p.mode == Fallback {
		p.mu.Lock()
		closed := p.closed
		p.mu.Unlock()
		if closed {
			return nil, ErrPoolDestroyed
		}

		v := srp.ModPow(base, exponent, modulus)
		p.mu.Lock()
		p.completed++
		p.mu.Unlock()
		return v, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	t := &task{
		id:   id,
		req:  newRequest(base, exponent, modulus),
		done: make(chan result, 1),
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolDestroyed
	}
	p.queue = append(p.queue, t)
	p.dispatchLocked()
	p.mu.Unlock()

	select {
	case r := <-t.done:
		return r.v, r.err
	case <-ctx.Done():
		p.abandon(t)
		return nil, ctx.Err()
	}
}

// dispatchLocked hands queued tasks, oldest first, to idle workers in index
// order. Callers hold p.mu.
func (p *Pool) dispatchLocked() {
	for len(p.queue) > 0 {
		idx := p.idleLocked()
		if idx < 0 {
			return
		}

		t := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]

		msg, err := encodeMessage(t.req)
		if err != nil {
			p.resolveLocked(t, nil, &TaskError{TaskID: t.id, Worker: idx, Err: err})
			continue
		}

		w := p.workers[idx]
		w.task = t
		if err := w.unit.Post(msg); err != nil {
			w.task = nil
			p.resolveLocked(t, nil, &TaskError{TaskID: t.id, Worker: idx, Err: err})
			continue
		}

		logger.Debug("task dispatched",
			zap.String("task", t.id.String()),
			zap.Int("worker", idx),
			zap.String("base", logger.Prefix(t.req.Base, 20)),
			zap.String("exponent", logger.Prefix(t.req.Exponent, 20)),
			zap.String("modulus", logger.Prefix(t.req.Modulus, 20)),
		)
	}
}

func (p *Pool) idleLocked() int {
	for i, w := range p.workers {
		if w.task == nil {
			return i
		}
	}
	return -1
}

func (p *Pool) collect(idx int, u Unit) {
	defer p.wg.Done()
	for msg := range u.Responses() {
		p.complete(idx, msg)
	}
}

func (p *Pool) complete(idx int, msg []byte) {
	resp, decodeErr := decodeResponse(msg)

	p.mu.Lock()
	defer p.mu.Unlock()

	w := p.workers[idx]
	t := w.task
	w.task = nil
	if t == nil {
		// Response for a task already rejected by Destroy.
		return
	}

	switch {
	case decodeErr != nil:
		p.resolveLocked(t, nil, &TaskError{TaskID: t.id, Worker: idx, Err: decodeErr})
	case !resp.Success:
		p.resolveLocked(t, nil, &TaskError{TaskID: t.id, Worker: idx, Err: errors.New(resp.Error)})
	default:
		v, _ := new(big.Int).SetString(resp.Result, 10)
		p.resolveLocked(t, v, nil)
	}

	if !p.closed {
		p.dispatchLocked()
	}
}

func (p *Pool) resolveLocked(t *task, v *big.Int, err error) {
	if t.resolved {
		return
	}
	t.resolved = true
	if err != nil {
		p.failed++
		if !errors.Is(err, ErrPoolDestroyed) {
			logger.Warn("task failed", zap.String("task", t.id.String()), zap.Error(err))
		}
	} else {
		p.completed++
	}
	if !t.abandoned {
		t.done <- result{v: v, err: err}
	}
}

func (p *Pool) abandon(t *task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t.abandoned = true
	for i, q := range p.queue {
		if q == t {
			p.queue = append(p.queue[:i], p.queue[i+1:]...)
			return
		}
	}
}

// Destroy rejects every queued and in-flight task with ErrPoolDestroyed and
// terminates the units. It is safe to call more than once.
func (p *Pool) Destroy() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true

	queued := len(p.queue)
	for _, t := range p.queue {
		p.resolveLocked(t, nil, ErrPoolDestroyed)
	}
	p.queue = nil

	inflight := 0
	for _, w := range p.workers {
		if w.task != nil {
			inflight++
			p.resolveLocked(w.task, nil, ErrPoolDestroyed)
			w.task = nil
		}
	}
	workers := p.workers
	p.mu.Unlock()

	for _, w := range workers {
		w.unit.Terminate()
	}
	p.wg.Wait()

	logger.Info("worker pool destroyed",
		zap.Stringer("mode", p.mode),
		zap.Int("queued", queued),
		zap.Int("inflight", inflight),
	)
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		Mode:      p.mode,
		Size:      len(p.workers),
		Queued:    len(p.queue),
		Completed: p.completed,
		Failed:    p.failed,
	}
	for _, w := range p.workers {
		if w.task != nil {
			s.Busy++
		}
	}
	return s
}
