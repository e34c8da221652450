// pkg/optimistic/optimistic.go

// Package optimistic provides a coordinator for optimistic UI mutations:
// local state changes applied immediately, then confirmed or rolled back
// when the durable operation settles.
//
// The coordinator keeps a confirmed base value plus an ordered list of
// pending transforms. The visible value is always the base with every
// pending transform applied in submission order. Confirming a mutation
// folds its transform into the base; rolling one back removes only that
// transform and replays the rest, so an early failure never discards later
// optimistic work.
package optimistic

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is a mutation's position in its lifecycle.
type State int

const (
	// Idle means the mutation has been created but not yet applied.
	Idle State = iota
	// Optimistic means the transform is applied locally and the durable
	// operation has not settled.
	Optimistic
	// Confirmed means the durable operation succeeded; the transform is
	// folded into the base.
	Confirmed
	// RolledBack means the durable operation failed; the transform has
	// been discarded.
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Optimistic:
		return "optimistic"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled_back"
	}
	return "unknown"
}

// ErrTimeout settles a mutation whose durable operation outlived its
// deadline.
var ErrTimeout = errors.New("optimistic mutation timed out")

// Transform produces the next value from the current one. Transforms must
// be pure: they may run more than once (on rollback replay and rebase) and
// must not mutate their argument's referenced data in place.
type Transform[T any] func(T) T

// Mutation is the handle for one in-flight optimistic change.
type Mutation[T any] struct {
	id        string
	transform Transform[T]
	seq       uint64

	coord *Coordinator[T]
	timer *time.Timer

	state State
	err   error
	done  chan struct{}
}

// ID returns the mutation's unique handle, usable as an idempotency key
// for the durable request.
func (m *Mutation[T]) ID() string { return m.id }

// State returns the mutation's current lifecycle state.
func (m *Mutation[T]) State() State {
	m.coord.mu.Lock()
	defer m.coord.mu.Unlock()
	return m.state
}

// Err returns the settling error, or nil while pending or confirmed.
func (m *Mutation[T]) Err() error {
	m.coord.mu.Lock()
	defer m.coord.mu.Unlock()
	return m.err
}

// Done returns a channel closed when the mutation settles.
func (m *Mutation[T]) Done() <-chan struct{} { return m.done }

// Resolve settles the mutation: nil confirms it, non-nil rolls it back.
// Idempotent; the first settle wins and later calls are ignored.
func (m *Mutation[T]) Resolve(err error) {
	m.coord.settle(m, err)
}

// Coordinator tracks one logical piece of client state of type T.
type Coordinator[T any] struct {
	mu      sync.Mutex
	base    T
	pending []*Mutation[T]
	visible T
	nextSeq uint64
	log     *zap.Logger
}

// New creates a coordinator whose confirmed base is the given value.
func New[T any](base T, logger *zap.Logger) *Coordinator[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator[T]{base: base, visible: base, log: logger}
}

// Visible returns the current visible value: base plus pending transforms
// in submission order.
func (c *Coordinator[T]) Visible() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Base returns the confirmed value with no optimistic changes applied.
func (c *Coordinator[T]) Base() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.base
}

// Pending returns the number of unsettled mutations.
func (c *Coordinator[T]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Begin applies the transform optimistically and returns its handle. It is
// synchronous and non-blocking: the caller sees the new visible value as
// soon as Begin returns, then fires the durable operation and settles the
// handle with Resolve.
func (c *Coordinator[T]) Begin(transform Transform[T]) *Mutation[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSeq++
	m := &Mutation[T]{
		id:        uuid.NewString(),
		transform: transform,
		seq:       c.nextSeq,
		coord:     c,
		state:     Optimistic,
		done:      make(chan struct{}),
	}
	c.pending = append(c.pending, m)
	c.visible = transform(c.visible)
	return m
}

// BeginWithTimeout is Begin plus a deadline: if the mutation is still
// pending after d, it is rolled back with ErrTimeout.
func (c *Coordinator[T]) BeginWithTimeout(transform Transform[T], d time.Duration) *Mutation[T] {
	m := c.Begin(transform)
	m.timer = time.AfterFunc(d, func() {
		c.settle(m, ErrTimeout)
	})
	return m
}

// SetBase replaces the confirmed base (a server-driven refresh) and
// rebases pending mutations onto it in order.
func (c *Coordinator[T]) SetBase(base T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base = base
	c.recomputeLocked()
}

// settle moves m to its terminal state and recomputes visibility. The
// zero-value err confirms; anything else rolls back.
func (c *Coordinator[T]) settle(m *Mutation[T], err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m.state != Optimistic {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}

	// Settling anything but the oldest pending mutation means responses
	// arrived out of order. The replay below keeps visible state
	// consistent (last writer wins), but it is worth a trace.
	if len(c.pending) > 0 && c.pending[0] != m {
		c.log.Warn("mutation settled out of order",
			zap.String("mutation_id", m.id),
			zap.Int("pending", len(c.pending)))
	}

	if err == nil {
		m.state = Confirmed
		// Confirmed transforms fold into the base in settlement order, not
		// submission order. For non-commutative transforms on the same
		// entity that is last-writer-wins, matching the replay above.
		c.base = m.transform(c.base)
	} else {
		m.state = RolledBack
		m.err = err
	}

	for i, p := range c.pending {
		if p == m {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
	c.recomputeLocked()
	close(m.done)
}

// recomputeLocked rebuilds visible = base + pending transforms in order.
// Callers must hold c.mu.
func (c *Coordinator[T]) recomputeLocked() {
	v := c.base
	for _, p := range c.pending {
		v = p.transform(v)
	}
	c.visible = v
}
