// Package replica keeps one client's copy of the shared restaurant aggregate
// in step with the remote store.
//
// A single goroutine owns the cached state. Local mutations, inbound
// notifications, write completions and grace-window expiries all reach it
// through one command queue, so there is never a read-modify-write against a
// stale copy. Conflicts resolve last-writer-wins over the whole aggregate: a
// write built from a snapshot that missed another client's change erases that
// change.
package replica

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-restaurant-sync/internal/bootstrap"
	"go-restaurant-sync/internal/model"
	"go-restaurant-sync/internal/operator"
	"go-restaurant-sync/internal/store"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotLoaded = errors.New("state not loaded yet")
	ErrClosed    = errors.New("replica closed")
)

const (
	DefaultGrace          = 500 * time.Millisecond
	DefaultPersistTimeout = 10 * time.Second
)

type Config struct {
	// Key is the document key; empty means model.DocumentKey.
	Key string
	// Grace is how long the replica stays in WRITING after a write completes,
	// to swallow the echo of that write. Zero means DefaultGrace; negative
	// means no window.
	Grace          time.Duration
	PersistTimeout time.Duration
	Bootstrap      bootstrap.Options
	// Env overrides clock and id generation; zero fields use the defaults.
	Env operator.Env
}

// Mutation computes the changed collections from the latest snapshot.
type Mutation func(s model.SystemState, env operator.Env) operator.Patch

// Result is what a local mutation produced. Miss is non-empty when the intent
// matched nothing and the state was left alone.
type Result struct {
	State model.SystemState
	Miss  string
}

type Replica struct {
	store          store.Store
	key            string
	grace          time.Duration
	persistTimeout time.Duration
	boot           bootstrap.Options
	env            operator.Env
	logger         zerolog.Logger

	cmds   chan func()
	done   chan struct{}
	cancel context.CancelFunc

	// Owned by the run goroutine.
	state     model.SystemState
	phase     Phase
	lastWrite int64
	lastKnown int64
	writeGen  uint64

	// Hand-off slot to the writer goroutine; newest snapshot wins.
	writeMu      sync.Mutex
	writePending *pendingWrite
	kick         chan struct{}
	writerQuit   chan struct{}
	writerDone   chan struct{}

	// Published copy for readers outside the run goroutine.
	viewMu    sync.RWMutex
	viewState model.SystemState
	viewPhase Phase
	watchers  map[chan model.SystemState]struct{}

	closeOnce sync.Once
}

type pendingWrite struct {
	gen   uint64
	state model.SystemState
}

func New(s store.Store, cfg Config) *Replica {
	key := cfg.Key
	if key == "" {
		key = model.DocumentKey
	}
	grace := cfg.Grace
	if grace == 0 {
		grace = DefaultGrace
	}
	if grace < 0 {
		grace = 0
	}
	persistTimeout := cfg.PersistTimeout
	if persistTimeout <= 0 {
		persistTimeout = DefaultPersistTimeout
	}
	env := operator.DefaultEnv()
	if cfg.Env.Now != nil {
		env.Now = cfg.Env.Now
	}
	if cfg.Env.NewID != nil {
		env.NewID = cfg.Env.NewID
	}
	if cfg.Env.NewComanda != nil {
		env.NewComanda = cfg.Env.NewComanda
	}

	return &Replica{
		store:          s,
		key:            key,
		grace:          grace,
		persistTimeout: persistTimeout,
		boot:           cfg.Bootstrap,
		env:            env,
		logger:         log.With().Str("component", "replica").Str("key", key).Logger(),
		cmds:           make(chan func()),
		done:           make(chan struct{}),
		kick:           make(chan struct{}, 1),
		writerQuit:     make(chan struct{}),
		writerDone:     make(chan struct{}),
		watchers:       make(map[chan model.SystemState]struct{}),
	}
}

// Start opens the subscription and launches the owner and writer goroutines.
func (r *Replica) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	docs, err := r.store.Subscribe(ctx, r.key)
	if err != nil {
		cancel()
		return err
	}
	r.cancel = cancel

	go r.writer()
	go r.run(ctx, docs)
	return nil
}

// Close tears the subscription down, then lets the writer finish the last
// pending write.
func (r *Replica) Close() error {
	r.closeOnce.Do(func() {
		if r.cancel == nil {
			close(r.done)
			return
		}
		r.cancel()
		<-r.done
		close(r.writerQuit)
		<-r.writerDone

		r.viewMu.Lock()
		for ch := range r.watchers {
			delete(r.watchers, ch)
			close(ch)
		}
		r.viewMu.Unlock()
	})
	return nil
}

func (r *Replica) run(ctx context.Context, docs <-chan store.Document) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		case doc, ok := <-docs:
			if !ok {
				docs = nil
				r.logger.Warn().Msg("subscription ended")
				continue
			}
			r.onRemote(doc)
		case fn := <-r.cmds:
			fn()
		}
	}
}

// submit queues fn on the owner goroutine.
func (r *Replica) submit(ctx context.Context, fn func()) error {
	select {
	case r.cmds <- fn:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply runs m against the latest snapshot, applies the result locally and
// schedules the full aggregate for writing. It returns once the local state
// has changed, not when the store confirms.
func (r *Replica) Apply(ctx context.Context, m Mutation) (Result, error) {
	type reply struct {
		res Result
		err error
	}
	out := make(chan reply, 1)
	if err := r.submit(ctx, func() {
		res, err := r.apply(m)
		out <- reply{res, err}
	}); err != nil {
		return Result{}, err
	}
	select {
	case rep := <-out:
		return rep.res, rep.err
	case <-r.done:
		return Result{}, ErrClosed
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (r *Replica) apply(m Mutation) (Result, error) {
	if r.phase == PhaseUnloaded {
		return Result{}, ErrNotLoaded
	}
	patch := m(r.state, r.env)
	if patch.Miss != "" || patch.Empty() {
		r.logger.Warn().Str("reason", patch.Miss).Msg("mutation matched nothing")
		return Result{State: r.state.Clone(), Miss: patch.Miss}, nil
	}

	next := patch.Apply(r.state)
	r.commitLocal(next)
	return Result{State: next.Clone()}, nil
}

// commitLocal stamps next, makes it the cache and queues it for writing.
func (r *Replica) commitLocal(next model.SystemState) {
	stamp := r.stamp()
	next.LastGlobalUpdate = stamp
	r.state = next
	r.lastWrite = stamp
	r.lastKnown = stamp
	r.phase = PhaseWriting
	r.writeGen++
	r.enqueueWrite(r.writeGen, next)
	r.publish()
}

// stamp is wall-clock milliseconds, pushed past everything this replica has
// seen so a slow device clock cannot produce a stamp others will discard.
func (r *Replica) stamp() int64 {
	now := r.env.Now().UnixMilli()
	if now <= r.lastKnown {
		now = r.lastKnown + 1
	}
	return now
}

func (r *Replica) onRemote(doc store.Document) {
	switch r.phase {
	case PhaseUnloaded:
		if !doc.Exists {
			r.bootstrap()
			return
		}
		r.accept(doc.State)

	case PhaseWriting:
		r.logger.Debug().Int64("remote", doc.State.LastGlobalUpdate).Msg("discarding notification while writing")

	case PhaseSynced:
		if !doc.Exists {
			// The document vanished or became unreadable. Seeding is only for
			// a replica that never loaded: once synced, the cache is the newest
			// full state we know of, so it is written back instead of being
			// replaced by a fresh floor plan.
			r.logger.Warn().Msg("remote document missing, rewriting local state")
			r.commitLocal(r.state)
			return
		}
		if doc.State.LastGlobalUpdate <= r.lastKnown {
			r.logger.Debug().
				Int64("remote", doc.State.LastGlobalUpdate).
				Int64("known", r.lastKnown).
				Msg("discarding stale notification")
			return
		}
		r.accept(doc.State)
	}
}

func (r *Replica) accept(state model.SystemState) {
	state.Normalize()
	r.state = state
	if state.LastGlobalUpdate > r.lastKnown {
		r.lastKnown = state.LastGlobalUpdate
	}
	r.phase = PhaseSynced
	r.logger.Debug().Int64("stamp", state.LastGlobalUpdate).Msg("applied remote state")
	r.publish()
}

func (r *Replica) bootstrap() {
	seed, err := bootstrap.Seed(r.boot, r.env.Now())
	if err != nil {
		r.logger.Error().Err(err).Msg("bootstrap failed")
		return
	}
	r.logger.Info().Int("tables", len(seed.Tables)).Msg("no remote document, bootstrapping")
	r.commitLocal(seed)
}

func (r *Replica) enqueueWrite(gen uint64, state model.SystemState) {
	r.writeMu.Lock()
	r.writePending = &pendingWrite{gen: gen, state: state.Clone()}
	r.writeMu.Unlock()
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *Replica) takeWrite() *pendingWrite {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	w := r.writePending
	r.writePending = nil
	return w
}

// writer persists queued snapshots one at a time, in order.
func (r *Replica) writer() {
	defer close(r.writerDone)
	for {
		select {
		case <-r.kick:
			if w := r.takeWrite(); w != nil {
				r.persist(w)
			}
		case <-r.writerQuit:
			if w := r.takeWrite(); w != nil {
				r.persist(w)
			}
			return
		}
	}
}

func (r *Replica) persist(w *pendingWrite) {
	ctx, cancel := context.WithTimeout(context.Background(), r.persistTimeout)
	err := r.store.Put(ctx, r.key, w.state)
	cancel()
	if err != nil {
		// No retry: the next local write carries the full state anyway.
		r.logger.Error().Err(err).Int64("stamp", w.state.LastGlobalUpdate).Msg("persist failed")
	}

	gen := w.gen
	_ = r.submit(context.Background(), func() { r.writeFinished(gen) })
}

// writeFinished starts the grace window once the newest write is done.
func (r *Replica) writeFinished(gen uint64) {
	if gen != r.writeGen {
		return
	}
	if r.grace == 0 {
		r.endWriting(gen)
		return
	}
	time.AfterFunc(r.grace, func() {
		_ = r.submit(context.Background(), func() { r.endWriting(gen) })
	})
}

func (r *Replica) endWriting(gen uint64) {
	if gen != r.writeGen || r.phase != PhaseWriting {
		return
	}
	r.phase = PhaseSynced
	r.publish()
}

// publish copies the owned state to the reader view and wakes watchers.
func (r *Replica) publish() {
	snap := r.state.Clone()
	r.viewMu.Lock()
	r.viewState = snap
	r.viewPhase = r.phase
	for ch := range r.watchers {
		offerState(ch, snap.Clone())
	}
	r.viewMu.Unlock()
}

// Snapshot returns a copy of the latest local state.
func (r *Replica) Snapshot() model.SystemState {
	r.viewMu.RLock()
	defer r.viewMu.RUnlock()
	return r.viewState.Clone()
}

func (r *Replica) Phase() Phase {
	r.viewMu.RLock()
	defer r.viewMu.RUnlock()
	return r.viewPhase
}

// IsSyncing reports whether a local write is in flight or in its grace window.
func (r *Replica) IsSyncing() bool {
	return r.Phase() == PhaseWriting
}

// Loaded reports whether the first notification has arrived.
func (r *Replica) Loaded() bool {
	return r.Phase() != PhaseUnloaded
}

// Watch returns a channel that receives the state after every local change
// or accepted notification. Slow readers only see the newest state. Call
// the returned func to stop watching.
func (r *Replica) Watch() (<-chan model.SystemState, func()) {
	ch := make(chan model.SystemState, 1)
	r.viewMu.Lock()
	r.watchers[ch] = struct{}{}
	if r.viewPhase != PhaseUnloaded {
		offerState(ch, r.viewState.Clone())
	}
	r.viewMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.viewMu.Lock()
			if _, ok := r.watchers[ch]; ok {
				delete(r.watchers, ch)
				close(ch)
			}
			r.viewMu.Unlock()
		})
	}
}

func offerState(ch chan model.SystemState, s model.SystemState) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
