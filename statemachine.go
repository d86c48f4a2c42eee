package hfsm

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// FiringMode controls what happens when a trigger is fired while another
// fire is already in progress on the same machine (typically from inside
// an action or listener callback).
type FiringMode int

const (
	// FiringImmediate runs a reentrant fire recursively, nested inside the
	// callback that triggered it. The outer fire's remaining work resumes
	// only after the nested fire fully completes.
	FiringImmediate FiringMode = iota
	// FiringQueued appends a reentrant fire to a FIFO queue and returns
	// immediately; the top-level fire drains the queue to empty, one
	// trigger at a time, before it returns to its own caller.
	FiringQueued
)

type queuedFire[T comparable] struct {
	trigger T
	args    []any
}

// StateMachine is the facade described by the data model: it owns the
// state-representation table, the external state accessor/mutator, the
// firing mode, the unhandled-trigger policy, and the transition-listener
// list, and routes Fire into the transition engine.
type StateMachine[S, T comparable] struct {
	mu sync.Mutex

	representations map[S]*stateRepresentation[S, T]

	accessor StateAccessor[S]
	mutator  StateMutator[S]

	firingMode FiringMode
	queue      []queuedFire[T]
	firing     bool

	unhandledTriggerPolicy UnhandledTriggerPolicy[S, T]
	listeners              []TransitionListener[S, T]

	parameterDescriptors map[T]parameterDescriptor

	logger  *zerolog.Logger
	metrics *machineMetrics
}

// New constructs a machine whose current state lives in ordinary memory,
// starting at initialState, using immediate firing.
func New[S, T comparable](initialState S) *StateMachine[S, T] {
	return NewWithMode[S, T](initialState, FiringImmediate)
}

// NewWithMode is New with an explicit firing mode.
func NewWithMode[S, T comparable](initialState S, mode FiringMode) *StateMachine[S, T] {
	store := newMemoryStore(initialState)
	return NewWithState[S, T](store.get, store.set, mode)
}

// NewWithState constructs a machine backed by a caller-supplied
// accessor/mutator pair instead of the built-in memory store, for callers
// who keep the current state somewhere else (a database row, a session).
func NewWithState[S, T comparable](accessor StateAccessor[S], mutator StateMutator[S], mode FiringMode) *StateMachine[S, T] {
	return &StateMachine[S, T]{
		representations:        make(map[S]*stateRepresentation[S, T]),
		accessor:               accessor,
		mutator:                mutator,
		firingMode:             mode,
		unhandledTriggerPolicy: defaultUnhandledTriggerPolicy[S, T],
		parameterDescriptors:   make(map[T]parameterDescriptor),
	}
}

// WithLogger attaches structured logging of resolved transitions, guard
// rejections, and unhandled triggers. A nil logger (the default) is
// silent; attaching one never changes transition outcomes.
func (sm *StateMachine[S, T]) WithLogger(logger *zerolog.Logger) *StateMachine[S, T] {
	sm.logger = logger
	return sm
}

// WithMetrics registers a fire-outcome counter and a fire-latency
// histogram on reg under namespace. Like WithLogger, this only observes;
// it never changes transition outcomes.
func (sm *StateMachine[S, T]) WithMetrics(reg prometheus.Registerer, namespace string) *StateMachine[S, T] {
	sm.metrics = newMachineMetrics(reg, namespace)
	return sm
}

func (sm *StateMachine[S, T]) rep(state S) *stateRepresentation[S, T] {
	r, ok := sm.representations[state]
	if !ok {
		r = newStateRepresentation[S, T](state)
		sm.representations[state] = r
	}
	return r
}

// Configure returns the fluent builder for state. Calling Configure twice
// for the same state id returns configuration access to the same
// representation; repeated calls accumulate, they do not reset it.
func (sm *StateMachine[S, T]) Configure(state S) *StateConfiguration[S, T] {
	return &StateConfiguration[S, T]{machine: sm, rep: sm.rep(state)}
}

// registerDescriptor associates a parameter descriptor with a trigger so
// that every Fire of that trigger is validated for arity and per-slot
// type, regardless of which Fire* helper is used.
func (sm *StateMachine[S, T]) registerDescriptor(trigger T, d parameterDescriptor) {
	sm.parameterDescriptors[trigger] = d
}

// CurrentState returns the machine's current state, read through the
// configured accessor.
func (sm *StateMachine[S, T]) CurrentState() S {
	return sm.accessor()
}

// IsInState reports whether the current state equals s or has s among its
// ancestors.
func (sm *StateMachine[S, T]) IsInState(s S) bool {
	return sm.rep(sm.accessor()).isIncludedIn(s)
}

// CanFire reports whether trigger has some applicable, fully-guard-met
// behaviour from the current state or one of its ancestors.
func (sm *StateMachine[S, T]) CanFire(trigger T, args ...any) bool {
	return sm.rep(sm.accessor()).canHandle(trigger, args)
}

// PermittedTriggers is the union of triggers with at least one fully-met
// guard across the current state and its ancestors.
func (sm *StateMachine[S, T]) PermittedTriggers(args ...any) []T {
	return sm.rep(sm.accessor()).permittedTriggers(args)
}

// OnTransitioned registers a listener invoked after every committed,
// non-internal, non-ignored transition (including reentry), in
// registration order.
func (sm *StateMachine[S, T]) OnTransitioned(listener TransitionListener[S, T]) {
	sm.listeners = append(sm.listeners, listener)
}

// OnUnhandledTrigger replaces the default unhandled-trigger policy.
func (sm *StateMachine[S, T]) OnUnhandledTrigger(policy UnhandledTriggerPolicy[S, T]) {
	sm.unhandledTriggerPolicy = policy
}

// Activate walks root-down from the current state's representation,
// running activation actions. Idempotent: already-active states and
// ancestors are skipped.
func (sm *StateMachine[S, T]) Activate() error {
	return sm.rep(sm.accessor()).activate()
}

// Deactivate is Activate's reverse: local-first, then ancestors.
func (sm *StateMachine[S, T]) Deactivate() error {
	return sm.rep(sm.accessor()).deactivate()
}

// Fire dispatches trigger with args through the transition engine,
// honoring the configured firing mode for reentrant fires.
//
// sm.mu is held only around the firing/queue bookkeeping, never across a
// dispatch: a dispatch runs entry/exit/guard callbacks that may
// themselves call Fire reentrantly on the same goroutine (the expected
// case for Immediate mode, and for Queued mode enqueuing from inside an
// action), and sync.Mutex is not reentrant. The lock keeps `firing` and
// the queue consistent; it does not serialize dispatches. A Fire from a
// second goroutine while another is in progress is queued (Queued mode)
// or dispatched alongside it (Immediate mode), with no error reported;
// firing from more than one goroutine is not supported.
func (sm *StateMachine[S, T]) Fire(trigger T, args ...any) error {
	sm.mu.Lock()
	if sm.firing {
		if sm.firingMode == FiringQueued {
			sm.queue = append(sm.queue, queuedFire[T]{trigger: trigger, args: args})
			sm.mu.Unlock()
			return nil
		}
		sm.mu.Unlock()
		return sm.dispatch(trigger, args)
	}
	sm.firing = true
	sm.mu.Unlock()

	if err := sm.dispatch(trigger, args); err != nil {
		sm.mu.Lock()
		sm.queue = nil
		sm.firing = false
		sm.mu.Unlock()
		return err
	}

	for {
		sm.mu.Lock()
		if len(sm.queue) == 0 {
			sm.firing = false
			sm.mu.Unlock()
			return nil
		}
		next := sm.queue[0]
		sm.queue = sm.queue[1:]
		sm.mu.Unlock()

		if err := sm.dispatch(next.trigger, next.args); err != nil {
			sm.mu.Lock()
			sm.queue = nil
			sm.firing = false
			sm.mu.Unlock()
			return err
		}
	}
}

// dispatch runs Steps A-D of a single fire.
func (sm *StateMachine[S, T]) dispatch(trigger T, args []any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		if sm.metrics != nil {
			sm.metrics.observe(outcome, time.Since(start))
		}
	}()

	source := sm.accessor()
	r := sm.rep(source)

	// Step A: parameter validation.
	if d, ok := sm.parameterDescriptors[trigger]; ok {
		if err := d.validate(args); err != nil {
			outcome = "error"
			sm.logf("argument rejected state=%v trigger=%v err=%v", source, trigger, err)
			return err
		}
	}

	// Step B: handler resolution.
	result, err := r.tryFindHandler(trigger, args)
	if err != nil {
		outcome = "error"
		sm.logf("configuration error state=%v trigger=%v err=%v", source, trigger, err)
		return err
	}
	if !result.found {
		outcome = "unhandled"
		sm.logf("unhandled trigger state=%v trigger=%v", source, trigger)
		return sm.unhandledTriggerPolicy(source, trigger, nil)
	}
	if result.guardBlocked() {
		outcome = "unhandled"
		sm.logf("guard-blocked trigger state=%v trigger=%v unmet=%v", source, trigger, result.unmetGuards)
		return sm.unhandledTriggerPolicy(source, trigger, result.unmetGuards)
	}

	behaviour := result.behaviour

	switch behaviour.kind {
	case behaviourIgnored:
		outcome = "ignored"
		return nil

	case behaviourInternal:
		if err := sm.dispatchInternal(r, behaviour, trigger, args); err != nil {
			outcome = "error"
			return err
		}
		return nil

	case behaviourReentry:
		if err := sm.dispatchReentry(r, behaviour.destination, trigger, args); err != nil {
			outcome = "error"
			return err
		}
		return nil

	default: // behaviourTransitioning, behaviourDynamic
		_, dest := behaviour.resultsInTransition(source, args)
		if err := sm.dispatchTransition(r, dest, trigger, args); err != nil {
			outcome = "error"
			return err
		}
		return nil
	}
}

func (sm *StateMachine[S, T]) dispatchInternal(r *stateRepresentation[S, T], behaviour triggerBehaviour[S, T], trigger T, args []any) error {
	source := r.state
	t := newTransition(source, source, trigger, args)
	for cur := r; cur != nil; cur = cur.superstate {
		local, err := cur.tryFindLocalHandler(trigger, args)
		if err != nil {
			return err
		}
		if local.found && local.guardsMet() && local.behaviour.kind == behaviourInternal {
			action := local.behaviour.internalAction
			return safeAction(func() error { return action(t, args) })
		}
	}
	_ = behaviour
	return newMissingInternalHandlerError(fmtState(source), fmtTrigger(trigger))
}

func (sm *StateMachine[S, T]) dispatchReentry(r *stateRepresentation[S, T], dest S, trigger T, args []any) error {
	source := r.state
	t := newTransition(source, dest, trigger, args)
	t.IsReentry = true

	if _, err := r.exit(t); err != nil {
		return err
	}
	sm.mutator(dest)
	sm.notify(t)

	destRep := sm.rep(dest)
	if err := destRep.enter(t, args); err != nil {
		return err
	}
	sm.logf("reentry state=%v trigger=%v", source, trigger)
	return nil
}

func (sm *StateMachine[S, T]) dispatchTransition(r *stateRepresentation[S, T], dest S, trigger T, args []any) error {
	source := r.state
	t := newTransition(source, dest, trigger, args)

	committed, err := r.exit(t)
	if err != nil {
		return err
	}
	sm.mutator(committed.Destination)
	sm.notify(committed)

	destRep := sm.rep(committed.Destination)
	if err := destRep.enter(committed, args); err != nil {
		return err
	}
	sm.logf("transition state=%v trigger=%v dest=%v", source, trigger, committed.Destination)

	return sm.expandInitialTransitions(committed.Destination, trigger, args, source)
}

// expandInitialTransitions implements Step D: repeatedly descend into
// configured initial-transition targets until the current state has none.
func (sm *StateMachine[S, T]) expandInitialTransitions(current S, trigger T, args []any, originalSource S) error {
	cur := sm.rep(current)
	for cur.hasInitialTransition {
		if !cur.includes(cur.initialTransitionTarget) || cur.state == cur.initialTransitionTarget {
			return newInvalidInitialTransitionError(fmtState(cur.state))
		}
		initT := newInitialTransition(originalSource, cur.initialTransitionTarget, trigger, args)
		target := sm.rep(cur.initialTransitionTarget)
		if err := target.enter(initT, args); err != nil {
			return err
		}
		sm.mutator(target.state)
		cur = target
	}
	return nil
}

func (sm *StateMachine[S, T]) notify(t Transition[S, T]) {
	for _, l := range sm.listeners {
		l(t)
	}
}

func (sm *StateMachine[S, T]) logf(format string, args ...any) {
	if sm.logger == nil {
		return
	}
	sm.logger.Debug().Msg(fmt.Sprintf(format, args...))
}

// String renders the current state and its permitted triggers, for quick
// inspection in logs or a debugger.
func (sm *StateMachine[S, T]) String() string {
	state := sm.accessor()
	return fmt.Sprintf("%v -> %v", state, sm.rep(state).permittedTriggers(nil))
}
