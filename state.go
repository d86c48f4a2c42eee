package hfsm

// stateRepresentation is the per-state runtime record: the underlying state
// id, its registered trigger behaviours, its action lists, and its place in
// the superstate/substate forest. Representations live for the lifetime of
// the owning StateMachine and are created lazily, on first reference during
// configuration or firing.
type stateRepresentation[S, T comparable] struct {
	state S

	triggerBehaviours map[T][]triggerBehaviour[S, T]
	// triggerOrder preserves insertion order of distinct triggers, since Go
	// maps don't, and permittedTriggers must report a stable order.
	triggerOrder []T

	entryActions      []entryActionEntry[S, T]
	exitActions       []ExitAction[S, T]
	activateActions   []ActivateAction
	deactivateActions []DeactivateAction

	superstate *stateRepresentation[S, T]
	substates  []*stateRepresentation[S, T]

	hasInitialTransition    bool
	initialTransitionTarget S

	// active makes Activate/Deactivate idempotent against repeat calls.
	active bool
}

func newStateRepresentation[S, T comparable](state S) *stateRepresentation[S, T] {
	return &stateRepresentation[S, T]{
		state:             state,
		triggerBehaviours: make(map[T][]triggerBehaviour[S, T]),
	}
}

func (r *stateRepresentation[S, T]) addTriggerBehaviour(b triggerBehaviour[S, T]) {
	if _, ok := r.triggerBehaviours[b.trigger]; !ok {
		r.triggerOrder = append(r.triggerOrder, b.trigger)
	}
	r.triggerBehaviours[b.trigger] = append(r.triggerBehaviours[b.trigger], b)
}

func (r *stateRepresentation[S, T]) addSubstate(sub *stateRepresentation[S, T]) {
	if old := sub.superstate; old != nil {
		for i, s := range old.substates {
			if s == sub {
				old.substates = append(old.substates[:i], old.substates[i+1:]...)
				break
			}
		}
	}
	sub.superstate = r
	r.substates = append(r.substates, sub)
}

// tryFindLocalHandler implements spec.md §4.3 steps 1-5: resolve the
// trigger behaviour registered directly on this state, without consulting
// ancestors.
func (r *stateRepresentation[S, T]) tryFindLocalHandler(trigger T, args []any) (handlerResult[S, T], error) {
	candidates, ok := r.triggerBehaviours[trigger]
	if !ok {
		return handlerResult[S, T]{found: false}, nil
	}

	var met []triggerBehaviour[S, T]
	var firstUnmet triggerBehaviour[S, T]
	var firstUnmetGuards []string
	haveUnmet := false

	for _, c := range candidates {
		unmet := c.guard.Unmet(args)
		if len(unmet) == 0 {
			met = append(met, c)
		} else if !haveUnmet {
			firstUnmet = c
			firstUnmetGuards = unmet
			haveUnmet = true
		}
	}

	if len(met) >= 2 {
		return handlerResult[S, T]{}, newMultipleTransitionsError(fmtState(r.state), fmtTrigger(trigger))
	}
	if len(met) == 1 {
		return handlerResult[S, T]{behaviour: met[0], found: true}, nil
	}
	if haveUnmet {
		return handlerResult[S, T]{behaviour: firstUnmet, found: true, unmetGuards: firstUnmetGuards}, nil
	}
	return handlerResult[S, T]{found: false}, nil
}

// tryFindHandler implements spec.md §4.3's ancestor fallback: a local
// result, even a guard-blocked one, is authoritative and never falls
// through to the superstate. Only the complete absence of any candidate
// recurses upward.
func (r *stateRepresentation[S, T]) tryFindHandler(trigger T, args []any) (handlerResult[S, T], error) {
	result, err := r.tryFindLocalHandler(trigger, args)
	if err != nil {
		return handlerResult[S, T]{}, err
	}
	if result.found {
		return result, nil
	}
	if r.superstate != nil {
		return r.superstate.tryFindHandler(trigger, args)
	}
	return handlerResult[S, T]{found: false}, nil
}

// permittedTriggers is the union of triggers in this state (with at least
// one fully-met guard) and the superstate's permitted triggers, recursively.
func (r *stateRepresentation[S, T]) permittedTriggers(args []any) []T {
	seen := make(map[T]bool)
	var out []T
	for cur := r; cur != nil; cur = cur.superstate {
		for _, trigger := range cur.triggerOrder {
			if seen[trigger] {
				continue
			}
			for _, c := range cur.triggerBehaviours[trigger] {
				if c.guard.AllMet(args) {
					seen[trigger] = true
					out = append(out, trigger)
					break
				}
			}
		}
	}
	return out
}

// canHandle reports whether tryFindHandler resolves trigger to a behaviour
// whose guards are all met. A local behaviour whose guards are unmet is
// not bypassed in favour of an ancestor's, and a multiple-transitions
// conflict reports false.
func (r *stateRepresentation[S, T]) canHandle(trigger T, args []any) bool {
	result, err := r.tryFindHandler(trigger, args)
	return err == nil && result.guardsMet()
}

// includes reports whether s is this state or any of its substates,
// transitively.
func (r *stateRepresentation[S, T]) includes(s S) bool {
	if r.state == s {
		return true
	}
	for _, sub := range r.substates {
		if sub.includes(s) {
			return true
		}
	}
	return false
}

// isIncludedIn reports whether s is this state or one of its ancestors.
func (r *stateRepresentation[S, T]) isIncludedIn(s S) bool {
	for cur := r; cur != nil; cur = cur.superstate {
		if cur.state == s {
			return true
		}
	}
	return false
}

// activate walks from this state up to the root, running activation
// actions root-down (recurse first, then run locally), per spec.md §4.4.
// Idempotent: a state already active does not re-run its actions, and does
// not re-walk its ancestors.
func (r *stateRepresentation[S, T]) activate() error {
	if r.active {
		return nil
	}
	if r.superstate != nil {
		if err := r.superstate.activate(); err != nil {
			return err
		}
	}
	for _, action := range r.activateActions {
		if err := safeAction(action); err != nil {
			return err
		}
	}
	r.active = true
	return nil
}

// deactivate is activate's reverse: local first, then superstate.
func (r *stateRepresentation[S, T]) deactivate() error {
	if !r.active {
		return nil
	}
	for _, action := range r.deactivateActions {
		if err := safeAction(action); err != nil {
			return err
		}
	}
	r.active = false
	if r.superstate != nil {
		return r.superstate.deactivate()
	}
	return nil
}

// enter implements spec.md §4.7's entry walk.
func (r *stateRepresentation[S, T]) enter(t Transition[S, T], args []any) error {
	if t.IsReentry {
		return r.runEntryActions(t, args)
	}
	if !r.includes(t.Source) {
		if r.superstate != nil && !t.IsInitial {
			if err := r.superstate.enter(t, args); err != nil {
				return err
			}
		}
		return r.runEntryActions(t, args)
	}
	return nil
}

func (r *stateRepresentation[S, T]) runEntryActions(t Transition[S, T], args []any) error {
	for _, e := range r.entryActions {
		if err := e.run(t, args); err != nil {
			return err
		}
	}
	return nil
}

// exit implements spec.md §4.7's exit walk, returning the transition
// unchanged (the return value is a tail-call aid for the caller, which
// discards the chain and keeps the original transition).
func (r *stateRepresentation[S, T]) exit(t Transition[S, T]) (Transition[S, T], error) {
	if t.IsReentry {
		if err := r.runExitActions(t); err != nil {
			return t, err
		}
		return t, nil
	}
	if !r.includes(t.Destination) {
		if err := r.runExitActions(t); err != nil {
			return t, err
		}
		if r.superstate != nil && r.superstate.state != t.Destination {
			return r.superstate.exit(t)
		}
	}
	return t, nil
}

func (r *stateRepresentation[S, T]) runExitActions(t Transition[S, T]) error {
	for _, action := range r.exitActions {
		if err := safeAction(func() error { return action(t) }); err != nil {
			return err
		}
	}
	return nil
}
