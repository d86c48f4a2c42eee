package hfsm

// StateConfiguration is the fluent builder returned by
// StateMachine.Configure. It populates a single state's representation;
// it holds no state of its own beyond a pointer back to the
// representation, so every call takes effect immediately.
type StateConfiguration[S, T comparable] struct {
	machine *StateMachine[S, T]
	rep     *stateRepresentation[S, T]
}

// Permit configures trigger to transition this state to destination.
func (c *StateConfiguration[S, T]) Permit(trigger T, destination S) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:     trigger,
		kind:        behaviourTransitioning,
		destination: destination,
	})
	return c
}

// PermitIf is Permit with a guard; the transition only applies when every
// condition in guard is satisfied.
func (c *StateConfiguration[S, T]) PermitIf(trigger T, destination S, guard ...GuardCondition) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:     trigger,
		kind:        behaviourTransitioning,
		destination: destination,
		guard:       newGuard(guard...),
	})
	return c
}

// PermitReentry configures trigger to re-enter this same state: local
// exit actions run, then local entry actions, without touching ancestors.
func (c *StateConfiguration[S, T]) PermitReentry(trigger T) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:     trigger,
		kind:        behaviourReentry,
		destination: c.rep.state,
	})
	return c
}

// PermitReentryIf is PermitReentry with a guard.
func (c *StateConfiguration[S, T]) PermitReentryIf(trigger T, guard ...GuardCondition) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:     trigger,
		kind:        behaviourReentry,
		destination: c.rep.state,
		guard:       newGuard(guard...),
	})
	return c
}

// PermitDynamic configures trigger to transition to a destination computed
// at fire time from the trigger's arguments.
func (c *StateConfiguration[S, T]) PermitDynamic(trigger T, resolver func(args []any) S) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:  trigger,
		kind:     behaviourDynamic,
		resolver: resolver,
	})
	return c
}

// PermitDynamicIf is PermitDynamic with a guard.
func (c *StateConfiguration[S, T]) PermitDynamicIf(trigger T, resolver func(args []any) S, guard ...GuardCondition) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:  trigger,
		kind:     behaviourDynamic,
		resolver: resolver,
		guard:    newGuard(guard...),
	})
	return c
}

// Ignore configures trigger to be a no-op in this state: no actions, no
// state change, no listener notification.
func (c *StateConfiguration[S, T]) Ignore(trigger T) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger: trigger,
		kind:    behaviourIgnored,
	})
	return c
}

// IgnoreIf is Ignore with a guard: the trigger is ignored only while the
// guard is met, leaving room for another behaviour to handle it otherwise.
func (c *StateConfiguration[S, T]) IgnoreIf(trigger T, guard ...GuardCondition) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger: trigger,
		kind:    behaviourIgnored,
		guard:   newGuard(guard...),
	})
	return c
}

// InternalTransition configures trigger to run action without exiting or
// entering any state.
func (c *StateConfiguration[S, T]) InternalTransition(trigger T, action InternalAction[S, T]) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:        trigger,
		kind:           behaviourInternal,
		internalAction: action,
	})
	return c
}

// InternalTransitionIf is InternalTransition with a guard.
func (c *StateConfiguration[S, T]) InternalTransitionIf(trigger T, action InternalAction[S, T], guard ...GuardCondition) *StateConfiguration[S, T] {
	c.rep.addTriggerBehaviour(triggerBehaviour[S, T]{
		trigger:        trigger,
		kind:           behaviourInternal,
		internalAction: action,
		guard:          newGuard(guard...),
	})
	return c
}

// OnEntry registers an entry action that runs whenever this state is
// entered, unconditionally.
func (c *StateConfiguration[S, T]) OnEntry(action EntryAction[S, T]) *StateConfiguration[S, T] {
	c.rep.entryActions = append(c.rep.entryActions, entryActionEntry[S, T]{action: action})
	return c
}

// OnEntryFrom registers an entry action that runs only when the
// transition's trigger equals scopeTrigger.
func (c *StateConfiguration[S, T]) OnEntryFrom(scopeTrigger T, action EntryAction[S, T]) *StateConfiguration[S, T] {
	c.rep.entryActions = append(c.rep.entryActions, entryActionEntry[S, T]{
		action:       action,
		scoped:       true,
		scopeTrigger: scopeTrigger,
	})
	return c
}

// OnExit registers an exit action that runs whenever this state is left.
func (c *StateConfiguration[S, T]) OnExit(action ExitAction[S, T]) *StateConfiguration[S, T] {
	c.rep.exitActions = append(c.rep.exitActions, action)
	return c
}

// OnActivate registers an activation action, run root-down by Activate.
func (c *StateConfiguration[S, T]) OnActivate(action ActivateAction) *StateConfiguration[S, T] {
	c.rep.activateActions = append(c.rep.activateActions, action)
	return c
}

// OnDeactivate registers a deactivation action, run local-first by
// Deactivate.
func (c *StateConfiguration[S, T]) OnDeactivate(action DeactivateAction) *StateConfiguration[S, T] {
	c.rep.deactivateActions = append(c.rep.deactivateActions, action)
	return c
}

// SubstateOf nests this state under parent. Calling it more than once on
// the same state with different parents leaves the last call's parent in
// effect.
func (c *StateConfiguration[S, T]) SubstateOf(parent S) *StateConfiguration[S, T] {
	parentRep := c.machine.rep(parent)
	parentRep.addSubstate(c.rep)
	return c
}

// InitialTransition marks target as this state's initial-transition
// target: entering this state from outside automatically descends into
// target (and, recursively, target's own initial transition, if any).
func (c *StateConfiguration[S, T]) InitialTransition(target S) *StateConfiguration[S, T] {
	c.rep.hasInitialTransition = true
	c.rep.initialTransitionTarget = target
	return c
}
