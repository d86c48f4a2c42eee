package hfsm

// StateMachineInfo is a read-only snapshot of a configured machine: every
// state the machine holds a representation for, its place in the
// hierarchy, and the destinations reachable from it.
type StateMachineInfo[S, T comparable] struct {
	States []StateInfo[S, T]
}

// StateInfo describes one configured state.
type StateInfo[S, T comparable] struct {
	State         S
	Superstate    *S
	Substates     []S
	Triggers      []TriggerInfo[S, T]
	HasInitial    bool
	InitialTarget S
}

// TriggerInfo lists the destinations a trigger can lead to from a given
// state — extracted only from Transitioning, Reentry, and Dynamic
// behaviours, per the read-over-the-data-model contract: an Internal or
// Ignored behaviour has no "destination" worth reporting, and a Dynamic
// behaviour's destination is approximated as unresolved.
type TriggerInfo[S, T comparable] struct {
	Trigger      T
	Destinations []S
	IsDynamic    bool
}

// GetInfo returns a snapshot of every state the machine holds a
// representation for, for introspection or graph export: each state passed
// to Configure or SubstateOf, plus any state created since by firing or
// by a query on the current state. A state named only as a transition
// destination is not listed until the machine has entered it. States are
// listed in no defined order. It does not resolve Dynamic destinations,
// since those depend on fire-time arguments.
func (sm *StateMachine[S, T]) GetInfo() StateMachineInfo[S, T] {
	info := StateMachineInfo[S, T]{}
	for _, r := range sm.representations {
		info.States = append(info.States, sm.describeState(r))
	}
	return info
}

func (sm *StateMachine[S, T]) describeState(r *stateRepresentation[S, T]) StateInfo[S, T] {
	si := StateInfo[S, T]{
		State:         r.state,
		HasInitial:    r.hasInitialTransition,
		InitialTarget: r.initialTransitionTarget,
	}
	if r.superstate != nil {
		s := r.superstate.state
		si.Superstate = &s
	}
	for _, sub := range r.substates {
		si.Substates = append(si.Substates, sub.state)
	}
	for _, trigger := range r.triggerOrder {
		ti := TriggerInfo[S, T]{Trigger: trigger}
		for _, b := range r.triggerBehaviours[trigger] {
			switch b.kind {
			case behaviourTransitioning, behaviourReentry:
				ti.Destinations = append(ti.Destinations, b.destination)
			case behaviourDynamic:
				ti.IsDynamic = true
			}
		}
		si.Triggers = append(si.Triggers, ti)
	}
	return si
}
