package hfsm

import "fmt"

// parameterDescriptor validates the fire-time arguments for one trigger
// against the arity and types declared when the trigger was first
// described with TriggerWithParameters. Triggers fired without a
// descriptor skip this check entirely: args pass through unexamined.
type parameterDescriptor interface {
	validate(args []any) error
}

// TriggerWithParameters1 declares that a trigger fires with exactly one
// argument of type P1. Configure transitions with its Trigger field and
// fire it with Fire1; the arity/type check applies to every Fire of the
// trigger only once the descriptor is passed to RegisterTriggerParameters1.
type TriggerWithParameters1[T comparable, P1 any] struct {
	Trigger T
}

func NewTriggerWithParameters1[T comparable, P1 any](trigger T) TriggerWithParameters1[T, P1] {
	return TriggerWithParameters1[T, P1]{Trigger: trigger}
}

func (d TriggerWithParameters1[T, P1]) validate(args []any) error {
	if len(args) != 1 {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("expected 1 argument, got %d", len(args)))
	}
	if _, ok := args[0].(P1); !ok {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("argument 0 is not assignable to %T", *new(P1)))
	}
	return nil
}

// TriggerWithParameters2 is TriggerWithParameters1 for two arguments.
type TriggerWithParameters2[T comparable, P1, P2 any] struct {
	Trigger T
}

func NewTriggerWithParameters2[T comparable, P1, P2 any](trigger T) TriggerWithParameters2[T, P1, P2] {
	return TriggerWithParameters2[T, P1, P2]{Trigger: trigger}
}

func (d TriggerWithParameters2[T, P1, P2]) validate(args []any) error {
	if len(args) != 2 {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("expected 2 arguments, got %d", len(args)))
	}
	if _, ok := args[0].(P1); !ok {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("argument 0 is not assignable to %T", *new(P1)))
	}
	if _, ok := args[1].(P2); !ok {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("argument 1 is not assignable to %T", *new(P2)))
	}
	return nil
}

// TriggerWithParameters3 is TriggerWithParameters1 for three arguments.
type TriggerWithParameters3[T comparable, P1, P2, P3 any] struct {
	Trigger T
}

func NewTriggerWithParameters3[T comparable, P1, P2, P3 any](trigger T) TriggerWithParameters3[T, P1, P2, P3] {
	return TriggerWithParameters3[T, P1, P2, P3]{Trigger: trigger}
}

// RegisterTriggerParameters1 associates twp's arity/type check with its
// trigger on sm, so that any Fire of that trigger — typed or not — is
// validated. Methods can't carry their own type parameters, so this is a
// free function rather than a method on StateMachine.
func RegisterTriggerParameters1[S, T comparable, P1 any](sm *StateMachine[S, T], twp TriggerWithParameters1[T, P1]) {
	sm.registerDescriptor(twp.Trigger, twp)
}

func RegisterTriggerParameters2[S, T comparable, P1, P2 any](sm *StateMachine[S, T], twp TriggerWithParameters2[T, P1, P2]) {
	sm.registerDescriptor(twp.Trigger, twp)
}

func RegisterTriggerParameters3[S, T comparable, P1, P2, P3 any](sm *StateMachine[S, T], twp TriggerWithParameters3[T, P1, P2, P3]) {
	sm.registerDescriptor(twp.Trigger, twp)
}

// Fire1 fires twp's trigger with a single typed argument.
func Fire1[S, T comparable, P1 any](sm *StateMachine[S, T], twp TriggerWithParameters1[T, P1], arg0 P1) error {
	return sm.Fire(twp.Trigger, arg0)
}

// Fire2 fires twp's trigger with two typed arguments.
func Fire2[S, T comparable, P1, P2 any](sm *StateMachine[S, T], twp TriggerWithParameters2[T, P1, P2], arg0 P1, arg1 P2) error {
	return sm.Fire(twp.Trigger, arg0, arg1)
}

// Fire3 fires twp's trigger with three typed arguments.
func Fire3[S, T comparable, P1, P2, P3 any](sm *StateMachine[S, T], twp TriggerWithParameters3[T, P1, P2, P3], arg0 P1, arg1 P2, arg2 P3) error {
	return sm.Fire(twp.Trigger, arg0, arg1, arg2)
}

func (d TriggerWithParameters3[T, P1, P2, P3]) validate(args []any) error {
	if len(args) != 3 {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("expected 3 arguments, got %d", len(args)))
	}
	if _, ok := args[0].(P1); !ok {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("argument 0 is not assignable to %T", *new(P1)))
	}
	if _, ok := args[1].(P2); !ok {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("argument 1 is not assignable to %T", *new(P2)))
	}
	if _, ok := args[2].(P3); !ok {
		return newArgumentError(fmtTrigger(d.Trigger), fmt.Sprintf("argument 2 is not assignable to %T", *new(P3)))
	}
	return nil
}
