package hfsm

import "github.com/google/uuid"

// Transition is an immutable record of one resolved trigger dispatch. It is
// ephemeral: created fresh for each Fire, read-only once built, and never
// reused across fires.
type Transition[S, T comparable] struct {
	Source      S
	Destination S
	Trigger     T
	Args        []any
	IsReentry   bool
	IsInitial   bool

	// ID is a random identifier generated for each transition record. The
	// engine's own log lines and metrics do not include it.
	ID uuid.UUID
}

func newTransition[S, T comparable](source, destination S, trigger T, args []any) Transition[S, T] {
	return Transition[S, T]{
		Source:      source,
		Destination: destination,
		Trigger:     trigger,
		Args:        args,
		IsReentry:   source == destination,
		ID:          uuid.New(),
	}
}

func newInitialTransition[S, T comparable](source, destination S, trigger T, args []any) Transition[S, T] {
	t := newTransition(source, destination, trigger, args)
	t.IsReentry = false
	t.IsInitial = true
	return t
}
