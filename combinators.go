package hfsm

import "github.com/rs/zerolog"

// ArgEquals builds a GuardCondition that compares args[index] to want using
// ==. It is unmet when index is past the end of args. A negative index, or
// two values of the same uncomparable dynamic type, panics at evaluation
// time; the engine's guard recovery treats that panic as unmet.
func ArgEquals(index int, want any, description string) GuardCondition {
	return GuardCondition{
		Description: description,
		Predicate: func(args []any) bool {
			if index >= len(args) {
				return false
			}
			return args[index] == want
		},
	}
}

// ArgPresent builds a GuardCondition satisfied when index is within args
// and the value there is non-nil.
func ArgPresent(index int, description string) GuardCondition {
	return GuardCondition{
		Description: description,
		Predicate: func(args []any) bool {
			return index < len(args) && args[index] != nil
		},
	}
}

// Not inverts a guard condition, keeping its description prefixed with
// "not".
func Not(c GuardCondition) GuardCondition {
	return GuardCondition{
		Description: "not " + c.Description,
		Predicate: func(args []any) bool {
			return !c.Predicate(args)
		},
	}
}

// LogEntry returns an EntryAction that writes a debug line through logger
// describing the transition, for wiring into OnEntry without writing a
// closure at every call site.
func LogEntry[S, T comparable](logger *zerolog.Logger) EntryAction[S, T] {
	return func(t Transition[S, T], args []any) error {
		logger.Debug().
			Interface("source", t.Source).
			Interface("destination", t.Destination).
			Interface("trigger", t.Trigger).
			Msg("entered state")
		return nil
	}
}

// LogExit returns an ExitAction that writes a debug line through logger
// describing the transition.
func LogExit[S, T comparable](logger *zerolog.Logger) ExitAction[S, T] {
	return func(t Transition[S, T]) error {
		logger.Debug().
			Interface("source", t.Source).
			Interface("destination", t.Destination).
			Interface("trigger", t.Trigger).
			Msg("exited state")
		return nil
	}
}
