package hfsm

// TransitionListener is notified after a committed transition, before the
// destination's entry actions run. It is not notified for internal or
// ignored triggers. Reentry transitions do notify.
type TransitionListener[S, T comparable] func(t Transition[S, T])

// UnhandledTriggerPolicy decides what happens when no trigger behaviour
// applies, or every candidate behaviour's guards were unmet. unmetGuards is
// nil when no candidate existed at all. The default policy, installed by
// New, returns an *UnhandledTriggerError.
type UnhandledTriggerPolicy[S, T comparable] func(state S, trigger T, unmetGuards []string) error

func defaultUnhandledTriggerPolicy[S, T comparable](state S, trigger T, unmetGuards []string) error {
	return newUnhandledTriggerError(fmtState(state), fmtTrigger(trigger), unmetGuards)
}
