package hfsm

import "fmt"

// ErrorCode classifies the kinds of failures the engine can surface.
type ErrorCode int

const (
	// ErrCodeNone is the zero value, never used on a constructed error.
	ErrCodeNone ErrorCode = iota
	// ErrCodeMultipleTransitions means more than one guarded trigger
	// behaviour had all its guards met for the same (state, trigger, args).
	ErrCodeMultipleTransitions
	// ErrCodeInvalidInitialTransition means a state's initial-transition
	// target is not one of its own substates.
	ErrCodeInvalidInitialTransition
	// ErrCodeMissingInternalHandler means the superstate walk that should
	// have re-found the already-resolved internal handler came up empty;
	// the configuration is corrupt.
	ErrCodeMissingInternalHandler
	// ErrCodeInvalidArgument means a fired trigger's arguments did not
	// match its registered parameter descriptor.
	ErrCodeInvalidArgument
	// ErrCodeUnhandledTrigger means no trigger behaviour applied, or the
	// only applicable ones had unmet guards.
	ErrCodeUnhandledTrigger
)

// ConfigurationError reports a defect in how states, triggers, or guards
// were wired together. These are programmer errors, not runtime data
// errors, and the engine never attempts to recover from them.
type ConfigurationError struct {
	Code    ErrorCode
	State   string
	Trigger string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hfsm: configuration error in state %s: %s", e.State, e.Message)
}

func newMultipleTransitionsError(state, trigger string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeMultipleTransitions,
		State:   state,
		Trigger: trigger,
		Message: fmt.Sprintf("multiple transitions permitted for trigger %s in state %s", trigger, state),
	}
}

func newInvalidInitialTransitionError(state string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeInvalidInitialTransition,
		State:   state,
		Message: "target for the initial transition is not a substate",
	}
}

func newMissingInternalHandlerError(state, trigger string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeMissingInternalHandler,
		State:   state,
		Trigger: trigger,
		Message: fmt.Sprintf("internal transition behaviour for trigger %s vanished while walking up from state %s", trigger, state),
	}
}

// ArgumentError reports that the arguments supplied to Fire did not match
// the arity or types registered for the trigger's parameter descriptor.
type ArgumentError struct {
	Trigger string
	Message string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("hfsm: invalid argument for trigger %s: %s", e.Trigger, e.Message)
}

func newArgumentError(trigger, message string) *ArgumentError {
	return &ArgumentError{Trigger: trigger, Message: message}
}

// UnhandledTriggerError is raised by the default unhandled-trigger policy.
// UnmetGuards is empty when no candidate behaviour existed at all, and
// non-empty when at least one candidate existed but none had all guards met.
type UnhandledTriggerError struct {
	State       string
	Trigger     string
	UnmetGuards []string
}

func (e *UnhandledTriggerError) Error() string {
	if len(e.UnmetGuards) == 0 {
		return fmt.Sprintf("hfsm: no permitted transitions from state %s for trigger %s", e.State, e.Trigger)
	}
	return fmt.Sprintf("hfsm: no permitted transitions from state %s for trigger %s due to unmet guard conditions: %s",
		e.State, e.Trigger, joinStrings(e.UnmetGuards, ", "))
}

func newUnhandledTriggerError(state, trigger string, unmetGuards []string) *UnhandledTriggerError {
	return &UnhandledTriggerError{State: state, Trigger: trigger, UnmetGuards: unmetGuards}
}

// fmtState and fmtTrigger render a generic S/T value for error messages and
// logs. They exist because %v on a type parameter needs no constraint
// beyond comparable, and centralizing the format keeps messages consistent.
func fmtState[S comparable](s S) string {
	return fmt.Sprintf("%v", s)
}

func fmtTrigger[T comparable](t T) string {
	return fmt.Sprintf("%v", t)
}

func joinStrings(items []string, sep string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

// IsConfigurationError reports whether err is a *ConfigurationError.
func IsConfigurationError(err error) bool {
	_, ok := err.(*ConfigurationError)
	return ok
}

// IsArgumentError reports whether err is an *ArgumentError.
func IsArgumentError(err error) bool {
	_, ok := err.(*ArgumentError)
	return ok
}

// IsUnhandledTriggerError reports whether err is an *UnhandledTriggerError.
func IsUnhandledTriggerError(err error) bool {
	_, ok := err.(*UnhandledTriggerError)
	return ok
}

// GetErrorCode returns the error code for known error types, or
// ErrCodeNone for anything else (including nil and user action errors).
func GetErrorCode(err error) ErrorCode {
	switch e := err.(type) {
	case *ConfigurationError:
		return e.Code
	case *ArgumentError:
		return ErrCodeInvalidArgument
	case *UnhandledTriggerError:
		return ErrCodeUnhandledTrigger
	default:
		return ErrCodeNone
	}
}
