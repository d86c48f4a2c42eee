package hfsm

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState int

const (
	stateA testState = iota
	stateB
	stateC
	stateOperational
)

type testTrigger int

const (
	triggerX testTrigger = iota
	triggerY
)

func TestSimpleTransition(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).Permit(triggerX, stateB)

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateB)
}

func TestReentryRunsOnlyLocalActions(t *testing.T) {
	var log ActionLog
	sm := New[testState, testTrigger](stateB)
	sm.Configure(stateB).
		PermitReentry(triggerX).
		OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("e")
			return nil
		}).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("x")
			return nil
		})

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateB)
	AssertTrace(t, log.Entries(), []string{"x", "e"})
}

func TestHierarchyExitOrdering(t *testing.T) {
	var log ActionLog
	sm := New[testState, testTrigger](stateB)

	sm.Configure(stateA).
		Permit(triggerY, stateC).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("xA")
			return nil
		})
	sm.Configure(stateB).
		SubstateOf(stateA).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("xB")
			return nil
		})
	sm.Configure(stateC).
		OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("eC")
			return nil
		})

	require.NoError(t, sm.Fire(triggerY))
	AssertState(t, sm, stateC)
	AssertTrace(t, log.Entries(), []string{"xB", "xA", "eC"})
}

func TestInitialTransitionExpansion(t *testing.T) {
	var log ActionLog
	sm := New[testState, testTrigger](stateA)

	sm.Configure(stateA).Permit(triggerX, stateB)
	sm.Configure(stateB).
		InitialTransition(stateC).
		OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("eB")
			return nil
		})
	sm.Configure(stateC).
		SubstateOf(stateB).
		OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("eC")
			return nil
		})

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateC)
	AssertTrace(t, log.Entries(), []string{"eB", "eC"})
}

func TestGuardBlocksAndReportsUnmet(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).PermitIf(triggerX, stateB, GuardCondition{
		Description: "g1",
		Predicate:   func(args []any) bool { return false },
	})

	err := sm.Fire(triggerX)
	require.Error(t, err)
	var unhandled *UnhandledTriggerError
	require.ErrorAs(t, err, &unhandled)
	assert.Equal(t, []string{"g1"}, unhandled.UnmetGuards)
	assert.Contains(t, err.Error(), "g1")
}

func TestMultiplePermittedTransitionsIsConfigurationError(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).
		Permit(triggerX, stateB).
		PermitIf(triggerX, stateC, GuardCondition{
			Description: "always",
			Predicate:   func(args []any) bool { return true },
		})

	err := sm.Fire(triggerX)
	require.Error(t, err)
	assert.Equal(t, ErrCodeMultipleTransitions, GetErrorCode(err))
}

func TestIgnoredTriggerIsNoOp(t *testing.T) {
	var log ActionLog
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).
		Ignore(triggerX).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("x")
			return nil
		})

	recorder := NewTraceRecorder[testState, testTrigger]()
	sm.OnTransitioned(recorder.Listener())

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateA)
	assert.Empty(t, log.Entries())
	assert.Equal(t, 0, recorder.Count())
}

func TestInternalTransitionRunsActionWithoutExitEntry(t *testing.T) {
	var log ActionLog
	calls := 0
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).
		InternalTransition(triggerX, func(tr Transition[testState, testTrigger], args []any) error {
			calls++
			return nil
		}).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("x")
			return nil
		}).
		OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("e")
			return nil
		})

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateA)
	assert.Equal(t, 1, calls)
	assert.Empty(t, log.Entries())
}

func TestSubstateToSuperstateDoesNotExitSuperstate(t *testing.T) {
	var log ActionLog
	sm := New[testState, testTrigger](stateB)
	sm.Configure(stateA).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("xA")
			return nil
		})
	sm.Configure(stateB).
		SubstateOf(stateA).
		Permit(triggerX, stateA).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("xB")
			return nil
		})

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateA)
	AssertTrace(t, log.Entries(), []string{"xB"})
}

func TestTransitionListenerFiresAfterCommitBeforeEntry(t *testing.T) {
	var log ActionLog
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).Permit(triggerX, stateB)
	sm.Configure(stateB).OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
		log.Record("entry")
		return nil
	})

	sm.OnTransitioned(func(tr Transition[testState, testTrigger]) {
		assert.Equal(t, stateB, sm.CurrentState())
		log.Record("listener")
	})

	require.NoError(t, sm.Fire(triggerX))
	AssertTrace(t, log.Entries(), []string{"listener", "entry"})
}

func TestImmediateModeReentrantFireRunsNested(t *testing.T) {
	var log ActionLog
	sm := NewWithMode[testState, testTrigger](stateA, FiringImmediate)
	sm.Configure(stateA).
		Permit(triggerX, stateB).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("ExitA")
			return nil
		})
	sm.Configure(stateB).
		Permit(triggerY, stateA).
		OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("EnterB")
			return sm.Fire(triggerY)
		}).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("ExitB")
			return nil
		})
	sm.Configure(stateA).OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
		log.Record("EnterA")
		return nil
	})

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateA)
	AssertTrace(t, log.Entries(), []string{"ExitA", "EnterB", "ExitB", "EnterA"})
}

func TestQueuedModeDrainsFIFOAfterOuterFireCompletes(t *testing.T) {
	var log ActionLog
	sm := NewWithMode[testState, testTrigger](stateA, FiringQueued)
	sm.Configure(stateA).
		Permit(triggerX, stateB).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("ExitA")
			return nil
		})
	sm.Configure(stateB).
		Permit(triggerY, stateA).
		OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("EnterB")
			return sm.Fire(triggerY)
		}).
		OnExit(func(tr Transition[testState, testTrigger]) error {
			log.Record("ExitB")
			return nil
		})
	sm.Configure(stateA).OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
		log.Record("EnterA")
		return nil
	})

	require.NoError(t, sm.Fire(triggerX))
	AssertState(t, sm, stateA)
	AssertTrace(t, log.Entries(), []string{"ExitA", "EnterB", "ExitB", "EnterA"})
}

// TestQueuedVsImmediateDivergeOnChainedTrigger is the A->B->A cycle's
// distinguishing counterpart: B's entry fires Y *before* recording its own
// "EnterB", and Y leads onward to C rather than back to A. In Immediate
// mode the nested fire runs to completion (exiting B and entering C)
// before "EnterB" is ever recorded, so it appears last in the trace. In
// Queued mode the nested fire only enqueues, so "EnterB" is recorded
// immediately and the B->C leg is only processed once the outer fire has
// finished entering B.
func TestQueuedVsImmediateDivergeOnChainedTrigger(t *testing.T) {
	build := func(mode FiringMode, log *ActionLog) *StateMachine[testState, testTrigger] {
		sm := NewWithMode[testState, testTrigger](stateA, mode)
		sm.Configure(stateA).
			Permit(triggerX, stateB).
			OnExit(func(tr Transition[testState, testTrigger]) error {
				log.Record("ExitA")
				return nil
			})
		sm.Configure(stateB).
			Permit(triggerY, stateC).
			OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
				err := sm.Fire(triggerY)
				log.Record("EnterB")
				return err
			}).
			OnExit(func(tr Transition[testState, testTrigger]) error {
				log.Record("ExitB")
				return nil
			})
		sm.Configure(stateC).OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
			log.Record("EnterC")
			return nil
		})
		return sm
	}

	var immediateLog ActionLog
	immediate := build(FiringImmediate, &immediateLog)
	require.NoError(t, immediate.Fire(triggerX))
	AssertState(t, immediate, stateC)
	AssertTrace(t, immediateLog.Entries(), []string{"ExitA", "ExitB", "EnterC", "EnterB"})

	var queuedLog ActionLog
	queued := build(FiringQueued, &queuedLog)
	require.NoError(t, queued.Fire(triggerX))
	AssertState(t, queued, stateC)
	AssertTrace(t, queuedLog.Entries(), []string{"ExitA", "EnterB", "ExitB", "EnterC"})
}

func TestUnhandledTriggerNoCandidate(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	err := sm.Fire(triggerX)
	require.Error(t, err)
	var unhandled *UnhandledTriggerError
	require.ErrorAs(t, err, &unhandled)
	assert.Empty(t, unhandled.UnmetGuards)
}

func TestCanFireAndPermittedTriggers(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).
		Permit(triggerX, stateB).
		PermitIf(triggerY, stateC, GuardCondition{Description: "never", Predicate: func(args []any) bool { return false }})

	assert.True(t, sm.CanFire(triggerX))
	assert.False(t, sm.CanFire(triggerY))
	assert.ElementsMatch(t, []testTrigger{triggerX}, sm.PermittedTriggers())
}

func TestIsInStateCoversAncestors(t *testing.T) {
	sm := New[testState, testTrigger](stateB)
	sm.Configure(stateA)
	sm.Configure(stateB).SubstateOf(stateA)

	assert.True(t, sm.IsInState(stateB))
	assert.True(t, sm.IsInState(stateA))
	assert.False(t, sm.IsInState(stateC))
}

func TestActivateDeactivateIdempotent(t *testing.T) {
	activations := 0
	deactivations := 0
	sm := New[testState, testTrigger](stateB)
	sm.Configure(stateA).
		OnActivate(func() error { activations++; return nil }).
		OnDeactivate(func() error { deactivations++; return nil })
	sm.Configure(stateB).SubstateOf(stateA)

	require.NoError(t, sm.Activate())
	require.NoError(t, sm.Activate())
	assert.Equal(t, 1, activations)

	require.NoError(t, sm.Deactivate())
	require.NoError(t, sm.Deactivate())
	assert.Equal(t, 1, deactivations)
}

func TestInvalidInitialTransitionTarget(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).Permit(triggerX, stateB)
	sm.Configure(stateB).InitialTransition(stateC) // stateC is never made a substate of stateB

	err := sm.Fire(triggerX)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidInitialTransition, GetErrorCode(err))
}

func TestLoggingHookDoesNotAffectOutcome(t *testing.T) {
	withoutLogger := New[testState, testTrigger](stateA)
	withoutLogger.Configure(stateA).Permit(triggerX, stateB)
	require.NoError(t, withoutLogger.Fire(triggerX))

	withLogger := New[testState, testTrigger](stateA)
	withLogger.Configure(stateA).Permit(triggerX, stateB)
	discard := zerolog.New(io.Discard)
	withLogger.WithLogger(&discard)
	require.NoError(t, withLogger.Fire(triggerX))

	assert.Equal(t, withoutLogger.CurrentState(), withLogger.CurrentState())
}

func TestPanickingGuardIsRecoveredAsUnmet(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).PermitIf(triggerX, stateB, GuardCondition{
		Description: "panics",
		Predicate:   func(args []any) bool { panic("boom") },
	})

	require.NotPanics(t, func() {
		err := sm.Fire(triggerX)
		require.Error(t, err)
		var unhandled *UnhandledTriggerError
		require.ErrorAs(t, err, &unhandled)
		assert.Equal(t, []string{"panics"}, unhandled.UnmetGuards)
	})
	AssertState(t, sm, stateA)
}

func TestPanickingActionIsRecoveredAsError(t *testing.T) {
	sm := New[testState, testTrigger](stateA)
	sm.Configure(stateA).Permit(triggerX, stateB)
	sm.Configure(stateB).OnEntry(func(tr Transition[testState, testTrigger], args []any) error {
		panic("boom")
	})

	var err error
	require.NotPanics(t, func() {
		err = sm.Fire(triggerX)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
