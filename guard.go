package hfsm

// GuardCondition is a single named predicate over fire arguments. Predicates
// must be pure and side-effect-free for the duration of a resolution: the
// engine may call a guard more than once per fire (an internal transition,
// for instance, resolves its handler a second time while walking up to its
// action).
type GuardCondition struct {
	Predicate   func(args []any) bool
	Description string
}

// Guard is an ordered list of named predicates. A guard is met when every
// predicate in it returns true; an empty guard is trivially met.
type Guard struct {
	conditions []GuardCondition
}

func newGuard(conditions ...GuardCondition) Guard {
	return Guard{conditions: conditions}
}

// AllMet reports whether every predicate in the guard is satisfied.
func (g Guard) AllMet(args []any) bool {
	for _, c := range g.conditions {
		if !safeGuard(c.Predicate, args) {
			return false
		}
	}
	return true
}

// Unmet returns the descriptions of predicates that returned false, in
// registration order.
func (g Guard) Unmet(args []any) []string {
	var unmet []string
	for _, c := range g.conditions {
		if !safeGuard(c.Predicate, args) {
			desc := c.Description
			if desc == "" {
				desc = "unnamed guard"
			}
			unmet = append(unmet, desc)
		}
	}
	return unmet
}
