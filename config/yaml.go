// Package config loads a declarative, string-keyed machine definition
// from YAML. YAML documents cannot carry Go predicates or closures, so
// this loader only reaches the structural subset of configuration that
// needs none: Permit, PermitReentry, Ignore, SubstateOf, and
// InitialTransition. Guards, internal transitions, and action callbacks
// must still be wired in Go after loading.
package config

import (
	"fmt"
	"io"

	"github.com/kalbhor/hfsm"
	"gopkg.in/yaml.v3"
)

// Document is the YAML shape this package understands.
type Document struct {
	InitialState string         `yaml:"initial_state"`
	States       []StateDoc     `yaml:"states"`
	Transitions  []TransitionDoc `yaml:"transitions"`
}

// StateDoc declares one state and its place in the hierarchy.
type StateDoc struct {
	Name              string `yaml:"name"`
	SubstateOf        string `yaml:"substate_of,omitempty"`
	InitialTransition string `yaml:"initial_transition,omitempty"`
}

// TransitionDoc declares one trigger behaviour on a state.
type TransitionDoc struct {
	From    string `yaml:"from"`
	Trigger string `yaml:"trigger"`
	To      string `yaml:"to,omitempty"`
	Reentry bool   `yaml:"reentry,omitempty"`
	Ignore  bool   `yaml:"ignore,omitempty"`
}

// Parse decodes a Document from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return &doc, nil
}

// Build constructs a *hfsm.StateMachine[string,string] from doc, using
// immediate firing. Callers needing queued firing or external state
// storage should build the machine by hand and apply doc's transitions
// with Apply instead.
func Build(doc *Document) (*hfsm.StateMachine[string, string], error) {
	if doc.InitialState == "" {
		return nil, fmt.Errorf("config: initial_state is required")
	}
	sm := hfsm.New[string, string](doc.InitialState)
	if err := Apply(sm, doc); err != nil {
		return nil, err
	}
	return sm, nil
}

// Apply configures sm (any string/string machine) from doc, without
// constructing a new machine. Useful when the caller already built a
// machine with a custom accessor/mutator or firing mode.
func Apply(sm *hfsm.StateMachine[string, string], doc *Document) error {
	for _, s := range doc.States {
		cfg := sm.Configure(s.Name)
		if s.SubstateOf != "" {
			cfg.SubstateOf(s.SubstateOf)
		}
		if s.InitialTransition != "" {
			cfg.InitialTransition(s.InitialTransition)
		}
	}

	for _, t := range doc.Transitions {
		cfg := sm.Configure(t.From)
		switch {
		case t.Ignore:
			cfg.Ignore(t.Trigger)
		case t.Reentry:
			cfg.PermitReentry(t.Trigger)
		case t.To != "":
			cfg.Permit(t.Trigger, t.To)
		default:
			return fmt.Errorf("config: transition from %q on trigger %q has neither to, reentry, nor ignore set", t.From, t.Trigger)
		}
	}
	return nil
}
