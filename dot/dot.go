// Package dot renders a configured machine's GetInfo snapshot as a
// Graphviz DOT document, the way the teacher's visualization package
// rendered its own MachineDefinition.
package dot

import (
	"fmt"
	"io"
	"strings"

	"github.com/kalbhor/hfsm"
)

// Options configures the rendered graph's appearance.
type Options struct {
	RankDirection string // "TB", "LR", "BT", "RL"
	NodeShape     string
}

// DefaultOptions returns sensible defaults, top-to-bottom with boxed nodes.
func DefaultOptions() Options {
	return Options{RankDirection: "TB", NodeShape: "box"}
}

// Write renders info to w as a DOT document using opts.
func Write[S, T comparable](w io.Writer, info hfsm.StateMachineInfo[S, T], opts Options) error {
	var b strings.Builder

	b.WriteString("digraph StateMachine {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", opts.RankDirection)
	fmt.Fprintf(&b, "  node [shape=%s];\n", opts.NodeShape)
	b.WriteString("  edge [fontsize=10];\n\n")

	for _, s := range info.States {
		label := fmt.Sprintf("%v", s.State)
		style := ""
		if len(s.Substates) > 0 {
			style = ", style=rounded"
		}
		fmt.Fprintf(&b, "  %q [label=%q%s];\n", label, label, style)
		if s.HasInitial {
			fmt.Fprintf(&b, "  %q -> %q [style=dashed, label=\"initial\"];\n", label, fmt.Sprintf("%v", s.InitialTarget))
		}
	}
	b.WriteString("\n")

	for _, s := range info.States {
		source := fmt.Sprintf("%v", s.State)
		for _, trig := range s.Triggers {
			triggerLabel := fmt.Sprintf("%v", trig.Trigger)
			if trig.IsDynamic {
				fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", source, source, triggerLabel+" (dynamic)")
				continue
			}
			for _, dest := range trig.Destinations {
				fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", source, fmt.Sprintf("%v", dest), triggerLabel)
			}
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
