package main

import (
	"fmt"
	"os"

	hfsmconfig "github.com/kalbhor/hfsm/config"
	"github.com/kalbhor/hfsm/dot"
	"github.com/spf13/cobra"
)

var dotCmd = &cobra.Command{
	Use:   "dot",
	Short: "Render the loaded machine as a Graphviz DOT document",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		return runDot(path)
	},
}

func init() {
	rootCmd.AddCommand(dotCmd)
}

func runDot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := hfsmconfig.Parse(f)
	if err != nil {
		return err
	}
	sm, err := hfsmconfig.Build(doc)
	if err != nil {
		return err
	}

	return dot.Write(os.Stdout, sm.GetInfo(), dot.DefaultOptions())
}
