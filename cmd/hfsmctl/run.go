package main

import (
	"fmt"
	"os"

	hfsmconfig "github.com/kalbhor/hfsm/config"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [triggers...]",
	Short: "Fire a sequence of triggers against the loaded machine and print the trace",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		return runFire(path, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runFire(path string, triggers []string) error {
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

	fmt.Printf("start: %s\n", sm.CurrentState())

	for _, trigger := range triggers {
		if err := sm.Fire(trigger); err != nil {
			return fmt.Errorf("fire %q: %w", trigger, err)
		}
		fmt.Printf("%s -> %s\n", trigger, sm.CurrentState())
	}
	return nil
}
