package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hfsmctl",
	Short: "hfsmctl loads a YAML state machine definition and fires triggers against it",
	Long:  `hfsmctl is a convenience harness over the hfsm library: it is not part of the engine's contract.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "", "path to a YAML machine definition")
	rootCmd.MarkPersistentFlagRequired("file")
}

func main() {
	Execute()
}
