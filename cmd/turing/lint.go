package main

import (
	"errors"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint [machine|file|dir...]",
	Short: "Check machine definitions for mistakes",
	Long: `Checks definitions eagerly: undeclared states, overlapping accept and reject
sets, symbols that are not one character, bad directions and transitions into
states that can never continue. Runs never do this; a table is only checked
where a run reaches it. With no arguments every known machine is linted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		failed, err := cli.Lint(env, args, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if failed {
			return errors.New("lint found errors")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
