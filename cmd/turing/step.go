package main

import (
	"context"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step [machine input]",
	Short: "Advance a persisted run by a few steps",
	Long: `Walks a run one call at a time. The first call starts a session on the given
machine and input; later calls continue it. Sessions live in the configured
store (a local directory unless redis is configured).`,
	Example: `  turing step even 10 -n 1
  turing step -n 2
  turing step --session s2 --fresh palindrome 0110`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return cobra.ExactArgs(2)(cmd, args)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		opts := cli.StepOptions{}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.N, _ = cmd.Flags().GetInt("steps")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		if len(args) == 2 {
			opts.Machine, opts.Input = args[0], args[1]
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		_, err = cli.Step(sigCtx, env, opts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(stepCmd)

	stepCmd.Flags().String("session", cli.DefaultSessionID, "Session ID")
	stepCmd.Flags().IntP("steps", "n", 1, "Number of transitions to apply (0 only shows the session)")
	stepCmd.Flags().Bool("fresh", false, "Discard the session before starting")
}
