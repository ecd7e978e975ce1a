package main

import (
	"context"
	"io"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <machine|file> <input>",
	Short: "Run a machine on an input",
	Long: `Runs a built-in machine, a machine from --dir, or a definition file on an input
string and prints whether it is accepted. Use "-" to read the input from stdin.`,
	Example: `  turing run even 0110
  turing run ./machines/copy.yaml 101 --trace
  echo 00111100000000 | turing run problem3 -`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		trace, _ := cmd.Flags().GetBool("trace")

		input := args[1]
		if input == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			input = string(data)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		_, err = cli.Run(sigCtx, env, cli.RunOptions{
			Target:   args[0],
			Input:    input,
			MaxSteps: maxSteps(cmd, env),
			Trace:    trace,
		}, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("max-steps", 0, "Step budget; negative runs unbounded (default from config)")
	runCmd.Flags().Bool("trace", false, "Print every configuration of the run")
}
