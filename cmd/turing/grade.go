package main

import (
	"context"
	"errors"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var gradeCmd = &cobra.Command{
	Use:   "grade [problem...]",
	Short: "Score machines against the standard problem suites",
	Long: `Runs each problem's accept and reject strings through the machine of the same
name (or --machine) and prints a score report. With -v every string is logged
as it is graded.`,
	Example: `  turing grade
  turing grade problem3 --machine ./mine.yaml -v`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		machine, _ := cmd.Flags().GetString("machine")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		passed, err := cli.Grade(sigCtx, env, cli.GradeOptions{
			Problems: args,
			Machine:  machine,
			MaxSteps: maxSteps(cmd, env),
		}, cmd.OutOrStdout(), tui.NewRenderer(os.Stdout))
		if err != nil {
			return err
		}
		if !passed {
			return errors.New("some strings were graded wrong")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().String("machine", "", "Machine name or file graded for every problem")
	gradeCmd.Flags().Int("max-steps", 0, "Step budget per string (default from config)")
}
