package main

import (
	"fmt"
	"os"

	"github.com/aretw0/turing/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Turing runs deterministic single-tape Turing machines",
	Long: `Turing loads Turing machines from YAML or JSON definitions and runs them
on input strings, step by step or to completion. It also grades machines
against the standard problem suites and serves them over HTTP and MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup builds the command environment from the persistent flags.
func setup(cmd *cobra.Command) (*cli.Env, error) {
	configPath, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	return cli.Setup(cli.Options{
		ConfigPath: configPath,
		Dir:        dir,
		Verbose:    verbose,
	})
}

// maxSteps prefers the flag when given, then the configuration.
func maxSteps(cmd *cobra.Command, env *cli.Env) int {
	if cmd.Flags().Changed("max-steps") {
		n, _ := cmd.Flags().GetInt("max-steps")
		return n
	}
	return env.Config.MaxSteps
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default turing.yaml)")
	rootCmd.PersistentFlags().String("dir", "", "Directory of machine definitions served alongside the built-in ones")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every step and every graded string")
}
