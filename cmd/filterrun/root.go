package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jupiter950/multichain/chainparams"
	"github.com/jupiter950/multichain/engine"
	"github.com/jupiter950/multichain/hostfunc"
)

var rootCmd = &cobra.Command{
	Use:   "filterrun [file]",
	Short: "Deterministic sandbox for consensus filter scripts",
	Long: `filterrun - Load a JavaScript filter, neutralize nondeterministic
built-ins, and run its entry function in an isolated context.

Filters communicate success through string results or no result, and
failure through exceptions; diagnostics are printed to stderr.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun, // default to run command behavior
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("entry", "main", "Entry function name")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Watchdog timeout (0 = none)")
	rootCmd.PersistentFlags().Bool("limit-math", false, "Restrict Math built-ins to the deterministic allow-list")
	rootCmd.PersistentFlags().Bool("state", false, "Expose state_get/state_set/state_delete callbacks")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	addRunFlags(rootCmd)
}

// newEngine builds an engine from the shared flags, registering the demo
// emit callback and, when requested, the deterministic state store.
func newEngine(cmd *cobra.Command) *engine.Engine {
	limitMath, _ := cmd.Flags().GetBool("limit-math")
	withState, _ := cmd.Flags().GetBool("state")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		engine.SetLogger(logger)
	}

	registry := hostfunc.NewRegistry()
	registry.Register("emit", func(ctx *hostfunc.Context, args []any) (any, error) {
		for _, arg := range args {
			fmt.Println(arg)
		}
		return nil, nil
	})
	if withState {
		hostfunc.NewState().RegisterWith(registry)
	}

	params := chainparams.Default()
	params.LimitMathBuiltins = limitMath

	return engine.New(registry, engine.WithParams(params))
}
