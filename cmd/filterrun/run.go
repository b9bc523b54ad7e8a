package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jupiter950/multichain/engine"
	"github.com/jupiter950/multichain/filter"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a filter script once",
	Long: `Load a filter script, run its entry function, and print the result.

The script can be provided via:
  - File argument: filterrun run filter.js
  - Inline flag: filterrun run -c 'function main(){ return "ok"; }'
  - Stdin: cat filter.js | filterrun run`,
	Args: cobra.MaximumNArgs(1),
	Run:  runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("code", "c", "", "Filter script to load")
	cmd.Flags().Bool("callback-log", false, "Print the callback invocation log as JSON")
}

func readScript(cmd *cobra.Command, args []string) string {
	code, _ := cmd.Flags().GetString("code")

	var source string
	switch {
	case code != "":
		source = code
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		source = string(data)
	}

	if source == "" {
		fmt.Fprintln(os.Stderr, "usage: filterrun run -c 'script' | filterrun run filter.js | cat filter.js | filterrun run")
		os.Exit(1)
	}
	return source
}

func callbackNames(cmd *cobra.Command) []string {
	names := []string{"emit"}
	if withState, _ := cmd.Flags().GetBool("state"); withState {
		names = append(names, "state_get", "state_set", "state_delete")
	}
	return names
}

func runRun(cmd *cobra.Command, args []string) {
	script := readScript(cmd, args)
	entry, _ := cmd.Flags().GetString("entry")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	printLog, _ := cmd.Flags().GetBool("callback-log")

	eng := newEngine(cmd)

	watchdog := engine.NewWatchdog(eng)
	watchdog.Arm(timeout)
	defer watchdog.Disarm()

	result, calls, err := filter.Eval(eng, script, entry, callbackNames(cmd))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if result != "" {
		fmt.Println(result)
	}
	if printLog {
		data, err := json.MarshalIndent(calls, "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
	}
}
