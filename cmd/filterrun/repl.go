package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/jupiter950/multichain/engine"
	"github.com/jupiter950/multichain/filter"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive filter development loop",
	Long: `Start an interactive session for iterating on a filter script.

Lines are accumulated into the script buffer. Commands:
  .run      load the buffer and run the entry function
  .show     print the current buffer
  .clear    empty the buffer
  exit      end the session (also quit or Ctrl+D)`,
	Run: runRepl,
}

func init() {
	replCmd.Flags().String("history", "", "History file path (default: ~/.filterrun_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) {
	entry, _ := cmd.Flags().GetString("entry")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	historyFile, _ := cmd.Flags().GetString("history")

	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".filterrun_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "filter> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	eng := newEngine(cmd)
	watchdog := engine.NewWatchdog(eng)
	names := callbackNames(cmd)

	var buffer []string
	fmt.Printf("filterrun repl - entry function %q, .run to execute\n", entry)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}

		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return
		case ".clear":
			buffer = nil
			continue
		case ".show":
			fmt.Println(strings.Join(buffer, "\n"))
			continue
		case ".run":
			watchdog.Arm(timeout)
			result, _, err := filter.Eval(eng, strings.Join(buffer, "\n"), entry, names)
			watchdog.Disarm()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Printf("=> %q\n", result)
			continue
		case "":
			continue
		}
		buffer = append(buffer, line)
	}
}
