// Package cmd implements the ok command-line entrypoint: it resolves
// configuration, builds the turn engine, and drives one turn per
// invocation, printing streamed assistant text and tool activity to
// stdout as the turn progresses.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ok-agent/ok/internal/config"
	"github.com/ok-agent/ok/internal/engine"
)

var (
	sessionFlag    string
	workingDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "ok [prompt]",
	Short: "Run one agent turn against the configured model",
	Long: `ok sends a prompt to the configured model, executes any tools it
requests, and prints the final assistant response.

Examples:
  ok "list the files in the current directory"
  echo "summarize README.md" | ok`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&sessionFlag, "session", "", "Session id keying the todo list and plan file (default: a new random id)")
	rootCmd.Flags().StringVar(&workingDirFlag, "working-dir", "", "Working directory tools are confined to (default: current directory)")
}

// Execute runs the root command, exiting the process with a non-zero
// status if it returns an error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	prompt, err := resolvePrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if prompt == "" {
		return fmt.Errorf("please provide a prompt, e.g.: ok \"list the files here\"")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	workingDir := workingDirFlag
	if workingDir == "" {
		workingDir = cfg.WorkingDir
	}
	if workingDir == "" {
		workingDir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve working directory: %w", err)
		}
	}

	sessionID := sessionFlag
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	e, err := engine.Build(cfg, sessionID, workingDir)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer e.Shells.Close()
	defer e.DebugLog.Close()

	events := make(chan engine.TurnEvent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		printEvents(cmd.OutOrStdout(), events)
	}()

	e.RunTurn(context.Background(), prompt, events)
	close(events)
	<-done
	return nil
}

// resolvePrompt joins positional args into the prompt, or, when no args
// were given, reads stdin to EOF and uses its trimmed text.
func resolvePrompt(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read prompt from stdin: %w", err)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// printEvents renders TurnEvents as a line-oriented transcript: assistant
// text streams inline, tool activity and errors print as labeled lines.
func printEvents(w io.Writer, events <-chan engine.TurnEvent) {
	for ev := range events {
		switch ev.Type {
		case engine.EventAssistantTextDelta:
			fmt.Fprint(w, ev.Text)
		case engine.EventToolUse:
			fmt.Fprintf(w, "\n[tool] %s\n", ev.ToolUse.Name)
		case engine.EventToolResult:
			status := "ok"
			if ev.IsError {
				status = "error"
			}
			fmt.Fprintf(w, "[tool result: %s, %s]\n", ev.ToolName, status)
		case engine.EventAssistantStop:
			fmt.Fprintln(w)
		case engine.EventError:
			fmt.Fprintf(w, "\n[error] %s\n", ev.Err)
		case engine.EventTurnComplete:
			// nothing further to print; the turn is over.
		}
	}
}
