package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"voucherbot/internal/session"
	"voucherbot/internal/types"
)

var (
	routeSessionID string
	routeJSON      bool
	routeFile      string
	routeWorkers   int
)

var routeCmd = &cobra.Command{
	Use:   "route [message]",
	Short: "Route a single message and print the classification",
	Long: `Routes one message through the engine and prints the result.

With --file, routes each line of the file as an independent session in
parallel. Useful for regression-checking a corpus of real user messages.

Example:
  voucherbot route "find 2 bedroom apartments in Brooklyn"
  voucherbot route --session abc123 "How about Queens?"
  voucherbot route --file messages.txt`,
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVar(&routeSessionID, "session", "", "session ID to continue (empty starts a new session)")
	routeCmd.Flags().BoolVar(&routeJSON, "json", false, "print the raw classification result as JSON")
	routeCmd.Flags().StringVar(&routeFile, "file", "", "route each line of this file as its own session")
	routeCmd.Flags().IntVar(&routeWorkers, "workers", 4, "parallel sessions when using --file")
}

var (
	intentStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	escalateStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	reasoningStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("250"))
)

func runRoute(cmd *cobra.Command, args []string) error {
	if routeFile != "" {
		return runRouteFile(cmd.Context())
	}
	if len(args) == 0 {
		return fmt.Errorf("provide a message to route, or --file for batch mode")
	}

	store, err := session.Open(cfg.Session.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := buildEngine()
	message := strings.Join(args, " ")

	state, err := store.GetOrCreate(cmd.Context(), routeSessionID, "")
	if err != nil {
		return err
	}

	result, err := engine.Route(cmd.Context(), message, state)
	if err != nil {
		return err
	}

	if result.ProposedState != nil {
		proposed := *result.ProposedState
		proposed.SessionID = state.SessionID
		if err := store.Apply(cmd.Context(), proposed); err != nil {
			return err
		}
	}

	if routeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(state.SessionID, result)
	return nil
}

func printResult(sessionID string, result *types.ClassificationResult) {
	fmt.Printf("%s %s\n", labelStyle.Render("session:"), sessionID)
	fmt.Printf("%s %s\n", labelStyle.Render("intent:"), intentStyle.Render(string(result.Intent)))
	fmt.Printf("%s %.2f (%s)\n", labelStyle.Render("confidence:"), result.Confidence, result.RouterUsed)

	if !result.Parameters.IsEmpty() {
		fmt.Printf("%s %s\n", labelStyle.Render("parameters:"), result.Parameters.String())
	}
	if result.Merge != nil {
		fmt.Printf("%s %s\n", labelStyle.Render("merge:"), result.Merge.Outcome)
	}
	if result.Reasoning != "" {
		fmt.Printf("%s %s\n", labelStyle.Render("reasoning:"), reasoningStyle.Render(result.Reasoning))
	}
	if result.Escalation != nil && result.Escalation.Triggered {
		fmt.Println(escalateStyle.Render(fmt.Sprintf("escalation: %s", result.Escalation.Reason)))
		if c := result.Escalation.Contact; c != nil {
			fmt.Printf("  %s", c.Name)
			if c.Phone != "" {
				fmt.Printf(", call %s", c.Phone)
			}
			fmt.Println()
			if c.Hours != "" {
				fmt.Printf("  %s\n", c.Hours)
			}
		}
	}
}

// runRouteFile routes every line of the batch file, each as a fresh
// session so lines do not contaminate each other's state.
func runRouteFile(ctx context.Context) error {
	f, err := os.Open(routeFile)
	if err != nil {
		return err
	}
	defer f.Close()

	var messages []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			messages = append(messages, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	engine := buildEngine()
	results := make([]*types.ClassificationResult, len(messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(routeWorkers)
	for i, msg := range messages {
		g.Go(func() error {
			state := types.ConversationState{SessionID: fmt.Sprintf("batch-%d", i), Language: ""}
			result, err := engine.Route(gctx, msg, state)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, result := range results {
		fmt.Printf("%3d  %-20s %.2f  %-8s  %s\n",
			i+1, result.Intent, result.Confidence, result.RouterUsed, messages[i])
	}
	return nil
}
