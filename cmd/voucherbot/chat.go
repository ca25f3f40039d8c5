package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"voucherbot/internal/session"
	"voucherbot/internal/types"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session against the routing engine",
	Long: `Starts a REPL that routes each line you type and shows the
classification. State carries across turns, so refinements and follow-ups
behave the way they would in a real conversation.

Type /state to inspect the session, /reset to start over, /quit to exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runChat(ctx context.Context) error {
	store, err := session.Open(":memory:")
	if err != nil {
		return err
	}
	defer store.Close()

	engine := buildEngine()

	state, err := store.Create(ctx, "")
	if err != nil {
		return err
	}

	fmt.Println(promptStyle.Render("VoucherBot routing console"))
	fmt.Println(dimStyle.Render("Type a message to route it. /state, /reset, /quit."))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/state":
			printState(state)
			continue
		case "/reset":
			state, err = store.Create(ctx, "")
			if err != nil {
				return err
			}
			fmt.Println(dimStyle.Render("session reset"))
			continue
		}

		result, err := engine.Route(ctx, line, state)
		if err != nil {
			if errors.Is(err, types.ErrInvalidInput) {
				fmt.Println(dimStyle.Render(err.Error()))
				continue
			}
			return err
		}

		printResult(state.SessionID, result)
		fmt.Println()

		if result.ProposedState != nil {
			proposed := *result.ProposedState
			proposed.SessionID = state.SessionID
			if err := store.Apply(ctx, proposed); err != nil {
				return err
			}
			state = proposed
		}
	}
}

func printState(state types.ConversationState) {
	fmt.Printf("%s %s language=%s\n", labelStyle.Render("session:"), state.SessionID, state.Language)
	if !state.LastSearchParams.IsEmpty() {
		fmt.Printf("%s %s\n", labelStyle.Render("last search:"), state.LastSearchParams.String())
	}
	if state.CurrentListingIndex != nil {
		fmt.Printf("%s listing %d of %d\n", labelStyle.Render("viewing:"), *state.CurrentListingIndex+1, state.ListingCount)
	}
	if state.Escalated {
		fmt.Println(escalateStyle.Render("session has an active escalation"))
	}
}
