package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"livequiz-service/internal/domain"
	"livequiz-service/internal/poll"
	transport "livequiz-service/internal/transport/http"
)

// NewPlayCmd builds a terminal player: join a session by its numeric id and
// answer questions from stdin while the synchronizer tracks the server.
func NewPlayCmd() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "play <session-id> <name>",
		Short: "Join a running session as a player from the terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("session id must be numeric: %w", err)
			}
			return runPlay(cmd.Context(), serverURL, sessionID, args[1])
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "server base URL")
	return cmd
}

func runPlay(ctx context.Context, serverURL string, sessionID int64, name string) error {
	client := transport.NewClient(serverURL)

	playerID, err := client.Join(ctx, sessionID, name)
	if err != nil {
		return fmt.Errorf("join session %d: %w", sessionID, err)
	}
	fmt.Printf("Joined session %d as %s. Waiting for the host to start...\n", sessionID, name)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sync := poll.NewSynchronizer(transport.NewPlayerFetcher(client, playerID))
	go sync.Run(ctx)

	// Answers typed while a question is open are submitted as they come;
	// the server keeps only the last one before the deadline.
	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case input <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	lastRemaining := -1
	for {
		select {
		case <-ctx.Done():
			return nil
		case line := <-input:
			answers := splitAnswers(line)
			if len(answers) == 0 {
				continue
			}
			if err := client.SubmitAnswer(ctx, playerID, answers); err != nil {
				if errors.Is(err, domain.ErrTooLate) {
					fmt.Println("Too late, the question is closed.")
					continue
				}
				fmt.Printf("Could not submit: %v\n", err)
				continue
			}
			fmt.Printf("Submitted: %s\n", strings.Join(answers, ", "))
		case event, ok := <-sync.Events():
			if !ok {
				return nil
			}
			switch event.Kind {
			case poll.QuestionChanged:
				lastRemaining = -1
				fmt.Printf("\nQ%d: %s\n", event.Position+1, event.Question.Text)
				for i, opt := range event.Question.Options {
					fmt.Printf("  %d) %s\n", i+1, opt.Text)
				}
				fmt.Println("Type your answer text (comma-separated for multiple):")
			case poll.Tick:
				if event.Remaining != lastRemaining {
					lastRemaining = event.Remaining
					fmt.Printf("\r%2d seconds left ", event.Remaining)
					if event.Remaining == 0 {
						fmt.Println()
					}
				}
			case poll.AnswersRevealed:
				fmt.Printf("Correct answer: %s\n", strings.Join(event.Answers, ", "))
			case poll.SessionOver:
				printResults(context.Background(), client, playerID)
				return nil
			}
		}
	}
}

func printResults(ctx context.Context, client *transport.Client, playerID string) {
	result, err := client.Results(ctx, playerID)
	if err != nil {
		fmt.Printf("\nSession over. Results unavailable: %v\n", err)
		return
	}
	correct := 0
	for _, ans := range result.Answers {
		if ans.Correct {
			correct++
		}
	}
	fmt.Printf("\nSession over. %s scored %d points (%d/%d correct).\n",
		result.Name, result.Score, correct, len(result.Answers))
}

func splitAnswers(line string) []string {
	var answers []string
	for _, part := range strings.Split(line, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			answers = append(answers, trimmed)
		}
	}
	return answers
}
