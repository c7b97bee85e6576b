package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/devs-assistent/server/internal/assistant"
	"github.com/devs-assistent/server/internal/assistant/export"
	"github.com/devs-assistent/server/internal/assistant/model"
)

func (a *app) newAskCmd() *cobra.Command {
	var (
		timeout     time.Duration
		exportPath  string
		fromHistory int
		example     int
		r           renderer
	)

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask a single question and print the structured answer",
		Example: `  devs-assistent ask "¿Cómo configurar CORS en FastAPI?"
  devs-assistent ask --plain --export . "Explica los goroutines en Go"
  devs-assistent ask --from-history 2
  devs-assistent ask --example 1`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.newSession(ctx, a.cfg, assistant.Options{})
			if err != nil {
				return err
			}
			defer sess.Close()

			query, err := resolveQuery(sess, args, fromHistory, example)
			if err != nil {
				return err
			}

			callCtx, cancel := withTimeout(ctx, timeout)
			defer cancel()
			res, err := sess.Orchestrator.Submit(callCtx, query)
			if err != nil {
				return err
			}

			r.out = cmd.OutOrStdout()
			if err := r.answer(ctx, sess, res.Answer); err != nil {
				return err
			}
			if exportPath != "" {
				path, err := export.WriteFile(exportPath, res.Answer)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Respuesta exportada a %s\n", path)
			}
			return res.Err
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "deadline for the completion request (0 = none)")
	cmd.Flags().StringVar(&exportPath, "export", "", "also write the answer as Markdown to this file or directory")
	cmd.Flags().IntVar(&fromHistory, "from-history", 0, "resubmit the Nth entry listed by history (1 = most recent)")
	cmd.Flags().IntVar(&example, "example", 0, "submit the Nth example query listed by chat")
	cmd.MarkFlagsMutuallyExclusive("from-history", "example")
	cmd.Flags().BoolVar(&r.plain, "plain", false, "print raw Markdown instead of rendering it")
	cmd.Flags().BoolVar(&r.asJSON, "json", false, "print the structured answer as JSON")
	return cmd
}

// resolveQuery picks the query from the arguments or, when one of the 1-based
// selectors is set, from the history or the example list.
func resolveQuery(sess *assistant.Session, args []string, fromHistory, example int) (string, error) {
	switch {
	case fromHistory != 0 || example != 0:
		if len(args) > 0 {
			return "", errors.New("a query argument cannot be combined with --from-history or --example")
		}
		if fromHistory != 0 {
			q, ok := sess.Store.HistoryAt(fromHistory - 1)
			if !ok {
				return "", fmt.Errorf("no history entry %d (history has %d)", fromHistory, len(sess.Store.History()))
			}
			return q, nil
		}
		q, ok := model.ExampleQuery(example - 1)
		if !ok {
			return "", fmt.Errorf("no example %d (there are %d)", example, len(model.ExampleQueries))
		}
		return q, nil
	case len(args) == 0:
		return "", errors.New("requires a query, --from-history or --example")
	default:
		return strings.Join(args, " "), nil
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
