package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/devs-assistent/server/internal/assistant"
	"github.com/devs-assistent/server/internal/server"
)

func (a *app) newServeCmd() *cobra.Command {
	var (
		port    int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat session over a JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.newSession(cmd.Context(), a.cfg, assistant.Options{})
			if err != nil {
				return err
			}
			defer sess.Close()

			return server.Start(cmd.Context(), server.StartOpts{
				Session: sess,
				Port:    port,
				Timeout: timeout,
				Out:     cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "deadline for each completion request (0 = none)")
	return cmd
}
