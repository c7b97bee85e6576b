package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devs-assistent/server/internal/assistant/completion"
)

func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the system instruction sent with every question",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := completion.RenderSystemPrompt(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
}
