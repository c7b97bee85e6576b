package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devs-assistent/server/internal/assistant"
)

func (a *app) newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent queries, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.newSession(cmd.Context(), a.cfg, assistant.Options{})
			if err != nil {
				return err
			}
			defer sess.Close()

			history := sess.Store.History()
			if len(history) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No hay consultas recientes.")
				return nil
			}
			for i, q := range history {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, q)
			}
			return nil
		},
	}
	cmd.AddCommand(a.newHistoryClearCmd())
	return cmd
}

func (a *app) newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored query history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.newSession(cmd.Context(), a.cfg, assistant.Options{})
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.Store.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Historial borrado.")
			return nil
		},
	}
}
