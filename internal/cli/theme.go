package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devs-assistent/server/internal/assistant"
	"github.com/devs-assistent/server/internal/assistant/model"
)

func (a *app) newThemeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or set the rendering theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.ThemeLight), string(model.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.newSession(cmd.Context(), a.cfg, assistant.Options{})
			if err != nil {
				return err
			}
			defer sess.Close()

			if len(args) == 0 {
				theme, err := sess.Store.Theme(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme)
				return nil
			}

			theme, ok := model.ParseTheme(args[0])
			if !ok {
				return fmt.Errorf("unknown theme %q (want light or dark)", args[0])
			}
			if err := sess.Store.SetTheme(cmd.Context(), theme); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
}
