package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devs-assistent/server/internal/assistant"
	logx "github.com/devs-assistent/server/pkg/logger"
)

// app carries state shared by all subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	envFile string
	quiet   bool
	cfg     assistant.Config

	// newSession is replaced in tests.
	newSession func(ctx context.Context, cfg assistant.Config, opts assistant.Options) (*assistant.Session, error)
}

func NewRootCmd(version, commit string) *cobra.Command {
	a := &app{newSession: assistant.NewSession}
	return a.rootCmd(version, commit)
}

func (a *app) rootCmd(version, commit string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "devs-assistent",
		Short:         "Devs-Assistent: developer Q&A backed by Gemini",
		Long:          "Ask technical questions and get an explanation, a ready-to-use snippet and sources.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := assistant.LoadConfig(a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logx.Init(logx.LoggerOpts{
				Environment: cfg.Env(),
				Output:      cmd.ErrOrStderr(),
				Quiet:       a.quiet,
			})
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only log warnings and errors")

	cmd.AddCommand(newVersionCmd(version, commit))
	cmd.AddCommand(newPromptCmd())
	cmd.AddCommand(a.newAskCmd())
	cmd.AddCommand(a.newChatCmd())
	cmd.AddCommand(a.newHistoryCmd())
	cmd.AddCommand(a.newThemeCmd())
	cmd.AddCommand(a.newServeCmd())
	return cmd
}

func newVersionCmd(version, commit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devs-assistent %s (commit: %s)\n", version, commit)
		},
	}
}

// Execute runs cmd until it finishes or the process is interrupted, and maps
// failures to an exit code.
func Execute(cmd *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}
