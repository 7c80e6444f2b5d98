package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amaumene/whirlwatch/internal/app"
	"github.com/amaumene/whirlwatch/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "whirlwatch",
		Short:         "Track what you and your lists are watching",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.BindFlags(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.String("api-url", "", "backend base URL")
	flags.String("profile", "", "session profile name")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Int("page-size", 0, "records per page")

	root.AddCommand(
		newLoginCommand(),
		newLogoutCommand(),
		newWhoamiCommand(),
		newHubCommand(),
		newHistoryCommand(),
		newListCommand(),
		newRankingsCommand(),
		newRouletteCommand(),
		newStatusCommand(),
		newRateCommand(),
		newAddCommand(),
		newRemoveCommand(),
		newServeCommand(),
	)
	return root
}

// withApp loads the configuration, builds the application and runs fn with it
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a, cleanup, err := app.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return fn(cmd.Context(), a)
}
