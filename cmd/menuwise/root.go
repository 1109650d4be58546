package main

import (
	"context"
	"log/slog"
	"os"

	"menuwise/internal/app"
	"menuwise/internal/config"

	"github.com/spf13/cobra"
)

// opener builds the service graph for commands that touch the store.
type opener func(ctx context.Context) (*app.App, error)

func defaultOpener(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return app.New(ctx, cfg, logger)
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "menuwise",
		Short: "Operator tool for the menuwise health-scoring backend",
		Long: `menuwise scores dishes, computes biometric targets and maintains the
menu store behind the API.

Scoring commands run offline. seed and recalculate connect to the store
selected by STORE_DRIVER.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newScoreCmd(),
		newCaloriesCmd(),
		newBMICmd(),
		newSeedCmd(open),
		newRecalculateCmd(open),
		newVersionCmd(),
	)
	return root
}
