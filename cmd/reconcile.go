package main

import (
	"context"
	"encoding/json"
	"os"
	"reconciler/internal/config"
	"reconciler/internal/reconciler"
	"reconciler/pkg/logger"
	"reconciler/pkg/payments/stripeapi"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// reconcileCommand constructs the 'reconcile' subcommand that runs a single
// reconciliation pass in the foreground and prints the summary as JSON.
func reconcileCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Runs one reconciliation pass and prints the summary",
		Run: func(cmd *cobra.Command, args []string) {
			emailFilter, _ := cmd.Flags().GetString("email")

			ctx := context.Background()

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			rec := reconciler.New(strg,
				stripeapi.New(stripeapi.Options{APIKey: cfg.Stripe.APIKey}),
				nil, // no metrics endpoint for one-shot runs
				reconciler.NewOptions(cfg))

			summary, err := rec.Run(ctx, emailFilter)
			if err != nil {
				logger.Fatal(ctx, "could not reconcile orders", zap.Error(err))
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(summary); err != nil {
				logger.Fatal(ctx, "could not encode summary", zap.Error(err))
			}
		},
	}

	cmd.Flags().String("email", "", "Restrict the run to one customer email")

	return cmd
}
