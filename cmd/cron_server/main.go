package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/radhian/ledger-reconciler/controllers"
	"github.com/radhian/ledger-reconciler/infra/config"
	"github.com/radhian/ledger-reconciler/infra/logging"
	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "cron_server",
		Short:         "Reconciles the transaction ledger against accounting",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "set the config file path")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation worker and its health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *controllers.App) error {
				return app.RunServer(ctx)
			})
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "once",
		Short: "Run a single reconciliation cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, app *controllers.App) error {
				return app.RunOnce(ctx)
			})
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorf("[Main] %v", err)
		stop()
		os.Exit(1)
	}
}

func withApp(ctx context.Context, fn func(context.Context, *controllers.App) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log.Level); err != nil {
		return err
	}

	app := &controllers.App{}
	if err := app.Initialize(cfg); err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}
