package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/polipredict/internal/api"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var (
		addr    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := app.Logger
			if logger == nil {
				logger = slog.New(slog.DiscardHandler)
			}
			router := api.NewRouter(api.Options{
				Predictions: app.Predictions,
				Catalog:     app.Catalog,
				Logger:      logger,
				CORSOrigins: origins,
			})
			return api.ListenAndServe(ctx, addr, router, logger)
		},
	}

	defaultAddr := app.Addr
	if defaultAddr == "" {
		defaultAddr = ":8080"
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", app.CORSOrigins, "allowed CORS origins")
	return cmd
}
