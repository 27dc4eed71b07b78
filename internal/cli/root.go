package cli

import (
	"encoding/json"
	"log/slog"

	"github.com/alexanderramin/polipredict/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Predictions service.PredictionService
	Catalog     service.CatalogService
	History     service.HistoryService

	Logger *slog.Logger

	// IsInteractive reports whether stdin is a terminal. When it is, running
	// polipredict without a subcommand opens the dashboard.
	IsInteractive func() bool

	// Addr and CORSOrigins are the serve defaults.
	Addr        string
	CORSOrigins []string
}

// NewRootCmd creates the top-level "polipredict" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "polipredict",
		Short:         "Doctoral thesis prediction and resource estimation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && app.IsInteractive() {
				return runDashboard(cmd, app)
			}
			return cmd.Help()
		},
	}

	root.AddCommand(
		newDashboardCmd(app),
		newPredictCmd(app),
		newEstimateCmd(app),
		newCatalogCmd(app),
		newHistoryCmd(app),
		newServeCmd(app),
	)

	return root
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// addJSONFlag registers the shared --json output switch.
func addJSONFlag(fs *pflag.FlagSet, asJSON *bool) {
	fs.BoolVar(asJSON, "json", false, "print the result as JSON")
}
