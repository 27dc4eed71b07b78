package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/polipredict/internal/cli/formatter"
	"github.com/spf13/cobra"
)

var errNoHistory = errors.New("history database is not available")

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the imported category history",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.History == nil {
				return errNoHistory
			}
			return nil
		},
	}

	cmd.AddCommand(
		newHistoryImportCmd(app),
		newHistoryListCmd(app),
	)

	return cmd
}

func newHistoryImportCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the stored history with the rows of a CSV file",
		Long: `Import a CSV with at least the GRUPO_TITULACION and CURSO columns into
the history database. Previous history is replaced in one transaction.

Set POLIPREDICT_CATALOG_SOURCE=history to build the catalog from it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.History.ImportCSV(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, res)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}

	addJSONFlag(cmd.Flags(), &asJSON)
	return cmd
}

func newHistoryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the stored history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			summary, err := app.History.Summary(ctx)
			if err != nil {
				return err
			}
			records, err := app.History.List(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(summary, records))
			return nil
		},
	}
}
