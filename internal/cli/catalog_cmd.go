package cli

import (
	"fmt"

	"github.com/alexanderramin/polipredict/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newCatalogCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List known programs and academic years",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.Catalog.Catalog(cmd.Context())
			if asJSON {
				return writeJSON(cmd, c)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCatalog(c))
			return nil
		},
	}

	addJSONFlag(cmd.Flags(), &asJSON)
	return cmd
}
