package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/polipredict/internal/cli/formatter"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/spf13/cobra"
)

func newPredictCmd(app *App) *cobra.Command {
	var (
		program string
		year    string
		in      domain.PredictionInput
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict next year's theses and estimate resources",
		Long: `Predict the number of enrolled theses for a program and academic year
from the prior year's indicators, then derive the resources it needs.

Program and year default to the first entries of the catalog.`,
		Example: `  polipredict predict --program "Grupo 1" --year 2021-22 --theses 12
  polipredict predict --program P1 --year 2022 --dropout 15 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := app.Catalog.Catalog(ctx)
			in.Program = program
			if in.Program == "" && len(c.Programs) > 0 {
				in.Program = c.Programs[0]
			}
			in.AcademicYear = year
			if in.AcademicYear == "" && len(c.Years) > 0 {
				in.AcademicYear = c.Years[0]
			}

			resp, err := app.Predictions.Predict(ctx, in)
			if err != nil {
				if model.IsUnknownCategory(err) && !asJSON {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatUnknownCategory(err))
				}
				return err
			}

			if asJSON {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPrediction(resp))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&program, "program", "", "program (GRUPO_TITULACION)")
	f.StringVar(&year, "year", "", "academic year (CURSO)")
	f.Float64Var(&in.PriorYearTheses, "theses", defaultPriorTheses, "theses enrolled in the prior year")
	f.Float64Var(&in.PriorStaffSatisfaction, "staff-satisfaction", defaultStaffSatisfaction, "prior-year staff satisfaction (0-10)")
	f.Float64Var(&in.PriorStudentSatisfaction, "student-satisfaction", defaultStudentSatisfaction, "prior-year student satisfaction (0-10)")
	f.Float64Var(&in.PriorDropoutRatePct, "dropout", defaultDropoutPct, "prior-year dropout rate in percent (0-100)")
	addJSONFlag(f, &asJSON)

	return cmd
}

func newEstimateCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate THESES",
		Short: "Estimate resources for a given number of theses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid thesis count %q: must be a non-negative integer", args[0])
			}

			resp := app.Predictions.Estimate(cmd.Context(), n)
			if asJSON {
				return writeJSON(cmd, resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatEstimate(resp))
			return nil
		},
	}

	addJSONFlag(cmd.Flags(), &asJSON)
	return cmd
}
