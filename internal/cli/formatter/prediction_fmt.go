package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// UnknownCategoryMessage is shown when the model rejects the selected program
// or academic year.
const UnknownCategoryMessage = "The model could not encode the selected categories. " +
	"Most likely the program or academic year was not present in the training data."

// FormatPrediction renders the predicted count, the raw model value and the
// eight resource quantities.
func FormatPrediction(resp *contract.PredictionResponse) string {
	var b strings.Builder

	b.WriteString(StyleDim.Render(resp.Input.Program + " · " + resp.Input.AcademicYear))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", StyleFg.Render("Predicted theses:"), StyleGreen.Bold(true).Render(fmt.Sprint(resp.PredictedTheses))))
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Model value:"), Dim(Number(resp.RawPrediction, 2))))

	prediction := RenderBox("Thesis prediction", strings.TrimRight(b.String(), "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, prediction, FormatResources(resp.Resources))
}

// FormatEstimate renders the resources for an explicit thesis count.
func FormatEstimate(resp *contract.EstimateResponse) string {
	head := fmt.Sprintf("%s %s", StyleFg.Render("Theses:"), Bold(fmt.Sprint(resp.Theses)))
	return lipgloss.JoinVertical(lipgloss.Left, head, FormatResources(resp.Resources))
}

// FormatResources renders a resource estimate as a labelled box.
func FormatResources(r domain.ResourceEstimate) string {
	rows := []struct {
		label string
		value string
	}{
		{"Equivalent supervisors", Number(r.EquivalentSupervisors, 1)},
		{"Tutoring hours", Number(r.TutoringHours, 0)},
		{"Oversight committees", Number(r.OversightCommittees, 0)},
		{"Estimated defenses", Number(r.EstimatedDefenses, 1)},
		{"Workstations", Number(r.Workstations, 0)},
		{"Lab users", Number(r.LabUsers, 0)},
		{"Annual cost", Euros(r.AnnualCost)},
		{"Administrative files", Number(r.AdministrativeFiles, 0)},
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row.label))
	}

	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		label := StyleFg.Render(row.label + ":" + strings.Repeat(" ", width-len(row.label)))
		b.WriteString(label + "  " + StyleBlue.Render(row.value))
	}
	return RenderBox("Resource estimate", b.String())
}

// FormatUnknownCategory renders the operator message for a rejected
// category together with the underlying error.
func FormatUnknownCategory(err error) string {
	msg := StyleRed.Render("⚠ "+UnknownCategoryMessage) + "\n\n" + Dim(err.Error())
	return RenderBox("Prediction failed", msg)
}
