package cli

import (
	"context"
	"testing"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/alexanderramin/polipredict/internal/teatest"
	"github.com/alexanderramin/polipredict/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formSteps is the number of Enter presses that walk the dashboard form
// from the first field to submission: two selects, four inputs, confirm.
const formSteps = 7

func newDashboardDriver(t *testing.T, app *App) *teatest.Driver {
	t.Helper()
	d := teatest.New(t, newDashboardModel(context.Background(), app), teatest.WithSize(100, 40))
	d.DrainInit()
	return d
}

func dashboard(t *testing.T, d *teatest.Driver) dashboardModel {
	t.Helper()
	m, ok := d.Model.(dashboardModel)
	require.True(t, ok, "expected dashboardModel, got %T", d.Model)
	return m
}

func TestDashboard_SubmitWithDefaults(t *testing.T) {
	var got domain.PredictionInput
	predictor := model.PredictorFunc(func(_ context.Context, row domain.FeatureRow) (float64, error) {
		got = domain.PredictionInput{
			PriorYearTheses:          row.Numeric[domain.ColPriorTheses],
			PriorStaffSatisfaction:   row.Numeric[domain.ColStaffSatisfaction],
			PriorStudentSatisfaction: row.Numeric[domain.ColStudentSatisfaction],
			PriorDropoutRatePct:      row.Numeric[domain.ColDropoutRate],
			Program:                  row.Categorical[domain.ColProgram],
			AcademicYear:             row.Categorical[domain.ColAcademicYear],
		}
		return 12.4, nil
	})
	app := testAppWith(t, predictor, catalog.Build([]string{"P1", "P2"}, []string{"2021", "2022"}))
	d := newDashboardDriver(t, app)

	assert.Contains(t, stripANSI(d.View()), "Program")
	d.PressEnterN(formSteps)

	m := dashboard(t, d)
	require.Equal(t, modeResult, m.mode)
	require.NoError(t, m.err)
	require.NotNil(t, m.result)
	assert.Equal(t, 12, m.result.PredictedTheses)

	assert.Equal(t, domain.PredictionInput{
		PriorYearTheses:          10,
		PriorStaffSatisfaction:   7,
		PriorStudentSatisfaction: 7.5,
		PriorDropoutRatePct:      10,
		Program:                  "P1",
		AcademicYear:             "2021",
	}, got)

	view := stripANSI(d.View())
	assert.Contains(t, view, "Predicted theses: 12")
	assert.Contains(t, view, "18,000 €")
	assert.Contains(t, view, "edit inputs")
}

func TestDashboard_UnknownCategoryThenRetry(t *testing.T) {
	app := testAppWith(t, testutil.StubPredictor(12.4, "P1"),
		catalog.Build([]string{"GRUPO_X", "P1"}, []string{"2022"}))
	d := newDashboardDriver(t, app)

	d.PressEnterN(formSteps)

	m := dashboard(t, d)
	require.Equal(t, modeResult, m.mode)
	assert.True(t, model.IsUnknownCategory(m.err))
	assert.Nil(t, m.result)
	view := stripANSI(d.View())
	assert.Contains(t, view, "could not encode the selected categories")
	assert.NotContains(t, view, "Annual cost")
	assert.False(t, d.Quitting)

	// Enter re-opens the form with the previous values; pick P1 this time.
	d.PressEnter()
	m = dashboard(t, d)
	require.Equal(t, modeForm, m.mode)
	assert.Equal(t, "GRUPO_X", m.fields.program)

	d.PressDown()
	d.PressEnterN(formSteps)

	m = dashboard(t, d)
	require.Equal(t, modeResult, m.mode)
	require.NoError(t, m.err)
	assert.Equal(t, "P1", m.fields.program)
	assert.Equal(t, 12, m.result.PredictedTheses)
}

func TestDashboard_QuitKeys(t *testing.T) {
	for name, press := range map[string]func(d *teatest.Driver){
		"q":      func(d *teatest.Driver) { d.PressKey('q') },
		"esc":    func(d *teatest.Driver) { d.PressEsc() },
		"ctrl+c": func(d *teatest.Driver) { d.PressCtrlC() },
	} {
		t.Run(name, func(t *testing.T) {
			d := newDashboardDriver(t, testApp(t))
			d.PressEnterN(formSteps)
			require.Equal(t, modeResult, dashboard(t, d).mode)

			press(d)
			assert.True(t, d.Quitting)
		})
	}
}

func TestDashboard_EscQuitsFromForm(t *testing.T) {
	d := newDashboardDriver(t, testApp(t))
	d.PressEsc()
	assert.True(t, d.Quitting)
}

func TestDashboard_ShowsFallbackNotice(t *testing.T) {
	d := newDashboardDriver(t, testAppWith(t, testutil.StubPredictor(1), nil))
	view := stripANSI(d.View())
	assert.Contains(t, view, "FALLBACK")
}

func TestValidateNumberRange(t *testing.T) {
	satisfaction := validateNumberRange(0, domain.MaxSatisfaction)
	assert.NoError(t, satisfaction("7.5"))
	assert.NoError(t, satisfaction("7,5"))
	assert.NoError(t, satisfaction(" 10 "))
	assert.Error(t, satisfaction("10.5"))
	assert.Error(t, satisfaction("-1"))
	assert.Error(t, satisfaction(""))
	assert.Error(t, satisfaction("NaN"))
	assert.Error(t, satisfaction("lots"))
}

func TestPredictionFields_Input(t *testing.T) {
	f := newPredictionFields([]string{"P1"}, []string{"2022"})
	in, err := f.input()
	require.NoError(t, err)
	assert.Equal(t, 10.0, in.PriorYearTheses)
	assert.Equal(t, "P1", in.Program)

	f.staff = "x"
	_, err = f.input()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staff satisfaction")

	empty := newPredictionFields(nil, nil)
	assert.Empty(t, empty.program)
	assert.Empty(t, empty.year)
}
