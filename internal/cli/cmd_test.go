package cli

import (
	"bytes"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/db"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/alexanderramin/polipredict/internal/repository"
	"github.com/alexanderramin/polipredict/internal/service"
	"github.com/alexanderramin/polipredict/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// testApp wires the CLI against a stub predictor that knows P1 and P2, a
// two-program catalog and an in-memory history database.
func testApp(t *testing.T) *App {
	t.Helper()
	return testAppWith(t, testutil.StubPredictor(12.4, "P1", "P2"),
		catalog.Build([]string{"P1", "P2"}, []string{"2021", "2022"}))
}

func testAppWith(t *testing.T, predictor model.Predictor, c *catalog.Catalog) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &App{
		Predictions: service.NewPredictionService(predictor),
		Catalog:     service.NewCatalogService(c),
		History:     service.NewHistoryService(repository.NewSQLiteHistoryRepo(database), db.NewSQLiteUnitOfWork(database)),
	}
}

func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

func TestRootCmd_NonInteractivePrintsHelp(t *testing.T) {
	app := testApp(t)
	app.IsInteractive = func() bool { return false }

	out, err := executeCmd(t, app)
	require.NoError(t, err)
	assert.Contains(t, out, "predict")
	assert.Contains(t, out, "dashboard")
}

func TestPredictCmd_Box(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "predict", "--program", "P1", "--year", "2022")
	require.NoError(t, err)

	assert.Contains(t, out, "Predicted theses: 12")
	assert.Contains(t, out, "Model value: 12.40")
	assert.Regexp(t, `Annual cost:\s+18,000 €`, out)
}

func TestPredictCmd_JSON(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "predict", "--program", "P2", "--year", "2021", "--theses", "4", "--json")
	require.NoError(t, err)

	var resp contract.PredictionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 12, resp.PredictedTheses)
	assert.Equal(t, "P2", resp.Input.Program)
	assert.Equal(t, 4.0, resp.Input.PriorYearTheses)
	assert.Equal(t, 7.5, resp.Input.PriorStudentSatisfaction)
}

func TestPredictCmd_DefaultsToFirstCatalogEntries(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "predict", "--json")
	require.NoError(t, err)

	var resp contract.PredictionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "P1", resp.Input.Program)
	assert.Equal(t, "2021", resp.Input.AcademicYear)
}

func TestPredictCmd_UnknownCategory(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "predict", "--program", "GRUPO_X", "--year", "2022")

	require.Error(t, err)
	assert.True(t, model.IsUnknownCategory(err))
	assert.Contains(t, out, "could not encode the selected categories")
	assert.NotContains(t, out, "Annual cost")
}

func TestPredictCmd_InvalidInput(t *testing.T) {
	_, err := executeCmd(t, testApp(t), "predict", "--staff-satisfaction", "11", "--dropout", "-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "prior_staff_satisfaction")
	assert.Contains(t, err.Error(), "prior_dropout_rate_pct")
}

func TestEstimateCmd(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "estimate", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Theses: 12")
	assert.Regexp(t, `Tutoring hours:\s+240`, out)

	out, err = executeCmd(t, testApp(t), "estimate", "3", "--json")
	require.NoError(t, err)
	var resp contract.EstimateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Theses)
	assert.Equal(t, "4500", resp.Resources.AnnualCost.String())

	_, err = executeCmd(t, testApp(t), "estimate", "-2")
	assert.Error(t, err)
	_, err = executeCmd(t, testApp(t), "estimate", "many")
	assert.Error(t, err)
}

func TestCatalogCmd(t *testing.T) {
	out, err := executeCmd(t, testApp(t), "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "LOADED")
	assert.Contains(t, out, "P2")

	fallback := testAppWith(t, testutil.StubPredictor(1), nil)
	out, err = executeCmd(t, fallback, "catalog", "--json")
	require.NoError(t, err)
	var c catalog.Catalog
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.True(t, c.IsFallback)
	assert.Equal(t, []string{"Grupo 1", "Grupo 2"}, c.Programs)
}

func TestHistoryCmds(t *testing.T) {
	app := testApp(t)
	path := testutil.WriteFile(t, "indicadores.csv", "GRUPO_TITULACION,CURSO\nP1,2021\nP2,2022\nP2,2021\n")

	out, err := executeCmd(t, app, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No history imported")

	out, err = executeCmd(t, app, "history", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "HISTORY IMPORTED")
	assert.Contains(t, out, "indicadores.csv")

	out, err = executeCmd(t, app, "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "3 records from indicadores.csv")
	assert.Contains(t, out, "P2")

	_, err = executeCmd(t, app, "history", "import", "missing.csv")
	assert.ErrorIs(t, err, catalog.ErrSourceMissing)
}

func TestHistoryCmd_NoDatabase(t *testing.T) {
	app := testApp(t)
	app.History = nil

	_, err := executeCmd(t, app, "history", "list")
	assert.ErrorIs(t, err, errNoHistory)
}

func TestServeCmd_Flags(t *testing.T) {
	app := testApp(t)
	app.Addr = "127.0.0.1:9090"
	app.CORSOrigins = []string{"http://localhost:3000"}

	cmd := newServeCmd(app)
	addr, err := cmd.Flags().GetString("addr")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", addr)

	origins, err := cmd.Flags().GetStringSlice("cors-origin")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:3000"}, origins)
}
