package cli

import (
	"context"
	"math"
	"strings"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/cli/formatter"
	"github.com/alexanderramin/polipredict/internal/contract"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive prediction form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, app)
		},
	}
}

func runDashboard(cmd *cobra.Command, app *App) error {
	p := tea.NewProgram(newDashboardModel(cmd.Context(), app), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

type dashboardMode int

const (
	modeForm dashboardMode = iota
	modeResult
)

type dashboardKeyMap struct {
	Edit key.Binding
	Quit key.Binding
}

func (k dashboardKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Edit, k.Quit} }
func (k dashboardKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

func newDashboardKeyMap() dashboardKeyMap {
	return dashboardKeyMap{
		Edit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit inputs")),
		Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// formKeyMap is shown while the form is active.
type formKeyMap struct {
	Next key.Binding
	Back key.Binding
	Quit key.Binding
}

func (k formKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Next, k.Back, k.Quit} }
func (k formKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var dashboardFormKeys = formKeyMap{
	Next: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "next")),
	Back: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "back")),
	Quit: key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

// dashboardModel collects the six prediction inputs with a huh form and
// shows the prediction with its resource estimate.
type dashboardModel struct {
	ctx     context.Context
	app     *App
	catalog *catalog.Catalog

	mode   dashboardMode
	fields *predictionFields
	form   *huh.Form

	result *contract.PredictionResponse
	err    error

	keys  dashboardKeyMap
	help  help.Model
	width int
}

func newDashboardModel(ctx context.Context, app *App) dashboardModel {
	if ctx == nil {
		ctx = context.Background()
	}
	c := app.Catalog.Catalog(ctx)
	m := dashboardModel{
		ctx:     ctx,
		app:     app,
		catalog: c,
		fields:  newPredictionFields(c.Programs, c.Years),
		keys:    newDashboardKeyMap(),
		help:    help.New(),
	}
	m.form = m.buildForm()
	return m
}

func (m dashboardModel) buildForm() *huh.Form {
	f := m.fields
	f.submit = true

	programs := huh.NewOptions(m.catalog.Programs...)
	years := huh.NewOptions(m.catalog.Years...)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Program").
				Description("Doctoral program group (GRUPO_TITULACION)").
				Options(programs...).
				Value(&f.program),
			huh.NewSelect[string]().
				Title("Academic year").
				Description("CURSO").
				Options(years...).
				Value(&f.year),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Theses enrolled in the prior year").
				Value(&f.theses).
				Validate(validateNumberRange(0, math.Inf(1))),
			huh.NewInput().
				Title("Staff satisfaction (0-10)").
				Value(&f.staff).
				Validate(validateNumberRange(0, domain.MaxSatisfaction)),
			huh.NewInput().
				Title("Student satisfaction (0-10)").
				Value(&f.student).
				Validate(validateNumberRange(0, domain.MaxSatisfaction)),
			huh.NewInput().
				Title("Dropout rate (%)").
				Value(&f.dropout).
				Validate(validateNumberRange(0, domain.MaxDropoutPct)),
		).Title("Prior-year indicators"),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Calculate prediction and resources?").
				Affirmative("Calculate").
				Negative("Edit").
				Value(&f.submit),
		),
	).WithTheme(polipredictHuhTheme()).WithShowHelp(false)

	if m.width > 0 {
		form = form.WithWidth(min(m.width, 80))
	}
	return form
}

func (m dashboardModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.help.Width = size.Width
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.mode {
	case modeResult:
		return m.updateResult(msg)
	default:
		return m.updateForm(msg)
	}
}

func (m dashboardModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, tea.Quit
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if !m.fields.submit {
			return m.reopenForm()
		}
		m.runPrediction()
		m.mode = modeResult
		return m, nil
	case huh.StateAborted:
		return m, tea.Quit
	}
	return m, cmd
}

func (m dashboardModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Edit):
		return m.reopenForm()
	}
	return m, nil
}

// reopenForm rebuilds the form bound to the previous values.
func (m dashboardModel) reopenForm() (tea.Model, tea.Cmd) {
	m.mode = modeForm
	m.form = m.buildForm()
	return m, m.form.Init()
}

// runPrediction runs synchronously; the form values are already validated.
func (m *dashboardModel) runPrediction() {
	m.result, m.err = nil, nil
	in, err := m.fields.input()
	if err != nil {
		m.err = err
		return
	}
	m.result, m.err = m.app.Predictions.Predict(m.ctx, in)
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.StyleHeader.Render("PoliPredict"))
	b.WriteString("  ")
	b.WriteString(formatter.Dim("Thesis prediction and resource estimation for doctoral programs"))
	if m.catalog.IsFallback {
		b.WriteString("\n" + formatter.SourceBadge(true) + formatter.Dim("  category source not found, using built-in lists"))
	}
	b.WriteString("\n\n")

	switch m.mode {
	case modeResult:
		b.WriteString(m.resultView())
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
	default:
		b.WriteString(m.form.View())
		b.WriteString("\n")
		b.WriteString(m.help.View(dashboardFormKeys))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m dashboardModel) resultView() string {
	switch {
	case m.err != nil && model.IsUnknownCategory(m.err):
		return formatter.FormatUnknownCategory(m.err)
	case m.err != nil:
		return formatter.RenderBox("Prediction failed", formatter.StyleRed.Render(m.err.Error()))
	case m.result != nil:
		return formatter.FormatPrediction(m.result)
	default:
		return formatter.Dim("Fill in the inputs and choose Calculate.")
	}
}
