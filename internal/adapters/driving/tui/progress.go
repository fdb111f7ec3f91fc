package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/fixpath-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/fixpath-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/fixpath-cli/internal/core/domain"
)

var stageLabels = map[domain.Stage]string{
	domain.StageDiagnosing:          "Diagnosing the fault",
	domain.StageIngesting:           "Searching and crawling documentation",
	domain.StageEvaluatingIngestion: "Checking coverage",
	domain.StageTargetedRecrawl:     "Crawling for the diagnosed fault",
	domain.StageRetrieving:          "Retrieving passages",
	domain.StageWebFallback:         "Summarising web results",
	domain.StageSynthesizing:        "Writing the repair guide",
	domain.StagePartsLookup:         "Finding parts",
	domain.StageDone:                "Done",
	domain.StageFailed:              "Failed",
}

// StageLabel returns a human-readable label for a stage.
func StageLabel(s domain.Stage) string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

type stageRow struct {
	stage   domain.Stage
	message string
	started time.Time
	ended   time.Time
}

// ProgressModel shows the pipeline's stages as they run.
// It implements tea.Model and quits when the analysis reports completion.
type ProgressModel struct {
	title   string
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	spinner spinner.Model
	status  *status.Bar

	rows        []stageRow
	showDetails bool
	started     time.Time
	now         func() time.Time
	cancel      context.CancelFunc

	guide *domain.RepairGuide
	err   error
	done  bool
}

// NewProgressModel creates a progress view. cancel is invoked when the user
// presses a cancel key and may be nil.
func NewProgressModel(title string, cancel context.CancelFunc) *ProgressModel {
	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Active

	return &ProgressModel{
		title:   title,
		styles:  s,
		keymap:  km,
		spinner: sp,
		status:  status.NewBar(s, km),
		started: time.Now(),
		now:     time.Now,
		cancel:  cancel,
	}
}

// Init starts the spinner.
func (m *ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles stage events, completion, keys and spinner ticks.
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.status.SetWidth(msg.Width)
		return m, nil

	case messages.StageChanged:
		m.enterStage(msg.Event)
		return m, nil

	case messages.AnalysisDone:
		m.finish(msg.Guide, msg.Err)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.status.SetElapsed(m.now().Sub(m.started))
		return m, cmd
	}
	return m, nil
}

func (m *ProgressModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	key := msg.String()
	switch {
	case keymap.Matches(key, m.keymap.Cancel):
		if m.status.State() == status.StateRunning {
			m.status.SetState(status.StateCancelling)
			if m.cancel != nil {
				m.cancel()
			}
		}
	case keymap.Matches(key, m.keymap.Details):
		m.showDetails = !m.showDetails
	}
	return m, nil
}

func (m *ProgressModel) enterStage(ev domain.StageEvent) {
	at := ev.At
	if at.IsZero() {
		at = m.now()
	}
	if n := len(m.rows); n > 0 && m.rows[n-1].ended.IsZero() {
		m.rows[n-1].ended = at
	}
	if ev.Stage == domain.StageDone {
		return
	}
	m.rows = append(m.rows, stageRow{stage: ev.Stage, message: ev.Message, started: at})
	if ev.Stage == domain.StageFailed {
		m.rows[len(m.rows)-1].ended = at
	}
}

func (m *ProgressModel) finish(guide *domain.RepairGuide, err error) {
	m.done = true
	m.guide = guide
	m.err = err
	m.status.SetElapsed(m.now().Sub(m.started))
	if n := len(m.rows); n > 0 && m.rows[n-1].ended.IsZero() {
		m.rows[n-1].ended = m.now()
	}
	if err != nil {
		m.status.SetState(status.StateFailed)
		m.status.SetMessage(err.Error())
		return
	}
	m.status.SetState(status.StateDone)
}

// View renders the stage list and status bar.
func (m *ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("fixpath"))
	if m.title != "" {
		b.WriteString(m.styles.Muted.Render("  " + m.title))
	}
	b.WriteString("\n\n")

	for i := range m.rows {
		b.WriteString(m.renderRow(&m.rows[i]))
		b.WriteString("\n")
	}
	if len(m.rows) == 0 && !m.done {
		b.WriteString(m.spinner.View() + " " + m.styles.Muted.Render("Starting"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status.View())
	b.WriteString("\n")
	return b.String()
}

func (m *ProgressModel) renderRow(r *stageRow) string {
	label := StageLabel(r.stage)
	var line string
	switch {
	case r.stage == domain.StageFailed:
		line = m.styles.Error.Render("✗ " + label)
	case r.ended.IsZero() && !m.done:
		line = m.spinner.View() + " " + m.styles.Active.Render(label)
	default:
		took := r.ended.Sub(r.started).Round(100 * time.Millisecond)
		line = m.styles.Success.Render("✓ ") + m.styles.Normal.Render(label) +
			m.styles.Muted.Render(fmt.Sprintf(" (%s)", took))
	}
	if m.showDetails && r.message != "" {
		line += "\n    " + m.styles.Muted.Render(r.message)
	}
	return line
}

// Result returns the analysis outcome once the model has finished.
func (m *ProgressModel) Result() (*domain.RepairGuide, error) {
	return m.guide, m.err
}

// Done reports whether the analysis has completed.
func (m *ProgressModel) Done() bool {
	return m.done
}

// Stages returns the stages entered so far, in order.
func (m *ProgressModel) Stages() []domain.Stage {
	out := make([]domain.Stage, len(m.rows))
	for i := range m.rows {
		out[i] = m.rows[i].stage
	}
	return out
}

// RunAnalysis runs req through the repair service while the progress view
// renders its stages. Cancelling from the keyboard cancels the analysis;
// its result, including the cancellation error, is returned either way.
func RunAnalysis(ctx context.Context, ports *Ports, req domain.AnalyzeRequest, opts ...tea.ProgramOption) (*domain.RepairGuide, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewProgressModel(req.Equipment.String(), cancel)
	p := tea.NewProgram(model, opts...)

	go func() {
		guide, err := ports.Repair.Analyze(ctx, req, func(ev domain.StageEvent) {
			p.Send(messages.StageChanged{Event: ev})
		})
		p.Send(messages.AnalysisDone{Guide: guide, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("running progress view: %w", err)
	}
	pm, ok := final.(*ProgressModel)
	if !ok {
		return nil, ErrUnexpectedModel
	}
	return pm.Result()
}
