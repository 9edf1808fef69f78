// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a review-then-apply workflow for playlist reconciliation:
//  1. [PlanView] : Browse the computed plan (additions, already-present, unmatched)
//  2. [ConfirmView] : Confirm before anything is written
//  3. [ApplyView] : Monitor real-time progress updates
//  4. [ResultView] : Display the final per-song outcomes
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ReconcileEngine, providing
// non-blocking status reporting while tracks are added.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gmcculloug/mixtape/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlanView ViewState = iota
	ConfirmView
	ApplyView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	view   ViewState
	engine *tasks.ReconcileEngine
	opts   tasks.RunOptions

	width  int
	height int

	planList     list.Model
	plan         *tasks.RunResult
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *tasks.RunResult
	err          error

	help help.Model
	keys keyMap
}

type planComputedMsg struct {
	plan *tasks.RunResult
	err  error
}

type progressUpdateMsg tasks.ProgressUpdate

type applyCompleteMsg struct {
	result *tasks.RunResult
	err    error
}

// NewModel creates a new TUI model. The engine is used twice: a dry run to
// compute the reviewable plan, then a live run if the user confirms.
func NewModel(ctx context.Context, engine *tasks.ReconcileEngine, opts tasks.RunOptions) *Model {
	return &Model{
		ctx:    ctx,
		view:   PlanView,
		engine: engine,
		opts:   opts,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init computes the plan with a dry run.
func (m *Model) Init() tea.Cmd {
	return m.computePlan()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.planList.Width() == 0 {
			m.planList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlanView:
			return m.handlePlanKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case planComputedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.plan = msg.plan
		items := make([]list.Item, len(msg.plan.Results))
		for i, sr := range msg.plan.Results {
			items[i] = songItem{result: sr}
		}
		m.planList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.planList.Title = fmt.Sprintf("Plan for '%s'", m.opts.TargetName)
		m.planList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case applyCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	if m.view == PlanView {
		var cmd tea.Cmd
		m.planList, cmd = m.planList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlanView:
		return m.renderPlan()
	case ConfirmView:
		return m.renderConfirm()
	case ApplyView:
		return m.renderApply()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlanKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if m.plan != nil && m.plan.Added > 0 {
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.planList, cmd = m.planList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PlanView
		return m, nil
	case "y":
		m.view = ApplyView
		return m, m.startApply()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "enter":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) computePlan() tea.Cmd {
	return func() tea.Msg {
		opts := m.opts
		opts.DryRun = true
		plan, err := m.engine.Run(m.ctx, nil, opts)
		return planComputedMsg{plan: plan, err: err}
	}
}

func (m *Model) startApply() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		result, err := m.engine.Run(m.ctx, m.progressChan, m.opts)
		m.result = result
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return applyCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return applyCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlan() string {
	if m.plan == nil {
		return styles.help.Render("Computing plan...")
	}

	summary := fmt.Sprintf("%d to add, %d present, %d unmatched",
		m.plan.Added, m.plan.Present, m.plan.Unmatched)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.apply, m.keys.quit})

	return fmt.Sprintf("%s\n%s\n\n%s", m.planList.View(), styles.warn.Render(summary), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Apply %d additions to '%s'?", m.plan.Added, m.opts.TargetName))

	var extra string
	if m.opts.Reset {
		extra = styles.warn.Render("\nReset: the target will be emptied first.\n")
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s%s\n%s", title, extra, helpView)
}

func (m *Model) renderApply() string {
	title := styles.title.Render("Reconciling Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.PoolCandidates:
		phase = "Pooling candidate tracks..."
	case tasks.MatchTracks:
		phase = fmt.Sprintf("Matching songs (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.AddTracks:
		phase = fmt.Sprintf("Adding tracks (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Reconcile failed: %v\n\nPress q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress q to quit")
	}

	title := styles.ok.Render("✓ Reconcile Complete")
	info := fmt.Sprintf(
		"\nTarget: %s\nAdded: %d  Present: %d  Unmatched: %d  Failed: %d",
		m.result.Target.Name,
		m.result.Added,
		m.result.Present,
		m.result.Unmatched,
		m.result.Failed,
	)

	var unmatched string
	if m.result.Unmatched > 0 {
		unmatched = fmt.Sprintf("\n\n%s", styles.warn.Render("Unmatched songs:"))
		for _, entry := range m.result.UnmatchedEntries() {
			unmatched += fmt.Sprintf("\n  • %s", entry.Raw)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s%s%s\n\n%s", title, info, unmatched, helpView)
}
