package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hupe1980/treetable/internal/filter"
	"github.com/hupe1980/treetable/internal/output"
	"github.com/hupe1980/treetable/internal/render"
	"github.com/hupe1980/treetable/internal/row"
	"github.com/hupe1980/treetable/internal/table"
)

// fixedLines counts the lines around the table: the filter input, a blank
// line, the footer and the help line.
const fixedLines = 4

// ReloadMsg replaces the data of the browser, e.g. after the data file
// changed on disk. A non-nil Err is shown instead and the old data stays.
type ReloadMsg struct {
	Data []map[string]any
	Err  error
}

// Options configures a browser.
type Options struct {
	Data    []map[string]any
	Columns []table.Column
	SubRows table.SubRowsFunc
	// Prefilters run before the query on every pass.
	Prefilters []filter.Filter
	// Query is the initial filter query.
	Query string
	// ExpandAll starts with every row expanded.
	ExpandAll bool
	// AutoExpand expands the ancestors of matched rows after every query
	// change.
	AutoExpand bool
	Theme      render.Theme
	// MaxCellWidth caps leaf cell widths; 0 keeps the renderer default.
	MaxCellWidth int
	Logger       *slog.Logger
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx    context.Context
	logger *slog.Logger

	table      *table.Model
	view       *table.View
	autoExpand bool

	input textinput.Model
	help  help.Model
	keys  KeyMap
	theme render.Theme
	width int

	maxCellWidth int

	cursor    int
	offset    int
	height    int
	showState bool
	err       error
	status    string
}

var _ tea.Model = (*Model)(nil)

// New creates a browser and computes its first view.
func New(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cols := opts.Columns
	if len(cols) == 0 {
		cols = table.DefaultColumns()
	}

	in := textinput.New()
	in.Prompt = "Search: "
	in.Placeholder = "filter all columns"
	in.CharLimit = 256
	in.SetValue(opts.Query)
	in.Focus()

	m := &Model{
		ctx:          ctx,
		logger:       opts.Logger,
		autoExpand:   opts.AutoExpand,
		input:        in,
		help:         help.New(),
		keys:         DefaultKeyMap(),
		theme:        opts.Theme,
		maxCellWidth: opts.MaxCellWidth,
		table: &table.Model{
			Data:       opts.Data,
			Columns:    cols,
			SubRows:    opts.SubRows,
			Query:      opts.Query,
			Expanded:   table.Expanded{},
			Prefilters: opts.Prefilters,
		},
	}

	m.table.AutoExpand = m.autoExpand && opts.Query != ""
	m.recompute()

	if opts.ExpandAll && m.view != nil {
		m.table.Expanded.ToggleAll(m.view.PreFilterRows)
		m.recompute()
	}

	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()

		return m, nil

	case ReloadMsg:
		m.reload(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Clear):
		switch {
		case m.input.Value() != "":
			m.input.SetValue("")
			m.applyQuery()
		case m.showState:
			m.showState = false
		default:
			return m, tea.Quit
		}

		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.move(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.pageSize())
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.move(m.pageSize())
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		m.toggleSelected()
		return m, nil

	case key.Matches(msg, m.keys.ToggleAll):
		if m.view != nil {
			m.table.Expanded.ToggleAll(m.view.Rows)
			m.recompute()
		}

		return m, nil

	case key.Matches(msg, m.keys.State):
		m.showState = !m.showState
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	before := m.input.Value()

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	if m.input.Value() != before {
		m.applyQuery()
	}

	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.view != nil {
		opts := render.Options{
			Theme:        m.theme,
			MaxCellWidth: m.maxCellWidth,
			Cursor:       m.cursor,
			Matched:      m.view.MatchedIDs,
			HideFooter:   true,
		}

		lines := render.Lines(m.table.Columns, m.view.Visible, m.view.Expanded, opts)
		head := len(lines) - len(m.view.Visible)

		for _, l := range lines[:head] {
			b.WriteString(l + "\n")
		}

		end := min(m.offset+m.pageSize(), len(m.view.Visible))
		for _, l := range lines[head+m.offset : head+end] {
			b.WriteString(l + "\n")
		}

		b.WriteString(m.theme.Footer.Render(render.Footer(len(m.view.Visible), 0)))
		b.WriteString("\n")
	}

	if m.showState {
		b.WriteString(m.stateView())
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(m.theme.Footer.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))

	return b.String()
}

var errorStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"})

func (m *Model) stateView() string {
	if m.view == nil {
		return ""
	}

	data, err := output.ExpandedJSON(m.view.Expanded)
	if err != nil {
		return "error: " + err.Error()
	}

	return strings.TrimRight(string(data), "\n")
}

// Query returns the current filter query.
func (m *Model) Query() string {
	return m.input.Value()
}

// Cursor returns the index of the selected visible row.
func (m *Model) Cursor() int {
	return m.cursor
}

// Selected returns the row under the cursor, or nil when nothing is
// visible.
func (m *Model) Selected() *row.Row {
	if m.view == nil || m.cursor < 0 || m.cursor >= len(m.view.Visible) {
		return nil
	}

	return m.view.Visible[m.cursor]
}

// VisibleIDs returns the ids of the visible rows in display order.
func (m *Model) VisibleIDs() []string {
	if m.view == nil {
		return nil
	}

	ids := make([]string, len(m.view.Visible))
	for i, r := range m.view.Visible {
		ids[i] = r.ID
	}

	return ids
}

// Expanded returns the effective expansion state.
func (m *Model) Expanded() table.Expanded {
	if m.view == nil {
		return table.Expanded{}
	}

	return m.view.Expanded
}

// Err returns the last error, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) applyQuery() {
	q := m.input.Value()

	m.table.Query = q
	m.table.AutoExpand = m.autoExpand && q != ""
	m.cursor = 0
	m.offset = 0

	m.recompute()
}

func (m *Model) reload(msg ReloadMsg) {
	if msg.Err != nil {
		m.err = msg.Err
		m.logger.Warn("reload failed", slog.String("error", msg.Err.Error()))

		return
	}

	m.table.Data = msg.Data
	m.recompute()

	if m.err == nil {
		m.status = fmt.Sprintf("reloaded %d records", len(msg.Data))
	}
}

// recompute derives the view from the table model, keeping the cursor on
// the selected row when it is still visible. Lineage expanded for matches
// is adopted into the model's own state so the user can collapse it again.
func (m *Model) recompute() {
	var selected string
	if r := m.Selected(); r != nil {
		selected = r.ID
	}

	v, err := m.table.Compute(m.ctx)
	if err != nil {
		m.err = err
		return
	}

	m.err = nil

	if m.table.AutoExpand {
		m.table.Expanded = v.Expanded.Clone()
		m.table.AutoExpand = false
	}

	m.view = v

	if selected != "" {
		for i, r := range v.Visible {
			if r.ID == selected {
				m.cursor = i
				break
			}
		}
	}

	m.move(0)
}

func (m *Model) toggleSelected() {
	r := m.Selected()
	if r.IsLeaf() {
		return
	}

	m.table.Expanded.Toggle(r.ID)
	m.recompute()
}

func (m *Model) move(delta int) {
	n := 0
	if m.view != nil {
		n = len(m.view.Visible)
	}

	m.cursor += delta
	if m.cursor >= n {
		m.cursor = n - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}

	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	page := m.pageSize()

	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}

	if m.offset < 0 {
		m.offset = 0
	}
}

// pageSize is the number of row lines that fit the window. Without a known
// window height every row is shown.
func (m *Model) pageSize() int {
	n := 0
	if m.view != nil {
		n = len(m.view.Visible)
	}

	if m.height <= 0 {
		return max(n, 1)
	}

	header := len(table.HeaderGroups(m.table.Columns)) + 1
	page := m.height - fixedLines - header

	if m.showState {
		page -= len(m.Expanded().IDs()) + 4
	}

	return max(page, 1)
}

// Run starts the browser on the terminal. Reloads sent on the channel are
// forwarded to the program until it exits.
func Run(ctx context.Context, m *Model, reloads <-chan ReloadMsg) error {
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())

	if reloads != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-reloads:
					if !ok {
						return
					}

					p.Send(msg)
				}
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}

	return nil
}
