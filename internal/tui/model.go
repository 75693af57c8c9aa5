// Package tui renders a job's board in the terminal and turns key presses
// into board moves.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/justsurfingit/hiring-board/internal/board"
	"github.com/justsurfingit/hiring-board/internal/dtos"
	"github.com/justsurfingit/hiring-board/internal/models"
)

type (
	loadedMsg       struct{ err error }
	movedMsg        struct{ err error }
	phaseMsg        board.Phase
	notificationMsg dtos.Notification
)

// Model is the bubbletea model for one board session.
type Model struct {
	session *board.Session
	title   string
	notes   <-chan dtos.Notification
	phases  <-chan board.Phase
	keys    keyMap
	timeout time.Duration

	board   *board.Board
	phase   board.Phase
	state   board.LoadState
	pending int

	col, row int
	picked   uint // 0 when nothing is held

	width int
	toast string
	err   error
}

// New builds the model. notes may be nil when no push stream is available.
func New(session *board.Session, title string, notes <-chan dtos.Notification, timeout time.Duration) Model {
	// holds only the newest phase; the model reads the rest from the session
	phases := make(chan board.Phase, 1)
	session.Indicator().OnChange(func(p board.Phase) {
		for {
			select {
			case phases <- p:
				return
			default:
			}
			select {
			case <-phases:
			default:
			}
		}
	})
	return Model{
		session: session,
		title:   title,
		notes:   notes,
		phases:  phases,
		keys:    newKeyMap(),
		timeout: timeout,
		board:   board.Empty(session.JobID()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), waitForPhase(m.phases), waitForNotification(m.notes))
}

func (m Model) load() tea.Cmd {
	s, timeout := m.session, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return loadedMsg{err: s.Load(ctx)}
	}
}

func (m Model) move(mv board.Move) tea.Cmd {
	s, timeout := m.session, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return movedMsg{err: s.Move(ctx, mv)}
	}
}

func waitForPhase(ch <-chan board.Phase) tea.Cmd {
	return func() tea.Msg {
		return phaseMsg(<-ch)
	}
}

func waitForNotification(ch <-chan dtos.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loadedMsg:
		m.err = msg.err
		m.sync()
		return m, nil

	case movedMsg:
		m.err = msg.err
		m.sync()
		return m, nil

	case phaseMsg:
		// a wake-up; sync reads the indicator's current phase
		m.sync()
		return m, waitForPhase(m.phases)

	case notificationMsg:
		// shown only; the board is not patched from push events
		m.toast = describe(dtos.Notification(msg))
		return m, waitForNotification(m.notes)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.col = (m.col + len(models.Statuses) - 1) % len(models.Statuses)
	case key.Matches(msg, m.keys.Right):
		m.col = (m.col + 1) % len(models.Statuses)
	case key.Matches(msg, m.keys.Up):
		m.row--
	case key.Matches(msg, m.keys.Down):
		m.row++
	case key.Matches(msg, m.keys.Cancel):
		m.picked = 0
	case key.Matches(msg, m.keys.Reload):
		m.picked = 0
		return m, m.load()
	case key.Matches(msg, m.keys.Pick):
		items := m.board.Columns[m.col].Items
		if m.picked == 0 && m.row < len(items) {
			m.picked = items[m.row].ID
		} else {
			m.picked = 0
		}
	case key.Matches(msg, m.keys.Drop):
		if m.picked == 0 {
			return m, nil
		}
		// the marker is drawn in the list that still holds the card; Move
		// removes it before inserting
		idx := m.row
		if col, pos, ok := m.board.Find(m.picked); ok && col == m.col && idx > pos {
			idx--
		}
		mv := board.Move{ApplicationID: m.picked, To: models.Statuses[m.col], Index: idx}
		m.picked = 0
		cmd := m.move(mv)
		m.sync()
		return m, cmd
	}
	m.clampCursor()
	return m, nil
}

// sync pulls the session's current board and badge into the model.
func (m *Model) sync() {
	m.board = m.session.Board()
	m.phase = m.session.Indicator().Phase()
	m.state = m.session.LoadState()
	m.pending = m.session.InFlight()
	if m.picked != 0 {
		if _, _, ok := m.board.Find(m.picked); !ok {
			m.picked = 0
		}
	}
	m.clampCursor()
}

// clampCursor keeps the row inside the column. While holding a card the row
// may sit one past the end to drop at the bottom.
func (m *Model) clampCursor() {
	n := len(m.board.Columns[m.col].Items)
	last := n - 1
	if m.picked != 0 {
		last = n
	}
	if m.row > last {
		m.row = last
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	colWidth := 24
	if m.width > 0 {
		if w := m.width/len(models.Statuses) - 4; w > 12 {
			colWidth = w
		}
	}
	cols := make([]string, len(m.board.Columns))
	for i, c := range m.board.Columns {
		cols[i] = m.renderColumn(i, c, colWidth)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m Model) renderColumn(ci int, c board.Column, width int) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", c.Status.Label(), len(c.Items)))}
	active := ci == m.col
	for ri, a := range c.Items {
		if active && m.picked != 0 && ri == m.row {
			lines = append(lines, dropStyle.Render("── drop here ──"))
		}
		lines = append(lines, m.renderCard(a, active && ri == m.row && m.picked == 0, width))
	}
	if active && m.picked != 0 && m.row >= len(c.Items) {
		lines = append(lines, dropStyle.Render("── drop here ──"))
	}
	if len(c.Items) == 0 && !(active && m.picked != 0) {
		lines = append(lines, mutedStyle.Render("empty"))
	}

	style := columnStyle
	if active {
		style = activeColumnStyle
	}
	return style.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCard(a models.Application, cursor bool, width int) string {
	name := a.CandidateName
	if name == "" {
		name = fmt.Sprintf("#%d", a.ID)
	}
	if limit := width - 6; limit > 3 && lipgloss.Width(name) > limit {
		if r := []rune(name); len(r) > limit-1 {
			name = string(r[:limit-1]) + "…"
		}
	}
	score := ""
	if a.MatchingScore != nil {
		score = " " + scoreStyle.Render(fmt.Sprintf("%d", *a.MatchingScore))
	}
	switch {
	case a.ID == m.picked:
		return pickedStyle.Render("» "+name) + score
	case cursor:
		return cursorStyle.Render("> "+name) + score
	default:
		return cardStyle.Render("  "+name) + score
	}
}

func (m Model) statusBar() string {
	parts := []string{}
	switch m.phase {
	case board.PhaseUpdating:
		parts = append(parts, updatingStyle.Render("updating…"))
	case board.PhaseSaved:
		parts = append(parts, savedStyle.Render("saved"))
	case board.PhaseReloaded:
		parts = append(parts, mutedStyle.Render("reloaded"))
	}
	if m.pending > 0 {
		parts = append(parts, mutedStyle.Render(fmt.Sprintf("%d pending", m.pending)))
	}
	if m.state == board.LoadFailed {
		parts = append(parts, errorStyle.Render("loading failed"))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	if m.toast != "" {
		parts = append(parts, toastStyle.Render(m.toast))
	}
	return statusBarBase.Render(strings.Join(parts, "  "))
}

func (m Model) helpLine() string {
	items := make([]string, 0, len(m.keys.help()))
	for _, k := range m.keys.help() {
		h := k.Help()
		items = append(items, h.Key+" "+h.Desc)
	}
	return mutedStyle.Render(strings.Join(items, " · "))
}

func describe(n dtos.Notification) string {
	p, _ := n.Payload.(map[string]any)
	id := func(k string) string {
		if v, ok := p[k].(float64); ok {
			return fmt.Sprintf("%d", int64(v))
		}
		return "?"
	}
	switch n.Event {
	case dtos.EventStatusChanged:
		return fmt.Sprintf("application %s moved to %v elsewhere", id("application_id"), p["to"])
	case dtos.EventApplicationCreated:
		return fmt.Sprintf("new application from %v", p["candidate_name"])
	case dtos.EventApplicationScored:
		return fmt.Sprintf("application %s scored %s", id("application_id"), id("matching_score"))
	default:
		return n.Event
	}
}
