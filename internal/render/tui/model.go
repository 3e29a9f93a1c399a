package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rocketscienceinc/voro-client/internal/entity"
)

const (
	clickTimeout = 5 * time.Second
	maxInputLen  = 8
	tokenHistory = 10
)

type clicker interface {
	Click(ctx context.Context, cell entity.CellID) (entity.PlayerColor, error)
}

// clickResultMsg is sent when a click has been handled by the session
type clickResultMsg struct {
	cell  entity.CellID
	color entity.PlayerColor
	err   error
}

// Model is the Bubble Tea model of the game screen
type Model struct {
	gameURL  string
	clicker  clicker
	renderer *Renderer

	status entity.GameStatus
	tokens []entity.TokenPlacement // most recent last
	input  string
	notice string
	err    error

	closed   bool
	closeErr error
}

func NewModel(gameURL string, clicker clicker, renderer *Renderer) Model {
	return Model{
		gameURL:  gameURL,
		clicker:  clicker,
		renderer: renderer,
		tokens:   []entity.TokenPlacement{},
	}
}

func (m Model) Init() tea.Cmd {
	return m.renderer.listen()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tokenPlacedMsg:
		m.tokens = append(m.tokens, msg.placement)
		if len(m.tokens) > tokenHistory {
			m.tokens = m.tokens[len(m.tokens)-tokenHistory:]
		}
		return m, m.renderer.listen()

	case statusMsg:
		m.status = msg.status
		if score := msg.diff.Completed; score != nil {
			m.notice = fmt.Sprintf("Game over: %d - %d", score.Score1, score.Score2)
		}
		return m, m.renderer.listen()

	case channelClosedMsg:
		m.closed = true
		m.closeErr = msg.err
		m.input = ""
		return m, nil

	case clickResultMsg:
		if msg.err != nil {
			m.err = msg.err
			m.notice = ""
			return m, nil
		}
		m.err = nil
		if msg.color == "" {
			m.notice = fmt.Sprintf("Played cell %s", msg.cell)
		} else {
			m.notice = fmt.Sprintf("Played %s on cell %s", msg.color, msg.cell)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "enter":
		if m.closed || m.input == "" {
			return m, nil
		}
		cell := entity.CellID(m.input)
		m.input = ""
		return m, clickCmd(m.clicker, cell)

	case "backspace":
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil
	}

	if m.closed || msg.Type != tea.KeyRunes {
		return m, nil
	}

	if len(m.input)+len(msg.Runes) <= maxInputLen {
		m.input += string(msg.Runes)
	}

	return m, nil
}

// clickCmd plays a token on the cell through the session
func clickCmd(clicker clicker, cell entity.CellID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), clickTimeout)
		defer cancel()

		color, err := clicker.Click(ctx, cell)
		return clickResultMsg{cell: cell, color: color, err: err}
	}
}

func (m Model) View() string {
	sections := []string{
		titleStyle.Render("VORO  " + m.gameURL),
		lipgloss.JoinHorizontal(lipgloss.Top, m.viewStatus(), " ", m.viewTokens()),
	}

	if m.closed {
		sections = append(sections, m.viewClosed())
	} else {
		sections = append(sections, m.viewPrompt())
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render("Error: "+m.err.Error()))
	} else if m.notice != "" {
		sections = append(sections, highlightStyle.Render(m.notice))
	}

	sections = append(sections, instructionStyle.Render("Type a cell and press ENTER to play  •  ESC to quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewStatus() string {
	turn := mutedStyle.Render("nobody")
	if color, ok := m.status.Turn(); ok {
		turn = playerStyle(string(color)).Render("Player " + string(color))
	}

	movesLeft := mutedStyle.Render("-")
	if m.status.MovesLeft != nil {
		movesLeft = strconv.Itoa(*m.status.MovesLeft)
	}

	border := mutedStyle.Render("open")
	if m.status.BorderFilled() {
		border = fmt.Sprintf("full, %d connections left", *m.status.ConnectionsRemaining)
	}

	rows := []string{
		row("To move", turn),
		row("Moves left", movesLeft),
		row("Border", border),
	}

	if m.status.IsComplete() {
		rows = append(rows,
			row("Player 1", playerStyle("1").Render(scoreText(m.status.Score1))),
			row("Player 2", playerStyle("2").Render(scoreText(m.status.Score2))),
		)
	}

	return boxStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) viewTokens() string {
	if len(m.tokens) == 0 {
		return tokensBoxStyle.Render(mutedStyle.Render("no tokens yet"))
	}

	lines := make([]string, 0, len(m.tokens))
	for _, token := range m.tokens {
		lines = append(lines, fmt.Sprintf("cell %s  %s",
			token.Location, playerStyle(string(token.Color)).Render("●"+string(token.Color))))
	}

	return tokensBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewPrompt() string {
	input := mutedStyle.Render("cell...")
	if m.input != "" {
		input = highlightStyle.Render(m.input) + cursorStyle.Render("▊")
	}

	return inputBoxStyle.Render(input)
}

func (m Model) viewClosed() string {
	if m.closeErr != nil {
		return bannerStyle.Render("Connection lost: " + m.closeErr.Error())
	}

	return bannerStyle.Render("Connection closed")
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

func scoreText(score *int) string {
	if score == nil {
		return "-"
	}

	return strconv.Itoa(*score)
}
