package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/voro-client/internal/entity"
)

const eventBufferSize = 64

// tokenPlacedMsg is sent when the server places a token
type tokenPlacedMsg struct {
	placement entity.TokenPlacement
}

// statusMsg carries the snapshot after a merge and what changed
type statusMsg struct {
	status entity.GameStatus
	diff   entity.StatusDiff
}

// channelClosedMsg is sent once when the game connection ends
type channelClosedMsg struct {
	err error
}

// Renderer - bridges session callbacks into the bubbletea program.
// Callbacks are queued and picked up by the model through listen.
type Renderer struct {
	events chan tea.Msg
	done   chan struct{}
	once   sync.Once
}

func NewRenderer() *Renderer {
	return &Renderer{
		events: make(chan tea.Msg, eventBufferSize),
		done:   make(chan struct{}),
	}
}

func (that *Renderer) OnTokenPlaced(placement entity.TokenPlacement) {
	that.push(tokenPlacedMsg{placement: placement})
}

func (that *Renderer) OnStatusDiff(status entity.GameStatus, diff entity.StatusDiff) {
	that.push(statusMsg{status: status, diff: diff})
}

func (that *Renderer) OnChannelClosed(err error) {
	that.push(channelClosedMsg{err: err})
}

// Stop - releases callers blocked on a full queue once the program has exited.
func (that *Renderer) Stop() {
	that.once.Do(func() {
		close(that.done)
	})
}

func (that *Renderer) push(msg tea.Msg) {
	select {
	case that.events <- msg:
	case <-that.done:
	}
}

// listen waits for the next queued event
func (that *Renderer) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-that.events:
			return msg
		case <-that.done:
			return nil
		}
	}
}
