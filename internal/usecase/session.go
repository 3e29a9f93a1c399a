package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
	"github.com/rocketscienceinc/voro-client/internal/entity"
	"github.com/rocketscienceinc/voro-client/internal/protocol"
)

const eventQueueSize = 64

// Renderer - displays what the session produces.
type Renderer interface {
	OnTokenPlaced(placement entity.TokenPlacement)
	OnStatusDiff(status entity.GameStatus, diff entity.StatusDiff)
	OnChannelClosed(err error)
}

type sender interface {
	Send(ctx context.Context, message []byte) error
}

type (
	inboundEvent struct {
		raw []byte
	}

	closeEvent struct {
		err error
	}

	seedEvent struct {
		update protocol.StatusUpdate
	}

	clickEvent struct {
		ctx   context.Context //nolint: containedctx // the click is served by the loop goroutine
		cell  entity.CellID
		reply chan clickResult
	}

	clickResult struct {
		color entity.PlayerColor
		err   error
	}
)

// Session - connects the channel, the status store and the renderer.
// Inbound messages, clicks and the close event are handled one at a time by Run.
type Session struct {
	logger   *slog.Logger
	store    *GameStateStore
	sender   sender
	renderer Renderer

	closed bool
	events chan any
	done   chan struct{}
}

func NewSession(logger *slog.Logger, id string, sender sender, renderer Renderer) *Session {
	return &Session{
		logger:   logger.With("component", "session", "session", id),
		store:    NewGameStateStore(),
		sender:   sender,
		renderer: renderer,
		events:   make(chan any, eventQueueSize),
		done:     make(chan struct{}),
	}
}

// Deliver - queues a raw inbound message. Messages are handled in the order they are delivered.
func (that *Session) Deliver(raw []byte) {
	that.enqueue(inboundEvent{raw: raw})
}

// Seed - queues the status the game page was rendered with, so clicks have a turn before the server speaks.
// Seed before Connect so it is merged ahead of any channel message.
func (that *Session) Seed(update protocol.StatusUpdate) {
	that.enqueue(seedEvent{update: update})
}

// Closed - queues the channel close. A nil error means a normal closure.
func (that *Session) Closed(err error) {
	that.enqueue(closeEvent{err: err})
}

// Click - plays a token on the cell for the player currently to move.
// Returns the color that was sent, or ErrChannelClosed once the channel is closed.
func (that *Session) Click(ctx context.Context, cell entity.CellID) (entity.PlayerColor, error) {
	reply := make(chan clickResult, 1)
	errClosed := fmt.Errorf("failed to play token: %w", apperror.ErrChannelClosed)

	// the queue is buffered, so a stopped loop must be detected before enqueueing
	select {
	case <-that.done:
		return "", errClosed
	default:
	}

	select {
	case that.events <- clickEvent{ctx: ctx, cell: cell, reply: reply}:
	case <-that.done:
		return "", errClosed
	case <-ctx.Done():
		return "", fmt.Errorf("failed to play token: %w", ctx.Err())
	}

	select {
	case result := <-reply:
		return result.color, result.err
	case <-that.done:
		// the loop may have answered right before it stopped
		select {
		case result := <-reply:
			return result.color, result.err
		default:
			return "", errClosed
		}
	case <-ctx.Done():
		return "", fmt.Errorf("failed to play token: %w", ctx.Err())
	}
}

// Run - handles queued events until the channel closes or ctx is canceled.
func (that *Session) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")
	defer close(that.done)

	for {
		select {
		case <-ctx.Done():
			log.Info("Session context canceled, shutting down")
			that.handleClose(nil)
			return nil
		case event := <-that.events:
			switch e := event.(type) {
			case inboundEvent:
				that.handleMessage(e.raw)
			case seedEvent:
				that.applyStatus(that.logger.With("method", "Seed"), e.update)
			case clickEvent:
				color, err := that.click(e.ctx, e.cell)
				e.reply <- clickResult{color: color, err: err}
			case closeEvent:
				that.handleClose(e.err)
				return nil
			}
		}
	}
}

func (that *Session) enqueue(event any) {
	select {
	case that.events <- event:
	case <-that.done:
	}
}

func (that *Session) handleMessage(raw []byte) {
	log := that.logger.With("method", "handleMessage")

	event, err := protocol.Decode(raw)
	if err != nil {
		log.Warn("dropping malformed message", "error", err, "raw", string(raw))
		return
	}

	switch e := event.(type) {
	case protocol.TokenPlaced:
		log.Debug("token placed", "location", string(e.Location), "color", string(e.Color))
		that.renderer.OnTokenPlaced(e.TokenPlacement)

	case protocol.StatusUpdate:
		that.applyStatus(log, e)

	case protocol.Unknown:
		log.Debug("ignoring unknown action", "action", e.Action)
	}
}

func (that *Session) applyStatus(log *slog.Logger, update protocol.StatusUpdate) {
	if len(update.Skipped) > 0 {
		log.Warn("status keys with unexpected types skipped", "keys", update.Skipped)
	}

	status, diff := that.store.ApplyPatch(update.Patch)
	if diff.IsEmpty() {
		log.Debug("status update changed nothing visible")
		return
	}

	that.renderer.OnStatusDiff(status, diff)
}

func (that *Session) handleClose(err error) {
	log := that.logger.With("method", "handleClose")

	if that.closed {
		return
	}

	that.closed = true

	if err != nil {
		log.Warn("channel closed with error", "error", err)
	} else {
		log.Info("channel closed")
	}

	that.renderer.OnChannelClosed(err)
}

func (that *Session) click(ctx context.Context, cell entity.CellID) (entity.PlayerColor, error) {
	log := that.logger.With("method", "click", "cell", string(cell))

	action, err := entity.NewPlayTokenAction(cell, that.store.Current())
	if err != nil {
		return "", fmt.Errorf("failed to build action: %w", err)
	}

	message, err := protocol.Encode(action)
	if err != nil {
		return "", fmt.Errorf("failed to encode action: %w", err)
	}

	if err = that.sender.Send(ctx, message); err != nil {
		if !errors.Is(err, apperror.ErrChannelClosed) {
			log.Error("failed to send action", "error", err)
		}
		return "", fmt.Errorf("failed to send action: %w", err)
	}

	log.Info("token requested", "color", string(action.Color))

	return action.Color, nil
}
