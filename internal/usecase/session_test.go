package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
	"github.com/rocketscienceinc/voro-client/internal/entity"
	"github.com/rocketscienceinc/voro-client/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errConnectionReset = errors.New("connection reset")

type mockRenderer struct {
	mock.Mock
}

func (that *mockRenderer) OnTokenPlaced(placement entity.TokenPlacement) {
	that.Called(placement)
}

func (that *mockRenderer) OnStatusDiff(status entity.GameStatus, diff entity.StatusDiff) {
	that.Called(status, diff)
}

func (that *mockRenderer) OnChannelClosed(err error) {
	that.Called(err)
}

type mockSender struct {
	mock.Mock
}

func (that *mockSender) Send(ctx context.Context, message []byte) error {
	args := that.Called(ctx, message)
	return args.Error(0)
}

func newTestSession(t *testing.T) (*Session, *mockRenderer, *mockSender) {
	t.Helper()

	renderer := &mockRenderer{}
	sender := &mockSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Cleanup(func() {
		renderer.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	return NewSession(logger, "test-session", sender, renderer), renderer, sender
}

func TestSession_HandleMessage(t *testing.T) {
	t.Run("Token placements go to the renderer only", func(t *testing.T) {
		// Given: a session
		session, renderer, _ := newTestSession(t)
		renderer.On("OnTokenPlaced", entity.TokenPlacement{Location: "9", Color: "1"}).Return().Once()

		// When: the server announces a token
		session.handleMessage([]byte(`{"action": "PLAY_TOKEN", "location": 9, "color": 1}`))

		// Then: the store is untouched
		assert.Equal(t, entity.GameStatus{}, session.store.Current())
	})

	t.Run("Status updates are merged and the diff is rendered", func(t *testing.T) {
		// Given: a session
		session, renderer, _ := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return().Twice()

		// When: two partial updates arrive
		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"to_move": "red", "moves_left": 3}}`))
		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"moves_left": 2}}`))

		// Then: the snapshot accumulates and the last diff only reports moves left
		turn, ok := session.store.Current().Turn()
		require.True(t, ok)
		assert.Equal(t, entity.PlayerColor("red"), turn)
		assert.Equal(t, 2, *session.store.Current().MovesLeft)

		last := renderer.Calls[len(renderer.Calls)-1]
		diff, ok := last.Arguments.Get(1).(entity.StatusDiff)
		require.True(t, ok)
		assert.Nil(t, diff.TurnChanged)
		assert.Equal(t, 2, *diff.MovesLeftChanged)
	})

	t.Run("Completion is rendered with the scores", func(t *testing.T) {
		// Given: a session with an active turn
		session, renderer, _ := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return()
		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"to_move": "red"}}`))

		// When: the game completes
		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"game_complete": true, "score_1": 5, "score_2": 3}}`))

		// Then: the diff reports the final score and the turn is retained
		last := renderer.Calls[len(renderer.Calls)-1]
		diff, ok := last.Arguments.Get(1).(entity.StatusDiff)
		require.True(t, ok)
		assert.Equal(t, &entity.FinalScore{Score1: 5, Score2: 3}, diff.Completed)
		turn, _ := session.store.Current().Turn()
		assert.Equal(t, entity.PlayerColor("red"), turn)
	})

	t.Run("Repeated status updates render nothing new", func(t *testing.T) {
		session, renderer, _ := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return().Once()

		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"moves_left": 1}}`))
		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"moves_left": 1}}`))
	})

	t.Run("Unknown actions are dropped", func(t *testing.T) {
		// Given: a session
		session, _, _ := newTestSession(t)

		// When: an unknown action arrives
		session.handleMessage([]byte(`{"action": "FOO"}`))

		// Then: nothing is rendered and the store is unchanged
		assert.Equal(t, entity.GameStatus{}, session.store.Current())
		assert.False(t, session.closed)
	})

	t.Run("Malformed messages are dropped and the session stays open", func(t *testing.T) {
		// Given: a session
		session, renderer, _ := newTestSession(t)
		renderer.On("OnTokenPlaced", mock.Anything).Return().Once()

		// When: a broken message is followed by a valid one
		session.handleMessage([]byte(`{"location": 1}`))
		session.handleMessage([]byte(`not json`))
		session.handleMessage([]byte(`{"action": "PLAY_TOKEN", "location": 1, "color": 2}`))

		// Then: only the valid one is rendered
		assert.False(t, session.closed)
	})
}

func TestSession_HandleClose(t *testing.T) {
	t.Run("Notifies the renderer exactly once", func(t *testing.T) {
		// Given: a session
		session, renderer, _ := newTestSession(t)
		renderer.On("OnChannelClosed", errConnectionReset).Return().Once()

		// When: the close is reported twice
		session.handleClose(errConnectionReset)
		session.handleClose(nil)

		// Then: the session is closed
		assert.True(t, session.closed)
	})

	t.Run("Ignores messages after close", func(t *testing.T) {
		// Given: a session whose loop stopped on close
		session, renderer, _ := newTestSession(t)
		renderer.On("OnChannelClosed", nil).Return().Once()
		session.Closed(nil)
		require.NoError(t, session.Run(context.Background()))

		// When: a status update arrives anyway
		session.Deliver([]byte(`{"action": "NEW_GAME_STATUS", "status": {"moves_left": 4}}`))

		// Then: the store is untouched
		assert.Nil(t, session.store.Current().MovesLeft)
	})
}

func TestSession_Click(t *testing.T) {
	ctx := context.Background()

	t.Run("Sends PLAY_TOKEN with the color to move", func(t *testing.T) {
		// Given: a session where player 2 is to move
		session, renderer, sender := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return()
		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"to_move": 2, "moves_left": 2}}`))

		sender.On("Send", mock.Anything, mock.MatchedBy(func(message []byte) bool {
			return string(message) == `{"action":"PLAY_TOKEN","location":31,"color":2}`
		})).Return(nil).Once()

		// When: the user clicks cell 31
		color, err := session.click(ctx, "31")

		// Then: the action is sent for player 2
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerColor("2"), color)
	})

	t.Run("Returns ErrChannelClosed after close and leaves the store alone", func(t *testing.T) {
		// Given: a closed session that had a turn
		session, renderer, _ := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return()
		renderer.On("OnChannelClosed", nil).Return().Once()
		session.Deliver([]byte(`{"action": "NEW_GAME_STATUS", "status": {"to_move": 1}}`))
		session.Closed(nil)
		require.NoError(t, session.Run(ctx))
		before := session.store.Current()

		// When: the user clicks
		_, err := session.Click(ctx, "4")

		// Then: the send fails without touching anything
		require.ErrorIs(t, err, apperror.ErrChannelClosed)
		assert.Equal(t, before, session.store.Current())
	})

	t.Run("Sends without a color before any status", func(t *testing.T) {
		// Given: a session that never heard about a turn
		session, _, sender := newTestSession(t)
		sender.On("Send", mock.Anything, mock.MatchedBy(func(message []byte) bool {
			return string(message) == `{"action":"PLAY_TOKEN","location":4}`
		})).Return(nil).Once()

		// When: the user clicks
		color, err := session.click(ctx, "4")

		// Then: the move is sent and the server decides
		require.NoError(t, err)
		assert.Empty(t, color)
	})

	t.Run("Reports transport failures", func(t *testing.T) {
		session, renderer, sender := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return()
		session.handleMessage([]byte(`{"action": "NEW_GAME_STATUS", "status": {"to_move": 1}}`))
		sender.On("Send", mock.Anything, mock.Anything).Return(errConnectionReset).Once()

		_, err := session.click(ctx, "4")

		assert.ErrorIs(t, err, errConnectionReset)
	})
}

func TestSession_Run(t *testing.T) {
	t.Run("Handles events in order and stops after close", func(t *testing.T) {
		// Given: a running session
		session, renderer, sender := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return()
		renderer.On("OnTokenPlaced", mock.Anything).Return().Once()
		renderer.On("OnChannelClosed", nil).Return().Once()
		sender.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		runErr := make(chan error, 1)
		go func() {
			runErr <- session.Run(context.Background())
		}()

		// When: messages, a click and the close are queued
		session.Deliver([]byte(`{"action": "NEW_GAME_STATUS", "status": {"to_move": 1, "moves_left": 1}}`))
		color, err := session.Click(context.Background(), "2")
		require.NoError(t, err)
		session.Deliver([]byte(`{"action": "PLAY_TOKEN", "location": 2, "color": 1}`))
		session.Deliver([]byte(`{"action": "NEW_GAME_STATUS", "status": {"to_move": 2, "moves_left": 2}}`))
		session.Closed(nil)

		// Then: Run returns and every message was applied in order
		select {
		case err = <-runErr:
			require.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("session did not stop after close")
		}

		assert.Equal(t, entity.PlayerColor("1"), color)
		turn, _ := session.store.Current().Turn()
		assert.Equal(t, entity.PlayerColor("2"), turn)

		methods := make([]string, 0, len(renderer.Calls))
		for _, call := range renderer.Calls {
			methods = append(methods, call.Method)
		}
		assert.Equal(t, []string{"OnStatusDiff", "OnTokenPlaced", "OnStatusDiff", "OnChannelClosed"}, methods)

		// And: clicks after the loop ended fail with ErrChannelClosed
		_, err = session.Click(context.Background(), "3")
		assert.ErrorIs(t, err, apperror.ErrChannelClosed)
	})

	t.Run("Seeded status is merged before channel messages", func(t *testing.T) {
		// Given: a session seeded with the page status, then a server message
		session, renderer, sender := newTestSession(t)
		renderer.On("OnStatusDiff", mock.Anything, mock.Anything).Return().Twice()
		renderer.On("OnChannelClosed", nil).Return().Once()
		sender.On("Send", mock.Anything, mock.MatchedBy(func(message []byte) bool {
			return string(message) == `{"action":"PLAY_TOKEN","location":5,"color":1}`
		})).Return(nil).Once()

		moves := 1
		toMove := entity.PlayerColor("1")
		session.Seed(protocol.StatusUpdate{Patch: entity.StatusPatch{ToMove: &toMove, MovesLeft: &moves}})

		runErr := make(chan error, 1)
		go func() {
			runErr <- session.Run(context.Background())
		}()

		// When: the user clicks before the server sends anything
		color, err := session.Click(context.Background(), "5")

		// Then: the seeded turn is used
		require.NoError(t, err)
		assert.Equal(t, toMove, color)

		// And: later server updates merge on top of the seed
		session.Deliver([]byte(`{"action": "NEW_GAME_STATUS", "status": {"moves_left": 2}}`))
		session.Closed(nil)
		require.NoError(t, <-runErr)

		turn, _ := session.store.Current().Turn()
		assert.Equal(t, toMove, turn)
		assert.Equal(t, 2, *session.store.Current().MovesLeft)
	})

	t.Run("Context cancellation closes the session once", func(t *testing.T) {
		session, renderer, _ := newTestSession(t)
		renderer.On("OnChannelClosed", nil).Return().Once()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, session.Run(ctx))
		session.Closed(errConnectionReset)
	})
}
