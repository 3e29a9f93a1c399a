package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 10 * time.Second
)

// inbox - receives everything read from the channel, in order.
type inbox interface {
	Deliver(raw []byte)
	Closed(err error)
}

type Options struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	// Jar supplies the cookies sent with the handshake; the server finds the player by its session cookie.
	Jar http.CookieJar
}

// Client - the persistent channel to the game server.
type Client struct {
	logger   *slog.Logger
	endpoint string
	options  Options

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

func New(logger *slog.Logger, endpoint string, options Options) *Client {
	if options.HandshakeTimeout <= 0 {
		options.HandshakeTimeout = defaultHandshakeTimeout
	}

	if options.WriteTimeout <= 0 {
		options.WriteTimeout = defaultWriteTimeout
	}

	return &Client{
		logger:   logger.With("component", "websocket", "endpoint", endpoint),
		endpoint: endpoint,
		options:  options,
		done:     make(chan struct{}),
	}
}

// Connect - dials the server and starts handing inbound messages to the inbox.
func (that *Client) Connect(ctx context.Context, inbox inbox) error {
	log := that.logger.With("method", "Connect")

	dialer := websocket.Dialer{
		HandshakeTimeout: that.options.HandshakeTimeout,
		Jar:              that.options.Jar,
	}

	conn, resp, err := dialer.DialContext(ctx, that.endpoint, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", that.endpoint, err)
	}

	that.mu.Lock()
	that.conn = conn
	that.mu.Unlock()

	log.Info("WebSocket connection established")

	go that.readPump(inbox)

	return nil
}

// Send - writes one text message. Returns ErrChannelClosed once the channel is gone.
func (that *Client) Send(ctx context.Context, message []byte) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || that.conn == nil {
		return apperror.ErrChannelClosed
	}

	deadline := time.Now().Add(that.options.WriteTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := that.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// Close - sends a close frame and closes the connection. Safe to call more than once.
func (that *Client) Close() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || that.conn == nil {
		return nil
	}

	that.closed = true

	closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := that.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(that.options.WriteTimeout)); err != nil {
		that.logger.Debug("failed to send close frame", "error", err)
	}

	if err := that.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

// Done - closed when the read pump has stopped.
func (that *Client) Done() <-chan struct{} {
	return that.done
}

func (that *Client) readPump(inbox inbox) {
	log := that.logger.With("method", "readPump")
	defer close(that.done)
	defer func() {
		// Close only writes the close frame while the connection is still marked open
		_ = that.conn.Close()
	}()

	for {
		messageType, message, err := that.conn.ReadMessage()
		if err != nil {
			that.mu.Lock()
			closedLocally := that.closed
			that.closed = true
			that.mu.Unlock()

			if closedLocally || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				inbox.Closed(nil)
				return
			}

			log.Error("WebSocket read failed", "error", err)
			inbox.Closed(err)

			return
		}

		if messageType != websocket.TextMessage {
			log.Debug("ignoring non-text frame", "type", messageType)
			continue
		}

		inbox.Deliver(message)
	}
}
