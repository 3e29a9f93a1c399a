package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/voro-client/internal/entity"
)

const (
	EventTokenPlaced   = "token_placed"
	EventStatus        = "status"
	EventChannelClosed = "channel_closed"

	publishTimeout = 2 * time.Second
)

// Envelope - what subscribers receive on the game channel.
type Envelope struct {
	Session string          `json:"session"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

type StatusData struct {
	Status entity.GameStatus `json:"status"`
	Diff   entity.StatusDiff `json:"diff"`
}

type ClosedData struct {
	Error string `json:"error,omitempty"`
}

type snapshotStore interface {
	Save(ctx context.Context, channel string, status entity.GameStatus) error
	Delete(ctx context.Context, channel string) error
}

// Publisher - republishes game events on a redis pub/sub channel so other local processes can follow the game.
type Publisher struct {
	logger  *slog.Logger
	client  *redis.Client
	channel string
	session string

	// snapshots is optional; when set the latest status is stored next to the channel while the session lasts.
	snapshots snapshotStore
}

func NewPublisher(logger *slog.Logger, client *redis.Client, channel, session string, snapshots snapshotStore) *Publisher {
	return &Publisher{
		logger:    logger.With("component", "redis-publisher", "channel", channel),
		client:    client,
		channel:   channel,
		session:   session,
		snapshots: snapshots,
	}
}

// ChannelName - builds the pub/sub channel for a game page, e.g. "voro:/games/3".
func ChannelName(prefix, gameURL string) string {
	path := gameURL
	if parsed, err := url.Parse(gameURL); err == nil && parsed.Path != "" {
		path = parsed.Path
	}

	return prefix + ":" + path
}

func (that *Publisher) OnTokenPlaced(placement entity.TokenPlacement) {
	that.publish(EventTokenPlaced, placement)
}

func (that *Publisher) OnStatusDiff(status entity.GameStatus, diff entity.StatusDiff) {
	if that.snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := that.snapshots.Save(ctx, that.channel, status); err != nil {
			that.logger.Error("failed to save status snapshot", "method", "OnStatusDiff", "error", err)
		}
	}

	that.publish(EventStatus, StatusData{Status: status, Diff: diff})
}

// OnChannelClosed - drops the snapshot, then tells subscribers the game is over for this session.
func (that *Publisher) OnChannelClosed(err error) {
	if that.snapshots != nil {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if deleteErr := that.snapshots.Delete(ctx, that.channel); deleteErr != nil {
			that.logger.Error("failed to delete status snapshot", "method", "OnChannelClosed", "error", deleteErr)
		}
	}

	data := ClosedData{}
	if err != nil {
		data.Error = err.Error()
	}

	that.publish(EventChannelClosed, data)
}

func (that *Publisher) publish(event string, data any) {
	log := that.logger.With("method", "publish", "event", event)

	message, err := that.marshal(event, data)
	if err != nil {
		log.Error("failed to marshal event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err = that.client.Publish(ctx, that.channel, message).Err(); err != nil {
		log.Error("failed to publish event", "error", err)
	}
}

func (that *Publisher) marshal(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("could not marshal %s data: %w", event, err)
	}

	message, err := json.Marshal(Envelope{
		Session: that.session,
		Event:   event,
		Data:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal envelope: %w", err)
	}

	return message, nil
}
