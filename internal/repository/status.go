package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/voro-client/internal/entity"
)

// statusTTL bounds a snapshot left behind by a client that did not shut down cleanly.
const statusTTL = 2 * time.Hour

var ErrStatusNotFound = errors.New("status not found")

// StatusRepository - keeps the latest status snapshot of a game so late subscribers can catch up.
// The snapshot only lives as long as the session; it is deleted when the channel closes.
type StatusRepository interface {
	Save(ctx context.Context, channel string, status entity.GameStatus) error
	Get(ctx context.Context, channel string) (entity.GameStatus, error)
	Delete(ctx context.Context, channel string) error
}

type dbStatus struct {
	client *redis.Client
}

func NewStatusRepository(client *redis.Client) StatusRepository {
	return &dbStatus{
		client: client,
	}
}

// StatusKey - redis key of the snapshot for a game channel.
func StatusKey(channel string) string {
	return channel + ":status"
}

func (that *dbStatus) Save(ctx context.Context, channel string, status entity.GameStatus) error {
	statusJSON, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("could not marshal status: %w", err)
	}

	if err = that.client.Set(ctx, StatusKey(channel), statusJSON, statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}

	return nil
}

func (that *dbStatus) Get(ctx context.Context, channel string) (entity.GameStatus, error) {
	response, err := that.client.Get(ctx, StatusKey(channel)).Result()

	if errors.Is(err, redis.Nil) {
		return entity.GameStatus{}, ErrStatusNotFound
	}

	if err != nil {
		return entity.GameStatus{}, fmt.Errorf("failed to get status: %w", err)
	}

	var status entity.GameStatus
	if err = json.Unmarshal([]byte(response), &status); err != nil {
		return entity.GameStatus{}, fmt.Errorf("failed to unmarshal status: %w", err)
	}

	return status, nil
}

func (that *dbStatus) Delete(ctx context.Context, channel string) error {
	if err := that.client.Del(ctx, StatusKey(channel)).Err(); err != nil {
		return fmt.Errorf("failed to delete status: %w", err)
	}

	return nil
}
