package usecase

import "github.com/rocketscienceinc/voro-client/internal/entity"

// GameStateStore - owns the client side copy of the game status.
// It is not safe for concurrent use; the Session loop is its only caller.
type GameStateStore struct {
	status entity.GameStatus
}

func NewGameStateStore() *GameStateStore {
	return &GameStateStore{}
}

// Current - returns a copy of the latest snapshot.
func (that *GameStateStore) Current() entity.GameStatus {
	return that.status.Clone()
}

// ApplyPatch - merges the patch into the snapshot and returns the new snapshot with the diff.
func (that *GameStateStore) ApplyPatch(patch entity.StatusPatch) (entity.GameStatus, entity.StatusDiff) {
	next, diff := that.status.Apply(patch)
	that.status = next

	return next.Clone(), diff
}
