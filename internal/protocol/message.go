package protocol

import (
	"github.com/rocketscienceinc/voro-client/internal/entity"
)

// Status keys sent inside NEW_GAME_STATUS.
const (
	keyToMove               = "to_move"
	keyMovesLeft            = "moves_left"
	keyConnectionsRemaining = "connections_remaining"
	keyBorderFull           = "border_full"
	keyGameComplete         = "game_complete"
	keyScore1               = "score_1"
	keyScore2               = "score_2"
)

// Event - a decoded inbound message.
type Event interface {
	isEvent()
}

// TokenPlaced - a token was placed on the board.
type TokenPlaced struct {
	entity.TokenPlacement
}

func (TokenPlaced) isEvent() {}

// StatusUpdate - partial game status to merge into the snapshot.
// Skipped lists status keys that were dropped because their values had the wrong type.
type StatusUpdate struct {
	Patch   entity.StatusPatch
	Skipped []string
}

func (StatusUpdate) isEvent() {}

// Unknown - a message with an action this client does not handle.
type Unknown struct {
	Action string
}

func (Unknown) isEvent() {}
