package entity

import (
	"fmt"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
)

const (
	ActionPlayToken     = "PLAY_TOKEN"
	ActionNewGameStatus = "NEW_GAME_STATUS"
)

// TokenPlacement - a token shown on a board cell. It is rendered and then forgotten.
type TokenPlacement struct {
	Location CellID      `json:"location"`
	Color    PlayerColor `json:"color"`
}

// OutboundAction - a move requested by the local player.
type OutboundAction struct {
	Action   string      `json:"action"`
	Location CellID      `json:"location"`
	Color    PlayerColor `json:"color,omitempty"`
}

// NewPlayTokenAction - builds a PLAY_TOKEN action for the given cell using the color captured
// from the status at click time. Without a player to move the color is left out and the server decides.
func NewPlayTokenAction(location CellID, status GameStatus) (OutboundAction, error) {
	if location == "" {
		return OutboundAction{}, fmt.Errorf("%w: empty location", apperror.ErrInvalidCell)
	}

	color, _ := status.Turn()

	return OutboundAction{
		Action:   ActionPlayToken,
		Location: location,
		Color:    color,
	}, nil
}
