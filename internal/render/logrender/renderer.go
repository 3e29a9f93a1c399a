package logrender

import (
	"log/slog"

	"github.com/rocketscienceinc/voro-client/internal/entity"
)

// Renderer - writes game events to the log. Used when no terminal UI is attached.
type Renderer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Renderer {
	return &Renderer{
		logger: logger.With("component", "renderer"),
	}
}

func (that *Renderer) OnTokenPlaced(placement entity.TokenPlacement) {
	that.logger.Info("token placed", "location", string(placement.Location), "color", string(placement.Color))
}

func (that *Renderer) OnStatusDiff(status entity.GameStatus, diff entity.StatusDiff) {
	args := make([]any, 0, 8)

	if diff.TurnChanged != nil {
		to := "none"
		if diff.TurnChanged.To != nil {
			to = string(*diff.TurnChanged.To)
		}
		args = append(args, "to_move", to)
	}

	if diff.MovesLeftChanged != nil {
		args = append(args, "moves_left", *diff.MovesLeftChanged)
	}

	if change := diff.ConnectionsRemainingChanged; change != nil {
		if change.Cleared {
			args = append(args, "border_filled", false)
		} else {
			args = append(args, "border_filled", true, "connections_remaining", change.Value)
		}
	}

	if diff.Completed != nil {
		that.logger.Info("game complete",
			slog.Group("score", "player_1", diff.Completed.Score1, "player_2", diff.Completed.Score2))
	}

	if len(args) > 0 {
		that.logger.Info("status changed", args...)
	}

	that.logger.Debug("status snapshot", "status", status)
}

func (that *Renderer) OnChannelClosed(err error) {
	if err != nil {
		that.logger.Warn("connection to the game lost", "error", err)
		return
	}

	that.logger.Info("connection to the game closed")
}
