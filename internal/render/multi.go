package render

import (
	"github.com/rocketscienceinc/voro-client/internal/entity"
	"github.com/rocketscienceinc/voro-client/internal/usecase"
)

// Multi - forwards every event to each renderer in order.
type Multi []usecase.Renderer

func (that Multi) OnTokenPlaced(placement entity.TokenPlacement) {
	for _, renderer := range that {
		renderer.OnTokenPlaced(placement)
	}
}

func (that Multi) OnStatusDiff(status entity.GameStatus, diff entity.StatusDiff) {
	for _, renderer := range that {
		renderer.OnStatusDiff(status.Clone(), diff)
	}
}

func (that Multi) OnChannelClosed(err error) {
	for _, renderer := range that {
		renderer.OnChannelClosed(err)
	}
}
