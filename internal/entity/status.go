package entity

// GameStatus - snapshot of the game status as last reported by the server.
// Every field is optional; nil means the server never reported it (or cleared it).
type GameStatus struct {
	ToMove               *PlayerColor `json:"to_move,omitempty"`
	MovesLeft            *int         `json:"moves_left,omitempty"`
	ConnectionsRemaining *int         `json:"connections_remaining,omitempty"`
	BorderFull           *bool        `json:"border_full,omitempty"`
	GameComplete         *bool        `json:"game_complete,omitempty"`
	Score1               *int         `json:"score_1,omitempty"`
	Score2               *int         `json:"score_2,omitempty"`
}

// StatusPatch - partial status update. Only non-nil fields overwrite the snapshot.
type StatusPatch struct {
	ToMove               *PlayerColor
	MovesLeft            *int
	ConnectionsRemaining *int
	BorderFull           *bool
	GameComplete         *bool
	Score1               *int
	Score2               *int

	// ClearConnections is set when the server explicitly sent connections_remaining as null.
	ClearConnections bool
}

// TurnChange - the player to move before and after a merge. Nil means nobody.
type TurnChange struct {
	From *PlayerColor `json:"from,omitempty"`
	To   *PlayerColor `json:"to,omitempty"`
}

// ConnectionsChange - new connections counter, or Cleared when the bordered state ended.
type ConnectionsChange struct {
	Value   int  `json:"value"`
	Cleared bool `json:"cleared,omitempty"`
}

type FinalScore struct {
	Score1 int `json:"score_1"`
	Score2 int `json:"score_2"`
}

// StatusDiff - observable facets changed by one merge.
type StatusDiff struct {
	TurnChanged                 *TurnChange        `json:"turn_changed,omitempty"`
	MovesLeftChanged            *int               `json:"moves_left_changed,omitempty"`
	ConnectionsRemainingChanged *ConnectionsChange `json:"connections_remaining_changed,omitempty"`
	Completed                   *FinalScore        `json:"completed,omitempty"`
}

func (that StatusDiff) IsEmpty() bool {
	return that.TurnChanged == nil &&
		that.MovesLeftChanged == nil &&
		that.ConnectionsRemainingChanged == nil &&
		that.Completed == nil
}

// Turn - returns the player to move, if there is one.
func (that GameStatus) Turn() (PlayerColor, bool) {
	if that.ToMove == nil {
		return "", false
	}

	return *that.ToMove, true
}

// BorderFilled - reports whether the connections counter is being shown.
func (that GameStatus) BorderFilled() bool {
	return that.ConnectionsRemaining != nil
}

func (that GameStatus) IsComplete() bool {
	return that.GameComplete != nil && *that.GameComplete
}

// Clone - returns a copy that shares no memory with the receiver.
func (that GameStatus) Clone() GameStatus {
	return GameStatus{
		ToMove:               clonePtr(that.ToMove),
		MovesLeft:            clonePtr(that.MovesLeft),
		ConnectionsRemaining: clonePtr(that.ConnectionsRemaining),
		BorderFull:           clonePtr(that.BorderFull),
		GameComplete:         clonePtr(that.GameComplete),
		Score1:               clonePtr(that.Score1),
		Score2:               clonePtr(that.Score2),
	}
}

// Apply - merges the patch into a copy of the status and reports what changed.
// The receiver is left untouched.
func (that GameStatus) Apply(patch StatusPatch) (GameStatus, StatusDiff) {
	next := that.Clone()
	var diff StatusDiff

	if patch.ToMove != nil {
		next.ToMove = clonePtr(patch.ToMove)
		if !equalPtr(that.ToMove, patch.ToMove) {
			diff.TurnChanged = &TurnChange{From: clonePtr(that.ToMove), To: clonePtr(patch.ToMove)}
		}
	}

	if patch.MovesLeft != nil {
		next.MovesLeft = clonePtr(patch.MovesLeft)
		if !equalPtr(that.MovesLeft, patch.MovesLeft) {
			diff.MovesLeftChanged = clonePtr(patch.MovesLeft)
		}
	}

	if patch.BorderFull != nil {
		next.BorderFull = clonePtr(patch.BorderFull)
	}

	switch {
	case patch.ConnectionsRemaining != nil:
		next.ConnectionsRemaining = clonePtr(patch.ConnectionsRemaining)
		if !equalPtr(that.ConnectionsRemaining, patch.ConnectionsRemaining) {
			diff.ConnectionsRemainingChanged = &ConnectionsChange{Value: *patch.ConnectionsRemaining}
		}
	case patch.ClearConnections, patch.BorderFull != nil && !*patch.BorderFull:
		if that.ConnectionsRemaining != nil {
			diff.ConnectionsRemainingChanged = &ConnectionsChange{Cleared: true}
		}
		next.ConnectionsRemaining = nil
	}

	if patch.GameComplete != nil {
		next.GameComplete = clonePtr(patch.GameComplete)
	}
	if patch.Score1 != nil {
		next.Score1 = clonePtr(patch.Score1)
	}
	if patch.Score2 != nil {
		next.Score2 = clonePtr(patch.Score2)
	}

	if next.IsComplete() {
		scoresChanged := !equalPtr(that.Score1, next.Score1) || !equalPtr(that.Score2, next.Score2)
		if !that.IsComplete() || scoresChanged {
			diff.Completed = &FinalScore{Score1: deref(next.Score1), Score2: deref(next.Score2)}
		}
	}

	return next, diff
}

func clonePtr[T any](value *T) *T {
	if value == nil {
		return nil
	}

	out := *value

	return &out
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func deref[T any](value *T) T {
	var zero T
	if value == nil {
		return zero
	}

	return *value
}
