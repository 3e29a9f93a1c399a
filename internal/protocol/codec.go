package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
	"github.com/rocketscienceinc/voro-client/internal/entity"
)

var errNotInteger = errors.New("value is not an integer")

type envelope map[string]json.RawMessage

var decoders = map[string]func(envelope) (Event, error){
	entity.ActionPlayToken:     decodeTokenPlaced,
	entity.ActionNewGameStatus: decodeStatusUpdate,
}

// Decode - parses a raw message into an Event.
// Returns ErrMalformedMessage when the message is not an object with a string action,
// or when a known action lacks its payload. Unknown actions are not an error.
func Decode(raw []byte) (Event, error) {
	var fields envelope
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", apperror.ErrMalformedMessage)
	}

	actionRaw, ok := present(fields, "action")
	if !ok {
		return nil, fmt.Errorf("%w: missing action", apperror.ErrMalformedMessage)
	}

	var action string
	if err := json.Unmarshal(actionRaw, &action); err != nil {
		return nil, fmt.Errorf("%w: action is not a string", apperror.ErrMalformedMessage)
	}

	if action == "" {
		return nil, fmt.Errorf("%w: empty action", apperror.ErrMalformedMessage)
	}

	decoder, ok := decoders[action]
	if !ok {
		return Unknown{Action: action}, nil
	}

	return decoder(fields)
}

// Encode - serializes an outbound action to the wire format.
func Encode(action entity.OutboundAction) ([]byte, error) {
	if action.Action == "" {
		action.Action = entity.ActionPlayToken
	}

	data, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action: %w", err)
	}

	return data, nil
}

func decodeTokenPlaced(fields envelope) (Event, error) {
	location, ok := present(fields, "location")
	if !ok {
		return nil, fmt.Errorf("%w: %s without location", apperror.ErrMalformedMessage, entity.ActionPlayToken)
	}

	colorRaw, ok := present(fields, "color")
	if !ok {
		return nil, fmt.Errorf("%w: %s without color", apperror.ErrMalformedMessage, entity.ActionPlayToken)
	}

	var placement entity.TokenPlacement
	if err := json.Unmarshal(location, &placement.Location); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	if err := json.Unmarshal(colorRaw, &placement.Color); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrMalformedMessage, err)
	}

	return TokenPlaced{TokenPlacement: placement}, nil
}

func decodeStatusUpdate(fields envelope) (Event, error) {
	statusRaw, ok := present(fields, "status")
	if !ok {
		return nil, fmt.Errorf("%w: %s without status", apperror.ErrMalformedMessage, entity.ActionNewGameStatus)
	}

	update, err := DecodeStatus(statusRaw)
	if err != nil {
		return nil, err
	}

	return update, nil
}

// DecodeStatus - parses a bare status object, as embedded in the game page, into a StatusUpdate.
func DecodeStatus(raw []byte) (StatusUpdate, error) {
	var status envelope
	if err := json.Unmarshal(raw, &status); err != nil || status == nil {
		return StatusUpdate{}, fmt.Errorf("%w: status is not an object", apperror.ErrMalformedMessage)
	}

	var update StatusUpdate

	for key, value := range status {
		if isNull(value) {
			// null clears the border counter; for every other key it carries no information
			if key == keyConnectionsRemaining {
				update.Patch.ClearConnections = true
			}
			continue
		}

		var err error

		switch key {
		case keyToMove:
			update.Patch.ToMove, err = decodeValue[entity.PlayerColor](value)
		case keyMovesLeft:
			update.Patch.MovesLeft, err = decodeInt(value)
		case keyConnectionsRemaining:
			update.Patch.ConnectionsRemaining, err = decodeInt(value)
		case keyBorderFull:
			update.Patch.BorderFull, err = decodeValue[bool](value)
		case keyGameComplete:
			update.Patch.GameComplete, err = decodeValue[bool](value)
		case keyScore1:
			update.Patch.Score1, err = decodeInt(value)
		case keyScore2:
			update.Patch.Score2, err = decodeInt(value)
		}

		if err != nil {
			update.Skipped = append(update.Skipped, key)
		}
	}

	slices.Sort(update.Skipped)

	return update, nil
}

func present(fields envelope, key string) (json.RawMessage, bool) {
	value, ok := fields[key]
	if !ok || isNull(value) {
		return nil, false
	}

	return value, true
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func decodeValue[T any](raw json.RawMessage) (*T, error) {
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	return &value, nil
}

// decodeInt accepts integral JSON numbers (including 3.0) and numeric strings.
func decodeInt(raw json.RawMessage) (*int, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode integer: %w", err)
	}

	var text string

	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = v
	default:
		return nil, errNotInteger
	}

	if n, err := strconv.Atoi(text); err == nil {
		return &n, nil
	}

	// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return nil, errNotInteger
	}

	n := int(f)

	return &n, nil
}
