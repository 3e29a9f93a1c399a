package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidToken = errors.New("token must be a string or a number")

// PlayerColor - identity of a token owner. The server sends 1 and 2, other servers may use names.
type PlayerColor string

// CellID - identifier of a board cell.
type CellID string

func (that PlayerColor) MarshalJSON() ([]byte, error) {
	return marshalToken(string(that))
}

func (that *PlayerColor) UnmarshalJSON(data []byte) error {
	value, err := unmarshalToken(data)
	if err != nil {
		return fmt.Errorf("player color: %w", err)
	}

	*that = PlayerColor(value)

	return nil
}

func (that CellID) MarshalJSON() ([]byte, error) {
	return marshalToken(string(that))
}

func (that *CellID) UnmarshalJSON(data []byte) error {
	value, err := unmarshalToken(data)
	if err != nil {
		return fmt.Errorf("cell id: %w", err)
	}

	*that = CellID(value)

	return nil
}

// marshalToken writes canonical integers as JSON numbers and everything else as strings.
func marshalToken(value string) ([]byte, error) {
	if n, err := strconv.Atoi(value); err == nil && strconv.Itoa(n) == value {
		return []byte(value), nil
	}

	return json.Marshal(value) //nolint: wrapcheck // marshaling a string never fails
}

func unmarshalToken(data []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return "", fmt.Errorf("failed to decode token: %w", err)
	}

	switch value := raw.(type) {
	case string:
		return value, nil
	case json.Number:
		return value.String(), nil
	default:
		return "", ErrInvalidToken
	}
}
