package apperror

import "errors"

var (
	ErrMalformedMessage  = errors.New("malformed message")
	ErrChannelClosed     = errors.New("channel is closed")
	ErrInvalidCell       = errors.New("invalid cell")
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	ErrInvalidGameURL    = errors.New("invalid game url")
	ErrInvalidConfig     = errors.New("invalid config")
	ErrStatusNotEmbedded = errors.New("game page has no embedded status")
)
