package websocket

import (
	"fmt"
	"net/url"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
)

// DeriveEndpoint - turns the game page url into the websocket url of the same game.
// http becomes ws, https becomes wss; host and path are kept, query and fragment are dropped.
func DeriveEndpoint(pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperror.ErrInvalidGameURL, err)
	}

	var scheme string

	switch parsed.Scheme {
	case "http", "ws":
		scheme = "ws"
	case "https", "wss":
		scheme = "wss"
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrUnsupportedScheme, parsed.Scheme)
	}

	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", apperror.ErrInvalidGameURL, pageURL)
	}

	endpoint := url.URL{
		Scheme:  scheme,
		Host:    parsed.Host,
		Path:    parsed.Path,
		RawPath: parsed.RawPath,
	}

	return endpoint.String(), nil
}
