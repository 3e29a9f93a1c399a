package page

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rocketscienceinc/voro-client/internal/apperror"
	"github.com/rocketscienceinc/voro-client/internal/protocol"
)

const (
	maxPageSize = 1 << 20

	// statusCall is how the game page hands its status to the board script.
	statusCall = "set_status("
)

// NewJar - cookie jar holding the player's cookies for the game host, e.g. "session=abc".
// The same jar is used for the page request and the websocket handshake.
func NewJar(pageURL, cookies string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not create cookie jar: %w", err)
	}

	if cookies == "" {
		return jar, nil
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidGameURL, err)
	}

	parsed, err := http.ParseCookie(cookies)
	if err != nil {
		return nil, fmt.Errorf("could not parse cookies: %w", err)
	}

	for _, cookie := range parsed {
		cookie.Path = "/"
	}

	jar.SetCookies(parsedURL, parsed)

	return jar, nil
}

// Fetcher - loads the game page to read the status it was rendered with.
type Fetcher struct {
	logger *slog.Logger
	client *http.Client
}

func NewFetcher(logger *slog.Logger, jar http.CookieJar, timeout time.Duration) *Fetcher {
	return &Fetcher{
		logger: logger.With("component", "page"),
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}
}

// InitialStatus - fetches the page and decodes the embedded status.
// Returns ErrStatusNotEmbedded when the page carries none.
func (that *Fetcher) InitialStatus(ctx context.Context, pageURL string) (protocol.StatusUpdate, error) {
	log := that.logger.With("method", "InitialStatus", "url", pageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return protocol.StatusUpdate{}, fmt.Errorf("could not build page request: %w", err)
	}

	resp, err := that.client.Do(req)
	if err != nil {
		return protocol.StatusUpdate{}, fmt.Errorf("could not fetch game page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return protocol.StatusUpdate{}, fmt.Errorf("could not fetch game page: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return protocol.StatusUpdate{}, fmt.Errorf("could not read game page: %w", err)
	}

	raw, err := ExtractStatus(body)
	if err != nil {
		return protocol.StatusUpdate{}, err
	}

	update, err := protocol.DecodeStatus(raw)
	if err != nil {
		return protocol.StatusUpdate{}, fmt.Errorf("could not decode page status: %w", err)
	}

	log.Debug("initial status read", "status", string(raw))

	return update, nil
}

// ExtractStatus - finds the JSON object passed to set_status in the page.
// Calls whose argument is not an object literal, like the function definition, are skipped.
func ExtractStatus(body []byte) ([]byte, error) {
	rest := body

	for {
		index := bytes.Index(rest, []byte(statusCall))
		if index < 0 {
			return nil, apperror.ErrStatusNotEmbedded
		}

		rest = rest[index+len(statusCall):]

		var raw json.RawMessage
		if err := json.NewDecoder(bytes.NewReader(rest)).Decode(&raw); err != nil {
			continue
		}

		if raw = bytes.TrimSpace(raw); len(raw) > 0 && raw[0] == '{' {
			return raw, nil
		}
	}
}
