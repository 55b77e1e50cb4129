package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/preston-bernstein/mlb-gamefeed-service/internal/domain/games"
	"github.com/preston-bernstein/mlb-gamefeed-service/internal/providers"
)

// Config controls how the client reaches the StatsAPI.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client fetches live game feeds from the MLB StatsAPI.
type Client struct {
	baseURL    string
	httpClient httpDoer
	now        func() time.Time
}

// NewClient constructs a StatsAPI client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		now:        time.Now,
	}
}

// FetchFeed retrieves the live feed for gameID with descriptions in locale.
func (c *Client) FetchFeed(ctx context.Context, gameID, locale string) (games.Feed, error) {
	req, err := c.buildRequest(ctx, gameID, locale)
	if err != nil {
		return games.Feed{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return games.Feed{}, fmt.Errorf("%s: %w", providerName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return games.Feed{}, fmt.Errorf("%w: %s", providers.ErrGameNotFound, gameID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return games.Feed{}, &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			Message:    "statsapi rate limited",
		}
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return games.Feed{}, &providers.StatusError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var payload liveFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return games.Feed{}, fmt.Errorf("%s: decode feed %s: %w", providerName, gameID, err)
	}
	return mapFeed(gameID, payload), nil
}

func (c *Client) buildRequest(ctx context.Context, gameID, locale string) (*http.Request, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, fmt.Errorf("%w: empty game id", providers.ErrGameNotFound)
	}
	endpoint := c.baseURL + fmt.Sprintf(feedPath, url.PathEscape(gameID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if locale == "" {
		locale = defaultLocale
	}
	q := req.URL.Query()
	q.Set("language", locale)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	return req, nil
}
