package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gatherhub/server/internal/config"
)

const (
	DefaultBaseURL = "https://slack.com/api"

	// Join notifications are noise in an announcements feed.
	channelJoinSubtype = "channel_join"
)

var (
	ErrUnfetchable = errors.New("unable to retrieve messages")
	ErrNoMessages  = errors.New("no messages found")
)

// Client reads recent messages from a single Slack channel using a bot
// token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	channel    string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func New(cfg config.SlackConfig, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		channel:    cfg.Channel,
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type historyResponse struct {
	OK       bool             `json:"ok"`
	Error    string           `json:"error"`
	Messages []map[string]any `json:"messages"`
}

// History returns up to numMessages recent channel messages, newest first,
// with channel-join notices filtered out. numMessages defaults to 30 when
// non-positive.
func (c *Client) History(ctx context.Context, numMessages int) ([]map[string]any, error) {
	if numMessages <= 0 {
		numMessages = 30
	}

	params := url.Values{}
	params.Set("channel", c.channel)
	params.Set("limit", strconv.Itoa(numMessages))

	endpoint := fmt.Sprintf("%s/conversations.history?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnfetchable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnfetchable, resp.StatusCode)
	}

	var history historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnfetchable, err)
	}
	if !history.OK {
		return nil, fmt.Errorf("%w: %s", ErrUnfetchable, history.Error)
	}

	filtered := make([]map[string]any, 0, len(history.Messages))
	for _, msg := range history.Messages {
		if subtype, _ := msg["subtype"].(string); subtype == channelJoinSubtype {
			continue
		}
		filtered = append(filtered, msg)
	}
	if len(filtered) > numMessages {
		filtered = filtered[:numMessages]
	}
	if len(filtered) == 0 {
		return nil, ErrNoMessages
	}
	return filtered, nil
}
