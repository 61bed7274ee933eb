package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/gatherhub/server/internal/config"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/calendar/v3"
	DefaultTimeout = 10 * time.Second

	// The calendar API is over-fetched so cancelled or all-day entries
	// filtered client-side still leave enough results.
	overfetchFactor = 5
)

var (
	// ErrNoCredentials reports a missing or unreadable stored credentials
	// file. The file is produced out of band by an interactive OAuth flow.
	ErrNoCredentials = errors.New("calendar credentials unavailable")
	ErrNoEvents      = errors.New("no upcoming events")
)

type credentials struct {
	AccessToken string `json:"access_token"`
}

// Client reads upcoming entries from a Google Calendar using a stored OAuth
// access token.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	calendarID      string
	credentialsFile string
	now             func() time.Time
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(cfg config.CalendarConfig, opts ...Option) *Client {
	client := &Client{
		httpClient:      &http.Client{Timeout: DefaultTimeout},
		baseURL:         cfg.BaseURL,
		calendarID:      cfg.CalendarID,
		credentialsFile: cfg.CredentialsFile,
		now:             time.Now,
	}
	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type listResponse struct {
	Items []map[string]any `json:"items"`
}

// UpcomingEvents returns the calendar entries starting from now, ordered by
// start time. The API is asked for numEvents*5 entries and everything it
// sends back is returned. numEvents defaults to 10 when non-positive.
func (c *Client) UpcomingEvents(ctx context.Context, numEvents int) ([]map[string]any, error) {
	if numEvents <= 0 {
		numEvents = 10
	}

	raw, err := os.ReadFile(c.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredentials, err)
	}
	var creds credentials
	if err := json.Unmarshal(raw, &creds); err != nil || creds.AccessToken == "" {
		return nil, ErrNoCredentials
	}

	params := url.Values{}
	params.Set("timeMin", c.now().UTC().Format(time.RFC3339))
	params.Set("maxResults", strconv.Itoa(numEvents*overfetchFactor))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(c.calendarID), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar api returned status %d", resp.StatusCode)
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}
	if len(list.Items) == 0 {
		return nil, ErrNoEvents
	}
	return list.Items, nil
}
