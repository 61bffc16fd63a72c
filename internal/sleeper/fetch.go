package sleeper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.sleeper.app/v1"
	defaultSport   = "nfl"
	defaultTimeout = 60 * time.Second
	defaultUA      = "sleeper-sync/1.0"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the read-only Sleeper REST API.
type Client struct {
	base  string
	sport string
	ua    string
	http  httpDoer
}

type Option func(*Client)

func WithHTTPClient(d httpDoer) Option { return func(c *Client) { c.http = d } }
func WithSport(s string) Option        { return func(c *Client) { c.sport = s } }
func WithUserAgent(ua string) Option   { return func(c *Client) { c.ua = ua } }

// NewClient builds a client rooted at baseURL; every request carries timeout.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		base:  strings.TrimSuffix(baseURL, "/"),
		sport: defaultSport,
		ua:    defaultUA,
		http:  &http.Client{Timeout: timeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetUser looks up a member by username or user_id. Sleeper answers an
// unknown handle with 200 and a JSON null, which decodes to a zero User.
func (c *Client) GetUser(ctx context.Context, usernameOrID string) (User, error) {
	var u User
	err := c.getJSON(ctx, "/user/"+url.PathEscape(usernameOrID), &u)
	return u, err
}

func (c *Client) GetUserLeagues(ctx context.Context, userID string, season int) ([]League, error) {
	var out []League
	err := c.getJSON(ctx, fmt.Sprintf("/user/%s/leagues/%s/%d", url.PathEscape(userID), c.sport, season), &out)
	return out, err
}

func (c *Client) GetLeagueUsers(ctx context.Context, leagueID string) ([]User, error) {
	var out []User
	err := c.getJSON(ctx, "/league/"+url.PathEscape(leagueID)+"/users", &out)
	return out, err
}

func (c *Client) GetLeagueRosters(ctx context.Context, leagueID string) ([]Roster, error) {
	var out []Roster
	err := c.getJSON(ctx, "/league/"+url.PathEscape(leagueID)+"/rosters", &out)
	return out, err
}

// FetchPlayers downloads the whole player directory in one request (several MB).
func (c *Client) FetchPlayers(ctx context.Context) (Directory, error) {
	var out Directory
	if err := c.getJSON(ctx, "/players/"+c.sport, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Directory{}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamError{URL: u, Err: err}
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{URL: u, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &UpstreamError{URL: u, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
