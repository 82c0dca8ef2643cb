// Package client is a typed HTTP client for the blackjack API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/server"
)

// Player is a player as returned by the API
type Player = server.PlayerResponse

// APIError is a non-2xx response
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("http %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// IsNotFound reports whether the server answered 404
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsConflict reports whether the server answered 409
func (e *APIError) IsConflict() bool { return e.StatusCode == http.StatusConflict }

// AsAPIError unwraps err to an *APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}

// Client calls the API at a base URL
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client for baseURL, e.g. http://localhost:8080
func NewClient(baseURL string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger.WithPrefix("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewGame starts a game for the named player
func (c *Client) NewGame(ctx context.Context, playerName string) (game.View, error) {
	var v game.View
	err := c.do(ctx, http.MethodPost, "/game/new", server.CreateGameRequest{PlayerName: playerName}, &v)
	return v, err
}

// Game fetches a game
func (c *Client) Game(ctx context.Context, id string) (game.View, error) {
	var v game.View
	err := c.do(ctx, http.MethodGet, "/game/details/"+url.PathEscape(id), nil, &v)
	return v, err
}

// Games lists every game
func (c *Client) Games(ctx context.Context) ([]game.View, error) {
	var vs []game.View
	err := c.do(ctx, http.MethodGet, "/game/all", nil, &vs)
	return vs, err
}

// DeleteGame removes a game
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/game/delete/"+url.PathEscape(id), nil, nil)
}

// Hit draws a card
func (c *Client) Hit(ctx context.Context, id string) (game.View, error) {
	var v game.View
	err := c.do(ctx, http.MethodPost, "/game/"+url.PathEscape(id)+"/hit", nil, &v)
	return v, err
}

// Stand ends the player's turn
func (c *Client) Stand(ctx context.Context, id string) (game.View, error) {
	var v game.View
	err := c.do(ctx, http.MethodPost, "/game/"+url.PathEscape(id)+"/stand", nil, &v)
	return v, err
}

// RegisterPlayer creates a player
func (c *Client) RegisterPlayer(ctx context.Context, name string) (Player, error) {
	var p Player
	err := c.do(ctx, http.MethodPost, "/player/register", server.RegisterPlayerRequest{Name: name}, &p)
	return p, err
}

// PlayerByID fetches a player by id
func (c *Client) PlayerByID(ctx context.Context, id string) (Player, error) {
	var p Player
	err := c.do(ctx, http.MethodGet, "/player/id/"+url.PathEscape(id), nil, &p)
	return p, err
}

// PlayerByName fetches a player by name
func (c *Client) PlayerByName(ctx context.Context, name string) (Player, error) {
	var p Player
	err := c.do(ctx, http.MethodGet, "/player/name/"+url.PathEscape(name), nil, &p)
	return p, err
}

// Players lists every player
func (c *Client) Players(ctx context.Context) ([]Player, error) {
	var ps []Player
	err := c.do(ctx, http.MethodGet, "/player/all", nil, &ps)
	return ps, err
}

// Ranking returns the ranking table
func (c *Client) Ranking(ctx context.Context) ([]player.Standing, error) {
	var rs []player.Standing
	err := c.do(ctx, http.MethodGet, "/player/ranking", nil, &rs)
	return rs, err
}

// RenamePlayer changes a player's name
func (c *Client) RenamePlayer(ctx context.Context, id, newName string) (Player, error) {
	var p Player
	err := c.do(ctx, http.MethodPut, "/player/"+url.PathEscape(id), server.RenamePlayerRequest{NewName: newName}, &p)
	return p, err
}

// DeletePlayer removes a player
func (c *Client) DeletePlayer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/player/delete/"+url.PathEscape(id), nil, nil)
}

// Health checks that the server is up
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Request", "method", method, "path", path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var body server.ErrorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error.Code != "" {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
