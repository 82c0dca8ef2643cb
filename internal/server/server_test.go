package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newTestServer deals player 10+7 and dealer 9+9, then canonical order
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	d, err := deck.NewStacked(
		deck.NewCard(deck.Hearts, deck.Ten), deck.NewCard(deck.Hearts, deck.Seven),
		deck.NewCard(deck.Clubs, deck.Nine), deck.NewCard(deck.Diamonds, deck.Nine),
	)
	require.NoError(t, err)

	db := memory.New()
	engine := game.NewEngine(db.Games(), db.Players(), testLogger(), game.WithDeckSource(game.FixedDecks(d)))
	players := player.NewService(db.Players(), testLogger())
	srv := httptest.NewServer(NewServer(engine, players, testLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
}

func TestGameFlow(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, srv, http.MethodPost, "/player/register", `{"name":"Alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	alice := decode[PlayerResponse](t, resp)
	assert.Equal(t, "Alice", alice.Name)

	resp = do(t, srv, http.MethodPost, "/game/new", `{"playerName":"Alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	created := decode[game.View](t, resp)
	assert.Equal(t, game.InProgress, created.Status)
	assert.Equal(t, 17, created.PlayerScore)
	assert.Equal(t, alice.ID, created.PlayerID)

	resp = do(t, srv, http.MethodGet, "/game/details/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, decode[game.View](t, resp).ID)

	resp = do(t, srv, http.MethodPost, "/game/"+created.ID+"/stand", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stood := decode[game.View](t, resp)
	assert.Equal(t, game.FinishedDealerWon, stood.Status)
	assert.Equal(t, 18, stood.DealerScore)

	resp = do(t, srv, http.MethodPost, "/game/"+created.ID+"/hit", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, CodeInvalidState, decode[ErrorBody](t, resp).Error.Code)

	resp = do(t, srv, http.MethodGet, "/player/id/"+alice.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	credited := decode[PlayerResponse](t, resp)
	assert.Equal(t, 1, credited.GamesPlayed)
	assert.Equal(t, 17, credited.TotalScore)

	resp = do(t, srv, http.MethodGet, "/game/all", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]game.View](t, resp), 1)

	resp = do(t, srv, http.MethodDelete, "/game/delete/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, srv, http.MethodGet, "/game/details/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGameCardsOnTheWire(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/player/register", `{"name":"Alice"}`)

	resp := do(t, srv, http.MethodPost, "/game/new", `{"playerName":"Alice"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t,
		`[{"suit":"HEARTS","value":"TEN"},{"suit":"HEARTS","value":"SEVEN"}]`,
		string(raw["playerCards"]))
	assert.Contains(t, raw, "dealerScore")
	assert.Contains(t, raw, "turn")
}

func TestErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/player/register", `{"name":"Alice"}`)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown player", http.MethodPost, "/game/new", `{"playerName":"Bob"}`, http.StatusNotFound, CodeNotFound},
		{"blank player", http.MethodPost, "/game/new", `{"playerName":"  "}`, http.StatusBadRequest, CodeInvalidName},
		{"bad json", http.MethodPost, "/game/new", `{"playerName":`, http.StatusBadRequest, CodeInvalidRequest},
		{"unknown game", http.MethodPost, "/game/nope/hit", "", http.StatusNotFound, CodeNotFound},
		{"duplicate player", http.MethodPost, "/player/register", `{"name":"Alice"}`, http.StatusConflict, CodeAlreadyExists},
		{"blank register", http.MethodPost, "/player/register", `{"name":""}`, http.StatusBadRequest, CodeInvalidName},
		{"unknown player id", http.MethodGet, "/player/id/nope", "", http.StatusNotFound, CodeNotFound},
		{"unknown player name", http.MethodGet, "/player/name/Bob", "", http.StatusNotFound, CodeNotFound},
		{"delete unknown player", http.MethodDelete, "/player/delete/nope", "", http.StatusNotFound, CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[ErrorBody](t, resp)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv := newTestServer(t)
	big := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`

	resp := do(t, srv, http.MethodPost, "/player/register", big)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPlayerEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, name := range []string{"Carol", "Alice"} {
		resp := do(t, srv, http.MethodPost, "/player/register", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, srv, http.MethodGet, "/player/all", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	all := decode[[]PlayerResponse](t, resp)
	require.Len(t, all, 2)
	assert.Equal(t, "Alice", all[0].Name)

	resp = do(t, srv, http.MethodGet, "/player/name/Carol", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	carol := decode[PlayerResponse](t, resp)

	resp = do(t, srv, http.MethodPut, "/player/"+carol.ID, `{"newName":"Caroline"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Caroline", decode[PlayerResponse](t, resp).Name)

	resp = do(t, srv, http.MethodPut, "/player/"+carol.ID, `{"newName":"Alice"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, srv, http.MethodGet, "/player/ranking", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]player.Standing](t, resp), 2)

	resp = do(t, srv, http.MethodDelete, "/player/delete/"+carol.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestEmptyListsAreArrays(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/game/all", "/player/all", "/player/ranking"} {
		resp := do(t, srv, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(bytes.TrimSpace(body)), path)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp := do(t, srv, http.MethodGet, "/game/new", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	db := memory.New()
	engine := game.NewEngine(db.Games(), db.Players(), testLogger(), game.WithSeed(1))
	s := NewServer(engine, player.NewService(db.Players(), testLogger()), testLogger())

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, l) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + l.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestClassifyPrefersInvalidName(t *testing.T) {
	status, code := classify(game.ErrInvalidPlayerName)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidName, code)

	status, _ = classify(game.ErrCorrupt)
	assert.Equal(t, http.StatusInternalServerError, status)
}
