package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/server"
	"github.com/lox/blackjack/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})

	// player 10+5, dealer 9+9, next card 6
	d, err := deck.NewStacked(
		deck.NewCard(deck.Hearts, deck.Ten), deck.NewCard(deck.Hearts, deck.Five),
		deck.NewCard(deck.Clubs, deck.Nine), deck.NewCard(deck.Diamonds, deck.Nine),
		deck.NewCard(deck.Spades, deck.Six),
	)
	require.NoError(t, err)

	db := memory.New()
	engine := game.NewEngine(db.Games(), db.Players(), logger, game.WithDeckSource(game.FixedDecks(d)))
	srv := httptest.NewServer(server.NewServer(engine, player.NewService(db.Players(), logger), logger).Handler())
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/", logger, WithHTTPClient(srv.Client()))
}

func TestRoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	alice, err := c.RegisterPlayer(ctx, "Alice")
	require.NoError(t, err)

	v, err := c.NewGame(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 15, v.PlayerScore)

	v, err = c.Hit(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, game.FinishedPlayerWon, v.Status)

	got, err := c.Game(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.PlayerCards, got.PlayerCards)

	p, err := c.PlayerByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.GamesWon)
	assert.InDelta(t, 1.0, p.WinRate, 1e-9)

	ranking, err := c.Ranking(ctx)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	assert.Equal(t, "Alice", ranking[0].Name)

	games, err := c.Games(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 1)

	require.NoError(t, c.DeleteGame(ctx, v.ID))
	_, err = c.Game(ctx, v.ID)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}

func TestStand(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.RegisterPlayer(ctx, "Alice")
	require.NoError(t, err)
	v, err := c.NewGame(ctx, "Alice")
	require.NoError(t, err)

	v, err = c.Stand(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, game.FinishedDealerWon, v.Status)

	_, err = c.Stand(ctx, v.ID)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsConflict())
	assert.Equal(t, server.CodeInvalidState, apiErr.Code)
}

func TestPlayerCalls(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	bob, err := c.RegisterPlayer(ctx, "Bob")
	require.NoError(t, err)

	_, err = c.RegisterPlayer(ctx, "Bob")
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsConflict())

	byName, err := c.PlayerByName(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, byName.ID)

	renamed, err := c.RenamePlayer(ctx, bob.ID, "Robert")
	require.NoError(t, err)
	assert.Equal(t, "Robert", renamed.Name)

	all, err := c.Players(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, c.DeletePlayer(ctx, bob.ID))
	err = c.DeletePlayer(ctx, bob.ID)
	apiErr, ok = AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, log.NewWithOptions(io.Discard, log.Options{}))
	err := c.Health(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "502")
}
