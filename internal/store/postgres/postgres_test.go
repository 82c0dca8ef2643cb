package postgres

import (
	"context"
	"database/sql"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/charmbracelet/log"
	"github.com/lib/pq"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

func newMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	pool, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		pool.Close()
	})
	return NewFromDB(pool, log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})), mock
}

func q(sql string) string { return regexp.QuoteMeta(sql) }

var gameCols = []string{
	"id", "player_id", "created_at", "status", "turn", "player_score", "dealer_score",
	"deck_json", "player_cards_json", "dealer_cards_json", "stats_applied", "version",
}

func sampleRecord() *game.Record {
	return &game.Record{
		ID:              "g1",
		PlayerID:        "p1",
		CreatedAt:       created,
		Status:          game.InProgress,
		Turn:            game.PlayerTurn,
		PlayerScore:     15,
		DealerScore:     12,
		DeckJSON:        "[]",
		PlayerCardsJSON: `[{"suit":"HEARTS","value":"TEN"},{"suit":"HEARTS","value":"FIVE"}]`,
		DealerCardsJSON: `[{"suit":"CLUBS","value":"TEN"},{"suit":"CLUBS","value":"TWO"}]`,
	}
}

func TestMigrate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(q("CREATE TABLE IF NOT EXISTS players")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("CREATE TABLE IF NOT EXISTS games")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("CREATE INDEX IF NOT EXISTS idx_games_created")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, db.Migrate(context.Background()))
}

func TestGameFindByID(t *testing.T) {
	db, mock := newMock(t)
	r := sampleRecord()

	mock.ExpectQuery(q("FROM games WHERE id = $1")).
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(gameCols).AddRow(
			r.ID, r.PlayerID, r.CreatedAt, string(r.Status), string(r.Turn), 15, 12,
			r.DeckJSON, r.PlayerCardsJSON, r.DealerCardsJSON, false, 3,
		))

	got, err := db.Games().FindByID(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, game.InProgress, got.Status)
	assert.Equal(t, game.PlayerTurn, got.Turn)
	assert.Equal(t, 15, got.PlayerScore)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, r.PlayerCardsJSON, got.PlayerCardsJSON)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestGameFindByIDMissing(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(q("FROM games WHERE id = $1")).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := db.Games().FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGameFindAll(t *testing.T) {
	db, mock := newMock(t)
	r := sampleRecord()

	rows := sqlmock.NewRows(gameCols)
	for _, id := range []string{"a", "b"} {
		rows.AddRow(id, r.PlayerID, r.CreatedAt, string(r.Status), string(r.Turn), 15, 12,
			r.DeckJSON, r.PlayerCardsJSON, r.DealerCardsJSON, false, 1)
	}
	mock.ExpectQuery(q("FROM games ORDER BY created_at, id")).WillReturnRows(rows)

	all, err := db.Games().FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestGameInsert(t *testing.T) {
	db, mock := newMock(t)
	r := sampleRecord()

	mock.ExpectExec(q("INSERT INTO games")).
		WithArgs(r.ID, r.PlayerID, r.CreatedAt, "IN_PROGRESS", "PLAYER_TURN", int64(15), int64(12),
			r.DeckJSON, r.PlayerCardsJSON, r.DealerCardsJSON, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.Games().Save(context.Background(), r))
	assert.Equal(t, int64(1), r.Version)
}

func TestGameInsertDuplicate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(q("INSERT INTO games")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	r := sampleRecord()
	assert.ErrorIs(t, db.Games().Save(context.Background(), r), store.ErrDuplicate)
	assert.Zero(t, r.Version)
}

func TestGameConditionalUpdate(t *testing.T) {
	tests := []struct {
		name        string
		affected    int64
		current     *int64
		wantErr     error
		wantVersion int64
	}{
		{name: "version matches", affected: 1, wantVersion: 3},
		{name: "version moved on", affected: 0, current: ptr(int64(4)), wantErr: store.ErrConflict, wantVersion: 2},
		{name: "row gone", affected: 0, wantErr: store.ErrNotFound, wantVersion: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			r := sampleRecord()
			r.Version = 2
			r.Status = game.FinishedDraw
			r.Turn = game.Finished
			r.StatsApplied = true

			mock.ExpectExec(q("UPDATE games SET")).
				WithArgs(r.ID, "FINISHED_DRAW", "FINISHED", int64(15), int64(12),
					r.DeckJSON, r.PlayerCardsJSON, r.DealerCardsJSON, true, int64(2)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			if tt.affected == 0 {
				exp := mock.ExpectQuery(q("SELECT version FROM games WHERE id = $1")).WithArgs(r.ID)
				if tt.current != nil {
					exp.WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(*tt.current))
				} else {
					exp.WillReturnError(sql.ErrNoRows)
				}
			}

			err := db.Games().Save(context.Background(), r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantVersion, r.Version)
		})
	}
}

func TestGameDelete(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(q("DELETE FROM games WHERE id = $1")).WithArgs("g1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM games WHERE id = $1")).WithArgs("g1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Games().Delete(context.Background(), &game.Record{ID: "g1"}))
	assert.ErrorIs(t, db.Games().Delete(context.Background(), &game.Record{ID: "g1"}), store.ErrNotFound)
}

var playerCols = []string{"id", "name", "games_played", "games_won", "total_score", "created_at", "version"}

func TestPlayerFindByName(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(q("FROM players WHERE name = $1")).
		WithArgs("Alice").
		WillReturnRows(sqlmock.NewRows(playerCols).AddRow("p1", "Alice", 4, 1, 70, created, 5))
	mock.ExpectQuery(q("FROM players WHERE name = $1")).
		WithArgs("Bob").
		WillReturnError(sql.ErrNoRows)

	p, err := db.Players().FindByName(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Equal(t, &player.Player{
		ID: "p1", Name: "Alice", GamesPlayed: 4, GamesWon: 1, TotalScore: 70,
		CreatedAt: created, Version: 5,
	}, p)

	_, err = db.Players().FindByName(context.Background(), "Bob")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlayerInsertDuplicateName(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(q("INSERT INTO players")).
		WithArgs("p2", "Alice", int64(0), int64(0), int64(0), created).
		WillReturnError(&pq.Error{Code: "23505"})

	err := db.Players().Save(context.Background(), &player.Player{ID: "p2", Name: "Alice", CreatedAt: created})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestPlayerUpdateConflict(t *testing.T) {
	db, mock := newMock(t)
	p := &player.Player{ID: "p1", Name: "Alice", GamesPlayed: 2, GamesWon: 1, TotalScore: 40, Version: 7}

	mock.ExpectExec(q("UPDATE players SET")).
		WithArgs("p1", "Alice", int64(2), int64(1), int64(40), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT version FROM players WHERE id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int64(8)))

	assert.ErrorIs(t, db.Players().Save(context.Background(), p), store.ErrConflict)
	assert.Equal(t, int64(7), p.Version)
}

func TestPlayerUpdate(t *testing.T) {
	db, mock := newMock(t)
	p := &player.Player{ID: "p1", Name: "Alice", GamesPlayed: 3, Version: 7}

	mock.ExpectExec(q("UPDATE players SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.Players().Save(context.Background(), p))
	assert.Equal(t, int64(8), p.Version)
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, Database: "blackjack", User: "bj", Password: "secret"}
	assert.Equal(t, "host=db port=5432 dbname=blackjack user=bj password=secret sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	assert.Contains(t, cfg.DSN(), "sslmode=require")
}

func ptr[T any](v T) *T { return &v }
