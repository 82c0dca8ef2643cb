package postgres

import (
	"context"
	"fmt"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
)

// GameStore implements game.GameStore
type GameStore struct {
	db *DB
}

var _ game.GameStore = (*GameStore)(nil)

const gameColumns = `id, player_id, created_at, status, turn, player_score, dealer_score,
	deck_json, player_cards_json, dealer_cards_json, stats_applied, version`

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (*game.Record, error) {
	var r game.Record
	err := row.Scan(
		&r.ID, &r.PlayerID, &r.CreatedAt, &r.Status, &r.Turn,
		&r.PlayerScore, &r.DealerScore,
		&r.DeckJSON, &r.PlayerCardsJSON, &r.DealerCardsJSON,
		&r.StatsApplied, &r.Version,
	)
	if err != nil {
		return nil, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return &r, nil
}

func (s *GameStore) FindByID(ctx context.Context, id string) (*game.Record, error) {
	row := s.db.pool.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	r, err := scanGame(row)
	if err != nil {
		return nil, mapError(err, "game "+id)
	}
	return r, nil
}

func (s *GameStore) FindAll(ctx context.Context) ([]*game.Record, error) {
	rows, err := s.db.pool.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	records := []*game.Record{}
	for rows.Next() {
		r, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *GameStore) Save(ctx context.Context, r *game.Record) error {
	if r.Version == 0 {
		_, err := s.db.pool.ExecContext(ctx,
			`INSERT INTO games (`+gameColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)`,
			r.ID, r.PlayerID, r.CreatedAt, r.Status, r.Turn, r.PlayerScore, r.DealerScore,
			r.DeckJSON, r.PlayerCardsJSON, r.DealerCardsJSON, r.StatsApplied,
		)
		if err != nil {
			return mapError(err, "insert game "+r.ID)
		}
		r.Version = 1
		return nil
	}

	res, err := s.db.pool.ExecContext(ctx,
		`UPDATE games SET
			status = $2, turn = $3, player_score = $4, dealer_score = $5,
			deck_json = $6, player_cards_json = $7, dealer_cards_json = $8,
			stats_applied = $9, version = version + 1
		 WHERE id = $1 AND version = $10`,
		r.ID, r.Status, r.Turn, r.PlayerScore, r.DealerScore,
		r.DeckJSON, r.PlayerCardsJSON, r.DealerCardsJSON, r.StatsApplied, r.Version,
	)
	if err != nil {
		return mapError(err, "update game "+r.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update game %s: %w", r.ID, err)
	}
	if n == 0 {
		return s.db.missedUpdate(ctx, "games", r.ID, r.Version)
	}
	r.Version++
	return nil
}

func (s *GameStore) Delete(ctx context.Context, r *game.Record) error {
	res, err := s.db.pool.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, r.ID)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", r.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete game %s: %w", r.ID, err)
	} else if n == 0 {
		return fmt.Errorf("game %s: %w", r.ID, store.ErrNotFound)
	}
	return nil
}
