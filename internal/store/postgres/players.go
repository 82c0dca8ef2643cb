package postgres

import (
	"context"
	"fmt"

	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/store"
)

// PlayerStore implements player.Store
type PlayerStore struct {
	db *DB
}

var _ player.Store = (*PlayerStore)(nil)

const playerColumns = `id, name, games_played, games_won, total_score, created_at, version`

func scanPlayer(row scanner) (*player.Player, error) {
	var p player.Player
	if err := row.Scan(&p.ID, &p.Name, &p.GamesPlayed, &p.GamesWon, &p.TotalScore, &p.CreatedAt, &p.Version); err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func (s *PlayerStore) FindByName(ctx context.Context, name string) (*player.Player, error) {
	p, err := scanPlayer(s.db.pool.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE name = $1`, name))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("player %q", name))
	}
	return p, nil
}

func (s *PlayerStore) FindByID(ctx context.Context, id string) (*player.Player, error) {
	p, err := scanPlayer(s.db.pool.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "player "+id)
	}
	return p, nil
}

func (s *PlayerStore) FindAll(ctx context.Context) ([]*player.Player, error) {
	rows, err := s.db.pool.QueryContext(ctx, `SELECT `+playerColumns+` FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []*player.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *PlayerStore) Save(ctx context.Context, p *player.Player) error {
	if p.Version == 0 {
		_, err := s.db.pool.ExecContext(ctx,
			`INSERT INTO players (`+playerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, 1)`,
			p.ID, p.Name, p.GamesPlayed, p.GamesWon, p.TotalScore, p.CreatedAt,
		)
		if err != nil {
			return mapError(err, "insert player "+p.ID)
		}
		p.Version = 1
		return nil
	}

	res, err := s.db.pool.ExecContext(ctx,
		`UPDATE players SET
			name = $2, games_played = $3, games_won = $4, total_score = $5, version = version + 1
		 WHERE id = $1 AND version = $6`,
		p.ID, p.Name, p.GamesPlayed, p.GamesWon, p.TotalScore, p.Version,
	)
	if err != nil {
		return mapError(err, "update player "+p.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player %s: %w", p.ID, err)
	}
	if n == 0 {
		return s.db.missedUpdate(ctx, "players", p.ID, p.Version)
	}
	p.Version++
	return nil
}

func (s *PlayerStore) Delete(ctx context.Context, p *player.Player) error {
	res, err := s.db.pool.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, p.ID)
	if err != nil {
		return fmt.Errorf("delete player %s: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete player %s: %w", p.ID, err)
	} else if n == 0 {
		return fmt.Errorf("player %s: %w", p.ID, store.ErrNotFound)
	}
	return nil
}
