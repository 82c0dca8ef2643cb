package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/blackjack/internal/player"
	"github.com/lox/blackjack/internal/store"
	"github.com/redis/go-redis/v9"
)

// PlayerStore implements player.Store. A name index maps each name to its
// player id and enforces uniqueness.
type PlayerStore struct {
	db *DB
}

var _ player.Store = (*PlayerStore)(nil)

type playerDoc struct {
	Player  player.Player `json:"player"`
	Version int64         `json:"version"`
}

func (s *PlayerStore) playerKey(id string) string { return s.db.key("player", id) }
func (s *PlayerStore) nameKey(name string) string { return s.db.key("player-name", name) }
func (s *PlayerStore) indexKey() string { return s.db.key("players") }

func decodePlayer(data []byte) (*player.Player, error) {
	var doc playerDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode player document: %w", err)
	}
	p := doc.Player
	p.Version = doc.Version
	return &p, nil
}

func (s *PlayerStore) FindByName(ctx context.Context, name string) (*player.Player, error) {
	id, err := s.db.client.Get(ctx, s.nameKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("player %q: %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get player %q: %w", name, err)
	}
	return s.FindByID(ctx, id)
}

func (s *PlayerStore) FindByID(ctx context.Context, id string) (*player.Player, error) {
	data, err := s.db.client.Get(ctx, s.playerKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("player %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get player %s: %w", id, err)
	}
	return decodePlayer(data)
}

func (s *PlayerStore) FindAll(ctx context.Context) ([]*player.Player, error) {
	ids, err := s.db.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	players := make([]*player.Player, 0, len(ids))
	if len(ids) == 0 {
		return players, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.playerKey(id)
	}
	docs, err := s.db.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	for _, doc := range docs {
		str, ok := doc.(string)
		if !ok {
			continue
		}
		p, err := decodePlayer([]byte(str))
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (s *PlayerStore) Save(ctx context.Context, p *player.Player) error {
	key := s.playerKey(p.ID)
	newName := s.nameKey(p.Name)
	doc := playerDoc{Player: *p, Version: p.Version + 1}
	doc.Player.Version = 0

	err := s.db.watch(ctx, "player "+p.ID, func(tx *redis.Tx) error {
		var current *player.Player
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if current, err = decodePlayer(data); err != nil {
				return err
			}
		case !errors.Is(err, redis.Nil):
			return fmt.Errorf("get player %s: %w", p.ID, err)
		}

		var stored int64
		if current != nil {
			stored = current.Version
		}
		if err := versionCheck("player "+p.ID, current != nil, stored, p.Version); err != nil {
			return err
		}

		owner, err := tx.Get(ctx, newName).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("get player name %q: %w", p.Name, err)
		}
		if err == nil && owner != p.ID {
			return fmt.Errorf("player name %q: %w", p.Name, store.ErrDuplicate)
		}

		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode player %s: %w", p.ID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, body, 0)
			pipe.Set(ctx, newName, p.ID, 0)
			pipe.SAdd(ctx, s.indexKey(), p.ID)
			if current != nil && current.Name != p.Name {
				pipe.Del(ctx, s.nameKey(current.Name))
			}
			return nil
		})
		return err
	}, key, newName)
	if err != nil {
		return err
	}
	p.Version = doc.Version
	return nil
}

func (s *PlayerStore) Delete(ctx context.Context, p *player.Player) error {
	key := s.playerKey(p.ID)
	return s.db.watch(ctx, "player "+p.ID, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("player %s: %w", p.ID, store.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get player %s: %w", p.ID, err)
		}
		current, err := decodePlayer(data)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key, s.nameKey(current.Name))
			pipe.SRem(ctx, s.indexKey(), p.ID)
			return nil
		})
		return err
	}, key)
}
