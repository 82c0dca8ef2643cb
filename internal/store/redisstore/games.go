package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/store"
	"github.com/redis/go-redis/v9"
)

// GameStore implements game.GameStore. Ids are kept in a sorted set
// scored by creation time.
type GameStore struct {
	db *DB
}

var _ game.GameStore = (*GameStore)(nil)

func (s *GameStore) gameKey(id string) string { return s.db.key("game", id) }
func (s *GameStore) indexKey() string { return s.db.key("games") }

func decodeGame(data []byte) (*game.Record, error) {
	var r game.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode game document: %w", err)
	}
	return &r, nil
}

func (s *GameStore) FindByID(ctx context.Context, id string) (*game.Record, error) {
	data, err := s.db.client.Get(ctx, s.gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("game %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	return decodeGame(data)
}

func (s *GameStore) FindAll(ctx context.Context) ([]*game.Record, error) {
	ids, err := s.db.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	records := make([]*game.Record, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.gameKey(id)
	}
	docs, err := s.db.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	for _, doc := range docs {
		str, ok := doc.(string)
		if !ok {
			// deleted between ZRANGE and MGET
			continue
		}
		r, err := decodeGame([]byte(str))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *GameStore) Save(ctx context.Context, r *game.Record) error {
	key := s.gameKey(r.ID)
	saved := *r
	saved.Version = r.Version + 1

	err := s.db.watch(ctx, "game "+r.ID, func(tx *redis.Tx) error {
		var stored int64
		data, err := tx.Get(ctx, key).Bytes()
		exists := err == nil
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("get game %s: %w", r.ID, err)
		}
		if exists {
			current, err := decodeGame(data)
			if err != nil {
				return err
			}
			stored = current.Version
		}
		if err := versionCheck("game "+r.ID, exists, stored, r.Version); err != nil {
			return err
		}

		doc, err := json.Marshal(saved)
		if err != nil {
			return fmt.Errorf("encode game %s: %w", r.ID, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(saved.CreatedAt.UnixMilli()), Member: r.ID})
			return nil
		})
		return err
	}, key)
	if err != nil {
		return err
	}
	r.Version = saved.Version
	return nil
}

func (s *GameStore) Delete(ctx context.Context, r *game.Record) error {
	key := s.gameKey(r.ID)
	var del *redis.IntCmd
	_, err := s.db.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, key)
		pipe.ZRem(ctx, s.indexKey(), r.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete game %s: %w", r.ID, err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("game %s: %w", r.ID, store.ErrNotFound)
	}
	return nil
}
