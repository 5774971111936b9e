package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/listdex/listdex/internal/db"
)

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetBulk stores multiple hashes in a single DoMulti round-trip and reports
// a per-key outcome for each. A nil slice with a non-nil error means the
// pipeline itself failed and nothing is known about individual keys.
func (s *Store) HSetBulk(ctx context.Context, items []db.HashSetItem) ([]db.BulkOutcome, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpHSet, Err: err}
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, item := range items {
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		for k, v := range item.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]db.BulkOutcome, len(results))
	for i, res := range results {
		out[i] = db.BulkOutcome{Key: items[i].Key}
		if err := res.Error(); err != nil {
			if !rueidisServerErr(err) {
				return nil, &db.Error{Op: db.OpHSet, Err: err}
			}
			out[i].Err = &db.Error{Op: db.OpHSet, Err: err}
		}
	}
	return out, nil
}

// DelBulk deletes multiple keys in a single DoMulti round-trip with per-key
// outcomes, mirroring HSetBulk.
func (s *Store) DelBulk(ctx context.Context, keys []string) ([]db.BulkOutcome, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &db.Error{Op: db.OpDel, Err: err}
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Del().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]db.BulkOutcome, len(results))
	for i, res := range results {
		out[i] = db.BulkOutcome{Key: keys[i]}
		if err := res.Error(); err != nil {
			if !rueidisServerErr(err) {
				return nil, &db.Error{Op: db.OpDel, Err: err}
			}
			out[i].Err = &db.Error{Op: db.OpDel, Err: err}
		}
	}
	return out, nil
}

// rueidisServerErr distinguishes a server-side command rejection from a
// transport failure. Transport failures abort the whole pipeline.
func rueidisServerErr(err error) bool {
	_, ok := rueidis.IsRedisErr(err)
	return ok
}

// HGetAll returns all fields of a hash.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	cmd := s.b().Hgetall().Key(key).Build()
	m, err := s.do(ctx, cmd).AsStrMap()
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HGetAllMulti fetches all fields for multiple hashes in a single DoMulti round-trip.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}

	results := s.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, len(results))

	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, &db.Error{Op: db.OpHGetAll, Err: err}
		}
		out[i] = m
	}

	return out, nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	cmd := s.b().Exists().Key(key).Build()
	count, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return count > 0, nil
}

// Scan iterates keys matching a pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := s.b().Scan().Cursor(cursor).Match(pattern).Count(100).Build()
		res, err := s.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}
