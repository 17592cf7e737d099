// Package redisstore keeps preview records in Redis.
//
// Each record is a JSON string key with a native expiry equal to the preview
// TTL. A sorted set scored by creation time in milliseconds indexes the keys for
// counting and sweeping.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/mailmerge/svc/preview"
)

const (
	defaultPrefix = "mailmerge:"
	sweepBatch    = 500
)

// Store implements preview.Storage on Redis.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix namespaces every key. Defaults to "mailmerge:".
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// New returns a Store whose keys expire after ttl.
func New(client redis.UniversalClient, ttl time.Duration, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, errors.New("redisstore: client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("redisstore: ttl must be positive, got %s", ttl)
	}

	s := &Store{client: client, prefix: defaultPrefix, ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) recordKey(id string) string {
	return s.prefix + "preview:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "previews"
}

func (s *Store) Insert(ctx context.Context, rec *preview.Record) error {
	if rec == nil || rec.ID == "" {
		return preview.ErrInvalidRecord
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Join(preview.ErrInvalidRecord, err)
	}

	// The key expires ttl after creation, not after insertion.
	ttl := time.Until(rec.CreatedAt.Add(s.ttl))
	if ttl <= 0 {
		return fmt.Errorf("%w: record already expired", preview.ErrInvalidRecord)
	}

	key := s.recordKey(rec.ID)
	ok, err := s.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return errors.Join(preview.ErrStorage, err)
	}
	if !ok {
		return preview.ErrDuplicateID
	}

	err = s.client.ZAdd(ctx, s.indexKey(), redis.Z{
		Score:  float64(rec.CreatedAt.UnixMilli()),
		Member: rec.ID,
	}).Err()
	if err != nil {
		// An unindexed key is invisible to stats and the sweep; drop it so the
		// caller's failure is the whole story. If this fails too, the key's own
		// expiry still removes it.
		if delErr := s.client.Del(context.WithoutCancel(ctx), key).Err(); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return errors.Join(preview.ErrStorage, err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*preview.Record, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, preview.ErrNotFound
	}
	if err != nil {
		return nil, errors.Join(preview.ErrStorage, err)
	}

	var rec preview.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(preview.ErrStorage, err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Headers == nil {
		rec.Headers = []string{}
	}
	return &rec, nil
}

// DeleteCreatedBefore removes index entries scored at or below cutoff together
// with their keys. Keys Redis already expired only leave index entries behind,
// so the count reflects index members removed.
func (s *Store) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	upper := strconv.FormatInt(cutoff.UnixMilli(), 10)

	var removed int64
	for {
		ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
			Min:   "-inf",
			Max:   upper,
			Count: sweepBatch,
		}).Result()
		if err != nil {
			return removed, errors.Join(preview.ErrStorage, err)
		}
		if len(ids) == 0 {
			return removed, nil
		}

		keys := make([]string, len(ids))
		members := make([]any, len(ids))
		for i, id := range ids {
			keys[i] = s.recordKey(id)
			members[i] = id
		}

		var zrem *redis.IntCmd
		_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			// One DEL per key so the pipeline also works on a cluster.
			for _, key := range keys {
				pipe.Del(ctx, key)
			}
			zrem = pipe.ZRem(ctx, s.indexKey(), members...)
			return nil
		})
		if err != nil {
			return removed, errors.Join(preview.ErrStorage, err)
		}
		removed += zrem.Val()

		if len(ids) < sweepBatch {
			return removed, nil
		}
	}
}

func (s *Store) CountCreatedAfter(ctx context.Context, since time.Time) (int64, error) {
	n, err := s.client.ZCount(ctx, s.indexKey(), "("+strconv.FormatInt(since.UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, errors.Join(preview.ErrStorage, err)
	}
	return n, nil
}

var _ preview.Storage = (*Store)(nil)
