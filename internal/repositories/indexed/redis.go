package indexed

import (
	"context"
	"log/slog"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/pkg/keylock"
	redisclient "github.com/KirkDiggler/rpg-charforge/internal/redis"
)

// maxTxRetries bounds optimistic retries when another process writes the
// same key between WATCH and EXEC.
const maxTxRetries = 16

// RedisConfig configures the Redis backend.
type RedisConfig struct {
	Config
	Client redisclient.Client
}

// Validate validates the config.
func (c *RedisConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	return nil
}

// redisStore keeps each payload under "<entity>:<id>" and the index as a
// sorted set "<index>" scored by a per-index sequence, so ZRANGE returns
// insertion order. Payload and index always change in one MULTI. Writes stop
// honouring cancellation once they pass the initial context check.
type redisStore[T Record[T]] struct {
	cfg    Config
	client redisclient.Client
	locks  *keylock.Locker
}

// NewRedis creates a Redis-backed store.
func NewRedis[T Record[T]](cfg *RedisConfig) (Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisStore[T]{
		cfg:    cfg.Config,
		client: cfg.Client,
		locks:  keylock.New(),
	}, nil
}

// RecordKey is the Redis key holding the payload of entityType id.
func RecordKey(entityType, id string) string {
	return entityType + ":" + id
}

// RecordPattern matches every payload key of entityType for SCAN.
func RecordPattern(entityType string) string {
	return RecordKey(entityType, "*")
}

// RecordID extracts the id from a payload key of entityType.
func RecordID(entityType, key string) (string, bool) {
	id, ok := strings.CutPrefix(key, entityType+":")
	return id, ok && id != ""
}

// SeqKey is the counter that scores new members of indexName.
func SeqKey(indexName string) string {
	return indexName + ":seq"
}

func (s *redisStore[T]) key(id string) string {
	return RecordKey(s.cfg.EntityType, id)
}

func (s *redisStore[T]) seqKey() string {
	return SeqKey(s.cfg.IndexName)
}

// watch runs fn under WATCH key, retrying when EXEC reports a conflicting
// write from elsewhere.
func (s *redisStore[T]) watch(ctx context.Context, key string, fn func(tx *redis.Tx) error) error {
	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, fn, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		slog.DebugContext(ctx, "redis transaction conflict, retrying",
			"key", key,
			"attempt", attempt)
	}
	return errors.Abortedf("%s kept changing under concurrent writers", key)
}

func (s *redisStore[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := checkRecord(s.cfg.EntityType, record); err != nil {
		return zero, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return zero, err
	}
	ctx = context.WithoutCancel(ctx)
	id := record.GetID()
	key := s.key(id)

	unlock := s.locks.Lock(id)
	defer unlock()

	data, err := encode(record)
	if err != nil {
		return zero, err
	}

	seq, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return zero, errors.Wrapf(err, "failed to allocate index position for %s", key)
	}

	err = s.watch(ctx, key, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return errors.Wrapf(err, "failed to check existence of %s", key)
		}
		if n > 0 {
			return errors.AlreadyExistsf("%s %s already exists", s.cfg.EntityType, id)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, s.cfg.IndexName, redis.Z{Score: float64(seq), Member: id})
			return nil
		})
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create record",
			"key", key,
			"error", err.Error())
		return zero, errors.Wrapf(err, "failed to create %s", key)
	}

	slog.DebugContext(ctx, "record created", "key", key, "seq", seq)
	return decode[T](data)
}

func (s *redisStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, false, err
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return zero, false, nil
		}
		return zero, false, errors.Wrapf(err, "failed to get %s", s.key(id))
	}

	out, err := decode[T](data)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (s *redisStore[T]) Mutate(ctx context.Context, id string, fn MutateFunc[T]) (T, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return zero, err
	}
	ctx = context.WithoutCancel(ctx)
	key := s.key(id)

	unlock := s.locks.Lock(id)
	defer unlock()

	var written []byte
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return errors.NotFoundf("%s %s not found", s.cfg.EntityType, id)
			}
			return errors.Wrapf(err, "failed to get %s", key)
		}

		current, err := decode[T](data)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if isNil(next) {
			return errors.Internalf("mutation of %s returned no record", key)
		}
		out, err := encode(next.WithID(id))
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err != nil {
			return err
		}
		written = out
		return nil
	})
	if err != nil {
		return zero, err
	}

	slog.DebugContext(ctx, "record mutated", "key", key)
	return decode[T](written)
}

func (s *redisStore[T]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	return s.Mutate(ctx, id, patchMutation(id, patch))
}

func (s *redisStore[T]) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return false, err
	}
	ctx = context.WithoutCancel(ctx)
	key := s.key(id)

	unlock := s.locks.Lock(id)
	defer unlock()

	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, key)
		pipe.ZRem(ctx, s.cfg.IndexName, id)
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete record",
			"key", key,
			"error", err.Error())
		return false, errors.Wrapf(err, "failed to delete %s", key)
	}

	existed := del.Val() > 0
	slog.DebugContext(ctx, "record deleted", "key", key, "existed", existed)
	return existed, nil
}

func (s *redisStore[T]) List(ctx context.Context) ([]T, error) {
	ids, err := s.client.ZRange(ctx, s.cfg.IndexName, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read index %s", s.cfg.IndexName)
	}
	if len(ids) == 0 {
		return []T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load records from index %s", s.cfg.IndexName)
	}

	out := make([]T, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// only reachable when keys were removed by hand
			slog.WarnContext(ctx, "index entry without payload, skipping",
				"index", s.cfg.IndexName,
				"id", ids[i])
			continue
		}
		rec, err := decode[T]([]byte(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", keys[i])
		}
		out = append(out, rec)
	}

	slog.DebugContext(ctx, "listed records", "index", s.cfg.IndexName, "count", len(out))
	return out, nil
}
