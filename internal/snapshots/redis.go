package snapshots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/team-composer/internal/types"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces snapshot keys
const DefaultRedisPrefix = "team-composer:snapshot:"

// RedisStore keeps snapshots as JSON values with a TTL. A sorted set indexed
// by store time enforces MaxEntries across processes.
type RedisStore struct {
	cli    *redis.Client
	prefix string
	policy RetentionPolicy
	now    func() time.Time
}

// NewRedisStore creates a RedisStore on an existing client
func NewRedisStore(cli *redis.Client, prefix string, policy RetentionPolicy) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{cli: cli, prefix: prefix, policy: policy, now: time.Now}
}

// DialRedis connects to addr and verifies the connection
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	cli := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 5 * time.Second})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return cli, nil
}

func (s *RedisStore) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

// Put stores the snapshot and trims the index to the retention policy
func (s *RedisStore) Put(ctx context.Context, snap *types.PoolSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	now := s.now()
	_, err = s.cli.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(snap.SuggestionID), data, s.policy.TTL)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(now.UnixNano()), Member: snap.SuggestionID.String()})
		if s.policy.TTL > 0 {
			cutoff := now.Add(-s.policy.TTL).UnixNano()
			pipe.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+strconv.FormatInt(cutoff, 10))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", snap.SuggestionID, err)
	}

	return s.trim(ctx)
}

// trim pops the oldest index members over MaxEntries and deletes their keys
func (s *RedisStore) trim(ctx context.Context) error {
	if s.policy.MaxEntries <= 0 {
		return nil
	}
	size, err := s.cli.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to read snapshot index: %w", err)
	}
	excess := size - int64(s.policy.MaxEntries)
	if excess <= 0 {
		return nil
	}

	popped, err := s.cli.ZPopMin(ctx, s.indexKey(), excess).Result()
	if err != nil {
		return fmt.Errorf("failed to trim snapshot index: %w", err)
	}
	keys := make([]string, 0, len(popped))
	for _, z := range popped {
		if member, ok := z.Member.(string); ok {
			keys = append(keys, s.prefix+member)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.cli.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to evict snapshots: %w", err)
	}
	return nil
}

// Get loads the snapshot for id
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*types.PoolSnapshot, error) {
	data, err := s.cli.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, unknown(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	var snap types.PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.cli.Close()
}
