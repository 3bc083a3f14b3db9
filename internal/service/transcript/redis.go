package transcript

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore keeps transcripts in Redis so every relay instance sees the same lines.
// Each call uses a list of lines and a string holding the last update in unix millis.
type RedisStore struct {
	rdb       goredis.UniversalClient
	keyPrefix string
	ttl       time.Duration
	now       func() time.Time
}

// NewRedisStore creates a store on top of an existing client. A ttl of 0 keeps keys forever.
func NewRedisStore(rdb goredis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *RedisStore) key(botID, suffix string) string {
	if s.keyPrefix == "" {
		return botID + ":" + suffix
	}
	return s.keyPrefix + ":" + botID + ":" + suffix
}

// Append implements Store. The push and the timestamp update run in one MULTI/EXEC.
func (s *RedisStore) Append(ctx context.Context, botID, fragment string) (AppendResult, error) {
	line := strings.TrimSpace(fragment)
	if line == "" {
		return AppendResult{}, nil
	}

	linesKey := s.key(botID, "lines")
	updatedKey := s.key(botID, "updated")
	now := s.now()

	var push *goredis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		push = pipe.RPush(ctx, linesKey, line)
		pipe.Set(ctx, updatedKey, strconv.FormatInt(now.UnixMilli(), 10), s.ttl)
		if s.ttl > 0 {
			pipe.Expire(ctx, linesKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return AppendResult{}, fmt.Errorf("transcript append %q: %w", botID, err)
	}

	n := int(push.Val())
	return AppendResult{Appended: true, Created: n == 1, Lines: n}, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, botID string) (Entry, bool, error) {
	pipe := s.rdb.Pipeline()
	linesCmd := pipe.LRange(ctx, s.key(botID, "lines"), 0, -1)
	updatedCmd := pipe.Get(ctx, s.key(botID, "updated"))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, goredis.Nil) {
		return Entry{}, false, fmt.Errorf("transcript get %q: %w", botID, err)
	}

	lines := linesCmd.Val()
	if len(lines) == 0 {
		return Entry{}, false, nil
	}

	entry := Entry{Lines: lines, Text: joinLines(lines)}
	if ms, err := updatedCmd.Int64(); err == nil && ms > 0 {
		entry.UpdatedAt = time.UnixMilli(ms)
	}
	return entry, true, nil
}

// Ping checks the Redis connection; used as a readiness check.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

var _ Store = (*RedisStore)(nil)
