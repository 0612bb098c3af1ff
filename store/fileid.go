// Package store holds the pipeline's persistent collaborators: the file-id
// document store and the durable media store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"mediafetch/media"
)

// FileIDStore maps a media reference to the opaque token under which the
// durable store already holds a copy of that media. Both operations are
// best-effort: store errors surface as a miss or a dropped write, never as a
// failure of the resolution path.
type FileIDStore interface {
	GetToken(ctx context.Context, ref media.Ref) (string, bool)
	PutToken(ctx context.Context, ref media.Ref, token string)
}

const (
	defaultKeyPrefix = "mediafetch:fileid:"
	redisDialTimeout = 2 * time.Second
	redisCallTimeout = 5 * time.Second
)

// RedisFileIDStore is a FileIDStore backed by a Redis instance.
type RedisFileIDStore struct {
	client *redis.Client
	prefix string
	log    *logrus.Entry
}

// NewRedisFileIDStore connects to the Redis instance at url
// (redis://host:port form) and verifies the connection with a short ping.
func NewRedisFileIDStore(url string, logger *logrus.Logger) (*RedisFileIDStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisFileIDStore{
		client: client,
		prefix: defaultKeyPrefix,
		log:    logger.WithField("component", "fileid-store"),
	}, nil
}

func (s *RedisFileIDStore) key(ref media.Ref) string {
	return s.prefix + ref.Key()
}

// GetToken looks up the stored token for ref. Any store error is treated as
// a miss.
func (s *RedisFileIDStore) GetToken(ctx context.Context, ref media.Ref) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	token, err := s.client.Get(ctx, s.key(ref)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WithField("video_id", ref.ID).WithError(err).Warn("token lookup failed, treating as miss")
		}
		return "", false
	}
	return token, token != ""
}

// PutToken records the token for ref. Tokens do not expire locally;
// staleness is only ever discovered by a downstream fetch failure.
// Write errors are logged and dropped.
func (s *RedisFileIDStore) PutToken(ctx context.Context, ref media.Ref, token string) {
	ctx, cancel := context.WithTimeout(ctx, redisCallTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key(ref), token, 0).Err(); err != nil {
		s.log.WithField("video_id", ref.ID).WithError(err).Warn("token write failed, dropping")
	}
}

// Close releases the underlying Redis client.
func (s *RedisFileIDStore) Close() error {
	return s.client.Close()
}
