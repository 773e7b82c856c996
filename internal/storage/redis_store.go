package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"newsdesk/internal/vectorindex"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the fast-path state around the pipeline: fetch marks so a
// (keyword, date range) pair is not re-requested, and an embedding cache so a
// text is embedded at most once per model. Postgres stays authoritative for
// both; losing Redis only costs API calls.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

const (
	fetchMarkTTL      = 7 * 24 * time.Hour
	embeddingCacheTTL = 7 * 24 * time.Hour
)

func fetchedKey(keyword, dateStart, dateEnd string) string {
	return fmt.Sprintf("news:fetched:%s:%s:%s", keyword, dateStart, dateEnd)
}

func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%s", model, hex.EncodeToString(sum[:]))
}

// IsFetched returns the stored response id for a fetch mark, or ok=false.
func (s *RedisStore) IsFetched(ctx context.Context, keyword, dateStart, dateEnd string) (int64, bool, error) {
	res, err := s.rdb.Get(ctx, fetchedKey(keyword, dateStart, dateEnd)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(res, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

// MarkFetched records that a (keyword, date range) pair is stored under the
// given response id.
func (s *RedisStore) MarkFetched(ctx context.Context, keyword, dateStart, dateEnd string, responseID int64) error {
	return s.rdb.Set(ctx, fetchedKey(keyword, dateStart, dateEnd), strconv.FormatInt(responseID, 10), fetchMarkTTL).Err()
}

// GetEmbedding returns a cached vector for (model, text), if present.
func (s *RedisStore) GetEmbedding(ctx context.Context, model, text string) ([]float32, bool, error) {
	b, err := s.rdb.Get(ctx, embeddingKey(model, text)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	vec, err := vectorindex.DecodeVector(b)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// SetEmbedding caches a vector for (model, text).
func (s *RedisStore) SetEmbedding(ctx context.Context, model, text string, vec []float32) error {
	return s.rdb.Set(ctx, embeddingKey(model, text), vectorindex.EncodeVector(vec), embeddingCacheTTL).Err()
}
