package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"omnimood-oracle/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	scoreCacheKey        = "oracle:current-score"
	DefaultScoreCacheTTL = 15 * time.Second
)

type ScoreReader interface {
	ReadScore(ctx context.Context) (*domain.PublishedScore, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ScoreService reads the published score from the oracle contract, caching it
// in Redis when a client is configured.
type ScoreService struct {
	tracer trace.Tracer
	reader ScoreReader
	redis  RedisClient
	ttl    time.Duration
}

func NewScoreService(tracer trace.Tracer, reader ScoreReader, redisClient RedisClient, ttl time.Duration) *ScoreService {
	if ttl <= 0 {
		ttl = DefaultScoreCacheTTL
	}
	return &ScoreService{tracer: tracer, reader: reader, redis: redisClient, ttl: ttl}
}

func (s *ScoreService) GetCurrentScore(ctx context.Context) (*domain.PublishedScore, error) {
	ctx, span := s.tracer.Start(ctx, "score-service.get-current-score")
	defer span.End()

	if s.redis != nil {
		cached, err := s.getCache(ctx)
		if err != nil {
			log.Printf("redis cache read error: %v", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	score, err := s.reader.ReadScore(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.redis != nil {
		if err := s.setCache(ctx, score); err != nil {
			log.Printf("redis cache write error: %v", err)
		}
	}
	return score, nil
}

func (s *ScoreService) Invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, scoreCacheKey).Err(); err != nil {
		log.Printf("redis cache invalidate error: %v", err)
	}
}

func (s *ScoreService) setCache(ctx context.Context, score *domain.PublishedScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, scoreCacheKey, data, s.ttl).Err()
}

func (s *ScoreService) getCache(ctx context.Context) (*domain.PublishedScore, error) {
	data, err := s.redis.Get(ctx, scoreCacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var score domain.PublishedScore
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, err
	}
	return &score, nil
}
