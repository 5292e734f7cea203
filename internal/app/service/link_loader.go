package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/relinkd/relink/internal/app/model"
	"github.com/relinkd/relink/internal/app/repository"
	"go.uber.org/zap"
)

const (
	defaultLocalCacheSize = 4096
	defaultRecordTTL      = 30 * time.Second
	defaultBloomCapacity  = 1_000_000
	defaultBloomFPRate    = 0.001

	redisKeyPrefix = "link:"
)

// LinkLoaderConfig tunes the caching layers in front of Postgres.
type LinkLoaderConfig struct {
	LocalCacheSize int
	RecordTTL      time.Duration
	BloomCapacity  uint
	BloomFPRate    float64
}

// LinkLoader serves point lookups for the resolver. Lookup order: a
// negative-lookup bloom filter, an in-process LRU, Redis, then Postgres.
// Cache entries carry a short TTL so dashboard edits propagate within
// seconds; the bloom filter is re-seeded by a background refresher, so a
// code absent from the filter is treated as nonexistent without touching
// storage.
type LinkLoader struct {
	repo     repository.LinkRepository
	redis    *redis.Client
	local    *expirable.LRU[string, *model.Link]
	filter   atomic.Pointer[bloom.BloomFilter]
	ttl      time.Duration
	bloomCap uint
	fpRate   float64
	logger   *zap.Logger
}

// NewLinkLoader builds a loader over the given repository. The Redis client
// is optional; without it the loader runs on the local cache alone.
func NewLinkLoader(repo repository.LinkRepository, rdb *redis.Client, cfg LinkLoaderConfig, logger *zap.Logger) *LinkLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.LocalCacheSize
	if size <= 0 {
		size = defaultLocalCacheSize
	}
	ttl := cfg.RecordTTL
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	capacity := cfg.BloomCapacity
	if capacity == 0 {
		capacity = defaultBloomCapacity
	}
	fpRate := cfg.BloomFPRate
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = defaultBloomFPRate
	}

	return &LinkLoader{
		repo:     repo,
		redis:    rdb,
		local:    expirable.NewLRU[string, *model.Link](size, nil, ttl),
		ttl:      ttl,
		bloomCap: capacity,
		fpRate:   fpRate,
		logger:   logger,
	}
}

// Load fetches the link record for a short code or alias. Business absence
// is repository.ErrLinkNotFound; anything else is a storage failure the
// engine collapses for visitors but reports to operators.
func (l *LinkLoader) Load(ctx context.Context, code string) (*model.Link, error) {
	if f := l.filter.Load(); f != nil && !f.TestString(code) {
		return nil, repository.ErrLinkNotFound
	}

	if link, ok := l.local.Get(code); ok {
		return link, nil
	}

	if link := l.fromRedis(ctx, code); link != nil {
		l.local.Add(code, link)
		return link, nil
	}

	link, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	l.local.Add(code, link)
	l.toRedis(ctx, code, link)
	return link, nil
}

// SeedFilter rebuilds the bloom filter from the full code list and swaps it
// in atomically. Concurrent lookups keep using the old filter until the
// swap completes.
func (l *LinkLoader) SeedFilter(ctx context.Context) (int, error) {
	codes, err := l.repo.ListCodes(ctx)
	if err != nil {
		return 0, err
	}

	capacity := l.bloomCap
	if uint(len(codes)) > capacity {
		capacity = uint(len(codes)) * 2
	}

	f := bloom.NewWithEstimates(capacity, l.fpRate)
	for _, code := range codes {
		f.AddString(code)
	}
	l.filter.Store(f)
	return len(codes), nil
}

func (l *LinkLoader) fromRedis(ctx context.Context, code string) *model.Link {
	if l.redis == nil {
		return nil
	}

	data, err := l.redis.Get(ctx, redisKeyPrefix+code).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			l.logger.Warn("link cache read failed", zap.String("code", code), zap.Error(err))
		}
		return nil
	}

	var link model.Link
	if err := json.Unmarshal(data, &link); err != nil {
		l.logger.Warn("link cache entry corrupt", zap.String("code", code), zap.Error(err))
		return nil
	}
	return &link
}

// toRedis writes through best effort; a cache failure never fails a lookup.
func (l *LinkLoader) toRedis(ctx context.Context, code string, link *model.Link) {
	if l.redis == nil {
		return
	}

	data, err := json.Marshal(link)
	if err != nil {
		return
	}
	if err := l.redis.Set(ctx, redisKeyPrefix+code, data, l.ttl).Err(); err != nil {
		l.logger.Warn("link cache write failed", zap.String("code", code), zap.Error(err))
	}
}
