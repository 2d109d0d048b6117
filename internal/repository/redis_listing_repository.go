package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"listingopt/internal/model"
)

const DefaultRedisKeyPrefix = "listingopt"

// RedisListingRepository stores each listing as a hash keyed by ASIN.
type RedisListingRepository struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisListingRepository(rdb *redis.Client, prefix string) *RedisListingRepository {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisListingRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisListingRepository) originalKey(asin string) string {
	return fmt.Sprintf("%s:original:%s", r.prefix, asin)
}

func (r *RedisListingRepository) optimizedKey(asin string) string {
	return fmt.Sprintf("%s:optimized:%s", r.prefix, asin)
}

func (r *RedisListingRepository) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisListingRepository) GetOriginal(ctx context.Context, asin string) (*model.OriginalListing, error) {
	fields, err := r.rdb.HGetAll(ctx, r.originalKey(asin)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get original %s: %w", asin, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	bullets, err := DecodeBullets(fields["bullets"])
	if err != nil {
		return nil, fmt.Errorf("original %s: %w", asin, err)
	}

	return &model.OriginalListing{
		ASIN:        asin,
		Title:       fields["title"],
		Bullets:     bullets,
		Description: fields["description"],
		CreatedAt:   parseCreatedAt(fields["created_at"]),
	}, nil
}

func (r *RedisListingRepository) GetOptimized(ctx context.Context, asin string) (*model.OptimizedListing, error) {
	fields, err := r.rdb.HGetAll(ctx, r.optimizedKey(asin)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get optimized %s: %w", asin, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	bullets, err := DecodeBullets(fields["opt_bullets"])
	if err != nil {
		return nil, fmt.Errorf("optimized %s: %w", asin, err)
	}

	return &model.OptimizedListing{
		ASIN:           asin,
		OptTitle:       fields["opt_title"],
		OptBullets:     bullets,
		OptDescription: fields["opt_description"],
		Keywords:       fields["keywords"],
		CreatedAt:      parseCreatedAt(fields["created_at"]),
	}, nil
}

func (r *RedisListingRepository) UpsertOriginal(ctx context.Context, listing *model.OriginalListing) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return r.queueOriginal(ctx, pipe, listing)
	})
	if err != nil {
		return fmt.Errorf("redis upsert original %s: %w", listing.ASIN, err)
	}
	return nil
}

func (r *RedisListingRepository) UpsertOptimized(ctx context.Context, listing *model.OptimizedListing) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return r.queueOptimized(ctx, pipe, listing)
	})
	if err != nil {
		return fmt.Errorf("redis upsert optimized %s: %w", listing.ASIN, err)
	}
	return nil
}

// SaveOptimization writes both hashes inside one MULTI/EXEC block.
func (r *RedisListingRepository) SaveOptimization(ctx context.Context, original *model.OriginalListing, optimized *model.OptimizedListing) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := r.queueOriginal(ctx, pipe, original); err != nil {
			return err
		}
		return r.queueOptimized(ctx, pipe, optimized)
	})
	if err != nil {
		return fmt.Errorf("redis save optimization %s: %w", original.ASIN, err)
	}
	return nil
}

func (r *RedisListingRepository) queueOriginal(ctx context.Context, pipe redis.Pipeliner, listing *model.OriginalListing) error {
	bullets, err := EncodeBullets(listing.Bullets)
	if err != nil {
		return err
	}

	key := r.originalKey(listing.ASIN)
	pipe.HSet(ctx, key,
		"title", listing.Title,
		"bullets", bullets,
		"description", listing.Description,
	)
	pipe.HSetNX(ctx, key, "created_at", time.Now().UTC().Format(time.RFC3339Nano))
	return nil
}

func (r *RedisListingRepository) queueOptimized(ctx context.Context, pipe redis.Pipeliner, listing *model.OptimizedListing) error {
	bullets, err := EncodeBullets(listing.OptBullets)
	if err != nil {
		return err
	}

	key := r.optimizedKey(listing.ASIN)
	pipe.HSet(ctx, key,
		"opt_title", listing.OptTitle,
		"opt_bullets", bullets,
		"opt_description", listing.OptDescription,
		"keywords", listing.Keywords,
	)
	pipe.HSetNX(ctx, key, "created_at", time.Now().UTC().Format(time.RFC3339Nano))
	return nil
}

func parseCreatedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
