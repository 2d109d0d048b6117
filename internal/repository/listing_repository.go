package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"listingopt/internal/model"
)

const (
	originalTable  = "original_listings"
	optimizedTable = "optimized_listings"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListingRepository stores listings in Postgres. created_at is only written
// on insert; every other column is replaced on conflict.
type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *ListingRepository) GetOriginal(ctx context.Context, asin string) (*model.OriginalListing, error) {
	query, args, err := psql.
		Select("id", "title", "bullets", "description", "created_at").
		From(originalTable).
		Where(sq.Eq{"id": asin}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build original select: %w", err)
	}

	var (
		o       model.OriginalListing
		bullets string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&o.ASIN, &o.Title, &bullets, &o.Description, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select original %s: %w", asin, err)
	}

	if o.Bullets, err = DecodeBullets(bullets); err != nil {
		return nil, fmt.Errorf("original %s: %w", asin, err)
	}

	return &o, nil
}

func (r *ListingRepository) GetOptimized(ctx context.Context, asin string) (*model.OptimizedListing, error) {
	query, args, err := psql.
		Select("id", "opt_title", "opt_bullets", "opt_description", "keywords", "created_at").
		From(optimizedTable).
		Where(sq.Eq{"id": asin}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build optimized select: %w", err)
	}

	var (
		o       model.OptimizedListing
		bullets string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&o.ASIN, &o.OptTitle, &bullets, &o.OptDescription, &o.Keywords, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select optimized %s: %w", asin, err)
	}

	if o.OptBullets, err = DecodeBullets(bullets); err != nil {
		return nil, fmt.Errorf("optimized %s: %w", asin, err)
	}

	return &o, nil
}

func (r *ListingRepository) UpsertOriginal(ctx context.Context, listing *model.OriginalListing) error {
	return upsertOriginal(ctx, r.db, listing)
}

func (r *ListingRepository) UpsertOptimized(ctx context.Context, listing *model.OptimizedListing) error {
	return upsertOptimized(ctx, r.db, listing)
}

// SaveOptimization replaces the original and optimized rows in one transaction.
func (r *ListingRepository) SaveOptimization(ctx context.Context, original *model.OriginalListing, optimized *model.OptimizedListing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := upsertOriginal(ctx, tx, original); err != nil {
		return err
	}

	if err := upsertOptimized(ctx, tx, optimized); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit optimization %s: %w", original.ASIN, err)
	}
	return nil
}

func upsertOriginal(ctx context.Context, q querier, listing *model.OriginalListing) error {
	bullets, err := EncodeBullets(listing.Bullets)
	if err != nil {
		return err
	}

	query, args, err := psql.
		Insert(originalTable).
		Columns("id", "title", "bullets", "description").
		Values(listing.ASIN, listing.Title, bullets, listing.Description).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title,
				bullets = EXCLUDED.bullets,
				description = EXCLUDED.description`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build original upsert: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert original %s: %w", listing.ASIN, err)
	}
	return nil
}

func upsertOptimized(ctx context.Context, q querier, listing *model.OptimizedListing) error {
	bullets, err := EncodeBullets(listing.OptBullets)
	if err != nil {
		return err
	}

	query, args, err := psql.
		Insert(optimizedTable).
		Columns("id", "opt_title", "opt_bullets", "opt_description", "keywords").
		Values(listing.ASIN, listing.OptTitle, bullets, listing.OptDescription, listing.Keywords).
		Suffix(`ON CONFLICT (id) DO UPDATE
			SET opt_title = EXCLUDED.opt_title,
				opt_bullets = EXCLUDED.opt_bullets,
				opt_description = EXCLUDED.opt_description,
				keywords = EXCLUDED.keywords`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build optimized upsert: %w", err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert optimized %s: %w", listing.ASIN, err)
	}
	return nil
}
