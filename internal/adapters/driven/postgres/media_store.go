package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/clipfolio/sync-core/internal/core/domain"
	"github.com/clipfolio/sync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MediaStore = (*MediaStore)(nil)

// MediaStore implements driven.MediaStore using PostgreSQL
type MediaStore struct {
	db *DB
}

// NewMediaStore creates a new MediaStore
func NewMediaStore(db *DB) *MediaStore {
	return &MediaStore{db: db}
}

// UpsertBatch inserts or updates a page of media items in one transaction
func (s *MediaStore) UpsertBatch(ctx context.Context, userID, openID string, items []*domain.MediaItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return upsertMediaTx(ctx, tx, userID, openID, items)
	})
}

// upsertMediaTx writes media rows inside an existing transaction. Shared
// with the account store's snapshot write.
func upsertMediaTx(ctx context.Context, tx *sql.Tx, userID, openID string, items []*domain.MediaItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO media_items (
			user_id, open_id, media_id, title, cover_image_url, share_url,
			view_count, like_count, comment_count, share_count, created_at, ingested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (user_id, open_id, media_id) DO UPDATE SET
			title = EXCLUDED.title,
			cover_image_url = EXCLUDED.cover_image_url,
			share_url = EXCLUDED.share_url,
			view_count = EXCLUDED.view_count,
			like_count = EXCLUDED.like_count,
			comment_count = EXCLUDED.comment_count,
			share_count = EXCLUDED.share_count,
			created_at = EXCLUDED.created_at,
			ingested_at = NOW()
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare media upsert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.ExecContext(ctx,
			userID,
			openID,
			item.MediaID,
			item.Title,
			item.CoverImageURL,
			item.ShareURL,
			item.ViewCount,
			item.LikeCount,
			item.CommentCount,
			item.ShareCount,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert media %s: %w", item.MediaID, err)
		}
	}
	return nil
}

const mediaColumns = `
	media_id, title, cover_image_url, share_url,
	view_count, like_count, comment_count, share_count, created_at
`

// Get retrieves a single media item by its platform ID
func (s *MediaStore) Get(ctx context.Context, userID, openID, mediaID string) (*domain.MediaItem, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_items WHERE user_id = $1 AND open_id = $2 AND media_id = $3`

	item, err := scanMediaItem(s.db.QueryRowContext(ctx, query, userID, openID, mediaID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetByAccount retrieves media items for an account, newest first
func (s *MediaStore) GetByAccount(ctx context.Context, userID, openID string, limit, offset int) ([]*domain.MediaItem, error) {
	query := `
		SELECT ` + mediaColumns + `
		FROM media_items
		WHERE user_id = $1 AND open_id = $2
		ORDER BY created_at DESC, media_id
		LIMIT $3 OFFSET $4
	`

	rows, err := s.db.QueryContext(ctx, query, userID, openID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// CountByAccount returns the number of stored media items for an account
func (s *MediaStore) CountByAccount(ctx context.Context, userID, openID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_items WHERE user_id = $1 AND open_id = $2`,
		userID, openID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteByAccount removes all media items for an account
func (s *MediaStore) DeleteByAccount(ctx context.Context, userID, openID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM media_items WHERE user_id = $1 AND open_id = $2`,
		userID, openID)
	return err
}

func scanMediaItem(row rowScanner) (*domain.MediaItem, error) {
	var (
		item      domain.MediaItem
		createdAt sql.NullTime
	)

	err := row.Scan(
		&item.MediaID,
		&item.Title,
		&item.CoverImageURL,
		&item.ShareURL,
		&item.ViewCount,
		&item.LikeCount,
		&item.CommentCount,
		&item.ShareCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if createdAt.Valid {
		item.CreatedAt = createdAt.Time
	}
	return &item, nil
}
