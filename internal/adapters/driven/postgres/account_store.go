package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/clipfolio/sync-core/internal/core/domain"
	"github.com/clipfolio/sync-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LinkedAccountStore = (*LinkedAccountStore)(nil)

// tokenMaterial is the shape serialized into the encrypted token blob.
// Expiries stay in plaintext columns so they can be queried.
type tokenMaterial struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LinkedAccountStore implements driven.LinkedAccountStore using PostgreSQL.
// Token pairs are encrypted with AES-256-GCM before hitting the database.
type LinkedAccountStore struct {
	db        *DB
	encryptor *TokenEncryptor
}

// NewLinkedAccountStore creates a new LinkedAccountStore
func NewLinkedAccountStore(db *DB, encryptor *TokenEncryptor) *LinkedAccountStore {
	return &LinkedAccountStore{db: db, encryptor: encryptor}
}

const accountColumns = `
	user_id, open_id, union_id, display_name, avatar_url, bio, verified,
	profile_link, follower_count, following_count, likes_count, video_count,
	token_blob, access_expires_at, refresh_expires_at,
	sync_status, last_sync_at, sync_error, created_at, updated_at
`

// Get retrieves a linked account by owner and platform open ID
func (s *LinkedAccountStore) Get(ctx context.Context, userID, openID string) (*domain.LinkedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE user_id = $1 AND open_id = $2`

	account, err := s.scanAccount(s.db.QueryRowContext(ctx, query, userID, openID))
	if err == sql.ErrNoRows {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// List retrieves all linked accounts for a user, newest first
func (s *LinkedAccountStore) List(ctx context.Context, userID string) ([]*domain.LinkedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.LinkedAccount
	for rows.Next() {
		account, err := s.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}

// Delete removes a linked account. Media rows cascade.
func (s *LinkedAccountStore) Delete(ctx context.Context, userID, openID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM linked_accounts WHERE user_id = $1 AND open_id = $2`, userID, openID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// ApplySnapshot writes the account row and the first page of media in one
// transaction, so a crash mid-write never leaves media without its account.
func (s *LinkedAccountStore) ApplySnapshot(ctx context.Context, account *domain.LinkedAccount, items []*domain.MediaItem) error {
	tokenBlob, err := s.encryptor.Encrypt(tokenMaterial{
		AccessToken:  account.AccessToken,
		RefreshToken: account.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("encrypt tokens: %w", err)
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO linked_accounts (
				user_id, open_id, union_id, display_name, avatar_url, bio, verified,
				profile_link, follower_count, following_count, likes_count, video_count,
				token_blob, access_expires_at, refresh_expires_at,
				sync_status, last_sync_at, sync_error, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			ON CONFLICT (user_id, open_id) DO UPDATE SET
				union_id = EXCLUDED.union_id,
				display_name = EXCLUDED.display_name,
				avatar_url = EXCLUDED.avatar_url,
				bio = EXCLUDED.bio,
				verified = EXCLUDED.verified,
				profile_link = EXCLUDED.profile_link,
				follower_count = EXCLUDED.follower_count,
				following_count = EXCLUDED.following_count,
				likes_count = EXCLUDED.likes_count,
				video_count = EXCLUDED.video_count,
				token_blob = EXCLUDED.token_blob,
				access_expires_at = EXCLUDED.access_expires_at,
				refresh_expires_at = EXCLUDED.refresh_expires_at,
				sync_status = EXCLUDED.sync_status,
				last_sync_at = EXCLUDED.last_sync_at,
				sync_error = EXCLUDED.sync_error,
				updated_at = EXCLUDED.updated_at
		`

		createdAt := account.CreatedAt
		if createdAt.IsZero() {
			createdAt = account.UpdatedAt
		}

		_, err := tx.ExecContext(ctx, query,
			account.UserID,
			account.OpenID,
			account.UnionID,
			account.DisplayName,
			account.AvatarURL,
			account.Bio,
			account.Verified,
			account.ProfileLink,
			account.FollowerCount,
			account.FollowingCount,
			account.LikesCount,
			account.VideoCount,
			tokenBlob,
			account.AccessExpiresAt,
			account.RefreshExpiresAt,
			string(account.SyncStatus),
			NullTime(account.LastSyncAt),
			account.SyncError,
			createdAt,
			account.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert account: %w", err)
		}

		if err := upsertMediaTx(ctx, tx, account.UserID, account.OpenID, items); err != nil {
			return fmt.Errorf("upsert snapshot media: %w", err)
		}
		return nil
	})
}

// UpdateSyncStatus transitions the sync state of an account
func (s *LinkedAccountStore) UpdateSyncStatus(ctx context.Context, userID, openID string, status domain.SyncStatus, errMsg string, at time.Time) error {
	if status != domain.SyncStatusError {
		errMsg = ""
	}

	query := `
		UPDATE linked_accounts
		SET sync_status = $1, sync_error = $2, updated_at = $3
		WHERE user_id = $4 AND open_id = $5
	`
	result, err := s.db.ExecContext(ctx, query, string(status), errMsg, at, userID, openID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// FinishSync records the terminal outcome of a history run. A successful run
// refreshes last_sync_at and the video count; a failed run keeps the previous
// count since the stored media is a partial but valid subset.
func (s *LinkedAccountStore) FinishSync(ctx context.Context, summary *domain.RunSummary) error {
	var (
		result sql.Result
		err    error
	)

	if summary.Success() {
		query := `
			UPDATE linked_accounts
			SET sync_status = $1, last_sync_at = $2, sync_error = '', video_count = $3, updated_at = $2
			WHERE user_id = $4 AND open_id = $5
		`
		result, err = s.db.ExecContext(ctx, query,
			string(domain.SyncStatusSuccess), summary.FinishedAt, summary.Items, summary.UserID, summary.OpenID)
	} else {
		query := `
			UPDATE linked_accounts
			SET sync_status = $1, sync_error = $2, updated_at = $3
			WHERE user_id = $4 AND open_id = $5
		`
		result, err = s.db.ExecContext(ctx, query,
			string(domain.SyncStatusError), summary.Err, summary.FinishedAt, summary.UserID, summary.OpenID)
	}
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// UpdateTokens replaces the stored token set after a refresh
func (s *LinkedAccountStore) UpdateTokens(ctx context.Context, userID, openID string, grant *domain.TokenGrant, at time.Time) error {
	tokenBlob, err := s.encryptor.Encrypt(tokenMaterial{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("encrypt tokens: %w", err)
	}

	query := `
		UPDATE linked_accounts
		SET token_blob = $1, access_expires_at = $2, refresh_expires_at = $3, updated_at = $4
		WHERE user_id = $5 AND open_id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		tokenBlob, grant.AccessExpiry(at), grant.RefreshExpiry(at), at, userID, openID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *LinkedAccountStore) scanAccount(row rowScanner) (*domain.LinkedAccount, error) {
	var (
		account          domain.LinkedAccount
		tokenBlob        []byte
		accessExpiresAt  sql.NullTime
		refreshExpiresAt sql.NullTime
		lastSyncAt       sql.NullTime
	)

	err := row.Scan(
		&account.UserID,
		&account.OpenID,
		&account.UnionID,
		&account.DisplayName,
		&account.AvatarURL,
		&account.Bio,
		&account.Verified,
		&account.ProfileLink,
		&account.FollowerCount,
		&account.FollowingCount,
		&account.LikesCount,
		&account.VideoCount,
		&tokenBlob,
		&accessExpiresAt,
		&refreshExpiresAt,
		&account.SyncStatus,
		&lastSyncAt,
		&account.SyncError,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(tokenBlob) > 0 {
		var tokens tokenMaterial
		if err := s.encryptor.Decrypt(tokenBlob, &tokens); err != nil {
			return nil, fmt.Errorf("decrypt tokens: %w", err)
		}
		account.AccessToken = tokens.AccessToken
		account.RefreshToken = tokens.RefreshToken
	}

	if accessExpiresAt.Valid {
		account.AccessExpiresAt = accessExpiresAt.Time
	}
	if refreshExpiresAt.Valid {
		account.RefreshExpiresAt = refreshExpiresAt.Time
	}
	account.LastSyncAt = TimePtr(lastSyncAt)

	return &account, nil
}
