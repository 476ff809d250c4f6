package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipfolio/sync-core/internal/core/domain"
	"github.com/clipfolio/sync-core/internal/core/ports/driven"
	"github.com/clipfolio/sync-core/internal/core/ports/driving"
)

// Ensure linkService implements LinkService
var _ driving.LinkService = (*linkService)(nil)

// resyncLockTTL bounds how long a resync can hold the per-account lock.
const resyncLockTTL = 2 * time.Minute

const (
	defaultMediaLimit = 50
	maxMediaLimit     = 200
)

// LinkServiceConfig holds dependencies for the link service.
type LinkServiceConfig struct {
	Accounts driven.LinkedAccountStore
	Media    driven.MediaStore
	Provider driven.Provider
	Lock     driven.DistributedLock
	Logger   *slog.Logger
}

// linkService implements the LinkService interface.
type linkService struct {
	accounts driven.LinkedAccountStore
	media    driven.MediaStore
	provider driven.Provider
	lock     driven.DistributedLock
	logger   *slog.Logger
}

// NewLinkService creates a new link service.
func NewLinkService(cfg LinkServiceConfig) driving.LinkService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &linkService{
		accounts: cfg.Accounts,
		media:    cfg.Media,
		provider: cfg.Provider,
		lock:     cfg.Lock,
		logger:   logger,
	}
}

// LinkAccount connects a new provider account from an OAuth authorization code.
// The first media page is fetched best-effort: a media failure during linking
// logs a warning and the account is stored with an empty history.
func (s *linkService) LinkAccount(ctx context.Context, userID string, req driving.LinkRequest) (*domain.LinkedAccountSummary, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", domain.ErrInvalidInput)
	}

	grant, err := s.provider.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		return nil, fmt.Errorf("%w: provider returned incomplete grant", domain.ErrTokenExchange)
	}

	snapshot, err := s.fetchSnapshot(ctx, grant, grant.OpenID, false)
	if err != nil {
		return nil, err
	}

	account := snapshot.Account(userID)
	account.CreatedAt = snapshot.FetchedAt

	// Re-linking an existing account keeps its history metadata.
	if existing, err := s.accounts.Get(ctx, userID, account.OpenID); err == nil {
		account.CreatedAt = existing.CreatedAt
		account.SyncStatus = existing.SyncStatus
		account.LastSyncAt = existing.LastSyncAt
		account.SyncError = existing.SyncError
	}

	if err := s.accounts.ApplySnapshot(ctx, account, snapshot.Media); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}

	s.logger.Info("account linked",
		"user_id", userID,
		"open_id", account.OpenID,
		"media_items", len(snapshot.Media),
	)

	return account.ToSummary(), nil
}

// ResyncAccount refreshes tokens if needed and re-fetches the profile and
// first media page. Unlike linking, every fetch is fatal here: the caller
// asked for fresh data and silent staleness would defeat the point.
func (s *linkService) ResyncAccount(ctx context.Context, userID, openID string) (*domain.LinkedAccountSummary, error) {
	account, err := s.accounts.Get(ctx, userID, openID)
	if err != nil {
		return nil, err
	}

	lockName := syncLockName(userID, openID)
	acquired, err := s.lock.Acquire(ctx, lockName, resyncLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrSyncInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), lockName); err != nil {
			s.logger.Warn("failed to release sync lock", "lock", lockName, "error", err)
		}
	}()

	now := time.Now()
	grant, refreshed, err := ensureGrant(ctx, s.provider, s.accounts, account, now)
	if err != nil {
		s.recordResyncFailure(ctx, userID, openID, err)
		return nil, err
	}

	snapshot, err := s.fetchSnapshot(ctx, grant, openID, true)
	if err != nil {
		s.recordResyncFailure(ctx, userID, openID, err)
		return nil, err
	}

	fresh := snapshot.Account(userID)
	fresh.CreatedAt = account.CreatedAt
	fresh.SyncStatus = account.SyncStatus
	fresh.LastSyncAt = account.LastSyncAt
	fresh.SyncError = account.SyncError
	if !refreshed {
		fresh.AccessExpiresAt = account.AccessExpiresAt
		fresh.RefreshExpiresAt = account.RefreshExpiresAt
	}

	if err := s.accounts.ApplySnapshot(ctx, fresh, snapshot.Media); err != nil {
		return nil, fmt.Errorf("persist account: %w", err)
	}

	s.logger.Info("account resynced",
		"user_id", userID,
		"open_id", openID,
		"tokens_refreshed", refreshed,
		"media_items", len(snapshot.Media),
	)

	return fresh.ToSummary(), nil
}

// recordResyncFailure writes the failure onto the account's sync status.
// Previously-good profile and token fields are left untouched. Best effort:
// the caller already has the real error to return.
func (s *linkService) recordResyncFailure(ctx context.Context, userID, openID string, cause error) {
	if err := s.accounts.UpdateSyncStatus(ctx, userID, openID, domain.SyncStatusError, cause.Error(), time.Now()); err != nil {
		s.logger.Warn("failed to record resync failure",
			"user_id", userID,
			"open_id", openID,
			"error", err,
		)
	}
}

// Disconnect removes a linked account and its stored media.
func (s *linkService) Disconnect(ctx context.Context, userID, openID string) error {
	if _, err := s.accounts.Get(ctx, userID, openID); err != nil {
		return err
	}

	if err := s.media.DeleteByAccount(ctx, userID, openID); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if err := s.accounts.Delete(ctx, userID, openID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.logger.Info("account disconnected", "user_id", userID, "open_id", openID)
	return nil
}

// GetAccount retrieves the token-free view of a linked account.
func (s *linkService) GetAccount(ctx context.Context, userID, openID string) (*domain.LinkedAccountSummary, error) {
	account, err := s.accounts.Get(ctx, userID, openID)
	if err != nil {
		return nil, err
	}
	return account.ToSummary(), nil
}

// ListAccounts retrieves all linked accounts for a user.
func (s *linkService) ListAccounts(ctx context.Context, userID string) ([]*domain.LinkedAccountSummary, error) {
	accounts, err := s.accounts.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.LinkedAccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, account.ToSummary())
	}
	return summaries, nil
}

// ListMedia retrieves stored media for an account with pagination.
func (s *linkService) ListMedia(ctx context.Context, userID, openID string, limit, offset int) (*driving.MediaListResult, error) {
	if _, err := s.accounts.Get(ctx, userID, openID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMediaLimit
	}
	if limit > maxMediaLimit {
		limit = maxMediaLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.media.GetByAccount(ctx, userID, openID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	total, err := s.media.CountByAccount(ctx, userID, openID)
	if err != nil {
		return nil, fmt.Errorf("count media: %w", err)
	}

	return &driving.MediaListResult{Items: items, Total: total}, nil
}

// ensureGrant returns usable token material for the account, refreshing
// through the provider when the access token has expired. A refreshed grant
// is persisted immediately: the provider rotates refresh tokens and the old
// one is dead the moment the refresh succeeds.
func ensureGrant(ctx context.Context, provider driven.Provider, accounts driven.LinkedAccountStore, account *domain.LinkedAccount, now time.Time) (*domain.TokenGrant, bool, error) {
	if !account.HasTokens() || account.RefreshTokenExpired(now) {
		return nil, false, fmt.Errorf("%w: account must be reconnected", domain.ErrTokenRefresh)
	}

	if !account.AccessTokenExpired(now) {
		return &domain.TokenGrant{
			OpenID:       account.OpenID,
			AccessToken:  account.AccessToken,
			RefreshToken: account.RefreshToken,
		}, false, nil
	}

	grant, err := provider.RefreshGrant(ctx, account.RefreshToken)
	if err != nil {
		return nil, false, fmt.Errorf("refresh grant: %w", err)
	}
	if grant.AccessToken == "" || grant.RefreshToken == "" {
		return nil, false, fmt.Errorf("%w: provider returned incomplete grant", domain.ErrTokenRefresh)
	}
	if grant.OpenID == "" {
		grant.OpenID = account.OpenID
	}

	if err := accounts.UpdateTokens(ctx, account.UserID, account.OpenID, grant, now); err != nil {
		return nil, false, fmt.Errorf("persist rotated tokens: %w", err)
	}

	return grant, true, nil
}

// fetchSnapshot pulls the profile and first media page for a grant.
// The profile fetch is always fatal; the media fetch is fatal only when
// mediaFatal is set, otherwise the snapshot carries an empty history.
// Accounts whose profile reports zero videos skip the media call entirely.
func (s *linkService) fetchSnapshot(ctx context.Context, grant *domain.TokenGrant, openID string, mediaFatal bool) (*domain.AccountSnapshot, error) {
	profile, err := s.provider.FetchProfile(ctx, grant.AccessToken, openID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if openID == "" {
		openID = profile.OpenID
	}

	var items []*domain.MediaItem
	if profile.VideoCount > 0 {
		page, err := s.provider.ListMedia(ctx, grant.AccessToken, openID, 0, domain.MaxPageSize)
		if err != nil {
			if mediaFatal {
				return nil, fmt.Errorf("fetch media: %w", err)
			}
			s.logger.Warn("first media page unavailable, linking without history",
				"open_id", openID,
				"error", err,
			)
		} else {
			items = page.Items
		}
	}

	return &domain.AccountSnapshot{
		Grant:     grant,
		Profile:   profile,
		Media:     items,
		FetchedAt: time.Now(),
	}, nil
}

// syncLockName is the per-account lock serializing resyncs and history pulls.
func syncLockName(userID, openID string) string {
	return "account_sync:" + userID + ":" + openID
}
