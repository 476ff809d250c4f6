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

// Ensure historySyncService implements HistorySyncService
var _ driving.HistorySyncService = (*historySyncService)(nil)

const (
	// historyLockTTL bounds a full-history pull. Long histories take a
	// while at 20 items per page, so this is generous.
	historyLockTTL = 10 * time.Minute

	// defaultMaxPages caps a single run at 10k videos. A cursor that
	// never terminates would otherwise loop forever.
	defaultMaxPages = 500
)

// HistorySyncConfig holds dependencies for the history sync service.
type HistorySyncConfig struct {
	Accounts driven.LinkedAccountStore
	Media    driven.MediaStore
	Provider driven.Provider
	Queue    driven.TaskQueue
	Lock     driven.DistributedLock

	// MaxPages overrides the per-run page cap (0 means default).
	MaxPages int

	Logger *slog.Logger
}

// historySyncService implements the HistorySyncService interface.
type historySyncService struct {
	accounts driven.LinkedAccountStore
	media    driven.MediaStore
	provider driven.Provider
	queue    driven.TaskQueue
	lock     driven.DistributedLock
	maxPages int
	logger   *slog.Logger
}

// NewHistorySyncService creates a new history sync service.
func NewHistorySyncService(cfg HistorySyncConfig) driving.HistorySyncService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &historySyncService{
		accounts: cfg.Accounts,
		media:    cfg.Media,
		provider: cfg.Provider,
		queue:    cfg.Queue,
		lock:     cfg.Lock,
		maxPages: maxPages,
		logger:   logger,
	}
}

// EnqueueHistorySync queues a background history pull for an account.
func (s *historySyncService) EnqueueHistorySync(ctx context.Context, userID, openID string) (*domain.Task, error) {
	account, err := s.accounts.Get(ctx, userID, openID)
	if err != nil {
		return nil, err
	}
	if !account.HasTokens() {
		return nil, fmt.Errorf("%w: account has no token material", domain.ErrTokenRefresh)
	}

	task := domain.NewHistorySyncTask(userID, openID)
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue history sync: %w", err)
	}

	s.logger.Info("history sync enqueued",
		"task_id", task.ID,
		"user_id", userID,
		"open_id", openID,
	)
	return task, nil
}

// GetTask retrieves a queued or finished sync task by ID.
func (s *historySyncService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.queue.GetTask(ctx, taskID)
}

// RunHistorySync walks the full paginated video history for an account.
// Each page is upserted as it arrives, so a mid-run failure keeps the pages
// already ingested. The run outcome lands on the account via a single
// terminal FinishSync write; page and token failures are reported through
// the summary, not the error return.
func (s *historySyncService) RunHistorySync(ctx context.Context, userID, openID string) (*domain.RunSummary, error) {
	account, err := s.accounts.Get(ctx, userID, openID)
	if err != nil {
		return nil, err
	}

	lockName := syncLockName(userID, openID)
	acquired, err := s.lock.Acquire(ctx, lockName, historyLockTTL)
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

	summary := &domain.RunSummary{
		UserID:    userID,
		OpenID:    openID,
		StartedAt: time.Now(),
	}

	if err := s.accounts.UpdateSyncStatus(ctx, userID, openID, domain.SyncStatusSyncing, "", summary.StartedAt); err != nil {
		s.logger.Warn("failed to mark account syncing", "user_id", userID, "open_id", openID, "error", err)
	}

	runErr := s.walkHistory(ctx, account, summary)

	summary.FinishedAt = time.Now()
	if runErr != nil {
		summary.Err = runErr.Error()
	}

	if err := s.accounts.FinishSync(context.WithoutCancel(ctx), summary); err != nil {
		s.logger.Error("failed to record sync outcome",
			"user_id", userID,
			"open_id", openID,
			"error", err,
		)
	}

	if runErr != nil {
		s.logger.Warn("history sync failed",
			"user_id", userID,
			"open_id", openID,
			"pages", summary.Pages,
			"items", summary.Items,
			"error", runErr,
		)
	} else {
		s.logger.Info("history sync completed",
			"user_id", userID,
			"open_id", openID,
			"pages", summary.Pages,
			"items", summary.Items,
			"duration_seconds", summary.FinishedAt.Sub(summary.StartedAt).Seconds(),
		)
	}

	return summary, nil
}

// walkHistory pulls pages until the provider reports no more, upserting
// each page before requesting the next.
func (s *historySyncService) walkHistory(ctx context.Context, account *domain.LinkedAccount, summary *domain.RunSummary) error {
	grant, _, err := ensureGrant(ctx, s.provider, s.accounts, account, summary.StartedAt)
	if err != nil {
		return err
	}

	var cursor int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if summary.Pages >= s.maxPages {
			return fmt.Errorf("%w: stopped after %d pages", domain.ErrPageLimitExceeded, summary.Pages)
		}

		page, err := s.provider.ListMedia(ctx, grant.AccessToken, account.OpenID, cursor, domain.MaxPageSize)
		if err != nil {
			return fmt.Errorf("%w at cursor %d: %w", domain.ErrPageFetch, cursor, err)
		}
		summary.Pages++

		if len(page.Items) > 0 {
			if err := s.media.UpsertBatch(ctx, account.UserID, account.OpenID, page.Items); err != nil {
				return fmt.Errorf("store page at cursor %d: %w", cursor, err)
			}
			summary.Items += len(page.Items)
		}

		if !page.HasMore {
			return nil
		}
		cursor = page.Cursor
	}
}
