package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edusehat/education-service/internal/cache"
	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
)

// ProgressPostgreSQL implements ProgressRepository backed by PostgreSQL with
// a per-user Redis cache in front of the read path. Stage mutations drop the
// user's cached pipeline state and the report aggregates derived from it.
type ProgressPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewProgressPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProgressRepository {
	return &ProgressPostgreSQL{
		db:    db,
		cache: cache.NewCacheManager(redisClient),
	}
}

func (r *ProgressPostgreSQL) userCacheKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// Ensure inserts a row unless one exists for the same (user, stage). The
// unique index on (user_id, stage_id) makes concurrent inserts collapse into
// a single row.
func (r *ProgressPostgreSQL) Ensure(ctx context.Context, progress *models.StageProgress) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "stage_id"}},
			DoNothing: true,
		}).
		Create(progress).Error
	if err != nil {
		return fmt.Errorf("failed to ensure progress row: %w", err)
	}

	cache.InvalidateProgressCache(ctx, r.cache, progress.UserID)
	return nil
}

func (r *ProgressPostgreSQL) GetByUser(ctx context.Context, userID string) ([]*models.StageProgress, error) {
	var rows []*models.StageProgress

	cacheKey := r.userCacheKey(userID)
	if err := r.cache.Progress.Get(ctx, cacheKey, &rows); err == nil {
		return rows, nil
	}

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get progress for user: %w", err)
	}

	_ = r.cache.Progress.Set(ctx, cacheKey, rows, cache.ProgressCacheConfig.TTL)

	return rows, nil
}

func (r *ProgressPostgreSQL) GetByUserAndStage(ctx context.Context, userID string, stageID models.StageID) (*models.StageProgress, error) {
	var row models.StageProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND stage_id = ?", userID, stageID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get progress row: %w", err)
	}
	return &row, nil
}

// MarkStarted sets started_at once. A row that already has started_at keeps
// its original timestamp.
func (r *ProgressPostgreSQL) MarkStarted(ctx context.Context, userID string, stageID models.StageID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.StageProgress{}).
		Where("user_id = ? AND stage_id = ? AND started_at IS NULL", userID, stageID).
		Update("started_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark progress started: %w", result.Error)
	}

	cache.InvalidateProgressCache(ctx, r.cache, userID)
	return nil
}

// MarkCompleted sets completed and completed_at. Completing an already
// completed row is a no-op that keeps the original completed_at.
func (r *ProgressPostgreSQL) MarkCompleted(ctx context.Context, userID string, stageID models.StageID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.StageProgress{}).
		Where("user_id = ? AND stage_id = ? AND completed = ?", userID, stageID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark progress completed: %w", result.Error)
	}

	cache.InvalidateProgressCache(ctx, r.cache, userID)
	return nil
}

func (r *ProgressPostgreSQL) List(ctx context.Context, filters repositories.ProgressFilters) ([]*models.StageProgress, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StageProgress{})

	if filters.StageID != nil {
		query = query.Where("stage_id = ?", *filters.StageID)
	}
	if filters.Completed != nil {
		query = query.Where("completed = ?", *filters.Completed)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count progress rows: %w", err)
	}

	query = query.Order("created_at ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var rows []*models.StageProgress
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list progress rows: %w", err)
	}

	return rows, total, nil
}

// ListDueForNotification returns rows whose unlock time has passed but no
// availability mail was attempted yet.
func (r *ProgressPostgreSQL) ListDueForNotification(ctx context.Context, now time.Time) ([]*models.StageProgress, error) {
	var rows []*models.StageProgress
	err := r.db.WithContext(ctx).
		Where("available_at IS NOT NULL AND available_at <= ?", now).
		Where("notification_sent_at IS NULL").
		Where("completed = ?", false).
		Order("available_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	return rows, nil
}

func (r *ProgressPostgreSQL) MarkNotified(ctx context.Context, id uint, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.StageProgress{}).
		Where("id = ?", id).
		Update("notification_sent_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark progress notified: %w", err)
	}
	return nil
}
