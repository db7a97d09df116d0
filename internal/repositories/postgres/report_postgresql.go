package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/edusehat/education-service/internal/cache"
	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
)

// ReportPostgreSQL implements ReportRepository. The aggregate queries are
// cached under the stats prefix, invalidated on every progress mutation.
type ReportPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewReportPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ReportRepository {
	return &ReportPostgreSQL{
		db:    db,
		cache: cache.NewCacheHelper(redisClient, cache.StatsCacheConfig.Prefix),
	}
}

// CompletionRows joins progress rows for one stage with the local profile
// table. Users without a profile row still appear, with an empty username.
func (r *ReportPostgreSQL) CompletionRows(ctx context.Context, stageID models.StageID) ([]repositories.CompletionRow, error) {
	var rows []repositories.CompletionRow
	err := r.db.WithContext(ctx).
		Table("user_progress").
		Select("user_progress.user_id, COALESCE(profiles.username, '') AS username, profiles.email, user_progress.completed, user_progress.completed_at").
		Joins("LEFT JOIN profiles ON profiles.id = user_progress.user_id AND profiles.deleted_at IS NULL").
		Where("user_progress.stage_id = ?", stageID).
		Order("username ASC, user_progress.user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query completion rows: %w", err)
	}
	return rows, nil
}

func (r *ReportPostgreSQL) StageStats(ctx context.Context) ([]repositories.StageStats, error) {
	cacheKey := "report:stage_stats"

	var cached []repositories.StageStats
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	type statRow struct {
		StageID   models.StageID
		Started   int64
		Completed int64
	}

	var raw []statRow
	err := r.db.WithContext(ctx).
		Table("user_progress").
		Select("stage_id, COUNT(*) AS started, COUNT(*) FILTER (WHERE completed) AS completed").
		Group("stage_id").
		Scan(&raw).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query stage stats: %w", err)
	}

	byStage := make(map[models.StageID]statRow, len(raw))
	for _, row := range raw {
		byStage[row.StageID] = row
	}

	// Emit every pipeline stage in order, zero-filled for stages nobody
	// reached yet
	stats := make([]repositories.StageStats, 0, len(models.Pipeline))
	for _, stageID := range models.Pipeline {
		row := byStage[stageID]
		stats = append(stats, repositories.StageStats{
			StageID:   stageID,
			Started:   row.Started,
			Completed: row.Completed,
		})
	}

	_ = r.cache.Set(ctx, cacheKey, stats, cache.StatsCacheConfig.TTL)
	return stats, nil
}

func (r *ReportPostgreSQL) TotalParticipants(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("user_progress").
		Distinct("user_id").
		Count(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return total, nil
}

// ParticipantCounts returns the distinct-user aggregates behind the admin
// dashboard summary.
func (r *ReportPostgreSQL) ParticipantCounts(ctx context.Context) (*repositories.ParticipantCounts, error) {
	cacheKey := "report:participant_counts"

	var cached repositories.ParticipantCounts
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	counts := &repositories.ParticipantCounts{}

	if err := r.db.WithContext(ctx).
		Table("monitoring_responses").
		Distinct("user_id").
		Count(&counts.WithMonitoring).Error; err != nil {
		return nil, fmt.Errorf("failed to count monitoring users: %w", err)
	}

	if err := r.db.WithContext(ctx).
		Table("commitment_records").
		Where("commitment_status = ?", true).
		Distinct("user_id").
		Count(&counts.WithCommitment).Error; err != nil {
		return nil, fmt.Errorf("failed to count committed users: %w", err)
	}

	// A participant completed the program when every non-optional stage is
	// done. tanya-ahli does not count toward completion.
	required := make([]models.StageID, 0, len(models.Pipeline)-1)
	for _, stageID := range models.Pipeline {
		if stageID != models.StageTanyaAhli {
			required = append(required, stageID)
		}
	}
	completedUsers := r.db.
		Table("user_progress").
		Select("user_id").
		Where("stage_id IN ? AND completed", required).
		Group("user_id").
		Having("COUNT(DISTINCT stage_id) = ?", len(required))
	if err := r.db.WithContext(ctx).
		Table("(?) AS completed_users", completedUsers).
		Count(&counts.CompletedAll).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed participants: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, counts, cache.StatsCacheConfig.TTL)
	return counts, nil
}
