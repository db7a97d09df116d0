package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/edusehat/education-service/internal/cache"
	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
)

// ExpertPostgreSQL implements ExpertRepository with a cached list read path.
// The listing is hit by every tanya-ahli page view while writes only come
// from the admin panel.
type ExpertPostgreSQL struct {
	db    *gorm.DB
	cache *cache.CacheManager
}

func NewExpertPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ExpertRepository {
	return &ExpertPostgreSQL{
		db:    db,
		cache: cache.NewCacheManager(redisClient),
	}
}

const expertListCacheKey = "list:all"

func (r *ExpertPostgreSQL) Create(ctx context.Context, expert *models.Expert) error {
	if err := r.db.WithContext(ctx).Create(expert).Error; err != nil {
		return fmt.Errorf("failed to create expert: %w", err)
	}

	cache.InvalidateExpertCache(ctx, r.cache, expert.ID)
	return nil
}

func (r *ExpertPostgreSQL) Update(ctx context.Context, expert *models.Expert) error {
	result := r.db.WithContext(ctx).
		Model(&models.Expert{}).
		Where("id = ?", expert.ID).
		Updates(expert)
	if result.Error != nil {
		return fmt.Errorf("failed to update expert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateExpertCache(ctx, r.cache, expert.ID)
	return nil
}

func (r *ExpertPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Expert{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete expert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateExpertCache(ctx, r.cache, id)
	return nil
}

func (r *ExpertPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Expert, error) {
	var expert models.Expert

	cacheKey := fmt.Sprintf("id:%d", id)
	if err := r.cache.Expert.Get(ctx, cacheKey, &expert); err == nil {
		return &expert, nil
	}

	err := r.db.WithContext(ctx).First(&expert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get expert: %w", err)
	}

	_ = r.cache.Expert.Set(ctx, cacheKey, &expert, cache.ExpertCacheConfig.TTL)
	return &expert, nil
}

func (r *ExpertPostgreSQL) List(ctx context.Context) ([]*models.Expert, error) {
	var experts []*models.Expert

	if err := r.cache.Expert.Get(ctx, expertListCacheKey, &experts); err == nil {
		return experts, nil
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&experts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list experts: %w", err)
	}

	_ = r.cache.Expert.Set(ctx, expertListCacheKey, experts, cache.ExpertCacheConfig.TTL)
	return experts, nil
}
