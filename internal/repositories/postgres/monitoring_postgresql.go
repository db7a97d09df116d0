package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
)

// MonitoringPostgreSQL implements MonitoringRepository
type MonitoringPostgreSQL struct {
	db *gorm.DB
}

func NewMonitoringPostgreSQL(db *gorm.DB) repositories.MonitoringRepository {
	return &MonitoringPostgreSQL{db: db}
}

func (r *MonitoringPostgreSQL) Create(ctx context.Context, response *models.MonitoringResponse) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("failed to create monitoring response: %w", err)
	}
	return nil
}

func (r *MonitoringPostgreSQL) ExistsForUserStage(ctx context.Context, userID string, stageID models.StageID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.MonitoringResponse{}).
		Where("user_id = ? AND education_stage = ?", userID, stageID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check monitoring response existence: %w", err)
	}
	return count > 0, nil
}

func (r *MonitoringPostgreSQL) ListByUser(ctx context.Context, userID string) ([]*models.MonitoringResponse, error) {
	var rows []*models.MonitoringResponse
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list monitoring responses: %w", err)
	}
	return rows, nil
}

func (r *MonitoringPostgreSQL) List(ctx context.Context, filters repositories.MonitoringFilters) ([]*models.MonitoringResponse, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MonitoringResponse{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.EducationStage != nil {
		query = query.Where("education_stage = ?", *filters.EducationStage)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count monitoring responses: %w", err)
	}

	query = query.Order("completed_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var rows []*models.MonitoringResponse
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list monitoring responses: %w", err)
	}

	return rows, total, nil
}

// CommitmentPostgreSQL implements CommitmentRepository
type CommitmentPostgreSQL struct {
	db *gorm.DB
}

func NewCommitmentPostgreSQL(db *gorm.DB) repositories.CommitmentRepository {
	return &CommitmentPostgreSQL{db: db}
}

func (r *CommitmentPostgreSQL) Create(ctx context.Context, record *models.CommitmentRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create commitment record: %w", err)
	}
	return nil
}

func (r *CommitmentPostgreSQL) ExistsForUserStage(ctx context.Context, userID string, stageID models.StageID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommitmentRecord{}).
		Where("user_id = ? AND education_stage = ?", userID, stageID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check commitment existence: %w", err)
	}
	return count > 0, nil
}

func (r *CommitmentPostgreSQL) List(ctx context.Context, filters repositories.CommitmentFilters) ([]*models.CommitmentRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CommitmentRecord{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Status != nil {
		query = query.Where("commitment_status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("confirmed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("confirmed_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commitment records: %w", err)
	}

	query = query.Order("confirmed_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var rows []*models.CommitmentRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list commitment records: %w", err)
	}

	return rows, total, nil
}
