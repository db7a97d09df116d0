package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
	"github.com/edusehat/education-service/internal/validator"
)

type monitoringService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMonitoringService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) MonitoringService {
	return &monitoringService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

// SubmitMonitoring stores one questionnaire submission. The stage must be
// unlocked for the user; submissions are append-only so a re-submission
// creates another row.
func (s *monitoringService) SubmitMonitoring(ctx context.Context, userID string, req *MonitoringSubmitRequest) (*models.MonitoringResponse, error) {
	if errs := s.validator.ValidateMonitoringSubmit(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	stageID := models.StageID(req.EducationStage)
	now := time.Now()

	rows, err := s.repo.Progress().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if StageStatusFor(rows, stageID, now) == models.StageLocked {
		return nil, fmt.Errorf("%w: %s", ErrStageLocked, stageID)
	}

	response := &models.MonitoringResponse{
		UserID:         userID,
		EducationStage: stageID,
		Responses:      datatypes.JSON(req.Responses),
		CompletedAt:    now,
	}

	if err := s.repo.Monitoring().Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to store monitoring response: %w", err)
	}

	s.logger.Info("Monitoring response recorded",
		"user_id", userID,
		"education_stage", stageID)

	return response, nil
}

// SubmitCommitment stores the patient commitment confirmation collected on
// education-3.
func (s *monitoringService) SubmitCommitment(ctx context.Context, userID string, req *CommitmentSubmitRequest) (*models.CommitmentRecord, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	now := time.Now()

	rows, err := s.repo.Progress().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}
	if StageStatusFor(rows, models.StageEducation3, now) == models.StageLocked {
		return nil, fmt.Errorf("%w: %s", ErrStageLocked, models.StageEducation3)
	}

	record := &models.CommitmentRecord{
		UserID:           userID,
		CommitmentStatus: *req.CommitmentStatus,
		EducationStage:   models.StageEducation3,
		ConfirmedAt:      now,
	}

	if err := s.repo.Commitment().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store commitment record: %w", err)
	}

	s.logger.Info("Commitment recorded",
		"user_id", userID,
		"commitment_status", record.CommitmentStatus)

	return record, nil
}

func (s *monitoringService) ListByUser(ctx context.Context, userID string) (*MonitoringListResponse, error) {
	responses, err := s.repo.Monitoring().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list monitoring responses: %w", err)
	}

	return &MonitoringListResponse{
		Responses: responses,
		Total:     int64(len(responses)),
	}, nil
}
