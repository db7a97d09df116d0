package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/edusehat/education-service/internal/events"
	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
	"github.com/edusehat/education-service/internal/validator"
)

type progressService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	// unlockDelay time-gates education stages after their predecessor
	// completes. Zero disables time gating.
	unlockDelay time.Duration
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, unlockDelay time.Duration) ProgressService {
	return &progressService{
		repo:        repo,
		db:          db,
		logger:      logger,
		validator:   v,
		publisher:   publisher,
		unlockDelay: unlockDelay,
	}
}

// GetProgress returns the gating state of every stage. When progress rows
// cannot be loaded the pipeline degrades to the brand-new-user view instead
// of failing the dashboard.
func (s *progressService) GetProgress(ctx context.Context, userID string) (*ProgressResponse, error) {
	now := time.Now()

	rows, err := s.repo.Progress().GetByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load progress, serving degraded pipeline state",
			"user_id", userID,
			"error", err)
		return &ProgressResponse{
			UserID:   userID,
			Stages:   ComputeStageStates(nil, now),
			Degraded: true,
		}, nil
	}

	return &ProgressResponse{
		UserID: userID,
		Stages: ComputeStageStates(rows, now),
	}, nil
}

// StartStage records that the user opened an available stage. Starting an
// already started stage keeps the original started_at.
func (s *progressService) StartStage(ctx context.Context, userID string, stageID models.StageID) (*StageActionResponse, error) {
	if !models.IsValidStage(stageID) {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrValidationFailed, stageID)
	}

	now := time.Now()

	rows, err := s.repo.Progress().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	status := StageStatusFor(rows, stageID, now)
	if status == models.StageLocked {
		return nil, fmt.Errorf("%w: %s", ErrStageLocked, stageID)
	}

	wasStarted := false
	for _, row := range rows {
		if row.StageID == stageID && row.StartedAt != nil {
			wasStarted = true
			break
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Progress().Ensure(ctx, &models.StageProgress{
			UserID:  userID,
			StageID: stageID,
		}); err != nil {
			return err
		}
		return tx.Progress().MarkStarted(ctx, userID, stageID, now)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start stage %s: %w", stageID, err)
	}

	if !wasStarted {
		s.publishEvent(ctx, events.NewEvent(events.TypeStageStarted, events.StageStartedEvent{
			UserID:    userID,
			StageID:   stageID,
			StartedAt: now,
		}))
	}

	s.logger.Info("Stage started", "user_id", userID, "stage_id", stageID)

	return s.stageActionResponse(ctx, userID, stageID, nil)
}

// CompleteStage marks a stage done and makes its successor available. The
// whole mutation runs in one transaction so a crash never leaves a completed
// stage without its successor row.
func (s *progressService) CompleteStage(ctx context.Context, userID string, stageID models.StageID) (*StageActionResponse, error) {
	if !models.IsValidStage(stageID) {
		return nil, fmt.Errorf("%w: unknown stage %q", ErrValidationFailed, stageID)
	}

	now := time.Now()

	rows, err := s.repo.Progress().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	status := StageStatusFor(rows, stageID, now)
	if status == models.StageCompleted {
		// Completing twice is a no-op
		return s.stageActionResponse(ctx, userID, stageID, nil)
	}
	if status == models.StageLocked {
		return nil, fmt.Errorf("%w: %s", ErrStageLocked, stageID)
	}

	if err := s.checkCompletionPrerequisites(ctx, userID, stageID, rows); err != nil {
		return nil, err
	}

	nextStageID, hasNext := models.NextStage[stageID]

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Progress().Ensure(ctx, &models.StageProgress{
			UserID:  userID,
			StageID: stageID,
		}); err != nil {
			return err
		}
		if err := tx.Progress().MarkCompleted(ctx, userID, stageID, now); err != nil {
			return err
		}

		if hasNext {
			successor := &models.StageProgress{
				UserID:  userID,
				StageID: nextStageID,
			}
			if s.unlockDelay > 0 && models.IsEducationStage(nextStageID) {
				availableAt := now.Add(s.unlockDelay)
				successor.AvailableAt = &availableAt
			}
			if err := tx.Progress().Ensure(ctx, successor); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete stage %s: %w", stageID, err)
	}

	completedEvent := events.StageCompletedEvent{
		UserID:      userID,
		StageID:     stageID,
		CompletedAt: now,
	}
	if hasNext {
		completedEvent.NextStageID = &nextStageID
	}
	s.publishEvent(ctx, events.NewEvent(events.TypeStageCompleted, completedEvent))

	s.logger.Info("Stage completed", "user_id", userID, "stage_id", stageID)

	var next *models.StageID
	if hasNext {
		next = &nextStageID
	}
	return s.stageActionResponse(ctx, userID, stageID, next)
}

// checkCompletionPrerequisites enforces the per-stage artifacts a completion
// requires. Tests and education stages differ:
//   - pretest and postest must have been started first
//   - education stages need a monitoring response
//   - education-3 additionally needs a commitment record
//   - tanya-ahli has no prerequisite beyond being unlocked
func (s *progressService) checkCompletionPrerequisites(ctx context.Context, userID string, stageID models.StageID, rows []*models.StageProgress) error {
	switch {
	case stageID == models.StagePretest || stageID == models.StagePostest:
		for _, row := range rows {
			if row.StageID == stageID && row.StartedAt != nil {
				return nil
			}
		}
		return fmt.Errorf("%w: %s must be started before completion", ErrPrerequisiteMissing, stageID)

	case models.IsEducationStage(stageID):
		hasMonitoring, err := s.repo.Monitoring().ExistsForUserStage(ctx, userID, stageID)
		if err != nil {
			return fmt.Errorf("failed to check monitoring response: %w", err)
		}
		if !hasMonitoring {
			return fmt.Errorf("%w: monitoring response required for %s", ErrPrerequisiteMissing, stageID)
		}

		if stageID == models.StageEducation3 {
			hasCommitment, err := s.repo.Commitment().ExistsForUserStage(ctx, userID, stageID)
			if err != nil {
				return fmt.Errorf("failed to check commitment record: %w", err)
			}
			if !hasCommitment {
				return fmt.Errorf("%w: commitment required for %s", ErrPrerequisiteMissing, stageID)
			}
		}
	}

	return nil
}

// SyncProfile refreshes the local profile row from the authenticated identity
func (s *progressService) SyncProfile(ctx context.Context, user *models.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("%w: user identity required", ErrValidationFailed)
	}

	username := strings.TrimSpace(user.FullName)
	if username == "" && user.Email != "" {
		username = strings.SplitN(user.Email, "@", 2)[0]
	}

	profile := &models.Profile{
		ID:       user.ID,
		Username: username,
	}
	if user.Email != "" {
		email := user.Email
		profile.Email = &email
	}

	if err := s.repo.Profile().Upsert(ctx, profile); err != nil {
		return fmt.Errorf("failed to sync profile: %w", err)
	}
	return nil
}

func (s *progressService) stageActionResponse(ctx context.Context, userID string, stageID models.StageID, nextStageID *models.StageID) (*StageActionResponse, error) {
	rows, err := s.repo.Progress().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload progress: %w", err)
	}

	states := ComputeStageStates(rows, time.Now())

	resp := &StageActionResponse{}
	for i := range states {
		if states[i].StageID == stageID {
			resp.Stage = states[i]
		}
		if nextStageID != nil && states[i].StageID == *nextStageID {
			next := states[i]
			resp.NextStage = &next
		}
	}

	return resp, nil
}

func (s *progressService) publishEvent(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// Event delivery is best effort, the state change already happened
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
