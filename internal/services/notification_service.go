package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edusehat/education-service/internal/events"
	"github.com/edusehat/education-service/internal/mailer"
	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
)

type notificationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	mailer    mailer.Mailer
	publisher events.EventPublisher
}

func NewNotificationService(repo repositories.Repository, logger *slog.Logger, m mailer.Mailer, publisher events.EventPublisher) NotificationService {
	return &notificationService{
		repo:      repo,
		logger:    logger,
		mailer:    m,
		publisher: publisher,
	}
}

// Sweep finds progress rows whose unlock time has passed without a
// notification and emails the owner once. Every processed row is marked
// notified even when delivery fails, so a broken mailbox cannot wedge the
// sweep into retrying the same row forever.
func (s *notificationService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := time.Now()

	due, err := s.repo.Progress().ListDueForNotification(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}

	result := &SweepResult{}

	for _, row := range due {
		result.Processed++

		delivered := s.notify(ctx, row, now)
		if delivered {
			result.Sent++
		} else {
			result.Skipped++
		}

		if err := s.repo.Progress().MarkNotified(ctx, row.ID, now); err != nil {
			s.logger.Error("Failed to mark progress row notified",
				"progress_id", row.ID,
				"user_id", row.UserID,
				"error", err)
		}
	}

	if result.Processed > 0 {
		s.logger.Info("Notification sweep finished",
			"processed", result.Processed,
			"sent", result.Sent,
			"skipped", result.Skipped)
	}

	return result, nil
}

// notify attempts one email and reports whether it was delivered
func (s *notificationService) notify(ctx context.Context, row *models.StageProgress, now time.Time) bool {
	email := s.resolveEmail(ctx, row.UserID)
	if email == "" {
		s.logger.Warn("No email for user, skipping notification",
			"user_id", row.UserID,
			"stage_id", row.StageID)
		s.publishNotified(ctx, row, email, false, now)
		return false
	}

	if !s.mailer.Enabled() {
		s.logger.Warn("Mailer disabled, skipping notification",
			"user_id", row.UserID,
			"stage_id", row.StageID)
		s.publishNotified(ctx, row, email, false, now)
		return false
	}

	title := models.StageTitles[row.StageID]
	msg := &mailer.Message{
		To:      email,
		Subject: fmt.Sprintf("Materi %s sudah tersedia", title),
		Body: fmt.Sprintf(
			"Halo,\n\nMateri %s di EduSehat sudah dapat diakses. Silakan masuk ke aplikasi untuk melanjutkan pembelajaran Anda.\n\nSalam sehat,\nTim EduSehat\n",
			title),
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send notification email",
			"user_id", row.UserID,
			"stage_id", row.StageID,
			"error", err)
		s.publishNotified(ctx, row, email, false, now)
		return false
	}

	s.logger.Info("Notification email sent",
		"user_id", row.UserID,
		"stage_id", row.StageID)
	s.publishNotified(ctx, row, email, true, now)
	return true
}

func (s *notificationService) resolveEmail(ctx context.Context, userID string) string {
	profile, err := s.repo.Profile().GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.logger.Error("Failed to load profile for notification",
				"user_id", userID,
				"error", err)
		}
		return ""
	}
	if profile.Email == nil {
		return ""
	}
	return *profile.Email
}

func (s *notificationService) publishNotified(ctx context.Context, row *models.StageProgress, email string, delivered bool, now time.Time) {
	if s.publisher == nil {
		return
	}
	event := events.NewEvent(events.TypeStageNotified, events.StageNotifiedEvent{
		UserID:     row.UserID,
		StageID:    row.StageID,
		Email:      email,
		Delivered:  delivered,
		NotifiedAt: now,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
