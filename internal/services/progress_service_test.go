package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/edusehat/education-service/internal/events"
	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/validator"
)

func newProgressFixture(t *testing.T, unlockDelay time.Duration) (ProgressService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	service := NewProgressService(repo, nil, logger, validator.New(), publisher, unlockDelay)
	return service, repo, publisher
}

func seedCompleted(repo *mockRepository, userID string, stages ...models.StageID) {
	at := time.Now().Add(-time.Hour)
	for _, stageID := range stages {
		repo.progress.rows = append(repo.progress.rows, completedRow(userID, stageID, at))
	}
}

func TestProgressService_GetProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("new user sees pretest available", func(t *testing.T) {
		service, _, _ := newProgressFixture(t, 0)

		resp, err := service.GetProgress(ctx, "u1")
		if err != nil {
			t.Fatalf("GetProgress failed: %v", err)
		}
		if resp.Degraded {
			t.Error("fresh read should not be degraded")
		}
		if got := statusOf(t, resp.Stages, models.StagePretest); got != models.StageAvailable {
			t.Errorf("pretest should be available, got %s", got)
		}
	})

	t.Run("read failure degrades to new-user view", func(t *testing.T) {
		service, repo, _ := newProgressFixture(t, 0)
		repo.progress.getErr = errors.New("connection refused")

		resp, err := service.GetProgress(ctx, "u1")
		if err != nil {
			t.Fatalf("degraded GetProgress should not fail: %v", err)
		}
		if !resp.Degraded {
			t.Error("response should be flagged degraded")
		}
		if got := statusOf(t, resp.Stages, models.StagePretest); got != models.StageAvailable {
			t.Errorf("degraded view should show pretest available, got %s", got)
		}
	})
}

func TestProgressService_StartStage(t *testing.T) {
	ctx := context.Background()

	t.Run("locked stage cannot start", func(t *testing.T) {
		service, _, _ := newProgressFixture(t, 0)

		_, err := service.StartStage(ctx, "u1", models.StageEducation1)
		if !errors.Is(err, ErrStageLocked) {
			t.Fatalf("expected ErrStageLocked, got %v", err)
		}
	})

	t.Run("unknown stage fails validation", func(t *testing.T) {
		service, _, _ := newProgressFixture(t, 0)

		_, err := service.StartStage(ctx, "u1", models.StageID("education-9"))
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("start records started_at and publishes once", func(t *testing.T) {
		service, repo, publisher := newProgressFixture(t, 0)

		resp, err := service.StartStage(ctx, "u1", models.StagePretest)
		if err != nil {
			t.Fatalf("StartStage failed: %v", err)
		}
		if resp.Stage.StartedAt == nil {
			t.Error("started stage should carry started_at")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TypeStageStarted {
			t.Errorf("expected %s event, got %s", events.TypeStageStarted, published[0].Type)
		}

		// Second start keeps the original timestamp and stays silent
		first := *repo.progress.find("u1", models.StagePretest).StartedAt
		if _, err := service.StartStage(ctx, "u1", models.StagePretest); err != nil {
			t.Fatalf("second StartStage failed: %v", err)
		}
		if got := *repo.progress.find("u1", models.StagePretest).StartedAt; !got.Equal(first) {
			t.Error("restart must not overwrite started_at")
		}
		if got := len(publisher.GetPublishedEvents()); got != 1 {
			t.Errorf("restart must not publish again, got %d events", got)
		}
	})
}

func TestProgressService_CompleteStage(t *testing.T) {
	ctx := context.Background()

	t.Run("pretest requires a start", func(t *testing.T) {
		service, _, _ := newProgressFixture(t, 0)

		_, err := service.CompleteStage(ctx, "u1", models.StagePretest)
		if !errors.Is(err, ErrPrerequisiteMissing) {
			t.Fatalf("expected ErrPrerequisiteMissing, got %v", err)
		}
	})

	t.Run("completion unlocks the successor and publishes", func(t *testing.T) {
		service, repo, publisher := newProgressFixture(t, 0)

		if _, err := service.StartStage(ctx, "u1", models.StagePretest); err != nil {
			t.Fatalf("StartStage failed: %v", err)
		}
		publisher.ClearEvents()

		resp, err := service.CompleteStage(ctx, "u1", models.StagePretest)
		if err != nil {
			t.Fatalf("CompleteStage failed: %v", err)
		}
		if resp.Stage.Status != models.StageCompleted {
			t.Errorf("expected completed, got %s", resp.Stage.Status)
		}
		if resp.NextStage == nil || resp.NextStage.StageID != models.StageEducation1 {
			t.Fatal("completion should report education-1 as next stage")
		}
		if resp.NextStage.Status != models.StageAvailable {
			t.Errorf("education-1 should be available, got %s", resp.NextStage.Status)
		}
		if repo.progress.find("u1", models.StageEducation1) == nil {
			t.Error("successor row should be created in the same transaction")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeStageCompleted {
			t.Fatalf("expected one %s event, got %+v", events.TypeStageCompleted, published)
		}
	})

	t.Run("unlock delay time-gates the successor", func(t *testing.T) {
		service, repo, _ := newProgressFixture(t, 24*time.Hour)

		if _, err := service.StartStage(ctx, "u1", models.StagePretest); err != nil {
			t.Fatalf("StartStage failed: %v", err)
		}
		resp, err := service.CompleteStage(ctx, "u1", models.StagePretest)
		if err != nil {
			t.Fatalf("CompleteStage failed: %v", err)
		}

		successor := repo.progress.find("u1", models.StageEducation1)
		if successor == nil || successor.AvailableAt == nil {
			t.Fatal("successor should carry an unlock time")
		}
		if remaining := time.Until(*successor.AvailableAt); remaining < 23*time.Hour {
			t.Errorf("unlock time too close: %v", remaining)
		}
		if resp.NextStage.Status != models.StageLocked {
			t.Errorf("time-gated successor should be locked, got %s", resp.NextStage.Status)
		}
		if resp.NextStage.Remaining == "" {
			t.Error("time-gated successor should report a countdown")
		}
	})

	t.Run("education stage needs a monitoring response", func(t *testing.T) {
		service, repo, _ := newProgressFixture(t, 0)
		seedCompleted(repo, "u1", models.StagePretest)

		_, err := service.CompleteStage(ctx, "u1", models.StageEducation1)
		if !errors.Is(err, ErrPrerequisiteMissing) {
			t.Fatalf("expected ErrPrerequisiteMissing, got %v", err)
		}

		repo.monitoring.responses = append(repo.monitoring.responses, &models.MonitoringResponse{
			UserID:         "u1",
			EducationStage: models.StageEducation1,
			Responses:      datatypes.JSON(`{"q1":"ya"}`),
		})

		if _, err := service.CompleteStage(ctx, "u1", models.StageEducation1); err != nil {
			t.Fatalf("CompleteStage with monitoring response failed: %v", err)
		}
	})

	t.Run("education-3 additionally needs a commitment", func(t *testing.T) {
		service, repo, _ := newProgressFixture(t, 0)
		seedCompleted(repo, "u1", models.StagePretest, models.StageEducation1, models.StageEducation2)
		repo.monitoring.responses = append(repo.monitoring.responses, &models.MonitoringResponse{
			UserID:         "u1",
			EducationStage: models.StageEducation3,
			Responses:      datatypes.JSON(`{"q1":"ya"}`),
		})

		_, err := service.CompleteStage(ctx, "u1", models.StageEducation3)
		if !errors.Is(err, ErrPrerequisiteMissing) {
			t.Fatalf("expected ErrPrerequisiteMissing, got %v", err)
		}

		repo.commitment.records = append(repo.commitment.records, &models.CommitmentRecord{
			UserID:           "u1",
			CommitmentStatus: true,
			EducationStage:   models.StageEducation3,
		})

		if _, err := service.CompleteStage(ctx, "u1", models.StageEducation3); err != nil {
			t.Fatalf("CompleteStage with commitment failed: %v", err)
		}
	})

	t.Run("completing twice is a no-op", func(t *testing.T) {
		service, _, publisher := newProgressFixture(t, 0)

		if _, err := service.StartStage(ctx, "u1", models.StagePretest); err != nil {
			t.Fatalf("StartStage failed: %v", err)
		}
		if _, err := service.CompleteStage(ctx, "u1", models.StagePretest); err != nil {
			t.Fatalf("first CompleteStage failed: %v", err)
		}
		publisher.ClearEvents()

		resp, err := service.CompleteStage(ctx, "u1", models.StagePretest)
		if err != nil {
			t.Fatalf("repeat CompleteStage failed: %v", err)
		}
		if resp.Stage.Status != models.StageCompleted {
			t.Errorf("expected completed, got %s", resp.Stage.Status)
		}
		if got := len(publisher.GetPublishedEvents()); got != 0 {
			t.Errorf("repeat completion must not publish, got %d events", got)
		}
	})
}

func TestProgressService_SyncProfile(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newProgressFixture(t, 0)

	t.Run("full name and email", func(t *testing.T) {
		err := service.SyncProfile(ctx, &models.User{
			ID:       "u1",
			FullName: "Siti Rahma",
			Email:    "siti@example.com",
		})
		if err != nil {
			t.Fatalf("SyncProfile failed: %v", err)
		}

		profile := repo.profile.profiles["u1"]
		if profile == nil {
			t.Fatal("profile row should exist")
		}
		if profile.Username != "Siti Rahma" {
			t.Errorf("unexpected username %q", profile.Username)
		}
		if profile.Email == nil || *profile.Email != "siti@example.com" {
			t.Error("email should be stored")
		}
	})

	t.Run("username falls back to email local part", func(t *testing.T) {
		err := service.SyncProfile(ctx, &models.User{
			ID:    "u2",
			Email: "budi@example.com",
		})
		if err != nil {
			t.Fatalf("SyncProfile failed: %v", err)
		}
		if got := repo.profile.profiles["u2"].Username; got != "budi" {
			t.Errorf("expected fallback username budi, got %q", got)
		}
	})

	t.Run("missing identity rejected", func(t *testing.T) {
		if err := service.SyncProfile(ctx, nil); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})
}
