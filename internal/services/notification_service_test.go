package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/edusehat/education-service/internal/events"
	"github.com/edusehat/education-service/internal/mailer"
	"github.com/edusehat/education-service/internal/models"
)

// mockMailer records messages and can simulate delivery failure
type mockMailer struct {
	enabled bool
	sendErr error
	sent    []*mailer.Message
}

func (m *mockMailer) Send(ctx context.Context, msg *mailer.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) Enabled() bool { return m.enabled }

func newNotificationFixture(t *testing.T, m *mockMailer) (NotificationService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	return NewNotificationService(repo, logger, m, publisher), repo, publisher
}

func seedDueRow(repo *mockRepository, userID string, stageID models.StageID) *models.StageProgress {
	availableAt := time.Now().Add(-time.Hour)
	row := &models.StageProgress{
		UserID:      userID,
		StageID:     stageID,
		AvailableAt: &availableAt,
	}
	repo.progress.nextID++
	row.ID = repo.progress.nextID
	repo.progress.rows = append(repo.progress.rows, row)
	return row
}

func TestNotificationService_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("sends and marks notified", func(t *testing.T) {
		m := &mockMailer{enabled: true}
		service, repo, publisher := newNotificationFixture(t, m)

		row := seedDueRow(repo, "u1", models.StageEducation2)
		email := "siti@example.com"
		repo.profile.profiles["u1"] = &models.Profile{ID: "u1", Username: "siti", Email: &email}

		result, err := service.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep failed: %v", err)
		}
		if result.Processed != 1 || result.Sent != 1 || result.Skipped != 0 {
			t.Errorf("unexpected result %+v", result)
		}

		if len(m.sent) != 1 {
			t.Fatalf("expected 1 email, got %d", len(m.sent))
		}
		if m.sent[0].To != email {
			t.Errorf("email sent to %q", m.sent[0].To)
		}
		if row.NotificationSentAt == nil {
			t.Error("row should be marked notified")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypeStageNotified {
			t.Fatalf("expected one %s event, got %+v", events.TypeStageNotified, published)
		}
		data, ok := published[0].Data.(events.StageNotifiedEvent)
		if !ok {
			t.Fatalf("unexpected event payload %T", published[0].Data)
		}
		if !data.Delivered {
			t.Error("event should report delivery")
		}
	})

	t.Run("missing email skips but still marks", func(t *testing.T) {
		m := &mockMailer{enabled: true}
		service, repo, _ := newNotificationFixture(t, m)

		row := seedDueRow(repo, "u1", models.StageEducation2)

		result, err := service.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep failed: %v", err)
		}
		if result.Processed != 1 || result.Sent != 0 || result.Skipped != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if len(m.sent) != 0 {
			t.Error("no email should be sent without an address")
		}
		if row.NotificationSentAt == nil {
			t.Error("row must be marked notified so the sweep never retries it")
		}
	})

	t.Run("disabled mailer skips but still marks", func(t *testing.T) {
		m := &mockMailer{enabled: false}
		service, repo, _ := newNotificationFixture(t, m)

		row := seedDueRow(repo, "u1", models.StageEducation2)
		email := "siti@example.com"
		repo.profile.profiles["u1"] = &models.Profile{ID: "u1", Email: &email}

		result, err := service.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep failed: %v", err)
		}
		if result.Sent != 0 || result.Skipped != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if row.NotificationSentAt == nil {
			t.Error("row should be marked notified")
		}
	})

	t.Run("delivery failure counts as skipped", func(t *testing.T) {
		m := &mockMailer{enabled: true, sendErr: errors.New("smtp: connection reset")}
		service, repo, publisher := newNotificationFixture(t, m)

		row := seedDueRow(repo, "u1", models.StageEducation2)
		email := "siti@example.com"
		repo.profile.profiles["u1"] = &models.Profile{ID: "u1", Email: &email}

		result, err := service.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep failed: %v", err)
		}
		if result.Sent != 0 || result.Skipped != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if row.NotificationSentAt == nil {
			t.Error("row should be marked notified even on failure")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		if data := published[0].Data.(events.StageNotifiedEvent); data.Delivered {
			t.Error("event should report failed delivery")
		}
	})

	t.Run("completed and already-notified rows are not due", func(t *testing.T) {
		m := &mockMailer{enabled: true}
		service, repo, _ := newNotificationFixture(t, m)

		done := seedDueRow(repo, "u1", models.StageEducation1)
		done.Completed = true
		notified := seedDueRow(repo, "u1", models.StageEducation2)
		at := time.Now()
		notified.NotificationSentAt = &at

		result, err := service.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep failed: %v", err)
		}
		if result.Processed != 0 {
			t.Errorf("expected empty sweep, got %+v", result)
		}
	})
}
