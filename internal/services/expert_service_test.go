package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/edusehat/education-service/internal/validator"
)

func newExpertFixture(t *testing.T) (ExpertService, *mockRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	return NewExpertService(repo, nil, logger, validator.New()), repo
}

func TestExpertService_CRUD(t *testing.T) {
	ctx := context.Background()
	service, _ := newExpertFixture(t)

	created, err := service.Create(ctx, &ExpertCreateRequest{
		Name:      "dr. Ratna Dewi",
		Specialty: "Gizi Klinik",
		Email:     strPtr("ratna@example.com"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created expert should have an id")
	}

	newBio := "Konselor gizi dengan 10 tahun pengalaman"
	updated, err := service.Update(ctx, created.ID, &ExpertUpdateRequest{Bio: &newBio})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Bio == nil || *updated.Bio != newBio {
		t.Error("bio should be updated")
	}
	if updated.Name != "dr. Ratna Dewi" {
		t.Error("untouched fields must survive a partial update")
	}

	experts, err := service.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(experts) != 1 {
		t.Fatalf("expected 1 expert, got %d", len(experts))
	}

	if err := service.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := service.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestExpertService_Validation(t *testing.T) {
	ctx := context.Background()
	service, _ := newExpertFixture(t)

	t.Run("missing required fields", func(t *testing.T) {
		_, err := service.Create(ctx, &ExpertCreateRequest{Name: "dr. Ratna"})
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("empty update rejected", func(t *testing.T) {
		_, err := service.Update(ctx, 1, &ExpertUpdateRequest{})
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("update of missing expert", func(t *testing.T) {
		name := "dr. Baru"
		_, err := service.Update(ctx, 999, &ExpertUpdateRequest{Name: &name})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
