package services

import (
	"testing"
	"time"

	"github.com/edusehat/education-service/internal/models"
)

func statusOf(t *testing.T, states []StageState, stageID models.StageID) models.StageStatus {
	t.Helper()
	for _, state := range states {
		if state.StageID == stageID {
			return state.Status
		}
	}
	t.Fatalf("stage %s missing from computed states", stageID)
	return ""
}

func stateOf(t *testing.T, states []StageState, stageID models.StageID) StageState {
	t.Helper()
	for _, state := range states {
		if state.StageID == stageID {
			return state
		}
	}
	t.Fatalf("stage %s missing from computed states", stageID)
	return StageState{}
}

func completedRow(userID string, stageID models.StageID, at time.Time) *models.StageProgress {
	return &models.StageProgress{
		UserID:      userID,
		StageID:     stageID,
		Completed:   true,
		StartedAt:   &at,
		CompletedAt: &at,
	}
}

func TestComputeStageStates_NewUser(t *testing.T) {
	now := time.Now()
	states := ComputeStageStates(nil, now)

	if len(states) != len(models.Pipeline) {
		t.Fatalf("expected %d states, got %d", len(models.Pipeline), len(states))
	}

	if got := statusOf(t, states, models.StagePretest); got != models.StageAvailable {
		t.Errorf("pretest should be available for a new user, got %s", got)
	}
	for _, stageID := range models.Pipeline[1:] {
		if got := statusOf(t, states, stageID); got != models.StageLocked {
			t.Errorf("%s should be locked for a new user, got %s", stageID, got)
		}
	}
}

func TestComputeStageStates_SequentialUnlock(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	rows := []*models.StageProgress{
		completedRow("u1", models.StagePretest, earlier),
	}
	states := ComputeStageStates(rows, now)

	if got := statusOf(t, states, models.StagePretest); got != models.StageCompleted {
		t.Errorf("pretest should be completed, got %s", got)
	}
	if got := statusOf(t, states, models.StageEducation1); got != models.StageAvailable {
		t.Errorf("education-1 should unlock after pretest, got %s", got)
	}
	if got := statusOf(t, states, models.StageEducation2); got != models.StageLocked {
		t.Errorf("education-2 should stay locked, got %s", got)
	}
}

func TestComputeStageStates_MissingRowDoesNotLock(t *testing.T) {
	// A completed predecessor unlocks the successor even when the successor
	// row was never created.
	now := time.Now()
	earlier := now.Add(-time.Hour)

	rows := []*models.StageProgress{
		completedRow("u1", models.StagePretest, earlier),
		completedRow("u1", models.StageEducation1, earlier),
	}
	states := ComputeStageStates(rows, now)

	if got := statusOf(t, states, models.StageEducation2); got != models.StageAvailable {
		t.Errorf("education-2 should be available without its own row, got %s", got)
	}
}

func TestComputeStageStates_TimeGate(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-time.Hour)

	t.Run("future unlock time locks with countdown", func(t *testing.T) {
		availableAt := now.Add(2 * time.Hour)
		rows := []*models.StageProgress{
			completedRow("u1", models.StagePretest, earlier),
			{UserID: "u1", StageID: models.StageEducation1, AvailableAt: &availableAt},
		}
		states := ComputeStageStates(rows, now)

		state := stateOf(t, states, models.StageEducation1)
		if state.Status != models.StageLocked {
			t.Fatalf("education-1 should be time-locked, got %s", state.Status)
		}
		if state.Remaining != "02:00:00" {
			t.Errorf("expected countdown 02:00:00, got %q", state.Remaining)
		}
	})

	t.Run("past unlock time is available", func(t *testing.T) {
		availableAt := now.Add(-time.Minute)
		rows := []*models.StageProgress{
			completedRow("u1", models.StagePretest, earlier),
			{UserID: "u1", StageID: models.StageEducation1, AvailableAt: &availableAt},
		}
		states := ComputeStageStates(rows, now)

		state := stateOf(t, states, models.StageEducation1)
		if state.Status != models.StageAvailable {
			t.Fatalf("education-1 should be available, got %s", state.Status)
		}
		if state.Remaining != "" {
			t.Errorf("available stage should have no countdown, got %q", state.Remaining)
		}
	})

	t.Run("unlock time never locks an incomplete predecessor chain twice", func(t *testing.T) {
		availableAt := now.Add(time.Hour)
		rows := []*models.StageProgress{
			{UserID: "u1", StageID: models.StageEducation1, AvailableAt: &availableAt},
		}
		states := ComputeStageStates(rows, now)

		state := stateOf(t, states, models.StageEducation1)
		if state.Status != models.StageLocked {
			t.Fatalf("education-1 should be locked, got %s", state.Status)
		}
		// Pretest is not done, the lock is structural, not a countdown
		if state.Remaining != "" {
			t.Errorf("structural lock should have no countdown, got %q", state.Remaining)
		}
	})
}

func TestComputeStageStates_OptionalConsultBranch(t *testing.T) {
	// Postest unlocks from education-3 directly, tanya-ahli is a side branch
	now := time.Now()
	earlier := now.Add(-time.Hour)

	rows := []*models.StageProgress{
		completedRow("u1", models.StagePretest, earlier),
		completedRow("u1", models.StageEducation1, earlier),
		completedRow("u1", models.StageEducation2, earlier),
		completedRow("u1", models.StageEducation3, earlier),
	}
	states := ComputeStageStates(rows, now)

	if got := statusOf(t, states, models.StageTanyaAhli); got != models.StageAvailable {
		t.Errorf("tanya-ahli should be available after education-3, got %s", got)
	}
	if got := statusOf(t, states, models.StagePostest); got != models.StageAvailable {
		t.Errorf("postest should not wait for tanya-ahli, got %s", got)
	}
}

func TestComputeStageStates_CompletedWins(t *testing.T) {
	// A completed row stays completed even if its unlock time is in the future
	now := time.Now()
	futureUnlock := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	row := completedRow("u1", models.StageEducation1, earlier)
	row.AvailableAt = &futureUnlock

	rows := []*models.StageProgress{
		completedRow("u1", models.StagePretest, earlier),
		row,
	}
	states := ComputeStageStates(rows, now)

	if got := statusOf(t, states, models.StageEducation1); got != models.StageCompleted {
		t.Errorf("completed stage should stay completed, got %s", got)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "whole hours", d: 2 * time.Hour, want: "02:00:00"},
		{name: "mixed", d: time.Hour + 23*time.Minute + 45*time.Second, want: "01:23:45"},
		{name: "partial second rounds up", d: 500 * time.Millisecond, want: "00:00:01"},
		{name: "over a day keeps counting hours", d: 26 * time.Hour, want: "26:00:00"},
		{name: "negative clamps to zero", d: -time.Minute, want: "00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRemaining(tt.d); got != tt.want {
				t.Errorf("formatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}
