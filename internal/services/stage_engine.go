package services

import (
	"fmt"
	"time"

	"github.com/edusehat/education-service/internal/models"
)

// StageState is the computed gating state of one stage for one user
type StageState struct {
	StageID models.StageID     `json:"stage_id"`
	Title   string             `json:"title"`
	Status  models.StageStatus `json:"status"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	AvailableAt *time.Time `json:"available_at,omitempty"`

	// Remaining is the HH:MM:SS countdown until a time-gated stage unlocks.
	// Empty unless the stage is locked purely by its unlock time.
	Remaining string `json:"remaining,omitempty"`
}

// ComputeStageStates derives the gating state of every pipeline stage from
// the user's progress rows. It is a pure function of (rows, now).
//
// A stage is completed when its row says so. It is available when its
// predecessor (if any) is completed and its own row, if present, carries no
// future unlock time. A missing row never locks a stage whose predecessor is
// done; a present row with a future available_at does.
func ComputeStageStates(rows []*models.StageProgress, now time.Time) []StageState {
	byStage := make(map[models.StageID]*models.StageProgress, len(rows))
	for _, row := range rows {
		byStage[row.StageID] = row
	}

	completed := make(map[models.StageID]bool, len(rows))
	for _, row := range rows {
		if row.Completed {
			completed[row.StageID] = true
		}
	}

	states := make([]StageState, 0, len(models.Pipeline))
	for _, stageID := range models.Pipeline {
		state := StageState{
			StageID: stageID,
			Title:   models.StageTitles[stageID],
			Status:  models.StageLocked,
		}

		row := byStage[stageID]
		if row != nil {
			state.StartedAt = row.StartedAt
			state.CompletedAt = row.CompletedAt
			state.AvailableAt = row.AvailableAt
		}

		switch {
		case completed[stageID]:
			state.Status = models.StageCompleted

		case predecessorSatisfied(stageID, completed):
			if row != nil && row.AvailableAt != nil && row.AvailableAt.After(now) {
				state.Status = models.StageLocked
				state.Remaining = formatRemaining(row.AvailableAt.Sub(now))
			} else {
				state.Status = models.StageAvailable
			}
		}

		states = append(states, state)
	}

	return states
}

// StageStatusFor returns the computed status of a single stage
func StageStatusFor(rows []*models.StageProgress, stageID models.StageID, now time.Time) models.StageStatus {
	for _, state := range ComputeStageStates(rows, now) {
		if state.StageID == stageID {
			return state.Status
		}
	}
	return models.StageLocked
}

func predecessorSatisfied(stageID models.StageID, completed map[models.StageID]bool) bool {
	predecessor, ok := models.RequiredPredecessor[stageID]
	if !ok {
		return true // first stage has no prerequisite
	}
	return completed[predecessor]
}

// formatRemaining renders a countdown as HH:MM:SS, rounding partial seconds
// up so the display never shows 00:00:00 while still locked.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	secs := int64((d + time.Second - 1) / time.Second)
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
