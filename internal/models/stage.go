package models

import (
	"time"
)

// StageID identifies one step of the fixed learning pipeline.
type StageID string

const (
	StagePretest    StageID = "pretest"
	StageEducation1 StageID = "education-1"
	StageEducation2 StageID = "education-2"
	StageEducation3 StageID = "education-3"
	StageTanyaAhli  StageID = "tanya-ahli"
	StagePostest    StageID = "postest"
)

// Pipeline is the dashboard order of the stages. The order is fixed at build
// time and is not data-driven.
var Pipeline = []StageID{
	StagePretest,
	StageEducation1,
	StageEducation2,
	StageEducation3,
	StageTanyaAhli,
	StagePostest,
}

// RequiredPredecessor maps a stage to the stage that must be completed before
// it can unlock. A stage absent from the map has no prerequisite.
//
// The chain is linear except at the end: postest depends on education-3, not
// on tanya-ahli, which keeps tanya-ahli an optional branch. A previous-index
// rule would get that one wrong, which is why this is an explicit table.
var RequiredPredecessor = map[StageID]StageID{
	StageEducation1: StagePretest,
	StageEducation2: StageEducation1,
	StageEducation3: StageEducation2,
	StageTanyaAhli:  StageEducation3,
	StagePostest:    StageEducation3,
}

// NextStage maps a stage to the successor row that is lazily created when the
// stage completes. tanya-ahli and postest create nothing; tanya-ahli's own row
// appears when the user first opens or completes it.
var NextStage = map[StageID]StageID{
	StagePretest:    StageEducation1,
	StageEducation1: StageEducation2,
	StageEducation2: StageEducation3,
	StageEducation3: StagePostest,
}

// StageTitles holds the display titles used in reports and notification mail.
var StageTitles = map[StageID]string{
	StagePretest:    "Pre-Test",
	StageEducation1: "Edukasi 1",
	StageEducation2: "Edukasi 2",
	StageEducation3: "Edukasi 3",
	StageTanyaAhli:  "Tanya Ahli",
	StagePostest:    "Post-Test",
}

// IsValidStage reports whether id belongs to the pipeline.
func IsValidStage(id StageID) bool {
	for _, s := range Pipeline {
		if s == id {
			return true
		}
	}
	return false
}

// EducationStages are the stages that collect monitoring responses.
var EducationStages = []StageID{StageEducation1, StageEducation2, StageEducation3}

// IsEducationStage reports whether id is one of the three education modules.
func IsEducationStage(id StageID) bool {
	for _, s := range EducationStages {
		if s == id {
			return true
		}
	}
	return false
}

// StageStatus is the gating state of a stage for one user.
type StageStatus string

const (
	StageLocked    StageStatus = "locked"
	StageAvailable StageStatus = "available"
	StageCompleted StageStatus = "completed"
)

// StageProgress is the persisted per-user per-stage progress row. Rows are
// created lazily (when a predecessor completes or the user first opens the
// stage), mutated only by the owning user, and never deleted.
type StageProgress struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	UserID  string  `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_stage"`
	StageID StageID `json:"stage_id" gorm:"not null;size:32;uniqueIndex:idx_user_stage"`

	Completed   bool       `json:"completed" gorm:"not null;default:false;index"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// AvailableAt time-gates an otherwise unlocked stage. Nil means no gate.
	AvailableAt *time.Time `json:"available_at" gorm:"index"`

	// NotificationSentAt marks that the availability mail sweep already
	// attempted this row; it is set at most once.
	NotificationSentAt *time.Time `json:"notification_sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StageProgress) TableName() string {
	return "user_progress"
}
