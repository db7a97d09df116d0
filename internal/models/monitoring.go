package models

import (
	"time"

	"gorm.io/datatypes"
)

// MonitoringResponse is one submission of the medication-adherence
// questionnaire attached to an education stage. Append-only.
type MonitoringResponse struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	UserID         string  `json:"user_id" gorm:"not null;index;size:255"`
	EducationStage StageID `json:"education_stage" gorm:"not null;index;size:32"`

	// Responses holds the free-form answer set as submitted.
	Responses datatypes.JSON `json:"responses" gorm:"type:jsonb"`

	CompletedAt time.Time `json:"completed_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (MonitoringResponse) TableName() string {
	return "monitoring_responses"
}

// CommitmentRecord is the patient commitment confirmation collected on
// education-3. Append-only.
type CommitmentRecord struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	UserID           string  `json:"user_id" gorm:"not null;index;size:255"`
	CommitmentStatus bool    `json:"commitment_status" gorm:"not null;index"`
	EducationStage   StageID `json:"education_stage" gorm:"not null;size:32"`

	ConfirmedAt time.Time `json:"confirmed_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
}

func (CommitmentRecord) TableName() string {
	return "commitment_records"
}
