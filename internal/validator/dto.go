package validator

import (
	"encoding/json"
)

// StageStartRequest marks a stage as opened by the user
type StageStartRequest struct {
	StageID string `json:"stage_id" validate:"required,stage_id"`
}

// StageCompleteRequest marks a stage as completed
type StageCompleteRequest struct {
	StageID string `json:"stage_id" validate:"required,stage_id"`
}

// MonitoringSubmitRequest records a monitoring questionnaire submission for
// one education stage
type MonitoringSubmitRequest struct {
	EducationStage string          `json:"education_stage" validate:"required,education_stage"`
	Responses      json.RawMessage `json:"responses" validate:"required"`
}

// CommitmentSubmitRequest records the patient commitment confirmation
type CommitmentSubmitRequest struct {
	CommitmentStatus *bool `json:"commitment_status" validate:"required"`
}

// ExpertCreateRequest creates a new expert entry
type ExpertCreateRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Specialty   string  `json:"specialty" validate:"required,min=1,max=200"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,min=6,max=32"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
}

// ExpertUpdateRequest updates an existing expert entry
type ExpertUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Specialty   *string `json:"specialty" validate:"omitempty,min=1,max=200"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,min=6,max=32"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
}

// AdminLoginRequest authenticates against the static admin credentials
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
