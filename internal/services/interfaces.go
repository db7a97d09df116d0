package services

import (
	"context"
	"time"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
	"github.com/edusehat/education-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type StageStartRequest = validator.StageStartRequest
type StageCompleteRequest = validator.StageCompleteRequest
type MonitoringSubmitRequest = validator.MonitoringSubmitRequest
type CommitmentSubmitRequest = validator.CommitmentSubmitRequest
type ExpertCreateRequest = validator.ExpertCreateRequest
type ExpertUpdateRequest = validator.ExpertUpdateRequest
type AdminLoginRequest = validator.AdminLoginRequest

// ProgressResponse is the full pipeline state for one user
type ProgressResponse struct {
	UserID string       `json:"user_id"`
	Stages []StageState `json:"stages"`

	// Degraded is set when progress rows could not be loaded and the
	// pipeline state was computed as for a brand-new user.
	Degraded bool `json:"degraded,omitempty"`
}

// StageActionResponse is returned by stage start and complete operations
type StageActionResponse struct {
	Stage StageState `json:"stage"`

	// NextStage is the successor made available by a completion, if any
	NextStage *StageState `json:"next_stage,omitempty"`
}

// MonitoringListResponse wraps a monitoring response listing
type MonitoringListResponse struct {
	Responses []*models.MonitoringResponse `json:"responses"`
	Total     int64                        `json:"total"`
}

// MonitoringReportRow is one monitoring submission joined with the
// submitter's profile
type MonitoringReportRow struct {
	ID             uint           `json:"id"`
	UserID         string         `json:"user_id"`
	FullName       string         `json:"full_name"`
	Email          string         `json:"email"`
	EducationStage models.StageID `json:"education_stage"`
	StageTitle     string         `json:"stage_title"`
	CompletedAt    time.Time      `json:"completed_at"`
}

// MonitoringReportResponse is the admin monitoring report
type MonitoringReportResponse struct {
	Rows  []MonitoringReportRow `json:"rows"`
	Total int64                 `json:"total"`
}

// CommitmentReportRow is one commitment record joined with the
// submitter's profile
type CommitmentReportRow struct {
	ID               uint           `json:"id"`
	UserID           string         `json:"user_id"`
	FullName         string         `json:"full_name"`
	Email            string         `json:"email"`
	CommitmentStatus bool           `json:"commitment_status"`
	EducationStage   models.StageID `json:"education_stage"`
	StageTitle       string         `json:"stage_title"`
	ConfirmedAt      time.Time      `json:"confirmed_at"`
}

// CommitmentReportResponse is the admin commitment report
type CommitmentReportResponse struct {
	Rows  []CommitmentReportRow `json:"rows"`
	Total int64                 `json:"total"`
}

// ReportStatsResponse is the admin dashboard aggregate
type ReportStatsResponse struct {
	TotalParticipants int64                     `json:"total_participants"`
	MonitoringUsers   int64                     `json:"monitoring_users"`
	CommittedUsers    int64                     `json:"committed_users"`
	CompletedAll      int64                     `json:"completed_all"`
	CompletionRate    float64                   `json:"completion_rate"`
	Stages            []repositories.StageStats `json:"stages"`
	GeneratedAt       time.Time                 `json:"generated_at"`
}

// CompletionReportRow is one participant row of a completion report
type CompletionReportRow struct {
	UserID      string     `json:"user_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CompletionReportResponse is a per-stage completion report
type CompletionReportResponse struct {
	ReportName string                `json:"report_name"`
	StageID    models.StageID        `json:"stage_id"`
	Rows       []CompletionReportRow `json:"rows"`
}

// ExportResult is a generated report file
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SweepResult summarizes one notification sweep run
type SweepResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
}

// ===== SERVICE INTERFACES =====

// ProgressService drives the learning pipeline state machine
type ProgressService interface {
	GetProgress(ctx context.Context, userID string) (*ProgressResponse, error)
	StartStage(ctx context.Context, userID string, stageID models.StageID) (*StageActionResponse, error)
	CompleteStage(ctx context.Context, userID string, stageID models.StageID) (*StageActionResponse, error)

	// SyncProfile refreshes the local profile row from the authenticated
	// identity. Called by middleware on authenticated requests.
	SyncProfile(ctx context.Context, user *models.User) error
}

// MonitoringService records questionnaire and commitment submissions
type MonitoringService interface {
	SubmitMonitoring(ctx context.Context, userID string, req *MonitoringSubmitRequest) (*models.MonitoringResponse, error)
	SubmitCommitment(ctx context.Context, userID string, req *CommitmentSubmitRequest) (*models.CommitmentRecord, error)
	ListByUser(ctx context.Context, userID string) (*MonitoringListResponse, error)
}

// ExpertService manages the expert directory
type ExpertService interface {
	List(ctx context.Context) ([]*models.Expert, error)
	Get(ctx context.Context, id uint) (*models.Expert, error)
	Create(ctx context.Context, req *ExpertCreateRequest) (*models.Expert, error)
	Update(ctx context.Context, id uint, req *ExpertUpdateRequest) (*models.Expert, error)
	Delete(ctx context.Context, id uint) error
}

// ReportService produces the admin completion reports and exports
type ReportService interface {
	Stats(ctx context.Context) (*ReportStatsResponse, error)
	CompletionReport(ctx context.Context, reportName string) (*CompletionReportResponse, error)
	ExportCompletionReport(ctx context.Context, reportName, format string) (*ExportResult, error)

	MonitoringReport(ctx context.Context, filters repositories.MonitoringFilters) (*MonitoringReportResponse, error)
	CommitmentReport(ctx context.Context, filters repositories.CommitmentFilters) (*CommitmentReportResponse, error)
}

// NotificationService runs the stage availability mail sweep
type NotificationService interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}

// ServiceManager provides access to all services
type ServiceManager interface {
	Progress() ProgressService
	Monitoring() MonitoringService
	Expert() ExpertService
	Report() ReportService
	Notification() NotificationService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
