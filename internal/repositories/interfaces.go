package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/edusehat/education-service/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ProgressFilters defines filters for progress queries
type ProgressFilters struct {
	StageID   *models.StageID
	Completed *bool
	Limit     int
	Offset    int
}

// MonitoringFilters defines filters for monitoring response queries
type MonitoringFilters struct {
	UserID         *string
	EducationStage *models.StageID
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
}

// CommitmentFilters defines filters for commitment record queries
type CommitmentFilters struct {
	UserID   *string
	Status   *bool
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// ProgressRepository persists per-user per-stage pipeline state
type ProgressRepository interface {
	// Ensure inserts a progress row unless one already exists for the same
	// user and stage. Concurrent calls never produce duplicates.
	Ensure(ctx context.Context, progress *models.StageProgress) error

	GetByUser(ctx context.Context, userID string) ([]*models.StageProgress, error)
	GetByUserAndStage(ctx context.Context, userID string, stageID models.StageID) (*models.StageProgress, error)

	MarkStarted(ctx context.Context, userID string, stageID models.StageID, at time.Time) error
	MarkCompleted(ctx context.Context, userID string, stageID models.StageID, at time.Time) error

	List(ctx context.Context, filters ProgressFilters) ([]*models.StageProgress, int64, error)

	// Notification sweep support
	ListDueForNotification(ctx context.Context, now time.Time) ([]*models.StageProgress, error)
	MarkNotified(ctx context.Context, id uint, at time.Time) error
}

// MonitoringRepository persists monitoring questionnaire submissions
type MonitoringRepository interface {
	Create(ctx context.Context, response *models.MonitoringResponse) error
	ExistsForUserStage(ctx context.Context, userID string, stageID models.StageID) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*models.MonitoringResponse, error)
	List(ctx context.Context, filters MonitoringFilters) ([]*models.MonitoringResponse, int64, error)
}

// CommitmentRepository persists commitment confirmations
type CommitmentRepository interface {
	Create(ctx context.Context, record *models.CommitmentRecord) error
	ExistsForUserStage(ctx context.Context, userID string, stageID models.StageID) (bool, error)
	List(ctx context.Context, filters CommitmentFilters) ([]*models.CommitmentRecord, int64, error)
}

// ExpertRepository persists the admin-managed expert directory
type ExpertRepository interface {
	Create(ctx context.Context, expert *models.Expert) error
	Update(ctx context.Context, expert *models.Expert) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Expert, error)

	// List returns experts newest first
	List(ctx context.Context) ([]*models.Expert, error)
}

// ProfileRepository persists the local per-user profile rows used by reports
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error)
}

// CompletionRow is one participant row of a stage completion report
type CompletionRow struct {
	UserID      string
	Username    string
	Email       *string
	Completed   bool
	CompletedAt *time.Time
}

// StageStats holds per-stage aggregate counts
type StageStats struct {
	StageID   models.StageID `json:"stage_id"`
	Started   int64          `json:"started"`
	Completed int64          `json:"completed"`
}

// ParticipantCounts holds the distinct-participant aggregates of the
// admin dashboard
type ParticipantCounts struct {
	WithMonitoring int64 `json:"with_monitoring"`
	WithCommitment int64 `json:"with_commitment"`
	CompletedAll   int64 `json:"completed_all"`
}

// ReportRepository runs the aggregate queries behind the admin reports
type ReportRepository interface {
	// CompletionRows joins progress rows for a stage with local profiles,
	// ordered by profile username.
	CompletionRows(ctx context.Context, stageID models.StageID) ([]CompletionRow, error)

	StageStats(ctx context.Context) ([]StageStats, error)
	TotalParticipants(ctx context.Context) (int64, error)
	ParticipantCounts(ctx context.Context) (*ParticipantCounts, error)
}

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string // Search query for name or email
	Limit  int    // Page size
	Offset int    // Offset for pagination
}

// UserRepository interface for user operations (this service is not the
// owner of user data, Casdoor is)
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Search(ctx context.Context, query string, filters UserFilters) ([]*models.User, int64, error)

	ExistsByID(ctx context.Context, id string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
