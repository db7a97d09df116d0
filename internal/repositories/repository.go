package repositories

import "context"

// Repository aggregates all repository interfaces
type Repository interface {
	// Learning pipeline domain
	Progress() ProgressRepository
	Monitoring() MonitoringRepository
	Commitment() CommitmentRepository

	// Expert directory
	Expert() ExpertRepository

	// Reporting
	Profile() ProfileRepository
	Report() ReportRepository

	// User domain (read-only, owned by Casdoor)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
