package services

import (
	"context"
	"strings"
	"time"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
)

// mockRepository is an in-memory repositories.Repository for service tests
type mockRepository struct {
	progress   *mockProgressRepo
	monitoring *mockMonitoringRepo
	commitment *mockCommitmentRepo
	expert     *mockExpertRepo
	profile    *mockProfileRepo
	report     *mockReportRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		progress:   &mockProgressRepo{},
		monitoring: &mockMonitoringRepo{},
		commitment: &mockCommitmentRepo{},
		expert:     &mockExpertRepo{experts: make(map[uint]*models.Expert)},
		profile:    &mockProfileRepo{profiles: make(map[string]*models.Profile)},
		report:     &mockReportRepo{},
	}
}

func (m *mockRepository) Progress() repositories.ProgressRepository     { return m.progress }
func (m *mockRepository) Monitoring() repositories.MonitoringRepository { return m.monitoring }
func (m *mockRepository) Commitment() repositories.CommitmentRepository { return m.commitment }
func (m *mockRepository) Expert() repositories.ExpertRepository         { return m.expert }
func (m *mockRepository) Profile() repositories.ProfileRepository       { return m.profile }
func (m *mockRepository) Report() repositories.ReportRepository         { return m.report }
func (m *mockRepository) User() repositories.UserRepository             { return nil }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== PROGRESS =====

type mockProgressRepo struct {
	rows   []*models.StageProgress
	nextID uint

	getErr error
}

func (m *mockProgressRepo) find(userID string, stageID models.StageID) *models.StageProgress {
	for _, row := range m.rows {
		if row.UserID == userID && row.StageID == stageID {
			return row
		}
	}
	return nil
}

func (m *mockProgressRepo) Ensure(ctx context.Context, progress *models.StageProgress) error {
	if m.find(progress.UserID, progress.StageID) != nil {
		return nil
	}
	m.nextID++
	progress.ID = m.nextID
	progress.CreatedAt = time.Now()
	m.rows = append(m.rows, progress)
	return nil
}

func (m *mockProgressRepo) GetByUser(ctx context.Context, userID string) ([]*models.StageProgress, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []*models.StageProgress
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockProgressRepo) GetByUserAndStage(ctx context.Context, userID string, stageID models.StageID) (*models.StageProgress, error) {
	if row := m.find(userID, stageID); row != nil {
		return row, nil
	}
	return nil, repositories.ErrNotFound
}

func (m *mockProgressRepo) MarkStarted(ctx context.Context, userID string, stageID models.StageID, at time.Time) error {
	row := m.find(userID, stageID)
	if row == nil {
		return repositories.ErrNotFound
	}
	if row.StartedAt == nil {
		started := at
		row.StartedAt = &started
	}
	return nil
}

func (m *mockProgressRepo) MarkCompleted(ctx context.Context, userID string, stageID models.StageID, at time.Time) error {
	row := m.find(userID, stageID)
	if row == nil {
		return repositories.ErrNotFound
	}
	if !row.Completed {
		row.Completed = true
		completed := at
		row.CompletedAt = &completed
	}
	return nil
}

func (m *mockProgressRepo) List(ctx context.Context, filters repositories.ProgressFilters) ([]*models.StageProgress, int64, error) {
	var out []*models.StageProgress
	for _, row := range m.rows {
		if filters.StageID != nil && row.StageID != *filters.StageID {
			continue
		}
		if filters.Completed != nil && row.Completed != *filters.Completed {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (m *mockProgressRepo) ListDueForNotification(ctx context.Context, now time.Time) ([]*models.StageProgress, error) {
	var out []*models.StageProgress
	for _, row := range m.rows {
		if row.AvailableAt == nil || row.AvailableAt.After(now) {
			continue
		}
		if row.NotificationSentAt != nil || row.Completed {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *mockProgressRepo) MarkNotified(ctx context.Context, id uint, at time.Time) error {
	for _, row := range m.rows {
		if row.ID == id {
			notified := at
			row.NotificationSentAt = &notified
			return nil
		}
	}
	return repositories.ErrNotFound
}

// ===== MONITORING =====

type mockMonitoringRepo struct {
	responses []*models.MonitoringResponse
	nextID    uint
}

func (m *mockMonitoringRepo) Create(ctx context.Context, response *models.MonitoringResponse) error {
	m.nextID++
	response.ID = m.nextID
	response.CreatedAt = time.Now()
	m.responses = append(m.responses, response)
	return nil
}

func (m *mockMonitoringRepo) ExistsForUserStage(ctx context.Context, userID string, stageID models.StageID) (bool, error) {
	for _, r := range m.responses {
		if r.UserID == userID && r.EducationStage == stageID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockMonitoringRepo) ListByUser(ctx context.Context, userID string) ([]*models.MonitoringResponse, error) {
	var out []*models.MonitoringResponse
	for _, r := range m.responses {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockMonitoringRepo) List(ctx context.Context, filters repositories.MonitoringFilters) ([]*models.MonitoringResponse, int64, error) {
	var out []*models.MonitoringResponse
	for _, r := range m.responses {
		if filters.UserID != nil && r.UserID != *filters.UserID {
			continue
		}
		if filters.EducationStage != nil && r.EducationStage != *filters.EducationStage {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

// ===== COMMITMENT =====

type mockCommitmentRepo struct {
	records []*models.CommitmentRecord
	nextID  uint
}

func (m *mockCommitmentRepo) Create(ctx context.Context, record *models.CommitmentRecord) error {
	m.nextID++
	record.ID = m.nextID
	record.CreatedAt = time.Now()
	m.records = append(m.records, record)
	return nil
}

func (m *mockCommitmentRepo) ExistsForUserStage(ctx context.Context, userID string, stageID models.StageID) (bool, error) {
	for _, r := range m.records {
		if r.UserID == userID && r.EducationStage == stageID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCommitmentRepo) List(ctx context.Context, filters repositories.CommitmentFilters) ([]*models.CommitmentRecord, int64, error) {
	var out []*models.CommitmentRecord
	for _, r := range m.records {
		if filters.UserID != nil && r.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && r.CommitmentStatus != *filters.Status {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

// ===== EXPERT =====

type mockExpertRepo struct {
	experts map[uint]*models.Expert
	nextID  uint
}

func (m *mockExpertRepo) Create(ctx context.Context, expert *models.Expert) error {
	m.nextID++
	expert.ID = m.nextID
	expert.CreatedAt = time.Now()
	m.experts[expert.ID] = expert
	return nil
}

func (m *mockExpertRepo) Update(ctx context.Context, expert *models.Expert) error {
	if _, ok := m.experts[expert.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.experts[expert.ID] = expert
	return nil
}

func (m *mockExpertRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := m.experts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.experts, id)
	return nil
}

func (m *mockExpertRepo) GetByID(ctx context.Context, id uint) (*models.Expert, error) {
	expert, ok := m.experts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return expert, nil
}

func (m *mockExpertRepo) List(ctx context.Context) ([]*models.Expert, error) {
	out := make([]*models.Expert, 0, len(m.experts))
	for id := m.nextID; id >= 1; id-- {
		if expert, ok := m.experts[id]; ok {
			out = append(out, expert)
		}
	}
	return out, nil
}

// ===== PROFILE =====

type mockProfileRepo struct {
	profiles map[string]*models.Profile
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *models.Profile) error {
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepo) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	profile, ok := m.profiles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return profile, nil
}

func (m *mockProfileRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, id := range ids {
		if profile, ok := m.profiles[id]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

// ===== REPORT =====

type mockReportRepo struct {
	rows   []repositories.CompletionRow
	stats  []repositories.StageStats
	total  int64
	counts repositories.ParticipantCounts
}

func (m *mockReportRepo) CompletionRows(ctx context.Context, stageID models.StageID) ([]repositories.CompletionRow, error) {
	return m.rows, nil
}

func (m *mockReportRepo) StageStats(ctx context.Context) ([]repositories.StageStats, error) {
	return m.stats, nil
}

func (m *mockReportRepo) TotalParticipants(ctx context.Context) (int64, error) {
	return m.total, nil
}

func (m *mockReportRepo) ParticipantCounts(ctx context.Context) (*repositories.ParticipantCounts, error) {
	counts := m.counts
	return &counts, nil
}

// ===== SHARED TEST HELPERS =====

func strPtr(s string) *string { return &s }

func csvLines(data []byte) []string {
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
