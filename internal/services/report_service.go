package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
	"github.com/edusehat/education-service/internal/validator"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// completionReportHeader is the fixed column set of completion exports
var completionReportHeader = []string{"No.", "Nama Lengkap", "Email", "Status", "Tanggal Selesai"}

const (
	statusDone    = "Selesai"
	statusPending = "Belum Selesai"

	// reportDateLayout renders dates the Indonesian way, dd/mm/yyyy
	reportDateLayout = "02/01/2006"

	// fallbackEmailDomain completes addresses for profiles without email
	fallbackEmailDomain = "eduseat.com"
)

type reportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) ReportService {
	return &reportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *reportService) Stats(ctx context.Context) (*ReportStatsResponse, error) {
	stages, err := s.repo.Report().StageStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage stats: %w", err)
	}

	total, err := s.repo.Report().TotalParticipants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	counts, err := s.repo.Report().ParticipantCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant counts: %w", err)
	}

	var rate float64
	if total > 0 {
		rate = float64(counts.CompletedAll) / float64(total) * 100
	}

	return &ReportStatsResponse{
		TotalParticipants: total,
		MonitoringUsers:   counts.WithMonitoring,
		CommittedUsers:    counts.WithCommitment,
		CompletedAll:      counts.CompletedAll,
		CompletionRate:    rate,
		Stages:            stages,
		GeneratedAt:       time.Now().UTC(),
	}, nil
}

func (s *reportService) CompletionReport(ctx context.Context, reportName string) (*CompletionReportResponse, error) {
	stageID := models.StageID(reportName)
	if !models.IsValidStage(stageID) {
		return nil, fmt.Errorf("%w: unknown report %q", ErrNotFound, reportName)
	}

	rows, err := s.repo.Report().CompletionRows(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completion rows: %w", err)
	}

	reportRows := make([]CompletionReportRow, 0, len(rows))
	for _, row := range rows {
		reportRows = append(reportRows, CompletionReportRow{
			UserID:      row.UserID,
			FullName:    row.Username,
			Email:       resolveReportEmail(row),
			Completed:   row.Completed,
			CompletedAt: row.CompletedAt,
		})
	}

	return &CompletionReportResponse{
		ReportName: reportName,
		StageID:    stageID,
		Rows:       reportRows,
	}, nil
}

// ExportCompletionReport renders a completion report as CSV or XLSX. The
// filename embeds the export date so repeated downloads sort naturally.
func (s *reportService) ExportCompletionReport(ctx context.Context, reportName, format string) (*ExportResult, error) {
	report, err := s.CompletionReport(ctx, reportName)
	if err != nil {
		return nil, err
	}

	switch format {
	case "", FormatCSV:
		data, err := renderCompletionCSV(report.Rows)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.csv", reportName, time.Now().Format("2006-01-02")),
			ContentType: "text/csv",
			Data:        data,
		}, nil

	case FormatXLSX:
		data, err := renderCompletionXLSX(report.Rows)
		if err != nil {
			return nil, err
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("%s-%s.xlsx", reportName, time.Now().Format("2006-01-02")),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrValidationFailed, format)
	}
}

func (s *reportService) MonitoringReport(ctx context.Context, filters repositories.MonitoringFilters) (*MonitoringReportResponse, error) {
	responses, total, err := s.repo.Monitoring().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load monitoring report: %w", err)
	}

	userIDs := make([]string, 0, len(responses))
	for _, r := range responses {
		userIDs = append(userIDs, r.UserID)
	}
	profiles, err := s.loadProfiles(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]MonitoringReportRow, 0, len(responses))
	for _, r := range responses {
		name, email := profileIdentity(profiles[r.UserID])
		rows = append(rows, MonitoringReportRow{
			ID:             r.ID,
			UserID:         r.UserID,
			FullName:       name,
			Email:          email,
			EducationStage: r.EducationStage,
			StageTitle:     models.StageTitles[r.EducationStage],
			CompletedAt:    r.CompletedAt,
		})
	}

	return &MonitoringReportResponse{Rows: rows, Total: total}, nil
}

func (s *reportService) CommitmentReport(ctx context.Context, filters repositories.CommitmentFilters) (*CommitmentReportResponse, error) {
	records, total, err := s.repo.Commitment().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load commitment report: %w", err)
	}

	userIDs := make([]string, 0, len(records))
	for _, r := range records {
		userIDs = append(userIDs, r.UserID)
	}
	profiles, err := s.loadProfiles(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]CommitmentReportRow, 0, len(records))
	for _, r := range records {
		name, email := profileIdentity(profiles[r.UserID])
		rows = append(rows, CommitmentReportRow{
			ID:               r.ID,
			UserID:           r.UserID,
			FullName:         name,
			Email:            email,
			CommitmentStatus: r.CommitmentStatus,
			EducationStage:   r.EducationStage,
			StageTitle:       models.StageTitles[r.EducationStage],
			ConfirmedAt:      r.ConfirmedAt,
		})
	}

	return &CommitmentReportResponse{Rows: rows, Total: total}, nil
}

func (s *reportService) loadProfiles(ctx context.Context, userIDs []string) (map[string]*models.Profile, error) {
	byID := make(map[string]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return byID, nil
	}

	profiles, err := s.repo.Profile().GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	for _, p := range profiles {
		byID[p.ID] = p
	}
	return byID, nil
}

// profileIdentity resolves the display name and email for a report row,
// with the same fallback address scheme as the completion report.
func profileIdentity(p *models.Profile) (name, email string) {
	if p == nil {
		return "", ""
	}
	name = p.Username
	if p.Email != nil && *p.Email != "" {
		email = *p.Email
	} else if p.Username != "" {
		email = fmt.Sprintf("%s@%s", p.Username, fallbackEmailDomain)
	}
	return name, email
}

// resolveReportEmail falls back to <username>@eduseat.com when the profile
// carries no email, matching the address scheme used at registration.
func resolveReportEmail(row repositories.CompletionRow) string {
	if row.Email != nil && *row.Email != "" {
		return *row.Email
	}
	if row.Username != "" {
		return fmt.Sprintf("%s@%s", row.Username, fallbackEmailDomain)
	}
	return ""
}

func completionCells(index int, row CompletionReportRow) []string {
	status := statusPending
	if row.Completed {
		status = statusDone
	}

	completedAt := "-"
	if row.CompletedAt != nil {
		completedAt = row.CompletedAt.Format(reportDateLayout)
	}

	return []string{
		strconv.Itoa(index + 1),
		row.FullName,
		row.Email,
		status,
		completedAt,
	}
}

func renderCompletionCSV(rows []CompletionReportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(completionReportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(completionCells(i, row)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

func renderCompletionXLSX(rows []CompletionReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Laporan"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for col, header := range completionReportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, row := range rows {
		for col, value := range completionCells(i, row) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	return buf.Bytes(), nil
}
