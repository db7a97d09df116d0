package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/edusehat/education-service/internal/models"
	"github.com/edusehat/education-service/internal/repositories"
	"github.com/edusehat/education-service/internal/validator"
)

type expertService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExpertService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) ExpertService {
	return &expertService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *expertService) List(ctx context.Context) ([]*models.Expert, error) {
	experts, err := s.repo.Expert().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list experts: %w", err)
	}
	return experts, nil
}

func (s *expertService) Get(ctx context.Context, id uint) (*models.Expert, error) {
	expert, err := s.repo.Expert().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: expert %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get expert: %w", err)
	}
	return expert, nil
}

func (s *expertService) Create(ctx context.Context, req *ExpertCreateRequest) (*models.Expert, error) {
	if errs := s.validator.Validate(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	expert := &models.Expert{
		Name:        req.Name,
		Specialty:   req.Specialty,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
	}

	if err := s.repo.Expert().Create(ctx, expert); err != nil {
		return nil, fmt.Errorf("failed to create expert: %w", err)
	}

	s.logger.Info("Expert created", "expert_id", expert.ID, "name", expert.Name)
	return expert, nil
}

func (s *expertService) Update(ctx context.Context, id uint, req *ExpertUpdateRequest) (*models.Expert, error) {
	if errs := s.validator.ValidateExpertUpdate(req); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}

	expert, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		expert.Name = *req.Name
	}
	if req.Specialty != nil {
		expert.Specialty = *req.Specialty
	}
	if req.Email != nil {
		expert.Email = req.Email
	}
	if req.PhoneNumber != nil {
		expert.PhoneNumber = req.PhoneNumber
	}
	if req.Bio != nil {
		expert.Bio = req.Bio
	}

	if err := s.repo.Expert().Update(ctx, expert); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: expert %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update expert: %w", err)
	}

	s.logger.Info("Expert updated", "expert_id", expert.ID)
	return expert, nil
}

func (s *expertService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Expert().Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: expert %d", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete expert: %w", err)
	}

	s.logger.Info("Expert deleted", "expert_id", id)
	return nil
}
