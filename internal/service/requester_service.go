package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/mapper"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrRequesterNotFound is returned when a requester is not found
var ErrRequesterNotFound = errors.New("requester not found")

// RequesterService handles business logic for requesters
type RequesterService struct {
	requesterRepo *repository.RequesterRepository
	logger        *zap.Logger
}

// NewRequesterService creates a new requester service instance
func NewRequesterService(requesterRepo *repository.RequesterRepository, logger *zap.Logger) *RequesterService {
	return &RequesterService{
		requesterRepo: requesterRepo,
		logger:        logger,
	}
}

// Create creates a new requester
func (s *RequesterService) Create(ctx context.Context, req *domain.CreatePartyRequest) (*domain.RequesterDTO, error) {
	requester := &domain.Requester{
		Name:  req.Name,
		Email: req.Email,
	}

	if err := s.requesterRepo.Create(ctx, requester); err != nil {
		return nil, fmt.Errorf("failed to create requester: %w", err)
	}

	s.logger.Info("requester created",
		zap.String("requester_id", requester.ID.String()),
		zap.String("name", requester.Name),
	)

	dto := mapper.ToRequesterDTO(requester)
	return &dto, nil
}

// GetByID retrieves a requester by ID
func (s *RequesterService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RequesterDTO, error) {
	requester, err := s.requesterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequesterNotFound
		}
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}

	dto := mapper.ToRequesterDTO(requester)
	return &dto, nil
}

// Update updates an existing requester
func (s *RequesterService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePartyRequest) (*domain.RequesterDTO, error) {
	requester, err := s.requesterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequesterNotFound
		}
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}

	requester.Name = req.Name
	requester.Email = req.Email

	if err := s.requesterRepo.Update(ctx, requester); err != nil {
		return nil, fmt.Errorf("failed to update requester: %w", err)
	}

	dto := mapper.ToRequesterDTO(requester)
	return &dto, nil
}

// Delete removes a requester. Requests submitted by the requester are
// removed with it by the database cascade.
func (s *RequesterService) Delete(ctx context.Context, id uuid.UUID) error {
	requester, err := s.requesterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequesterNotFound
		}
		return fmt.Errorf("failed to get requester: %w", err)
	}

	count, err := s.requesterRepo.CountRequests(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count requester requests: %w", err)
	}

	if err := s.requesterRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete requester: %w", err)
	}

	s.logger.Info("requester deleted",
		zap.String("requester_id", id.String()),
		zap.String("name", requester.Name),
		zap.Int64("cascaded_requests", count),
	)

	return nil
}

// List returns a paginated list of requesters
func (s *RequesterService) List(ctx context.Context, page, pageSize int, search string, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	requesters, total, err := s.requesterRepo.List(ctx, page, pageSize, search, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list requesters: %w", err)
	}

	page, pageSize = clampPagination(page, pageSize)
	return paginated(mapper.ToRequesterDTOs(requesters), total, page, pageSize), nil
}

// clampPagination mirrors the repository's pagination normalization so the
// response envelope reports the values actually used
func clampPagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}
	return page, pageSize
}

// paginated builds the standard list envelope
func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
