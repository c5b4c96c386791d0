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

// ErrBuyerNotFound is returned when a buyer is not found
var ErrBuyerNotFound = errors.New("buyer not found")

// BuyerService handles business logic for buyers
type BuyerService struct {
	buyerRepo *repository.BuyerRepository
	logger    *zap.Logger
}

// NewBuyerService creates a new buyer service instance
func NewBuyerService(buyerRepo *repository.BuyerRepository, logger *zap.Logger) *BuyerService {
	return &BuyerService{
		buyerRepo: buyerRepo,
		logger:    logger,
	}
}

// Create creates a new buyer
func (s *BuyerService) Create(ctx context.Context, req *domain.CreatePartyRequest) (*domain.BuyerDTO, error) {
	buyer := &domain.Buyer{
		Name:  req.Name,
		Email: req.Email,
	}

	if err := s.buyerRepo.Create(ctx, buyer); err != nil {
		return nil, fmt.Errorf("failed to create buyer: %w", err)
	}

	s.logger.Info("buyer created",
		zap.String("buyer_id", buyer.ID.String()),
		zap.String("name", buyer.Name),
	)

	dto := mapper.ToBuyerDTO(buyer)
	return &dto, nil
}

// GetByID retrieves a buyer by ID
func (s *BuyerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.BuyerDTO, error) {
	buyer, err := s.buyerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}

	dto := mapper.ToBuyerDTO(buyer)
	return &dto, nil
}

// Update updates an existing buyer
func (s *BuyerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePartyRequest) (*domain.BuyerDTO, error) {
	buyer, err := s.buyerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}

	buyer.Name = req.Name
	buyer.Email = req.Email

	if err := s.buyerRepo.Update(ctx, buyer); err != nil {
		return nil, fmt.Errorf("failed to update buyer: %w", err)
	}

	dto := mapper.ToBuyerDTO(buyer)
	return &dto, nil
}

// Delete removes a buyer. Requests assigned to the buyer are removed with
// it by the database cascade.
func (s *BuyerService) Delete(ctx context.Context, id uuid.UUID) error {
	buyer, err := s.buyerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBuyerNotFound
		}
		return fmt.Errorf("failed to get buyer: %w", err)
	}

	count, err := s.buyerRepo.CountRequests(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count buyer requests: %w", err)
	}

	if err := s.buyerRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete buyer: %w", err)
	}

	s.logger.Info("buyer deleted",
		zap.String("buyer_id", id.String()),
		zap.String("name", buyer.Name),
		zap.Int64("cascaded_requests", count),
	)

	return nil
}

// List returns a paginated list of buyers
func (s *BuyerService) List(ctx context.Context, page, pageSize int, search string, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	buyers, total, err := s.buyerRepo.List(ctx, page, pageSize, search, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list buyers: %w", err)
	}

	page, pageSize = clampPagination(page, pageSize)
	return paginated(mapper.ToBuyerDTOs(buyers), total, page, pageSize), nil
}
