package repository

import (
	"context"
	"strings"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// buyerSortableFields maps API field names to database column names
var buyerSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"email":     "email",
}

// BuyerRepository handles buyer data access operations
type BuyerRepository struct {
	db *gorm.DB
}

// NewBuyerRepository creates a new buyer repository instance
func NewBuyerRepository(db *gorm.DB) *BuyerRepository {
	return &BuyerRepository{db: db}
}

// Create creates a new buyer in the database
func (r *BuyerRepository) Create(ctx context.Context, buyer *domain.Buyer) error {
	return r.db.WithContext(ctx).Create(buyer).Error
}

// GetByID retrieves a buyer by its ID
func (r *BuyerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Buyer, error) {
	var buyer domain.Buyer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&buyer).Error
	if err != nil {
		return nil, err
	}
	return &buyer, nil
}

// Update updates an existing buyer in the database
func (r *BuyerRepository) Update(ctx context.Context, buyer *domain.Buyer) error {
	return r.db.WithContext(ctx).Save(buyer).Error
}

// Delete removes a buyer. Requests referencing it are removed by the
// database cascade.
func (r *BuyerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Buyer{}, "id = ?", id).Error
}

// List returns a paginated list of buyers, optionally filtered by a
// case-insensitive name/email search
func (r *BuyerRepository) List(ctx context.Context, page, pageSize int, search string, sort SortConfig) ([]domain.Buyer, int64, error) {
	var buyers []domain.Buyer
	var total int64

	page, pageSize = normalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Buyer{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, buyerSortableFields, "updated_at")

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order(orderClause).Find(&buyers).Error

	return buyers, total, err
}

// CountRequests returns the number of requests assigned to a buyer
func (r *BuyerRepository) CountRequests(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Request{}).
		Where("buyer_id = ?", buyerID).
		Count(&count).Error
	return count, err
}
