package repository

import (
	"context"
	"strings"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// requesterSortableFields maps API field names to database column names
// Only fields in this map can be used for sorting (whitelist approach)
var requesterSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"email":     "email",
}

// RequesterRepository handles requester data access operations
type RequesterRepository struct {
	db *gorm.DB
}

// NewRequesterRepository creates a new requester repository instance
func NewRequesterRepository(db *gorm.DB) *RequesterRepository {
	return &RequesterRepository{db: db}
}

// Create creates a new requester in the database
func (r *RequesterRepository) Create(ctx context.Context, requester *domain.Requester) error {
	return r.db.WithContext(ctx).Create(requester).Error
}

// GetByID retrieves a requester by its ID
func (r *RequesterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Requester, error) {
	var requester domain.Requester
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&requester).Error
	if err != nil {
		return nil, err
	}
	return &requester, nil
}

// Update updates an existing requester in the database
func (r *RequesterRepository) Update(ctx context.Context, requester *domain.Requester) error {
	return r.db.WithContext(ctx).Save(requester).Error
}

// Delete removes a requester. Requests referencing it are removed by the
// database cascade.
func (r *RequesterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Requester{}, "id = ?", id).Error
}

// List returns a paginated list of requesters, optionally filtered by a
// case-insensitive name/email search
func (r *RequesterRepository) List(ctx context.Context, page, pageSize int, search string, sort SortConfig) ([]domain.Requester, int64, error) {
	var requesters []domain.Requester
	var total int64

	page, pageSize = normalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Requester{})

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, requesterSortableFields, "updated_at")

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order(orderClause).Find(&requesters).Error

	return requesters, total, err
}

// CountRequests returns the number of requests submitted by a requester
func (r *RequesterRepository) CountRequests(ctx context.Context, requesterID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Request{}).
		Where("requester_id = ?", requesterID).
		Count(&count).Error
	return count, err
}
