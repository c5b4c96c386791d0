package repository

import (
	"context"
	"strings"
	"time"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilters defines filter options for request listing
type RequestFilters struct {
	Search      string
	Status      *domain.RequestStatus
	RequestType *domain.RequestType
	RequesterID *uuid.UUID
	BuyerID     *uuid.UUID
	UserID      *uuid.UUID
}

// requestSortableFields maps API field names to database column names
// Only fields in this map can be used for sorting (whitelist approach)
var requestSortableFields = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"reference":   "reference",
	"subject":     "subject",
	"status":      "status",
	"requestType": "request_type",
	"poRef":       "po_ref",
}

// RequestRepository handles request data access operations
type RequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository instance
func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create creates a new request in the database. Associations are omitted so
// preloaded requester/buyer/user pointers are never written back.
func (r *RequestRepository) Create(ctx context.Context, request *domain.Request) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(request).Error
}

// GetByID retrieves a request with its requester, buyer and owner loaded
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	var request domain.Request
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Buyer").
		Preload("User").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetByReference retrieves a request by its generated reference
func (r *RequestRepository) GetByReference(ctx context.Context, reference string) (*domain.Request, error) {
	var request domain.Request
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Buyer").
		Preload("User").
		Where("reference = ?", reference).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Update updates an existing request in the database. Associations are
// omitted so preloaded requester/buyer/user pointers are never written back.
func (r *RequestRepository) Update(ctx context.Context, request *domain.Request) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(request).Error
}

// Delete removes a request
func (r *RequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Request{}, "id = ?", id).Error
}

// List returns a paginated list of requests with filter and sort options.
// Requester, buyer and owner are preloaded for label and export rendering.
func (r *RequestRepository) List(ctx context.Context, page, pageSize int, filters *RequestFilters, sort SortConfig) ([]domain.Request, int64, error) {
	var requests []domain.Request
	var total int64

	page, pageSize = normalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Request{})

	if filters != nil {
		if filters.Search != "" {
			searchPattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where(
				"LOWER(subject) LIKE ? OR LOWER(reference) LIKE ? OR LOWER(object) LIKE ? OR LOWER(po_ref) LIKE ?",
				searchPattern, searchPattern, searchPattern, searchPattern,
			)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.RequestType != nil {
			query = query.Where("request_type = ?", *filters.RequestType)
		}
		if filters.RequesterID != nil {
			query = query.Where("requester_id = ?", *filters.RequesterID)
		}
		if filters.BuyerID != nil {
			query = query.Where("buyer_id = ?", *filters.BuyerID)
		}
		if filters.UserID != nil {
			query = query.Where("user_id = ?", *filters.UserID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderClause := BuildOrderClause(sort, requestSortableFields, "updated_at")

	offset := (page - 1) * pageSize
	err := query.
		Preload("Requester").
		Preload("Buyer").
		Preload("User").
		Offset(offset).
		Limit(pageSize).
		Order(orderClause).
		Find(&requests).Error

	return requests, total, err
}

// GetByIDs retrieves the given requests with relations loaded, in the order
// the IDs were supplied. Unknown IDs are skipped.
func (r *RequestRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Request, error) {
	if len(ids) == 0 {
		return []domain.Request{}, nil
	}

	var requests []domain.Request
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Buyer").
		Preload("User").
		Where("id IN ?", ids).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]domain.Request, len(requests))
	for _, req := range requests {
		byID[req.ID] = req
	}

	ordered := make([]domain.Request, 0, len(requests))
	for _, id := range ids {
		if req, ok := byID[id]; ok {
			ordered = append(ordered, req)
		}
	}
	return ordered, nil
}

// AppendComment appends a formatted entry to the request's comment log in a
// single UPDATE. Prior entries are never rewritten; the separator is only
// added when the log already has content.
func (r *RequestRepository) AppendComment(ctx context.Context, id uuid.UUID, entry string) error {
	result := r.db.WithContext(ctx).Model(&domain.Request{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"comments":   gorm.Expr("CASE WHEN comments = '' THEN ? ELSE comments || ? END", entry, "\n\n"+entry),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count returns the total number of requests
func (r *RequestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Request{}).Count(&count).Error
	return count, err
}
