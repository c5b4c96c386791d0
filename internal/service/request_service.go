package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atlas-procurement/request-api/internal/auth"
	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/mapper"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrRequestNotFound is returned when a request is not found
var ErrRequestNotFound = errors.New("request not found")

// ErrAttachmentNotFound is returned when a request has no attachment
var ErrAttachmentNotFound = errors.New("request has no attachment")

// ErrAttachmentTooLarge is returned when an upload exceeds the size limit
var ErrAttachmentTooLarge = errors.New("attachment exceeds maximum upload size")

// RequestService handles business logic for procurement requests
type RequestService struct {
	requestRepo   *repository.RequestRepository
	requesterRepo *repository.RequesterRepository
	buyerRepo     *repository.BuyerRepository
	sequenceRepo  *repository.RequestSequenceRepository
	store         storage.Storage
	maxUploadSize int64
	logger        *zap.Logger
}

// NewRequestService creates a new request service instance
func NewRequestService(
	requestRepo *repository.RequestRepository,
	requesterRepo *repository.RequesterRepository,
	buyerRepo *repository.BuyerRepository,
	sequenceRepo *repository.RequestSequenceRepository,
	store storage.Storage,
	maxUploadSize int64,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requestRepo:   requestRepo,
		requesterRepo: requesterRepo,
		buyerRepo:     buyerRepo,
		sequenceRepo:  sequenceRepo,
		store:         store,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Create registers a new request. The reference is minted here from the
// per-type counter and never changes afterwards, even if the request type
// is later edited. The object label is derived from the field values at
// save time.
func (s *RequestService) Create(ctx context.Context, req *domain.CreateRequestRequest) (*domain.RequestDTO, error) {
	if !req.RequestType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequestType, req.RequestType)
	}

	status := req.Status
	if status == "" {
		status = domain.StatusNotStarted
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequestStatus, status)
	}

	requester, err := s.requesterRepo.GetByID(ctx, req.RequesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequesterNotFound
		}
		return nil, fmt.Errorf("failed to get requester: %w", err)
	}

	buyer, err := s.buyerRepo.GetByID(ctx, req.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}

	prefix := domain.ReferencePrefix(req.RequestType)
	sequence, err := s.sequenceRepo.NextSequence(ctx, prefix)
	if err != nil {
		return nil, err
	}
	reference := domain.FormatReference(prefix, sequence)

	request := &domain.Request{
		RequesterID: requester.ID,
		Requester:   requester,
		BuyerID:     buyer.ID,
		Buyer:       buyer,
		RequestType: req.RequestType,
		PORef:       req.PORef,
		Status:      status,
		Subject:     req.Subject,
		Reference:   reference,
		Comments:    req.Comments,
	}
	request.Object = request.ComputeObjectLabel()

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Info("request created",
		zap.String("request_id", request.ID.String()),
		zap.String("reference", request.Reference),
		zap.String("request_type", string(request.RequestType)),
	)

	dto := mapper.ToRequestDTO(request)
	return &dto, nil
}

// GetByID retrieves a request by ID
func (s *RequestService) GetByID(ctx context.Context, id uuid.UUID) (*domain.RequestDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	dto := mapper.ToRequestDTO(request)
	return &dto, nil
}

// Update applies an administrative edit. A request without an owner is
// claimed by the acting user; once owned, ownership never moves here.
// Reference and prior comments are untouchable: a new comment rides along
// in the payload and lands in the append-only log with attribution.
func (s *RequestService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateRequestRequest) (*domain.RequestDTO, error) {
	if !req.RequestType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequestType, req.RequestType)
	}
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequestStatus, req.Status)
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if req.RequesterID != request.RequesterID {
		requester, err := s.requesterRepo.GetByID(ctx, req.RequesterID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRequesterNotFound
			}
			return nil, fmt.Errorf("failed to get requester: %w", err)
		}
		request.RequesterID = requester.ID
		request.Requester = requester
	}

	if req.BuyerID != request.BuyerID {
		buyer, err := s.buyerRepo.GetByID(ctx, req.BuyerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBuyerNotFound
			}
			return nil, fmt.Errorf("failed to get buyer: %w", err)
		}
		request.BuyerID = buyer.ID
		request.Buyer = buyer
	}

	request.RequestType = req.RequestType
	request.PORef = req.PORef
	request.Status = req.Status
	request.Subject = req.Subject

	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if request.UserID == nil {
		request.UserID = &userCtx.UserID
		request.User = &domain.User{
			BaseModel: domain.BaseModel{ID: userCtx.UserID},
			Username:  userCtx.Username,
			Email:     userCtx.Email,
		}
		s.logger.Info("request owner assigned",
			zap.String("request_id", request.ID.String()),
			zap.String("username", userCtx.Username),
		)
	}

	request.Object = request.ComputeObjectLabel()

	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	if comment := strings.TrimSpace(req.NewComment); comment != "" {
		entry := domain.FormatCommentEntry(time.Now(), userCtx.Username, comment)
		if err := s.requestRepo.AppendComment(ctx, request.ID, entry); err != nil {
			return nil, fmt.Errorf("failed to append comment: %w", err)
		}
	}

	// Reload so the returned DTO reflects the appended comment
	request, err = s.requestRepo.GetByID(ctx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload request: %w", err)
	}

	dto := mapper.ToRequestDTO(request)
	return &dto, nil
}

// AddComment appends a single attributed entry to the request's comment log
func (s *RequestService) AddComment(ctx context.Context, id uuid.UUID, req *domain.AddCommentRequest) (*domain.RequestDTO, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}

	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	entry := domain.FormatCommentEntry(time.Now(), userCtx.Username, text)
	if err := s.requestRepo.AppendComment(ctx, id, entry); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to append comment: %w", err)
	}

	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload request: %w", err)
	}

	dto := mapper.ToRequestDTO(request)
	return &dto, nil
}

// Delete removes a request and its stored attachment, if any. The sequence
// counter is not rolled back; the reference is simply retired.
func (s *RequestService) Delete(ctx context.Context, id uuid.UUID) error {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("failed to get request: %w", err)
	}

	if err := s.requestRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}

	if request.HasAttachment() {
		if err := s.store.Delete(ctx, request.AttachmentPath); err != nil {
			s.logger.Warn("failed to delete stored attachment",
				zap.String("request_id", id.String()),
				zap.String("path", request.AttachmentPath),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("request deleted",
		zap.String("request_id", id.String()),
		zap.String("reference", request.Reference),
	)

	return nil
}

// List returns a paginated list of requests with filter and sort options
func (s *RequestService) List(ctx context.Context, page, pageSize int, filters *repository.RequestFilters, sort repository.SortConfig) (*domain.PaginatedResponse, error) {
	requests, total, err := s.requestRepo.List(ctx, page, pageSize, filters, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	page, pageSize = clampPagination(page, pageSize)
	return paginated(mapper.ToRequestDTOs(requests), total, page, pageSize), nil
}

// UploadAttachment stores a file against the request, replacing any prior
// attachment. The reader is capped at the configured upload limit.
func (s *RequestService) UploadAttachment(ctx context.Context, id uuid.UUID, filename, contentType string, data io.Reader) (*domain.RequestDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	// Read one byte past the limit to detect oversized uploads
	limited := io.LimitReader(data, s.maxUploadSize+1)

	storagePath, size, err := s.store.Upload(ctx, filename, contentType, limited)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	if size > s.maxUploadSize {
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up oversized upload", zap.Error(delErr))
		}
		return nil, ErrAttachmentTooLarge
	}

	previousPath := request.AttachmentPath

	request.AttachmentName = filename
	request.AttachmentType = contentType
	request.AttachmentSize = size
	request.AttachmentPath = storagePath

	if err := s.requestRepo.Update(ctx, request); err != nil {
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned upload", zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	if previousPath != "" {
		if err := s.store.Delete(ctx, previousPath); err != nil {
			s.logger.Warn("failed to delete replaced attachment",
				zap.String("path", previousPath),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("attachment uploaded",
		zap.String("request_id", id.String()),
		zap.String("filename", filename),
		zap.Int64("size", size),
	)

	dto := mapper.ToRequestDTO(request)
	return &dto, nil
}

// DownloadAttachment opens the request's attachment for streaming. The
// caller owns the returned reader.
func (s *RequestService) DownloadAttachment(ctx context.Context, id uuid.UUID) (io.ReadCloser, *domain.AttachmentDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, fmt.Errorf("failed to get request: %w", err)
	}

	if !request.HasAttachment() {
		return nil, nil, ErrAttachmentNotFound
	}

	reader, err := s.store.Download(ctx, request.AttachmentPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrAttachmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to open attachment: %w", err)
	}

	return reader, &domain.AttachmentDTO{
		Filename:    request.AttachmentName,
		ContentType: request.AttachmentType,
		Size:        request.AttachmentSize,
	}, nil
}

// DeleteAttachment removes the request's attachment
func (s *RequestService) DeleteAttachment(ctx context.Context, id uuid.UUID) (*domain.RequestDTO, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	if !request.HasAttachment() {
		return nil, ErrAttachmentNotFound
	}

	storagePath := request.AttachmentPath

	request.AttachmentName = ""
	request.AttachmentType = ""
	request.AttachmentSize = 0
	request.AttachmentPath = ""

	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	if err := s.store.Delete(ctx, storagePath); err != nil {
		s.logger.Warn("failed to delete stored attachment",
			zap.String("request_id", id.String()),
			zap.String("path", storagePath),
			zap.Error(err),
		)
	}

	dto := mapper.ToRequestDTO(request)
	return &dto, nil
}
