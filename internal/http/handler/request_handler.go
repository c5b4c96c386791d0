package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestHandler handles HTTP requests for procurement request operations
type RequestHandler struct {
	requestService *service.RequestService
	exportService  *service.ExportService
	logger         *zap.Logger
}

// NewRequestHandler creates a new request handler instance
func NewRequestHandler(
	requestService *service.RequestService,
	exportService *service.ExportService,
	logger *zap.Logger,
) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		exportService:  exportService,
		logger:         logger,
	}
}

// List returns a paginated list of requests with optional filters
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filters := &repository.RequestFilters{
		Search: r.URL.Query().Get("search"),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := domain.RequestStatus(status)
		filters.Status = &s
	}
	if requestType := r.URL.Query().Get("requestType"); requestType != "" {
		t := domain.RequestType(requestType)
		filters.RequestType = &t
	}
	if requesterID := r.URL.Query().Get("requesterId"); requesterID != "" {
		id, err := uuid.Parse(requesterID)
		if err == nil {
			filters.RequesterID = &id
		}
	}
	if buyerID := r.URL.Query().Get("buyerId"); buyerID != "" {
		id, err := uuid.Parse(buyerID)
		if err == nil {
			filters.BuyerID = &id
		}
	}
	if userID := r.URL.Query().Get("userId"); userID != "" {
		id, err := uuid.Parse(userID)
		if err == nil {
			filters.UserID = &id
		}
	}

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	result, err := h.requestService.List(r.Context(), page, pageSize, filters, sort)
	if err != nil {
		h.logger.Error("failed to list requests", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list requests",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID returns a single request with its relations resolved
func (h *RequestHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request ID format",
		})
		return
	}

	request, err := h.requestService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Request not found",
			})
			return
		}
		h.logger.Error("failed to get request", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get request",
		})
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Create submits a new procurement request and mints its reference
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.requestService.Create(r.Context(), &req)
	if err != nil {
		h.respondRequestError(w, err, "create")
		return
	}

	w.Header().Set("Location", "/api/v1/requests/"+request.ID.String())
	respondJSON(w, http.StatusCreated, request)
}

// Update applies an administrative edit to a request
func (h *RequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request ID format",
		})
		return
	}

	var req domain.UpdateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.requestService.Update(r.Context(), id, &req)
	if err != nil {
		h.respondRequestError(w, err, "update")
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Delete removes a request
func (h *RequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request ID format",
		})
		return
	}

	if err := h.requestService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrRequestNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Request not found",
			})
			return
		}
		h.logger.Error("failed to delete request", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete request",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddComment appends an attributed entry to the request's comment log
func (h *RequestHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request ID format",
		})
		return
	}

	var req domain.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	request, err := h.requestService.AddComment(r.Context(), id, &req)
	if err != nil {
		h.respondRequestError(w, err, "comment")
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// Export streams an xlsx workbook of the selected requests. An empty or
// missing selection yields a header-only workbook.
func (h *RequestHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportRequestsRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Invalid request body",
			})
			return
		}
	}

	workbook, err := h.exportService.Export(r.Context(), req.IDs)
	if err != nil {
		h.logger.Error("failed to export requests", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to export requests",
		})
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", service.ExportFilename))
	w.WriteHeader(http.StatusOK)

	if err := workbook.Write(w); err != nil {
		h.logger.Error("failed to stream export", zap.Error(err))
	}
}

// UploadAttachment stores a file against the request (multipart field "file")
func (h *RequestHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request ID format",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Missing or invalid file field",
		})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	request, err := h.requestService.UploadAttachment(r.Context(), id, header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentTooLarge) {
			respondJSON(w, http.StatusRequestEntityTooLarge, domain.ErrorResponse{
				Error:   "Payload Too Large",
				Message: "Attachment exceeds the maximum upload size",
			})
			return
		}
		h.respondRequestError(w, err, "upload attachment for")
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// DownloadAttachment streams the request's attachment
func (h *RequestHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request ID format",
		})
		return
	}

	reader, attachment, err := h.requestService.DownloadAttachment(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRequestNotFound) || errors.Is(err, service.ErrAttachmentNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Attachment not found",
			})
			return
		}
		h.logger.Error("failed to download attachment", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to download attachment",
		})
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))
	if attachment.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("failed to stream attachment", zap.Error(err))
	}
}

// DeleteAttachment removes the request's attachment
func (h *RequestHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request ID format",
		})
		return
	}

	request, err := h.requestService.DeleteAttachment(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Attachment not found",
			})
			return
		}
		h.respondRequestError(w, err, "delete attachment for")
		return
	}

	respondJSON(w, http.StatusOK, request)
}

// respondRequestError maps request service errors to HTTP responses
func (h *RequestHandler) respondRequestError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
			Error:   "Not Found",
			Message: "Request not found",
		})
	case errors.Is(err, service.ErrRequesterNotFound):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Requester not found",
		})
	case errors.Is(err, service.ErrBuyerNotFound):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Buyer not found",
		})
	case errors.Is(err, service.ErrInvalidRequestType),
		errors.Is(err, service.ErrInvalidRequestStatus),
		errors.Is(err, service.ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: err.Error(),
		})
	case errors.Is(err, service.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, domain.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
	default:
		h.logger.Error("failed to "+action+" request", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to " + action + " request",
		})
	}
}
