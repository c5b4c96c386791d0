package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/atlas-procurement/request-api/internal/repository"
	"github.com/atlas-procurement/request-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequesterHandler handles HTTP requests for requester operations
type RequesterHandler struct {
	requesterService *service.RequesterService
	logger           *zap.Logger
}

// NewRequesterHandler creates a new requester handler instance
func NewRequesterHandler(requesterService *service.RequesterService, logger *zap.Logger) *RequesterHandler {
	return &RequesterHandler{
		requesterService: requesterService,
		logger:           logger,
	}
}

// List returns a paginated list of requesters
func (h *RequesterHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	search := r.URL.Query().Get("search")

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	result, err := h.requesterService.List(r.Context(), page, pageSize, search, sort)
	if err != nil {
		h.logger.Error("failed to list requesters", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list requesters",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID returns a single requester
func (h *RequesterHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid requester ID format",
		})
		return
	}

	requester, err := h.requesterService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrRequesterNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Requester not found",
			})
			return
		}
		h.logger.Error("failed to get requester", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get requester",
		})
		return
	}

	respondJSON(w, http.StatusOK, requester)
}

// Create registers a new requester
func (h *RequesterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartyRequest
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

	requester, err := h.requesterService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create requester", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create requester",
		})
		return
	}

	respondJSON(w, http.StatusCreated, requester)
}

// Update modifies an existing requester
func (h *RequesterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid requester ID format",
		})
		return
	}

	var req domain.UpdatePartyRequest
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

	requester, err := h.requesterService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrRequesterNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Requester not found",
			})
			return
		}
		h.logger.Error("failed to update requester", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update requester",
		})
		return
	}

	respondJSON(w, http.StatusOK, requester)
}

// Delete removes a requester and, by cascade, its requests
func (h *RequesterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid requester ID format",
		})
		return
	}

	if err := h.requesterService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrRequesterNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Requester not found",
			})
			return
		}
		h.logger.Error("failed to delete requester", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete requester",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
