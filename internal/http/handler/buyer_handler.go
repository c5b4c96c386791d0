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

// BuyerHandler handles HTTP requests for buyer operations
type BuyerHandler struct {
	buyerService *service.BuyerService
	logger       *zap.Logger
}

// NewBuyerHandler creates a new buyer handler instance
func NewBuyerHandler(buyerService *service.BuyerService, logger *zap.Logger) *BuyerHandler {
	return &BuyerHandler{
		buyerService: buyerService,
		logger:       logger,
	}
}

// List returns a paginated list of buyers
func (h *BuyerHandler) List(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.buyerService.List(r.Context(), page, pageSize, search, sort)
	if err != nil {
		h.logger.Error("failed to list buyers", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list buyers",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID returns a single buyer
func (h *BuyerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid buyer ID format",
		})
		return
	}

	buyer, err := h.buyerService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBuyerNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Buyer not found",
			})
			return
		}
		h.logger.Error("failed to get buyer", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get buyer",
		})
		return
	}

	respondJSON(w, http.StatusOK, buyer)
}

// Create registers a new buyer
func (h *BuyerHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	buyer, err := h.buyerService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create buyer", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create buyer",
		})
		return
	}

	respondJSON(w, http.StatusCreated, buyer)
}

// Update modifies an existing buyer
func (h *BuyerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid buyer ID format",
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

	buyer, err := h.buyerService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrBuyerNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Buyer not found",
			})
			return
		}
		h.logger.Error("failed to update buyer", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update buyer",
		})
		return
	}

	respondJSON(w, http.StatusOK, buyer)
}

// Delete removes a buyer and, by cascade, its requests
func (h *BuyerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid buyer ID format",
		})
		return
	}

	if err := h.buyerService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrBuyerNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Buyer not found",
			})
			return
		}
		h.logger.Error("failed to delete buyer", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete buyer",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
