package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses

type RequesterDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type BuyerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"isActive"`
}

// AttachmentDTO describes the single file attached to a request
type AttachmentDTO struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type RequestDTO struct {
	ID            uuid.UUID      `json:"id"`
	RequesterID   uuid.UUID      `json:"requesterId"`
	RequesterName string         `json:"requesterName,omitempty"`
	BuyerID       uuid.UUID      `json:"buyerId"`
	BuyerName     string         `json:"buyerName,omitempty"`
	RequestType   RequestType    `json:"requestType"`
	PORef         string         `json:"poRef,omitempty"`
	Status        RequestStatus  `json:"status"`
	Subject       string         `json:"subject"`
	Reference     string         `json:"reference"`
	Object        string         `json:"object"`
	Comments      string         `json:"comments,omitempty"`
	Attachment    *AttachmentDTO `json:"attachment,omitempty"`
	UserID        *uuid.UUID     `json:"userId,omitempty"`
	CreatedBy     string         `json:"createdBy"` // owner username or "N/A"
	CreatedAt     string         `json:"createdAt"` // ISO 8601
	UpdatedAt     string         `json:"updatedAt"` // ISO 8601
}

// CreatePartyRequest is the submission shape for requesters and buyers
type CreatePartyRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// UpdatePartyRequest is the update shape for requesters and buyers
type UpdatePartyRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email,max=255"`
}

// CreateRequestRequest is the end-user submission shape. Comments is raw
// initial text written as-is, without timestamp or attribution.
type CreateRequestRequest struct {
	RequesterID uuid.UUID     `json:"requesterId" validate:"required"`
	BuyerID     uuid.UUID     `json:"buyerId" validate:"required"`
	RequestType RequestType   `json:"requestType" validate:"required"`
	PORef       string        `json:"poRef" validate:"max=50"`
	Status      RequestStatus `json:"status"`
	Subject     string        `json:"subject" validate:"required,max=200"`
	Comments    string        `json:"comments"`
}

// UpdateRequestRequest is the administrative edit shape. Reference, object,
// comments and timestamps are not writable; NewComment is routed through the
// comment log instead.
type UpdateRequestRequest struct {
	RequesterID uuid.UUID     `json:"requesterId" validate:"required"`
	BuyerID     uuid.UUID     `json:"buyerId" validate:"required"`
	RequestType RequestType   `json:"requestType" validate:"required"`
	PORef       string        `json:"poRef" validate:"max=50"`
	Status      RequestStatus `json:"status" validate:"required"`
	Subject     string        `json:"subject" validate:"required,max=200"`
	NewComment  string        `json:"newComment"`
}

// AddCommentRequest carries a single comment to append to the log
type AddCommentRequest struct {
	Text string `json:"text" validate:"required"`
}

// ExportRequestsRequest selects the records to export, in row order
type ExportRequestsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// PaginatedResponse is the standard list envelope
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
