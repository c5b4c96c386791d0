package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an ID when one has not been set.
// Keeps models portable across postgres and the sqlite test database.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// RequestStatus represents the tracking status of a procurement request
type RequestStatus string

const (
	StatusNotStarted RequestStatus = "Not Started"
	StatusInProgress RequestStatus = "In Progress"
	StatusCompleted  RequestStatus = "Completed"
	StatusClosed     RequestStatus = "Closed"
	StatusCanceled   RequestStatus = "Canceled"
)

// IsValid checks if the RequestStatus is a valid enum value
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusClosed, StatusCanceled:
		return true
	}
	return false
}

// RequestType represents the kind of procurement request being made
type RequestType string

const (
	TypeSupplierCreation RequestType = "Supplier creation"
	TypePOCreation       RequestType = "PO creation"
	TypeNDA              RequestType = "NDA"
	TypeSupplierAssist   RequestType = "Supplier Assist"
	TypeOtherRequest     RequestType = "Other request"
	TypePOModification   RequestType = "PO modification"
)

// IsValid checks if the RequestType is a valid enum value
func (t RequestType) IsValid() bool {
	switch t {
	case TypeSupplierCreation, TypePOCreation, TypeNDA, TypeSupplierAssist, TypeOtherRequest, TypePOModification:
		return true
	}
	return false
}

// referencePrefixes maps request types to their reference prefix.
// Types without an explicit entry fall back to "OTHER".
var referencePrefixes = map[RequestType]string{
	TypeSupplierCreation: "SUP",
	TypePOCreation:       "PO",
	TypeNDA:              "NDA",
	TypeSupplierAssist:   "SUPA",
}

// ReferencePrefix returns the reference prefix for a request type
func ReferencePrefix(t RequestType) string {
	if prefix, ok := referencePrefixes[t]; ok {
		return prefix
	}
	return "OTHER"
}

// FormatReference builds a request reference from a prefix and sequence
// number, e.g. "PO001". Sequences above 999 widen without truncation.
func FormatReference(prefix string, sequence int) string {
	return fmt.Sprintf("%s%03d", prefix, sequence)
}

// Requester represents a party that submits procurement requests
type Requester struct {
	BaseModel
	Name  string `gorm:"type:varchar(100);not null;index"`
	Email string `gorm:"type:varchar(255);not null"`
}

// Buyer represents a party that procurement requests are issued to
type Buyer struct {
	BaseModel
	Name  string `gorm:"type:varchar(100);not null;index"`
	Email string `gorm:"type:varchar(255);not null"`
}

// User represents an authenticated account that owns requests
type User struct {
	BaseModel
	Username    string `gorm:"type:varchar(100);not null;uniqueIndex"`
	DisplayName string `gorm:"type:varchar(200);column:display_name"`
	Email       string `gorm:"type:varchar(255)"`
	IsActive    bool   `gorm:"not null;default:true;column:is_active"`
}

// Request is the central tracked entity
type Request struct {
	BaseModel
	RequesterID uuid.UUID     `gorm:"type:uuid;not null;index;column:requester_id"`
	Requester   *Requester    `gorm:"foreignKey:RequesterID;constraint:OnDelete:CASCADE"`
	BuyerID     uuid.UUID     `gorm:"type:uuid;not null;index;column:buyer_id"`
	Buyer       *Buyer        `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE"`
	RequestType RequestType   `gorm:"type:varchar(50);not null;index;column:request_type"`
	PORef       string        `gorm:"type:varchar(50);column:po_ref"`
	Status      RequestStatus `gorm:"type:varchar(50);not null;default:'Not Started';index"`
	Subject     string        `gorm:"type:varchar(200);not null"`
	Reference   string        `gorm:"type:varchar(50);uniqueIndex"`
	Object      string        `gorm:"type:varchar(500)"`
	Comments    string        `gorm:"type:text;not null;default:''"`

	AttachmentName string `gorm:"type:varchar(255);column:attachment_name"`
	AttachmentType string `gorm:"type:varchar(100);column:attachment_type"`
	AttachmentSize int64  `gorm:"column:attachment_size"`
	AttachmentPath string `gorm:"type:varchar(500);column:attachment_path"`

	UserID *uuid.UUID `gorm:"type:uuid;index;column:user_id"`
	User   *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}

// OwnerUsername returns the owning user's username, or "N/A" when the
// request has no owner.
func (r *Request) OwnerUsername() string {
	if r.User != nil {
		return r.User.Username
	}
	return "N/A"
}

// ComputeObjectLabel builds the descriptive object label from the request's
// current field values. Requester, Buyer and User must be loaded. The label
// is regenerated on every save; the embedded reference never is.
func (r *Request) ComputeObjectLabel() string {
	requesterName := ""
	if r.Requester != nil {
		requesterName = r.Requester.Name
	}
	buyerName := ""
	if r.Buyer != nil {
		buyerName = r.Buyer.Name
	}
	return strings.Join([]string{
		string(r.RequestType),
		r.Subject,
		r.Reference,
		requesterName,
		buyerName,
		r.OwnerUsername(),
		string(r.Status),
	}, "_")
}

// HasAttachment reports whether a file has been attached to the request
func (r *Request) HasAttachment() bool {
	return r.AttachmentPath != ""
}

// CommentTimestampLayout is the wall-clock format used for comment entries
const CommentTimestampLayout = "2006-01-02 15:04:05"

// FormatCommentEntry builds a single comment log entry
func FormatCommentEntry(at time.Time, username, text string) string {
	return fmt.Sprintf("%s - %s: %s", at.Format(CommentTimestampLayout), username, text)
}

// AppendComment appends an entry to an existing comment log, separating it
// from prior entries with a blank line. An empty log yields just the entry.
func AppendComment(log, entry string) string {
	if log == "" {
		return entry
	}
	return log + "\n\n" + entry
}

// RequestSequence is the per-prefix atomic counter backing reference
// generation. One row per reference prefix; request types that share a
// prefix share a counter, so references stay unique across them.
// last_sequence is the last sequence number handed out.
type RequestSequence struct {
	Prefix       string    `gorm:"type:varchar(20);primaryKey"`
	LastSequence int       `gorm:"not null;default:0;column:last_sequence"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}
