package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atlas-procurement/request-api/internal/domain"
	"gorm.io/gorm"
)

// RequestSequenceRepository handles database operations for the per-prefix
// reference counters. Counters are keyed by reference prefix, not request
// type, so every type sharing a prefix draws from the same sequence and
// minted references can never collide. Counters only ever move forward; a
// sequence number, once handed out, is never reused even if the request it
// was minted for is deleted.
type RequestSequenceRepository struct {
	db *gorm.DB
}

// NewRequestSequenceRepository creates a new RequestSequenceRepository
func NewRequestSequenceRepository(db *gorm.DB) *RequestSequenceRepository {
	return &RequestSequenceRepository{db: db}
}

// NextSequence atomically increments and returns the sequence for a
// reference prefix, creating the counter row on first use. The increment
// happens in a single upsert so concurrent callers each get a distinct
// number without row locks.
func (r *RequestSequenceRepository) NextSequence(ctx context.Context, prefix string) (int, error) {
	var next int
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO request_sequences (prefix, last_sequence, created_at, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (prefix)
		DO UPDATE SET last_sequence = request_sequences.last_sequence + 1, updated_at = ?
		RETURNING last_sequence`,
		prefix, now, now, now,
	).Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance request sequence: %w", err)
	}

	return next, nil
}

// CurrentSequence retrieves the current sequence value without incrementing.
// Returns 0 if no counter exists for the prefix yet.
func (r *RequestSequenceRepository) CurrentSequence(ctx context.Context, prefix string) (int, error) {
	var seq domain.RequestSequence
	result := r.db.WithContext(ctx).
		Where("prefix = ?", prefix).
		First(&seq)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get request sequence: %w", result.Error)
	}

	return seq.LastSequence, nil
}

// SetSequence raises the counter to a specific value. Useful for data
// migrations when seeding counters from existing numbered requests. The
// value is the LAST USED sequence number; lowering a counter is refused
// silently so imports cannot cause reference collisions.
func (r *RequestSequenceRepository) SetSequence(ctx context.Context, prefix string, value int) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO request_sequences (prefix, last_sequence, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (prefix)
		DO UPDATE SET last_sequence = ?, updated_at = ?
		WHERE request_sequences.last_sequence < ?`,
		prefix, value, now, now, value, now, value,
	).Error
	if err != nil {
		return fmt.Errorf("failed to set request sequence: %w", err)
	}
	return nil
}

// ListSequences returns all counters (useful for debugging/admin)
func (r *RequestSequenceRepository) ListSequences(ctx context.Context) ([]domain.RequestSequence, error) {
	var sequences []domain.RequestSequence
	err := r.db.WithContext(ctx).
		Order("prefix ASC").
		Find(&sequences).Error
	return sequences, err
}
