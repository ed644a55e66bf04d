package enrollments

import (
	"time"

	"enrollment-app/internal/domain/catalog"
)

type Status string

const (
	// StatusPending awaits offline confirmation of a cash payment.
	StatusPending Status = "pending"
	StatusActive  Status = "active"
)

// Enrollment grants a student access to one purchased item. There is at most
// one row per (student, item); retried settlement callbacks must not mint
// duplicates.
type Enrollment struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	StudentID       uint             `gorm:"not null;uniqueIndex:idx_enrollments_student_item" json:"student_id"`
	ItemKind        catalog.ItemKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_enrollments_student_item" json:"item_kind"`
	ItemID          uint             `gorm:"not null;uniqueIndex:idx_enrollments_student_item" json:"item_id"`
	PaymentIntentID string           `gorm:"type:uuid;not null" json:"payment_intent_id"`
	Status          Status           `gorm:"type:varchar(20);not null" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
