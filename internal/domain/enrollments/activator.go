package enrollments

import (
	"context"
	"fmt"

	"enrollment-app/internal/domain/payments"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Activator creates enrollment records when a payment intent settles. Safe
// under at-least-once callback delivery: the conflict-ignoring insert makes
// re-activation of an existing (student, item) pair a no-op.
type Activator struct {
	db *gorm.DB
}

func NewActivator(db *gorm.DB) *Activator {
	return &Activator{db: db}
}

// Activate writes one enrollment per intent line using the caller's
// transaction, so activation commits or rolls back together with the
// settlement transition.
func (a *Activator) Activate(tx *gorm.DB, intent *payments.PaymentIntent, status Status) error {
	for _, line := range intent.Lines {
		enrollment := Enrollment{
			StudentID:       intent.StudentID,
			ItemKind:        line.ItemKind,
			ItemID:          line.ItemID,
			PaymentIntentID: intent.ID,
			Status:          status,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "item_kind"}, {Name: "item_id"}},
			DoNothing: true,
		}).Create(&enrollment).Error
		if err != nil {
			return fmt.Errorf("failed to activate enrollment for item %d: %w", line.ItemID, err)
		}
	}
	return nil
}

func (a *Activator) ListByStudent(ctx context.Context, studentID uint) ([]Enrollment, error) {
	var list []Enrollment
	err := a.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return list, nil
}
