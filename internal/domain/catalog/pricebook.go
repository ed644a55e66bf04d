package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrUnknownItem = errors.New("unknown catalog item")

// PricedItem is the snapshot the checkout takes of a catalog entry. Prices are
// minor currency units; they are copied onto the payment intent and never
// re-read after initiation.
type PricedItem struct {
	Ref       ItemRef
	Title     string
	UnitPrice int64
}

// PriceBook resolves item references against the stored catalog. It is the
// only component allowed to answer "what does this cost".
type PriceBook struct {
	db *gorm.DB
}

func NewPriceBook(db *gorm.DB) *PriceBook {
	return &PriceBook{db: db}
}

func (p *PriceBook) GetPrice(ctx context.Context, ref ItemRef) (*PricedItem, error) {
	switch ref.Kind {
	case KindCourse:
		var course Course
		if err := p.db.WithContext(ctx).Where("id = ? AND published = ?", ref.ID, true).First(&course).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownItem
			}
			return nil, fmt.Errorf("failed to load course %d: %w", ref.ID, err)
		}
		return &PricedItem{Ref: ref, Title: course.Title, UnitPrice: course.PriceNPR}, nil

	case KindVideoCourse:
		var video VideoCourse
		if err := p.db.WithContext(ctx).Where("id = ? AND published = ?", ref.ID, true).First(&video).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownItem
			}
			return nil, fmt.Errorf("failed to load video course %d: %w", ref.ID, err)
		}
		return &PricedItem{Ref: ref, Title: video.Title, UnitPrice: video.PriceNPR}, nil

	default:
		return nil, ErrUnknownItem
	}
}
