package catalog

import "time"

type ItemKind string

const (
	KindCourse      ItemKind = "course"
	KindVideoCourse ItemKind = "video_course"
)

// ItemRef identifies one purchasable catalog entry.
type ItemRef struct {
	Kind ItemKind `json:"kind"`
	ID   uint     `json:"id"`
}

type Course struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	PriceNPR    int64  `gorm:"column:price_npr;not null" json:"price_npr"`
	Published   bool   `gorm:"not null;default:false" json:"published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VideoCourse struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Title     string `gorm:"not null" json:"title"`
	VideoURL  string `gorm:"column:video_url" json:"video_url"`
	PriceNPR  int64  `gorm:"column:price_npr;not null" json:"price_npr"`
	Published bool   `gorm:"not null;default:false" json:"published"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
