package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStickerPrice applies to every uploaded sticker.
var DefaultStickerPrice = decimal.RequireFromString("4.00")

// Sticker is a sellable image. Code is {SubcategoryCode}{5-digit sequence}.
type Sticker struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	Code            string          `gorm:"type:varchar(80);uniqueIndex;not null" json:"code"`
	Name            string          `gorm:"type:varchar(200);not null" json:"name"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	CategoryCode    string          `gorm:"type:varchar(64);index" json:"category_code"`
	SubcategoryCode string          `gorm:"type:varchar(64);index" json:"subcategory_code"`
	Filename        string          `gorm:"type:varchar(255)" json:"filename"`
	ImageKey        string          `gorm:"type:varchar(255);index" json:"image_key,omitempty"` // opaque storage reference
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	SortOrder       int             `gorm:"not null;default:0" json:"sort_order"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	ImageURL *string `gorm:"-" json:"image_url"` // resolved per request, nil without an asset
}

func (Sticker) TableName() string {
	return "stickers"
}

// StickerGroupLink joins stickers and groups by code. A sticker may be linked
// to several groups, e.g. one generation group and one type group.
type StickerGroupLink struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	StickerCode string    `gorm:"type:varchar(80);index;not null" json:"sticker_code"`
	GroupCode   string    `gorm:"type:varchar(64);index;not null" json:"group_code"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (StickerGroupLink) TableName() string {
	return "sticker_group_links"
}
