package model

import "time"

// Category is the top taxonomy tier. Code is the natural key.
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"type:varchar(64);index;not null" json:"code"` // canonical code, e.g. FOOD-DRINK
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	Icon      string    `gorm:"type:varchar(255)" json:"icon,omitempty"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Subcategory belongs to a category by code. The pair (CategoryCode, Code) is
// the natural key; the same code may repeat under different categories.
type Subcategory struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CategoryCode string    `gorm:"type:varchar(64);index:idx_subcategories_category_code,priority:1;not null" json:"category_code"`
	Code         string    `gorm:"type:varchar(64);index:idx_subcategories_category_code,priority:2;index;not null" json:"code"`
	Name         string    `gorm:"type:varchar(120);not null" json:"name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	SortOrder    int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Subcategory) TableName() string {
	return "subcategories"
}

// Group is the third tier, used for cross-cutting tags such as a Pokémon type
// or generation. (SubcategoryCode, Code) is the natural key.
type Group struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	SubcategoryCode string    `gorm:"type:varchar(64);index:idx_sticker_groups_subcategory_code,priority:1;not null" json:"subcategory_code"`
	Code            string    `gorm:"type:varchar(64);index:idx_sticker_groups_subcategory_code,priority:2;index;not null" json:"code"`
	Name            string    `gorm:"type:varchar(120);not null" json:"name"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	SortOrder       int       `gorm:"not null;default:0" json:"sort_order"`
	Metadata        string    `gorm:"type:text" json:"metadata,omitempty"` // opaque JSON
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName avoids the GROUPS keyword.
func (Group) TableName() string {
	return "sticker_groups"
}
