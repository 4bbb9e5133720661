package model

type Product struct {
	BaseModel
	SKU      string `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Barcode  string `gorm:"type:varchar(64);index" json:"barcode"` // optional, not guaranteed unique
	Category string `gorm:"type:varchar(100)" json:"category"`
	Unit     string `gorm:"type:varchar(20)" json:"unit"`
	Price    int64  `gorm:"default:0" json:"price" validate:"gte=0"`
	Stock    int    `gorm:"default:0" json:"stock" validate:"gte=0"`
	MinStock int    `gorm:"default:0" json:"min_stock"` // low-stock reporting threshold

	// User tracking
	CreatedByUserID *string `gorm:"type:varchar(255)" json:"created_by_user_id,omitempty"`
	UpdatedByUserID *string `gorm:"type:varchar(255)" json:"updated_by_user_id,omitempty"`
}
