package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment methods accepted at checkout
const (
	PaymentCash     = "CASH"
	PaymentTransfer = "TRANSFER"
)

// Sale is a completed checkout. Line items snapshot name and price so later
// catalog edits do not rewrite history.
type Sale struct {
	BaseModel
	CashierID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"cashier_id"`
	CashierName   string     `gorm:"type:varchar(100);not null" json:"cashier_name"`
	PaymentMethod string     `gorm:"type:varchar(20);not null" json:"payment_method" validate:"required,oneof=CASH TRANSFER"`
	TotalAmount   int64      `gorm:"not null" json:"total_amount"`
	Items         []SaleItem `json:"items" validate:"required,min=1,dive"`
}

type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int       `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Subtotal    int64     `gorm:"not null" json:"subtotal"`
}

func (i *SaleItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
