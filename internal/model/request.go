package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RequestType is the closed set of mutation kinds the approval queue accepts.
// The approval processor dispatches on this set; adding a kind means adding a
// constant, a payload struct and an applier.
type RequestType string

const (
	RequestAddProduct    RequestType = "ADD_PRODUCT"
	RequestEditProduct   RequestType = "EDIT_PRODUCT"
	RequestDeleteProduct RequestType = "DELETE_PRODUCT"
	RequestConvertStock  RequestType = "CONVERT_STOCK"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// Request is a proposed catalog mutation awaiting admin approval. Non-admin
// mutations never touch the catalog directly; they are captured here and
// replayed by the approval processor. Transitions PENDING→APPROVED or
// PENDING→REJECTED exactly once; terminal states are immutable.
// CreatedAt doubles as the submission time.
type Request struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Type          RequestType   `gorm:"type:varchar(30);not null;index" json:"type"`
	Payload       string        `gorm:"type:jsonb;not null" json:"payload"` // snapshot of the proposed mutation
	Status        RequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedBy   uuid.UUID     `gorm:"type:uuid;not null;index" json:"requested_by"`
	RequesterName string        `gorm:"type:varchar(100);not null" json:"requester_name"`
	ResolvedBy    *uuid.UUID    `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	RejectReason  string        `gorm:"type:text" json:"reject_reason,omitempty"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// AddProductPayload carries the full product for an ADD_PRODUCT request.
type AddProductPayload struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Barcode  string `json:"barcode"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
}

// EditProductPayload is a partial update; nil fields are left untouched.
type EditProductPayload struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       *string   `json:"sku,omitempty"`
	Name      *string   `json:"name,omitempty"`
	Barcode   *string   `json:"barcode,omitempty"`
	Category  *string   `json:"category,omitempty"`
	Unit      *string   `json:"unit,omitempty"`
	Price     *int64    `json:"price,omitempty"`
	Stock     *int      `json:"stock,omitempty"`
	MinStock  *int      `json:"min_stock,omitempty"`
}

type DeleteProductPayload struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"` // snapshot for audit text
}

// ConvertStockPayload describes a bulk→retail transfer. TotalRetailAdded is
// SourceQuantity × ConversionRate, frozen at submission time. Stock
// sufficiency is re-checked against current state at approval time.
type ConvertStockPayload struct {
	SourceProductID  uuid.UUID `json:"source_product_id"`
	TargetProductID  uuid.UUID `json:"target_product_id"`
	SourceQuantity   int       `json:"source_quantity"`
	ConversionRate   int       `json:"conversion_rate"`
	TotalRetailAdded int       `json:"total_retail_added"`
}

// NewRequest snapshots a typed payload into a pending request.
func NewRequest(kind RequestType, payload interface{}, requester Actor) (*Request, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Request{
		ID:            uuid.New(),
		Type:          kind,
		Payload:       string(raw),
		Status:        RequestPending,
		RequestedBy:   requester.ID,
		RequesterName: requester.Username,
	}, nil
}

// DecodePayload unmarshals the snapshot into the typed payload struct.
func (r *Request) DecodePayload(out interface{}) error {
	return json.Unmarshal([]byte(r.Payload), out)
}
