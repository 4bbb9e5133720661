package service

import (
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/apperr"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesService records checkouts. Every line decrements product stock inside
// one transaction; an insufficient line aborts the whole sale.
type SalesService interface {
	RecordSale(actor model.Actor, input SaleInput) (*model.Sale, error)
	GetAllSales() ([]model.Sale, error)
	GetSaleByID(id uuid.UUID) (*model.Sale, error)
}

type SaleInput struct {
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=CASH TRANSFER"`
	Items         []SaleItemInput `json:"items" validate:"required,min=1,dive"`
}

type SaleItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type salesService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	auditRepo   repository.AuditRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewSalesService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, aRepo repository.AuditRepository, db *gorm.DB, hub *ws.Hub) SalesService {
	return &salesService{
		productRepo: pRepo,
		saleRepo:    sRepo,
		auditRepo:   aRepo,
		db:          db,
		wsHub:       hub,
	}
}

func (s *salesService) RecordSale(actor model.Actor, input SaleInput) (*model.Sale, error) {
	if msg := validator.FirstFailure(input); msg != "" {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, msg)
	}

	sale := &model.Sale{
		CashierID:     actor.ID,
		CashierName:   actor.Username,
		PaymentMethod: input.PaymentMethod,
	}
	sale.CreatedBy = actor.ID.String()
	sale.UpdatedBy = actor.ID.String()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var total int64

		for _, line := range input.Items {
			var product model.Product
			if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&product, "id = ?", line.ProductID).Error; err != nil {
				return fmt.Errorf("%w: product %s", apperr.ErrNotFound, line.ProductID)
			}

			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: '%s' has %d, need %d", apperr.ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
			}

			if err := s.productRepo.UpdateStock(tx, product.ID, product.Stock-line.Quantity, actor.ID.String()); err != nil {
				return err
			}

			subtotal := product.Price * int64(line.Quantity)
			total += subtotal
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID:   product.ID,
				ProductName: product.Name, // snapshot, later edits must not rewrite history
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
				Subtotal:    subtotal,
			})
		}

		sale.TotalAmount = total
		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		entry := &model.AuditEntry{
			UserID:   actor.ID,
			Username: actor.Username,
			Action:   fmt.Sprintf("Recorded sale of %d item(s), total %d (%s)", len(sale.Items), total, sale.PaymentMethod),
		}
		return s.auditRepo.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent(ws.Event{
		Type:    "stock_update",
		Action:  "sale_recorded",
		Data:    sale,
		User:    actor,
		Message: fmt.Sprintf("%s recorded a sale of %d item(s)", actor.Username, len(sale.Items)),
	})
	return sale, nil
}

func (s *salesService) GetAllSales() ([]model.Sale, error) {
	return s.saleRepo.FindAll()
}

func (s *salesService) GetSaleByID(id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return sale, nil
}
