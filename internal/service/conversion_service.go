package service

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/apperr"
	"go-retail-pos/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversionService executes bulk→retail stock transfers (deconditioning):
// a fixed quantity of a bulk product is consumed and sourceQty × rate units
// of a retail product are produced.
type ConversionService interface {
	ProposeConversion(actor model.Actor, input ConversionInput) (*MutationResult, error)
}

type ConversionInput struct {
	SourceProductID uuid.UUID `json:"source_product_id" validate:"uuid_required"`
	TargetProductID uuid.UUID `json:"target_product_id" validate:"uuid_required"`
	SourceQuantity  int       `json:"source_quantity" validate:"required,gt=0"`
	ConversionRate  int       `json:"conversion_rate" validate:"required,gt=0"`
}

type conversionService struct {
	productRepo repository.ProductRepository
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewConversionService(pRepo repository.ProductRepository, rRepo repository.RequestRepository, aRepo repository.AuditRepository, db *gorm.DB, hub *ws.Hub) ConversionService {
	return &conversionService{
		productRepo: pRepo,
		requestRepo: rRepo,
		auditRepo:   aRepo,
		db:          db,
		wsHub:       hub,
	}
}

func (s *conversionService) ProposeConversion(actor model.Actor, input ConversionInput) (*MutationResult, error) {
	// Quantities are validated here, not left to client-side input constraints
	if msg := validator.FirstFailure(input); msg != "" {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, msg)
	}

	if input.SourceProductID == input.TargetProductID {
		return nil, apperr.ErrSameProduct
	}

	source, err := s.productRepo.FindByID(input.SourceProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: source product", apperr.ErrNotFound)
	}
	target, err := s.productRepo.FindByID(input.TargetProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: target product", apperr.ErrNotFound)
	}

	if source.Stock < input.SourceQuantity {
		return nil, fmt.Errorf("%w: '%s' has %d, need %d", apperr.ErrInsufficientStock, source.Name, source.Stock, input.SourceQuantity)
	}

	totalRetail := input.SourceQuantity * input.ConversionRate

	// Non-admins never touch the catalog: capture the proposal instead
	if !actor.IsAdmin() {
		payload := model.ConvertStockPayload{
			SourceProductID:  source.ID,
			TargetProductID:  target.ID,
			SourceQuantity:   input.SourceQuantity,
			ConversionRate:   input.ConversionRate,
			TotalRetailAdded: totalRetail,
		}
		request, err := model.NewRequest(model.RequestConvertStock, payload, actor)
		if err != nil {
			return nil, err
		}
		if err := s.requestRepo.Create(request); err != nil {
			return nil, err
		}

		s.wsHub.BroadcastEvent(ws.Event{
			Type:    "request_update",
			Action:  "request_submitted",
			Data:    request,
			User:    actor,
			Message: fmt.Sprintf("%s requested a stock conversion of '%s'", actor.Username, source.Name),
		})
		return pending(request.ID), nil
	}

	// Admin path: decrement and increment as one atomic unit
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var src, tgt model.Product
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&src, "id = ?", source.ID).Error; err != nil {
			return fmt.Errorf("%w: source product", apperr.ErrNotFound)
		}
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&tgt, "id = ?", target.ID).Error; err != nil {
			return fmt.Errorf("%w: target product", apperr.ErrNotFound)
		}

		// Re-check under lock; a concurrent sale may have drained the source
		if src.Stock < input.SourceQuantity {
			return fmt.Errorf("%w: '%s' has %d, need %d", apperr.ErrInsufficientStock, src.Name, src.Stock, input.SourceQuantity)
		}

		if err := s.productRepo.UpdateStock(tx, src.ID, src.Stock-input.SourceQuantity, actor.ID.String()); err != nil {
			return err
		}
		if err := s.productRepo.UpdateStock(tx, tgt.ID, tgt.Stock+totalRetail, actor.ID.String()); err != nil {
			return err
		}

		source.Stock = src.Stock - input.SourceQuantity
		target.Stock = tgt.Stock + totalRetail

		entry := &model.AuditEntry{
			UserID:   actor.ID,
			Username: actor.Username,
			Action: fmt.Sprintf("Converted %d x '%s' into %d x '%s' (rate %d)",
				input.SourceQuantity, src.Name, totalRetail, tgt.Name, input.ConversionRate),
		}
		return s.auditRepo.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent(ws.Event{
		Type:   "stock_update",
		Action: "stock_converted",
		Data: map[string]interface{}{
			"source_product_id": source.ID,
			"source_stock":      source.Stock,
			"target_product_id": target.ID,
			"target_stock":      target.Stock,
		},
		User:    actor,
		Message: fmt.Sprintf("%s converted %d x '%s' into %d x '%s'", actor.Username, input.SourceQuantity, source.Name, totalRetail, target.Name),
	})

	return committed(target), nil
}

// notFound maps gorm's record-not-found onto the shared error kind,
// passing other storage errors through untouched.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}
