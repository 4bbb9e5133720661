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

// CatalogService manages the product catalog. Admin mutations commit
// directly with an audit entry; non-admin mutations are intercepted and
// captured as pending approval requests instead.
type CatalogService interface {
	ListProducts() ([]model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	SearchByBarcode(barcode string) ([]model.Product, error)
	AddProduct(actor model.Actor, input AddProductInput) (*MutationResult, error)
	EditProduct(actor model.Actor, id uuid.UUID, input EditProductInput) (*MutationResult, error)
	RemoveProduct(actor model.Actor, id uuid.UUID) (*MutationResult, error)
}

type AddProductInput struct {
	SKU      string `json:"sku" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Barcode  string `json:"barcode"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
	Price    int64  `json:"price" validate:"gte=0"`
	Stock    int    `json:"stock" validate:"gte=0"`
	MinStock int    `json:"min_stock" validate:"gte=0"`
}

// EditProductInput is a partial update; nil fields are left untouched.
type EditProductInput struct {
	SKU      *string `json:"sku,omitempty"`
	Name     *string `json:"name,omitempty"`
	Barcode  *string `json:"barcode,omitempty"`
	Category *string `json:"category,omitempty"`
	Unit     *string `json:"unit,omitempty"`
	Price    *int64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Stock    *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	MinStock *int    `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
}

type catalogService struct {
	productRepo repository.ProductRepository
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewCatalogService(pRepo repository.ProductRepository, rRepo repository.RequestRepository, aRepo repository.AuditRepository, db *gorm.DB, hub *ws.Hub) CatalogService {
	return &catalogService{
		productRepo: pRepo,
		requestRepo: rRepo,
		auditRepo:   aRepo,
		db:          db,
		wsHub:       hub,
	}
}

func (s *catalogService) ListProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (s *catalogService) SearchByBarcode(barcode string) ([]model.Product, error) {
	return s.productRepo.FindByBarcode(barcode)
}

func (s *catalogService) AddProduct(actor model.Actor, input AddProductInput) (*MutationResult, error) {
	if msg := validator.FirstFailure(input); msg != "" {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, msg)
	}

	// SKU duplication check (re-checked at approval time for queued requests)
	existing, _ := s.productRepo.FindBySKU(input.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return nil, fmt.Errorf("%w: SKU '%s' already exists", apperr.ErrValidation, input.SKU)
	}

	if !actor.IsAdmin() {
		payload := model.AddProductPayload(input)
		request, err := model.NewRequest(model.RequestAddProduct, payload, actor)
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
			Message: fmt.Sprintf("%s requested adding product '%s'", actor.Username, input.Name),
		})
		return pending(request.ID), nil
	}

	product := productFromAddInput(input, actor.ID.String())
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.CreateTx(tx, product); err != nil {
			return err
		}
		entry := &model.AuditEntry{
			UserID:   actor.ID,
			Username: actor.Username,
			Action:   fmt.Sprintf("Added product '%s' (SKU %s)", product.Name, product.SKU),
		}
		return s.auditRepo.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent(ws.Event{
		Type:    "stock_update",
		Action:  "product_created",
		Data:    product,
		User:    actor,
		Message: fmt.Sprintf("%s created product '%s'", actor.Username, product.Name),
	})
	return committed(product), nil
}

func (s *catalogService) EditProduct(actor model.Actor, id uuid.UUID, input EditProductInput) (*MutationResult, error) {
	if msg := validator.FirstFailure(input); msg != "" {
		return nil, fmt.Errorf("%w: %s", apperr.ErrValidation, msg)
	}

	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}

	if !actor.IsAdmin() {
		payload := model.EditProductPayload{
			ProductID: id,
			SKU:       input.SKU,
			Name:      input.Name,
			Barcode:   input.Barcode,
			Category:  input.Category,
			Unit:      input.Unit,
			Price:     input.Price,
			Stock:     input.Stock,
			MinStock:  input.MinStock,
		}
		request, err := model.NewRequest(model.RequestEditProduct, payload, actor)
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
			Message: fmt.Sprintf("%s requested editing product '%s'", actor.Username, product.Name),
		})
		return pending(request.ID), nil
	}

	var updated *model.Product
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&existing, "id = ?", id).Error; err != nil {
			return notFound(err)
		}

		applyProductEdit(&existing, input)
		existing.UpdatedBy = actor.ID.String()
		idStr := actor.ID.String()
		existing.UpdatedByUserID = &idStr

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		updated = &existing

		entry := &model.AuditEntry{
			UserID:   actor.ID,
			Username: actor.Username,
			Action:   fmt.Sprintf("Edited product '%s' (SKU %s)", existing.Name, existing.SKU),
		}
		return s.auditRepo.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent(ws.Event{
		Type:    "stock_update",
		Action:  "product_updated",
		Data:    updated,
		User:    actor,
		Message: fmt.Sprintf("%s updated product '%s'", actor.Username, updated.Name),
	})
	return committed(updated), nil
}

func (s *catalogService) RemoveProduct(actor model.Actor, id uuid.UUID) (*MutationResult, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}

	if !actor.IsAdmin() {
		payload := model.DeleteProductPayload{ProductID: id, ProductName: product.Name}
		request, err := model.NewRequest(model.RequestDeleteProduct, payload, actor)
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
			Message: fmt.Sprintf("%s requested deleting product '%s'", actor.Username, product.Name),
		})
		return pending(request.ID), nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Delete(tx, id); err != nil {
			return err
		}
		entry := &model.AuditEntry{
			UserID:   actor.ID,
			Username: actor.Username,
			Action:   fmt.Sprintf("Deleted product '%s' (SKU %s)", product.Name, product.SKU),
		}
		return s.auditRepo.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent(ws.Event{
		Type:    "stock_update",
		Action:  "product_deleted",
		Data:    map[string]interface{}{"id": id},
		User:    actor,
		Message: fmt.Sprintf("%s deleted product '%s'", actor.Username, product.Name),
	})
	return &MutationResult{Status: StatusCommitted}, nil
}

func productFromAddInput(input AddProductInput, creatorID string) *model.Product {
	product := &model.Product{
		SKU:      input.SKU,
		Name:     input.Name,
		Barcode:  input.Barcode,
		Category: input.Category,
		Unit:     input.Unit,
		Price:    input.Price,
		Stock:    input.Stock,
		MinStock: input.MinStock,
	}
	product.CreatedBy = creatorID
	product.UpdatedBy = creatorID
	product.CreatedByUserID = &creatorID
	product.UpdatedByUserID = &creatorID
	return product
}

func applyProductEdit(p *model.Product, input EditProductInput) {
	if input.SKU != nil {
		p.SKU = *input.SKU
	}
	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Barcode != nil {
		p.Barcode = *input.Barcode
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Unit != nil {
		p.Unit = *input.Unit
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Stock != nil {
		p.Stock = *input.Stock
	}
	if input.MinStock != nil {
		p.MinStock = *input.MinStock
	}
}
