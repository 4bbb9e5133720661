package service

import (
	"errors"
	"fmt"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/ws"
	"go-retail-pos/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovalService replays pending requests against the catalog. Approving a
// request applies its encoded effect exactly as the equivalent direct
// mutation would, flips the request to APPROVED and writes one audit entry
// crediting the original requester — all in one transaction. A validation
// failure during replay rolls everything back and leaves the request pending.
type ApprovalService interface {
	ListPending() ([]model.Request, error)
	ListAll() ([]model.Request, error)
	GetRequest(id uuid.UUID) (*model.Request, error)
	Approve(actor model.Actor, requestID uuid.UUID) (*model.Request, error)
	Reject(actor model.Actor, requestID uuid.UUID, reason string) (*model.Request, error)
}

// applier replays one request kind inside tx and returns the audit
// description of the applied effect.
type applier func(tx *gorm.DB, request *model.Request) (string, error)

type approvalService struct {
	productRepo repository.ProductRepository
	requestRepo repository.RequestRepository
	auditRepo   repository.AuditRepository
	db          *gorm.DB
	wsHub       *ws.Hub
	appliers    map[model.RequestType]applier
}

func NewApprovalService(pRepo repository.ProductRepository, rRepo repository.RequestRepository, aRepo repository.AuditRepository, db *gorm.DB, hub *ws.Hub) ApprovalService {
	s := &approvalService{
		productRepo: pRepo,
		requestRepo: rRepo,
		auditRepo:   aRepo,
		db:          db,
		wsHub:       hub,
	}
	// Closed dispatch table: one applier per request kind
	s.appliers = map[model.RequestType]applier{
		model.RequestAddProduct:    s.applyAddProduct,
		model.RequestEditProduct:   s.applyEditProduct,
		model.RequestDeleteProduct: s.applyDeleteProduct,
		model.RequestConvertStock:  s.applyConvertStock,
	}
	return s
}

func (s *approvalService) ListPending() ([]model.Request, error) {
	return s.requestRepo.FindPending()
}

func (s *approvalService) ListAll() ([]model.Request, error) {
	return s.requestRepo.FindAll()
}

func (s *approvalService) GetRequest(id uuid.UUID) (*model.Request, error) {
	request, err := s.requestRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return request, nil
}

func (s *approvalService) Approve(actor model.Actor, requestID uuid.UUID) (*model.Request, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrNotAuthorized
	}

	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, notFound(err)
	}
	if request.Status != model.RequestPending {
		return nil, apperr.ErrInvalidState
	}

	apply, ok := s.appliers[request.Type]
	if !ok {
		return nil, fmt.Errorf("unknown request type %q", request.Type)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		description, err := apply(tx, request)
		if err != nil {
			return err // rollback, request stays pending
		}

		// Status guard in Resolve makes the transition exactly-once even
		// when two admins race on the same request
		if err := s.requestRepo.Resolve(tx, request.ID, model.RequestApproved, actor.ID, ""); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrInvalidState
			}
			return err
		}

		// Credited to the original requester, tagged with the approving admin
		entry := &model.AuditEntry{
			UserID:   request.RequestedBy,
			Username: request.RequesterName,
			Action:   fmt.Sprintf("%s (approved by %s)", description, actor.Username),
			Details:  request.Payload,
		}
		return s.auditRepo.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	resolved, err := s.requestRepo.FindByID(request.ID)
	if err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent(ws.Event{
		Type:    "request_update",
		Action:  "request_approved",
		Data:    resolved,
		User:    actor,
		Message: fmt.Sprintf("%s approved %s's %s request", actor.Username, resolved.RequesterName, resolved.Type),
	})
	return resolved, nil
}

func (s *approvalService) Reject(actor model.Actor, requestID uuid.UUID, reason string) (*model.Request, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrNotAuthorized
	}

	request, err := s.requestRepo.FindByID(requestID)
	if err != nil {
		return nil, notFound(err)
	}
	if request.Status != model.RequestPending {
		return nil, apperr.ErrInvalidState
	}

	// Rejection has zero catalog effect
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.Resolve(tx, request.ID, model.RequestRejected, actor.ID, reason); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrInvalidState
			}
			return err
		}
		entry := &model.AuditEntry{
			UserID:   actor.ID,
			Username: actor.Username,
			Action:   fmt.Sprintf("Rejected %s request from %s", request.Type, request.RequesterName),
			Details:  request.Payload,
		}
		return s.auditRepo.Record(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	resolved, err := s.requestRepo.FindByID(request.ID)
	if err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent(ws.Event{
		Type:    "request_update",
		Action:  "request_rejected",
		Data:    resolved,
		User:    actor,
		Message: fmt.Sprintf("%s rejected %s's %s request", actor.Username, resolved.RequesterName, resolved.Type),
	})
	return resolved, nil
}

func (s *approvalService) applyAddProduct(tx *gorm.DB, request *model.Request) (string, error) {
	var payload model.AddProductPayload
	if err := request.DecodePayload(&payload); err != nil {
		return "", err
	}

	// SKU may have been taken between submission and approval
	var existing model.Product
	if err := tx.First(&existing, "sku = ?", payload.SKU).Error; err == nil {
		return "", fmt.Errorf("%w: SKU '%s' already exists", apperr.ErrValidation, payload.SKU)
	}

	product := &model.Product{
		SKU:      payload.SKU,
		Name:     payload.Name,
		Barcode:  payload.Barcode,
		Category: payload.Category,
		Unit:     payload.Unit,
		Price:    payload.Price,
		Stock:    payload.Stock,
		MinStock: payload.MinStock,
	}
	product.CreatedBy = request.RequestedBy.String()
	product.UpdatedBy = request.RequestedBy.String()

	if err := s.productRepo.CreateTx(tx, product); err != nil {
		return "", err
	}
	return fmt.Sprintf("Added product '%s' (SKU %s)", product.Name, product.SKU), nil
}

func (s *approvalService) applyEditProduct(tx *gorm.DB, request *model.Request) (string, error) {
	var payload model.EditProductPayload
	if err := request.DecodePayload(&payload); err != nil {
		return "", err
	}

	var existing model.Product
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&existing, "id = ?", payload.ProductID).Error; err != nil {
		return "", notFound(err)
	}

	applyProductEdit(&existing, EditProductInput{
		SKU:      payload.SKU,
		Name:     payload.Name,
		Barcode:  payload.Barcode,
		Category: payload.Category,
		Unit:     payload.Unit,
		Price:    payload.Price,
		Stock:    payload.Stock,
		MinStock: payload.MinStock,
	})
	existing.UpdatedBy = request.RequestedBy.String()

	if err := tx.Save(&existing).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("Edited product '%s' (SKU %s)", existing.Name, existing.SKU), nil
}

func (s *approvalService) applyDeleteProduct(tx *gorm.DB, request *model.Request) (string, error) {
	var payload model.DeleteProductPayload
	if err := request.DecodePayload(&payload); err != nil {
		return "", err
	}

	// Idempotent-tolerant: deleting an already-absent product still counts
	// as reaching the desired end state
	if err := s.productRepo.Delete(tx, payload.ProductID); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted product '%s'", payload.ProductName), nil
}

func (s *approvalService) applyConvertStock(tx *gorm.DB, request *model.Request) (string, error) {
	var payload model.ConvertStockPayload
	if err := request.DecodePayload(&payload); err != nil {
		return "", err
	}

	var source, target model.Product
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&source, "id = ?", payload.SourceProductID).Error; err != nil {
		return "", fmt.Errorf("%w: source product", apperr.ErrNotFound)
	}
	if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&target, "id = ?", payload.TargetProductID).Error; err != nil {
		return "", fmt.Errorf("%w: target product", apperr.ErrNotFound)
	}

	// Stock may have drifted between submission and approval; validate
	// against current state, never the submission-time snapshot
	if source.Stock < payload.SourceQuantity {
		return "", fmt.Errorf("%w: '%s' has %d, need %d", apperr.ErrInsufficientStock, source.Name, source.Stock, payload.SourceQuantity)
	}

	requesterID := request.RequestedBy.String()
	if err := s.productRepo.UpdateStock(tx, source.ID, source.Stock-payload.SourceQuantity, requesterID); err != nil {
		return "", err
	}
	if err := s.productRepo.UpdateStock(tx, target.ID, target.Stock+payload.TotalRetailAdded, requesterID); err != nil {
		return "", err
	}

	return fmt.Sprintf("Converted %d x '%s' into %d x '%s' (rate %d)",
		payload.SourceQuantity, source.Name, payload.TotalRetailAdded, target.Name, payload.ConversionRate), nil
}
