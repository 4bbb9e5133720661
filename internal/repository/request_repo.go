package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(request *model.Request) error
	FindByID(id uuid.UUID) (*model.Request, error)
	FindPending() ([]model.Request, error)
	FindAll() ([]model.Request, error)
	Resolve(tx *gorm.DB, id uuid.UUID, status model.RequestStatus, resolvedBy uuid.UUID, reason string) error
}

type requestRepo struct {
	db *gorm.DB
}

func NewRequestRepo(db *gorm.DB) RequestRepository {
	return &requestRepo{db}
}

func (r *requestRepo) Create(request *model.Request) error {
	return r.db.Create(request).Error
}

func (r *requestRepo) FindByID(id uuid.UUID) (*model.Request, error) {
	var request model.Request
	err := r.db.First(&request, "id = ?", id).Error
	return &request, err
}

// FindPending returns pending requests oldest first, so the approval queue
// is deterministic and fair
func (r *requestRepo) FindPending() ([]model.Request, error) {
	var requests []model.Request
	err := r.db.Where("status = ?", model.RequestPending).Order("created_at ASC").Find(&requests).Error
	return requests, err
}

func (r *requestRepo) FindAll() ([]model.Request, error) {
	var requests []model.Request
	err := r.db.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

// Resolve flips a pending request to a terminal status. The WHERE guard on
// status makes the transition exactly-once even under concurrent admins:
// a second resolve matches zero rows.
func (r *requestRepo) Resolve(tx *gorm.DB, id uuid.UUID, status model.RequestStatus, resolvedBy uuid.UUID, reason string) error {
	now := time.Now()
	result := tx.Model(&model.Request{}).
		Where("id = ? AND status = ?", id, model.RequestPending).
		Updates(map[string]interface{}{
			"status":        status,
			"resolved_by":   resolvedBy,
			"resolved_at":   now,
			"reject_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
