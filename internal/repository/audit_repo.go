package repository

import (
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Record(tx *gorm.DB, entry *model.AuditEntry) error
	FindAll(limit int) ([]model.AuditEntry, error)
	FindByUser(userID uuid.UUID, limit int) ([]model.AuditEntry, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db}
}

// Record appends one entry. It takes *gorm.DB so the append can join the
// caller's transaction; storage errors propagate unmodified.
func (r *auditRepo) Record(tx *gorm.DB, entry *model.AuditEntry) error {
	return tx.Create(entry).Error
}

func (r *auditRepo) FindAll(limit int) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	q := r.db.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func (r *auditRepo) FindByUser(userID uuid.UUID, limit int) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	q := r.db.Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&entries).Error
	return entries, err
}
