package repository

import (
	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	CreateTx(tx *gorm.DB, product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindByBarcode(barcode string) ([]model.Product, error)
	FindBelowMinStock() ([]model.Product, error)
	Update(product *model.Product) error
	Delete(tx *gorm.DB, id uuid.UUID) error
	UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) CreateTx(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	return &product, err
}

// FindByBarcode returns every match; barcodes are not guaranteed unique
func (r *productRepo) FindByBarcode(barcode string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("barcode = ?", barcode).Find(&products).Error
	return products, err
}

func (r *productRepo) FindBelowMinStock() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("stock < min_stock").Order("stock ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.Product{}, "id = ?", id).Error
}

// UpdateStock takes *gorm.DB (tx) so it can run inside a transaction
func (r *productRepo) UpdateStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}
