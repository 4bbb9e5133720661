package service

import (
	"testing"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogService(t *testing.T, db *gorm.DB) CatalogService {
	t.Helper()
	return NewCatalogService(
		repository.NewProductRepo(db),
		repository.NewRequestRepo(db),
		repository.NewAuditRepo(db),
		db,
		newTestHub(),
	)
}

func TestAddProduct_AdminCommitsWithAudit(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	result, err := svc.AddProduct(adminActor(), AddProductInput{
		SKU:      "CHO-001",
		Name:     "Chocolate Bar",
		Barcode:  "7891234567890",
		Category: "Snacks",
		Price:    1500,
		Stock:    30,
		MinStock: 5,
	})
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, result.Status)
	require.NotNil(t, result.Product)

	var product model.Product
	require.NoError(t, db.First(&product, "sku = ?", "CHO-001").Error)
	assert.Equal(t, "Chocolate Bar", product.Name)
	assert.Equal(t, int64(1), countAuditEntries(t, db))
	assert.Equal(t, int64(0), countRequests(t, db, model.RequestPending))
}

func TestAddProduct_EmployeeQueuesRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	result, err := svc.AddProduct(employeeActor(), AddProductInput{
		SKU:   "CHO-001",
		Name:  "Chocolate Bar",
		Price: 1500,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)

	// Catalog not touched, exactly one pending request
	var count int64
	db.Model(&model.Product{}).Count(&count)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, int64(1), countRequests(t, db, model.RequestPending))
	assert.Equal(t, int64(0), countAuditEntries(t, db))
}

func TestAddProduct_DuplicateSKU(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	_, err := svc.AddProduct(adminActor(), AddProductInput{
		SKU:   "CHO-001",
		Name:  "Other Chocolate",
		Price: 1200,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddProduct_MissingFields(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	_, err := svc.AddProduct(adminActor(), AddProductInput{Price: 1500})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestEditProduct_AdminPartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	newName := "Dark Chocolate Bar"
	newMin := 10
	result, err := svc.EditProduct(adminActor(), product.ID, EditProductInput{
		Name:     &newName,
		MinStock: &newMin,
	})
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, result.Status)

	updated := reloadProduct(t, db, product.ID)
	assert.Equal(t, "Dark Chocolate Bar", updated.Name)
	assert.Equal(t, 10, updated.MinStock)
	// Fields not in the input keep their values
	assert.Equal(t, "CHO-001", updated.SKU)
	assert.Equal(t, int64(1500), updated.Price)
	assert.Equal(t, 30, updated.Stock)
}

func TestEditProduct_EmployeeQueuesRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	newPrice := int64(1800)
	result, err := svc.EditProduct(employeeActor(), product.ID, EditProductInput{Price: &newPrice})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)

	assert.Equal(t, int64(1500), reloadProduct(t, db, product.ID).Price)
	assert.Equal(t, int64(1), countRequests(t, db, model.RequestPending))
}

func TestRemoveProduct_AdminCommits(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	result, err := svc.RemoveProduct(adminActor(), product.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, result.Status)

	err = db.First(&model.Product{}, "id = ?", product.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, int64(1), countAuditEntries(t, db))
}

func TestRemoveProduct_EmployeeQueuesRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	result, err := svc.RemoveProduct(employeeActor(), product.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)

	// Still there until an admin approves
	require.NoError(t, db.First(&model.Product{}, "id = ?", product.ID).Error)
	assert.Equal(t, int64(1), countRequests(t, db, model.RequestPending))
}

func TestGetProduct_Unknown(t *testing.T) {
	db := setupTestDB(t)
	svc := newCatalogService(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)
	require.NoError(t, db.Unscoped().Delete(&model.Product{}, "id = ?", product.ID).Error)

	_, err := svc.GetProduct(product.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
