package service

import (
	"strings"
	"testing"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newApprovalFixture(t *testing.T, db *gorm.DB) (ApprovalService, ConversionService, CatalogService) {
	t.Helper()

	productRepo := repository.NewProductRepo(db)
	requestRepo := repository.NewRequestRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	hub := newTestHub()

	approval := NewApprovalService(productRepo, requestRepo, auditRepo, db, hub)
	conversion := NewConversionService(productRepo, requestRepo, auditRepo, db, hub)
	catalog := NewCatalogService(productRepo, requestRepo, auditRepo, db, hub)
	return approval, conversion, catalog
}

func submitConversion(t *testing.T, conversion ConversionService, sourceID, targetID uuid.UUID, qty, rate int) uuid.UUID {
	t.Helper()

	result, err := conversion.ProposeConversion(employeeActor(), ConversionInput{
		SourceProductID: sourceID,
		TargetProductID: targetID,
		SourceQuantity:  qty,
		ConversionRate:  rate,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)
	return *result.RequestID
}

func TestApprove_ConvertStockAppliesEffect(t *testing.T) {
	db := setupTestDB(t)
	approval, conversion, _ := newApprovalFixture(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)
	requestID := submitConversion(t, conversion, bulk.ID, retail.ID, 2, 24)

	admin := adminActor()
	resolved, err := approval.Approve(admin, requestID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, resolved.Status)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin.ID, *resolved.ResolvedBy)
	assert.NotNil(t, resolved.ResolvedAt)

	assert.Equal(t, 8, reloadProduct(t, db, bulk.ID).Stock)
	assert.Equal(t, 48, reloadProduct(t, db, retail.ID).Stock)

	// One audit entry crediting the requester, tagged with the admin
	var entries []model.AuditEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, resolved.RequestedBy, entries[0].UserID)
	assert.Equal(t, "bob", entries[0].Username)
	assert.True(t, strings.Contains(entries[0].Action, "(approved by alice)"), "got action %q", entries[0].Action)
}

func TestApprove_TwiceFailsWithoutDoubleApply(t *testing.T) {
	db := setupTestDB(t)
	approval, conversion, _ := newApprovalFixture(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)
	requestID := submitConversion(t, conversion, bulk.ID, retail.ID, 2, 24)

	_, err := approval.Approve(adminActor(), requestID)
	require.NoError(t, err)

	_, err = approval.Approve(adminActor(), requestID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	// Applied exactly once
	assert.Equal(t, 8, reloadProduct(t, db, bulk.ID).Stock)
	assert.Equal(t, 48, reloadProduct(t, db, retail.ID).Stock)
}

func TestApprove_NonAdmin(t *testing.T) {
	db := setupTestDB(t)
	approval, conversion, _ := newApprovalFixture(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)
	requestID := submitConversion(t, conversion, bulk.ID, retail.ID, 2, 24)

	_, err := approval.Approve(employeeActor(), requestID)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	assert.Equal(t, 10, reloadProduct(t, db, bulk.ID).Stock)
}

func TestApprove_StockDriftLeavesRequestPending(t *testing.T) {
	db := setupTestDB(t)
	approval, conversion, _ := newApprovalFixture(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)
	requestID := submitConversion(t, conversion, bulk.ID, retail.ID, 2, 24)

	// A sale drains the source between submission and approval
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", bulk.ID).Update("stock", 1).Error)

	_, err := approval.Approve(adminActor(), requestID)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// No mutation, request still pending for reject-or-resubmit
	assert.Equal(t, 1, reloadProduct(t, db, bulk.ID).Stock)
	assert.Equal(t, 0, reloadProduct(t, db, retail.ID).Stock)

	var request model.Request
	require.NoError(t, db.First(&request, "id = ?", requestID).Error)
	assert.Equal(t, model.RequestPending, request.Status)
	assert.Equal(t, int64(0), countAuditEntries(t, db))
}

func TestApprove_AddProduct(t *testing.T) {
	db := setupTestDB(t)
	approval, _, catalog := newApprovalFixture(t, db)

	result, err := catalog.AddProduct(employeeActor(), AddProductInput{
		SKU:      "CHO-001",
		Name:     "Chocolate Bar",
		Price:    1500,
		Stock:    30,
		MinStock: 5,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)

	_, err = approval.Approve(adminActor(), *result.RequestID)
	require.NoError(t, err)

	var product model.Product
	require.NoError(t, db.First(&product, "sku = ?", "CHO-001").Error)
	assert.Equal(t, "Chocolate Bar", product.Name)
	assert.Equal(t, 30, product.Stock)
}

func TestApprove_EditProductPartialUpdate(t *testing.T) {
	db := setupTestDB(t)
	approval, _, catalog := newApprovalFixture(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	newPrice := int64(1800)
	result, err := catalog.EditProduct(employeeActor(), product.ID, EditProductInput{Price: &newPrice})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)

	_, err = approval.Approve(adminActor(), *result.RequestID)
	require.NoError(t, err)

	updated := reloadProduct(t, db, product.ID)
	assert.Equal(t, int64(1800), updated.Price)
	// Untouched fields survive
	assert.Equal(t, "Chocolate Bar", updated.Name)
	assert.Equal(t, 30, updated.Stock)
}

func TestApprove_EditProductGone(t *testing.T) {
	db := setupTestDB(t)
	approval, _, catalog := newApprovalFixture(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	newPrice := int64(1800)
	result, err := catalog.EditProduct(employeeActor(), product.ID, EditProductInput{Price: &newPrice})
	require.NoError(t, err)

	require.NoError(t, db.Unscoped().Delete(&model.Product{}, "id = ?", product.ID).Error)

	_, err = approval.Approve(adminActor(), *result.RequestID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestApprove_DeleteProductAlreadyGone(t *testing.T) {
	db := setupTestDB(t)
	approval, _, catalog := newApprovalFixture(t, db)

	product := createProduct(t, db, "CHO-001", "Chocolate Bar", 30, 1500)

	result, err := catalog.RemoveProduct(employeeActor(), product.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)

	// Target vanished before approval; the desired end state already holds
	require.NoError(t, db.Unscoped().Delete(&model.Product{}, "id = ?", product.ID).Error)

	resolved, err := approval.Approve(adminActor(), *result.RequestID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, resolved.Status)
}

func TestReject(t *testing.T) {
	db := setupTestDB(t)
	approval, conversion, _ := newApprovalFixture(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)
	requestID := submitConversion(t, conversion, bulk.ID, retail.ID, 2, 24)

	resolved, err := approval.Reject(adminActor(), requestID, "not needed")
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, resolved.Status)
	assert.Equal(t, "not needed", resolved.RejectReason)

	// Zero catalog effect
	assert.Equal(t, 10, reloadProduct(t, db, bulk.ID).Stock)
	assert.Equal(t, 0, reloadProduct(t, db, retail.ID).Stock)

	// Rejecting again fails: terminal states are immutable
	_, err = approval.Reject(adminActor(), requestID, "again")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	// And so does approving a rejected request
	_, err = approval.Approve(adminActor(), requestID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestListPending_OldestFirst(t *testing.T) {
	db := setupTestDB(t)
	approval, conversion, _ := newApprovalFixture(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 100, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)

	first := submitConversion(t, conversion, bulk.ID, retail.ID, 1, 24)
	second := submitConversion(t, conversion, bulk.ID, retail.ID, 2, 24)
	third := submitConversion(t, conversion, bulk.ID, retail.ID, 3, 24)

	// Stagger submission times; insertion order alone is not enough
	base := time.Now().Add(-time.Hour)
	for i, id := range []uuid.UUID{first, second, third} {
		require.NoError(t, db.Model(&model.Request{}).Where("id = ?", id).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	pending, err := approval.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, first, pending[0].ID)
	assert.Equal(t, second, pending[1].ID)
	assert.Equal(t, third, pending[2].ID)
}
