package service

import (
	"testing"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newConversionService(t *testing.T, db *gorm.DB) ConversionService {
	t.Helper()
	return NewConversionService(
		repository.NewProductRepo(db),
		repository.NewRequestRepo(db),
		repository.NewAuditRepo(db),
		db,
		newTestHub(),
	)
}

func TestProposeConversion_AdminCommitsAtomically(t *testing.T) {
	db := setupTestDB(t)
	svc := newConversionService(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)

	result, err := svc.ProposeConversion(adminActor(), ConversionInput{
		SourceProductID: bulk.ID,
		TargetProductID: retail.ID,
		SourceQuantity:  2,
		ConversionRate:  24,
	})
	require.NoError(t, err)
	require.Equal(t, StatusCommitted, result.Status)

	assert.Equal(t, 8, reloadProduct(t, db, bulk.ID).Stock)
	assert.Equal(t, 48, reloadProduct(t, db, retail.ID).Stock)
	assert.Equal(t, int64(1), countAuditEntries(t, db))
	assert.Equal(t, int64(0), countRequests(t, db, model.RequestPending))
}

func TestProposeConversion_EmployeeQueuesRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newConversionService(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)

	result, err := svc.ProposeConversion(employeeActor(), ConversionInput{
		SourceProductID: bulk.ID,
		TargetProductID: retail.ID,
		SourceQuantity:  2,
		ConversionRate:  24,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, result.Status)
	require.NotNil(t, result.RequestID)

	// Catalog untouched
	assert.Equal(t, 10, reloadProduct(t, db, bulk.ID).Stock)
	assert.Equal(t, 0, reloadProduct(t, db, retail.ID).Stock)
	assert.Equal(t, int64(0), countAuditEntries(t, db))

	// Exactly one pending request with the frozen totals
	var request model.Request
	require.NoError(t, db.First(&request, "id = ?", result.RequestID).Error)
	assert.Equal(t, model.RequestConvertStock, request.Type)
	assert.Equal(t, model.RequestPending, request.Status)

	var payload model.ConvertStockPayload
	require.NoError(t, request.DecodePayload(&payload))
	assert.Equal(t, 2, payload.SourceQuantity)
	assert.Equal(t, 24, payload.ConversionRate)
	assert.Equal(t, 48, payload.TotalRetailAdded)
}

func TestProposeConversion_SameProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := newConversionService(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)

	_, err := svc.ProposeConversion(adminActor(), ConversionInput{
		SourceProductID: bulk.ID,
		TargetProductID: bulk.ID,
		SourceQuantity:  1,
		ConversionRate:  24,
	})
	assert.ErrorIs(t, err, apperr.ErrSameProduct)
}

func TestProposeConversion_InsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	svc := newConversionService(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 3, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)

	_, err := svc.ProposeConversion(adminActor(), ConversionInput{
		SourceProductID: bulk.ID,
		TargetProductID: retail.ID,
		SourceQuantity:  5,
		ConversionRate:  24,
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	// No mutation, no audit, no queued request
	assert.Equal(t, 3, reloadProduct(t, db, bulk.ID).Stock)
	assert.Equal(t, 0, reloadProduct(t, db, retail.ID).Stock)
	assert.Equal(t, int64(0), countAuditEntries(t, db))
	assert.Equal(t, int64(0), countRequests(t, db, model.RequestPending))
}

func TestProposeConversion_RejectsNonPositiveQuantities(t *testing.T) {
	db := setupTestDB(t)
	svc := newConversionService(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)
	retail := createProduct(t, db, "BTL-001", "Water Bottle", 0, 600)

	for _, tc := range []struct {
		name string
		qty  int
		rate int
	}{
		{"zero quantity", 0, 24},
		{"negative quantity", -2, 24},
		{"zero rate", 2, 0},
		{"negative rate", 2, -24},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ProposeConversion(adminActor(), ConversionInput{
				SourceProductID: bulk.ID,
				TargetProductID: retail.ID,
				SourceQuantity:  tc.qty,
				ConversionRate:  tc.rate,
			})
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	assert.Equal(t, 10, reloadProduct(t, db, bulk.ID).Stock)
}

func TestProposeConversion_UnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	svc := newConversionService(t, db)

	bulk := createProduct(t, db, "CART-001", "Water Carton", 10, 12000)

	_, err := svc.ProposeConversion(adminActor(), ConversionInput{
		SourceProductID: bulk.ID,
		TargetProductID: uuid.New(),
		SourceQuantity:  1,
		ConversionRate:  24,
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
