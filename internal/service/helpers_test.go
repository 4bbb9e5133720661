package service

import (
	"testing"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/ws"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A second pooled connection would see a different :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Product{},
		&model.Request{},
		&model.AuditEntry{},
		&model.Sale{},
		&model.SaleItem{},
		&model.User{},
		&model.Permission{},
		&model.Role{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestHub() *ws.Hub {
	hub := ws.NewHub()
	go hub.Run()
	return hub
}

func adminActor() model.Actor {
	return model.Actor{
		ID:       uuid.New(),
		Username: "alice",
		FullName: "Alice Admin",
		RoleCode: model.RoleAdmin,
	}
}

func employeeActor() model.Actor {
	return model.Actor{
		ID:          uuid.New(),
		Username:    "bob",
		FullName:    "Bob Employee",
		RoleCode:    model.RoleEmployee,
		Permissions: []string{model.PermPOS, model.PermInventory},
	}
}

func createProduct(t *testing.T, db *gorm.DB, sku, name string, stock int, price int64) *model.Product {
	t.Helper()

	product := &model.Product{
		SKU:   sku,
		Name:  name,
		Stock: stock,
		Price: price,
		Unit:  "pcs",
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return product
}

func reloadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Product {
	t.Helper()

	var product model.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	return &product
}

func countAuditEntries(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&model.AuditEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count audit entries: %v", err)
	}
	return count
}

func countRequests(t *testing.T, db *gorm.DB, status model.RequestStatus) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&model.Request{}).Where("status = ?", status).Count(&count).Error; err != nil {
		t.Fatalf("failed to count requests: %v", err)
	}
	return count
}
