package repository

import (
	"errors"
	"testing"
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRequestRepo(t *testing.T) (RequestRepository, *gorm.DB) {
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

	if err := db.AutoMigrate(&model.Request{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return NewRequestRepo(db), db
}

func pendingRequest(t *testing.T, repo RequestRepository) *model.Request {
	t.Helper()

	requester := model.Actor{ID: uuid.New(), Username: "bob"}
	request, err := model.NewRequest(model.RequestDeleteProduct, model.DeleteProductPayload{
		ProductID:   uuid.New(),
		ProductName: "Water Bottle",
	}, requester)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if err := repo.Create(request); err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	return request
}

func TestResolve_FlipsStatusOnce(t *testing.T) {
	repo, db := setupRequestRepo(t)
	request := pendingRequest(t, repo)
	admin := uuid.New()

	if err := repo.Resolve(db, request.ID, model.RequestApproved, admin, ""); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	got, err := repo.FindByID(request.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != model.RequestApproved {
		t.Errorf("status = %s, want APPROVED", got.Status)
	}
	if got.ResolvedBy == nil || *got.ResolvedBy != admin {
		t.Errorf("resolved_by not recorded")
	}
	if got.ResolvedAt == nil {
		t.Errorf("resolved_at not recorded")
	}

	// A second resolve must match zero rows regardless of the target status
	err = repo.Resolve(db, request.ID, model.RequestRejected, uuid.New(), "too late")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second resolve err = %v, want ErrRecordNotFound", err)
	}

	got, err = repo.FindByID(request.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Status != model.RequestApproved {
		t.Errorf("terminal status was overwritten to %s", got.Status)
	}
}

func TestResolve_UnknownRequest(t *testing.T) {
	repo, db := setupRequestRepo(t)

	err := repo.Resolve(db, uuid.New(), model.RequestApproved, uuid.New(), "")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestFindPending_OldestFirstAndExcludesResolved(t *testing.T) {
	repo, db := setupRequestRepo(t)

	first := pendingRequest(t, repo)
	second := pendingRequest(t, repo)
	third := pendingRequest(t, repo)

	// Stagger submission times so the ordering is unambiguous
	base := time.Now().Add(-time.Hour)
	for i, id := range []uuid.UUID{third.ID, first.ID, second.ID} {
		ts := base.Add(time.Duration(i) * time.Minute)
		if err := db.Model(&model.Request{}).Where("id = ?", id).Update("created_at", ts).Error; err != nil {
			t.Fatalf("failed to stagger created_at: %v", err)
		}
	}

	if err := repo.Resolve(db, first.ID, model.RequestRejected, uuid.New(), "duplicate"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	pending, err := repo.FindPending()
	if err != nil {
		t.Fatalf("FindPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("len(pending) = %d, want 2", len(pending))
	}
	if pending[0].ID != third.ID || pending[1].ID != second.ID {
		t.Errorf("pending not ordered oldest first: got %s, %s", pending[0].ID, pending[1].ID)
	}
}
