package repository

import (
	"time"

	"go-retail-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	FindAll() ([]model.Sale, error)
	FindByID(id uuid.UUID) (*model.Sale, error)
	FindBetween(startDate, endDate time.Time) ([]model.Sale, error)
	GetDashboardStats() (*DashboardStats, error)
	GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error)
}

// SalesMovementData is one day of chart data
type SalesMovementData struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

// DashboardStats for the overview cards
type DashboardStats struct {
	TotalProducts  int64 `json:"total_products"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalValuation int64 `json:"total_valuation"`
	TodayRevenue   int64 `json:"today_revenue"`
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) FindAll() ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindByID(id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.Preload("Items").First(&sale, "id = ?", id).Error
	return &sale, err
}

func (r *saleRepo) FindBetween(startDate, endDate time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.Preload("Items").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Order("created_at ASC").
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) GetDashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	// Total Products
	r.db.Model(&model.Product{}).Count(&stats.TotalProducts)

	// Low Stock Count (below each product's own threshold)
	r.db.Model(&model.Product{}).Where("stock < min_stock").Count(&stats.LowStockCount)

	// Total Valuation (SUM of stock * price)
	r.db.Model(&model.Product{}).Select("COALESCE(SUM(stock * price), 0)").Scan(&stats.TotalValuation)

	// Revenue since midnight
	today := time.Now().Truncate(24 * time.Hour)
	r.db.Model(&model.Sale{}).
		Where("created_at >= ?", today).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TodayRevenue)

	return &stats, nil
}

func (r *saleRepo) GetSalesMovement(startDate, endDate time.Time) ([]SalesMovementData, error) {
	var results []SalesMovementData

	rows, err := r.db.Model(&model.Sale{}).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as count,
			COALESCE(SUM(total_amount), 0) as revenue
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data SalesMovementData
		if err := rows.Scan(&data.Date, &data.Count, &data.Revenue); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
