package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
)

type ReportService interface {
	GetDashboardStats() (*repository.DashboardStats, error)
	GetSalesMovement(days int) ([]repository.SalesMovementData, error)
	GetLowStockProducts() ([]model.Product, error)
	ExportSalesCSV(startDate, endDate time.Time, w io.Writer) error
}

type reportService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
}

func NewReportService(saleRepo repository.SaleRepository, productRepo repository.ProductRepository) ReportService {
	return &reportService{saleRepo: saleRepo, productRepo: productRepo}
}

func (s *reportService) GetDashboardStats() (*repository.DashboardStats, error) {
	return s.saleRepo.GetDashboardStats()
}

func (s *reportService) GetSalesMovement(days int) ([]repository.SalesMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.saleRepo.GetSalesMovement(startDate, endDate)
}

func (s *reportService) GetLowStockProducts() ([]model.Product, error) {
	return s.productRepo.FindBelowMinStock()
}

// ExportSalesCSV writes one row per sale line over the date range.
func (s *reportService) ExportSalesCSV(startDate, endDate time.Time, w io.Writer) error {
	sales, err := s.saleRepo.FindBetween(startDate, endDate)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"sale_id", "date", "cashier", "payment_method", "product", "quantity", "unit_price", "subtotal", "sale_total"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, sale := range sales {
		for _, item := range sale.Items {
			row := []string{
				sale.ID.String(),
				sale.CreatedAt.Format("2006-01-02 15:04:05"),
				sale.CashierName,
				sale.PaymentMethod,
				item.ProductName,
				strconv.Itoa(item.Quantity),
				strconv.FormatInt(item.UnitPrice, 10),
				strconv.FormatInt(item.Subtotal, 10),
				strconv.FormatInt(sale.TotalAmount, 10),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
