package handler

import (
	"fmt"
	"strconv"
	"time"

	"go-retail-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetDashboardStats returns overview statistics
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// GetSalesMovement returns daily sales data for charts
// Query params: days (default 7)
func (h *ReportHandler) GetSalesMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetSalesMovement(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch sales movement"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetLowStockProducts returns products under their restock threshold
func (h *ReportHandler) GetLowStockProducts(c *fiber.Ctx) error {
	products, err := h.service.GetLowStockProducts()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch low stock products"})
	}
	return c.JSON(products)
}

// ExportSales streams a CSV of sales over the requested range
// Query params: start, end (YYYY-MM-DD; defaults to last 30 days)
func (h *ReportHandler) ExportSales(c *fiber.Ctx) error {
	now := time.Now()
	startDate := now.AddDate(0, 0, -30)
	endDate := now

	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid start date, use YYYY-MM-DD"})
		}
		startDate = parsed
	}
	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end date, use YYYY-MM-DD"})
		}
		// Inclusive end of day
		endDate = parsed.Add(24*time.Hour - time.Second)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sales_%s_%s.csv"`,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02")))

	if err := h.service.ExportSalesCSV(startDate, endDate, c.Response().BodyWriter()); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to export sales"})
	}
	return nil
}
