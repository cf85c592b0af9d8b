package service

import (
	"context"

	"smartshop/internal/domain"
	"smartshop/internal/repository"

	"go.uber.org/zap"
)

// DashboardReport is the admin dashboard snapshot. Revenue counts only orders
// in a revenue status (completed or delivered).
type DashboardReport struct {
	TotalRevenue    int64                 `json:"total_revenue"`
	OrdersByStatus  map[domain.Status]int `json:"orders_by_status"`
	LowStockCount   int                   `json:"low_stock_count"`
	LowStockProduct []*domain.Product     `json:"low_stock_products"`
}

// ReportService defines the interface for reporting
type ReportService interface {
	Dashboard(ctx context.Context) (*DashboardReport, error)
}

type reportService struct {
	tx     repository.TxRunner
	logger *zap.Logger
}

// NewReportService creates a new instance of ReportService
func NewReportService(tx repository.TxRunner, logger *zap.Logger) ReportService {
	return &reportService{tx: tx, logger: logger}
}

// Dashboard assembles revenue, order counts and low-stock products in one
// consistent read.
func (s *reportService) Dashboard(ctx context.Context) (*DashboardReport, error) {
	report := &DashboardReport{}
	err := s.tx.RunInTx(ctx, func(r *repository.Repos) error {
		revenue, err := r.Orders.SumRevenue(ctx)
		if err != nil {
			return err
		}
		report.TotalRevenue = revenue

		counts, err := r.Orders.CountByStatus(ctx)
		if err != nil {
			return err
		}
		report.OrdersByStatus = counts

		lowStock, err := r.Products.ListLowStock(ctx)
		if err != nil {
			return err
		}
		report.LowStockProduct = lowStock
		report.LowStockCount = len(lowStock)

		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
