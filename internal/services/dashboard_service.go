package services

import (
	"context"
	"fmt"
	"time"

	"advisor360/internal/analytics"
	"advisor360/internal/core"
	"advisor360/internal/storage"
)

// DashboardService feeds the dashboard endpoints. It fetches commission
// and partner collections and hands them to the aggregation functions;
// all computation stays in the analytics package.
type DashboardService struct {
	commissions storage.CommissionRepository
	partners    storage.PartnerRepository
}

func NewDashboardService(commissions storage.CommissionRepository, partners storage.PartnerRepository) *DashboardService {
	return &DashboardService{commissions: commissions, partners: partners}
}

func (s *DashboardService) Overview(ctx context.Context) (analytics.Overview, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return analytics.Overview{}, fmt.Errorf("load commissions: %w", err)
	}
	return analytics.OverviewStats(commissions, time.Now()), nil
}

func (s *DashboardService) RecentActivities(ctx context.Context, limit int) ([]core.Commission, error) {
	return s.commissions.GetRecent(ctx, limit)
}

func (s *DashboardService) AvailableFinancialYears(ctx context.Context) ([]string, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commissions: %w", err)
	}
	return analytics.AvailableFinancialYears(commissions), nil
}

func (s *DashboardService) FinancialYearMetrics(ctx context.Context, fyLabel string) (analytics.FYMetrics, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return analytics.FYMetrics{}, fmt.Errorf("load commissions: %w", err)
	}
	return analytics.FinancialYearMetrics(commissions, fyLabel)
}

func (s *DashboardService) MonthlyBreakdown(ctx context.Context, fyLabel string) ([]analytics.MonthlyTotal, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commissions: %w", err)
	}
	return analytics.MonthlyTotalsForFY(commissions, fyLabel)
}

func (s *DashboardService) EntityBreakdown(ctx context.Context, fyLabel string) ([]analytics.CategoryTotal, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commissions: %w", err)
	}
	partners, err := s.partners.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load partners: %w", err)
	}
	return analytics.CategoryTotalsForFY(commissions, partners, fyLabel)
}

func (s *DashboardService) QuarterlyBreakdown(ctx context.Context, fyLabel string) ([]analytics.QuarterTotal, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commissions: %w", err)
	}
	return analytics.QuarterlyBreakdown(commissions, fyLabel)
}

func (s *DashboardService) Trends(ctx context.Context, months int) ([]analytics.MonthlyTotal, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commissions: %w", err)
	}
	return analytics.Trend(commissions, months), nil
}

func (s *DashboardService) PartnerTotals(ctx context.Context) ([]analytics.PartnerTotal, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commissions: %w", err)
	}
	return analytics.PartnerTotals(commissions), nil
}

func (s *DashboardService) PartnerPerformance(ctx context.Context) ([]analytics.PartnerPerformance, error) {
	commissions, err := s.commissions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load commissions: %w", err)
	}
	partners, err := s.partners.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load partners: %w", err)
	}
	return analytics.PartnerPerformanceSummary(commissions, partners), nil
}
