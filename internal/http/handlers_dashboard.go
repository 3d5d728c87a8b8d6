package http

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	defaultRecentLimit = 10
	defaultTrendMonths = 12
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	data, err := s.cachedDashboard("overview", func() (any, error) {
		return s.dashboard.Overview(r.Context())
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleRecentActivities(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultRecentLimit)
	data, err := s.cachedDashboard("recent:"+strconv.Itoa(limit), func() (any, error) {
		commissions, err := s.dashboard.RecentActivities(r.Context(), limit)
		if err != nil {
			return nil, err
		}
		return toCommissionDTOs(commissions), nil
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleFinancialYears(w http.ResponseWriter, r *http.Request) {
	data, err := s.cachedDashboard("financial-years", func() (any, error) {
		return s.dashboard.AvailableFinancialYears(r.Context())
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleFYMetrics(w http.ResponseWriter, r *http.Request) {
	fy := r.PathValue("fy")
	data, err := s.cachedDashboard("metrics:"+fy, func() (any, error) {
		return s.dashboard.FinancialYearMetrics(r.Context(), fy)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleMonthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	fy := r.PathValue("fy")
	data, err := s.cachedDashboard("monthly:"+fy, func() (any, error) {
		return s.dashboard.MonthlyBreakdown(r.Context(), fy)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleEntityBreakdown(w http.ResponseWriter, r *http.Request) {
	fy := r.PathValue("fy")
	data, err := s.cachedDashboard("entity:"+fy, func() (any, error) {
		return s.dashboard.EntityBreakdown(r.Context(), fy)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleQuarterlyBreakdown(w http.ResponseWriter, r *http.Request) {
	fy := r.PathValue("fy")
	data, err := s.cachedDashboard("quarterly:"+fy, func() (any, error) {
		return s.dashboard.QuarterlyBreakdown(r.Context(), fy)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	months := parsePositiveInt(r.URL.Query().Get("months"), defaultTrendMonths)
	data, err := s.cachedDashboard("trends:"+strconv.Itoa(months), func() (any, error) {
		return s.dashboard.Trends(r.Context(), months)
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handlePartnerTotals(w http.ResponseWriter, r *http.Request) {
	data, err := s.cachedDashboard("partner-totals", func() (any, error) {
		return s.dashboard.PartnerTotals(r.Context())
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

func (s *Server) handlePartnerPerformance(w http.ResponseWriter, r *http.Request) {
	data, err := s.cachedDashboard("partner-performance", func() (any, error) {
		return s.dashboard.PartnerPerformance(r.Context())
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, data)
}

// parsePositiveInt parses a query parameter, falling back when absent,
// malformed, or non-positive.
func parsePositiveInt(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
