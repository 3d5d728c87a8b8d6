package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"advisor360/internal/services"
	"advisor360/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := storage.NewMemoryStore()
	commissions := services.NewCommissionService(store, store.Partners(), nil)
	partners := services.NewPartnerService(store.Partners(), store)
	dashboard := services.NewDashboardService(store, store.Partners())

	s := NewServer(Config{Addr: ":0", RequestsPerMinute: 1000}, commissions, partners, dashboard)
	t.Cleanup(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
	})
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, rec.Body.String())
	}
	if !envelope.Success {
		t.Fatalf("response not successful: %s", envelope.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			t.Fatalf("decode data: %v (data: %s)", err, envelope.Data)
		}
	}
}

func createPartner(t *testing.T, s *Server) partnerDTO {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/partners", map[string]string{
		"name":        "Acme Wealth",
		"entity_type": "Mutual Funds",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create partner status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var partner partnerDTO
	decodeData(t, rec, &partner)
	return partner
}

func createCommission(t *testing.T, s *Server, partnerID, amount, date string) commissionDTO {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/commissions", map[string]any{
		"partner_id":       partnerID,
		"amount":           json.RawMessage(amount),
		"transaction_date": date,
		"description":      "payout",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create commission status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var commission commissionDTO
	decodeData(t, rec, &commission)
	return commission
}

func TestCommissionLifecycle(t *testing.T) {
	s := newTestServer(t)
	partner := createPartner(t, s)

	commission := createCommission(t, s, partner.ID, "1250.505", "2024-07-15")
	if commission.Amount != "1250.51" {
		t.Errorf("amount = %s, want 1250.51 (rounded to 2dp)", commission.Amount)
	}
	if commission.Currency != "INR" {
		t.Errorf("currency = %s, want INR default", commission.Currency)
	}
	if commission.FinancialYear != "FY24-25" {
		t.Errorf("financial_year = %s, want FY24-25", commission.FinancialYear)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/commissions/"+commission.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get commission status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPut, "/api/commissions/"+commission.ID, map[string]any{
		"amount": json.RawMessage("200"),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update commission status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var updated commissionDTO
	decodeData(t, rec, &updated)
	if updated.Amount != "200.00" {
		t.Errorf("updated amount = %s, want 200.00", updated.Amount)
	}
	if updated.UpdatedAt == "" {
		t.Error("updated_at should be set after update")
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/commissions/"+commission.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete commission status = %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/commissions/"+commission.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestCreateCommission_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	partner := createPartner(t, s)

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "unknown partner",
			body: map[string]any{
				"partner_id":       "missing",
				"amount":           json.RawMessage("100"),
				"transaction_date": "2024-07-15",
			},
			want: http.StatusNotFound,
		},
		{
			name: "negative amount",
			body: map[string]any{
				"partner_id":       partner.ID,
				"amount":           json.RawMessage("-5"),
				"transaction_date": "2024-07-15",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "bad date",
			body: map[string]any{
				"partner_id":       partner.ID,
				"amount":           json.RawMessage("100"),
				"transaction_date": "15/07/2024",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "bad currency",
			body: map[string]any{
				"partner_id":       partner.ID,
				"amount":           json.RawMessage("100"),
				"currency":         "RUPEES",
				"transaction_date": "2024-07-15",
			},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/commissions", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body: %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestListCommissions_FinancialYearFilter(t *testing.T) {
	s := newTestServer(t)
	partner := createPartner(t, s)
	createCommission(t, s, partner.ID, "100", "2024-05-01")
	createCommission(t, s, partner.ID, "200", "2025-03-31")
	createCommission(t, s, partner.ID, "300", "2025-04-01")

	rec := doJSON(t, s, http.MethodGet, "/api/commissions?financial_year=FY24-25", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var commissions []commissionDTO
	decodeData(t, rec, &commissions)
	if len(commissions) != 2 {
		t.Errorf("FY24-25 commissions = %d, want 2", len(commissions))
	}
}

func TestDashboardEndpoints(t *testing.T) {
	s := newTestServer(t)
	partner := createPartner(t, s)
	createCommission(t, s, partner.ID, "100", "2024-05-01")
	createCommission(t, s, partner.ID, "300", "2024-12-10")

	t.Run("overview", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/dashboard/overview", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("overview status = %d", rec.Code)
		}
		var overview struct {
			TotalAllTime float64 `json:"totalAllTime"`
		}
		decodeData(t, rec, &overview)
		if overview.TotalAllTime != 400 {
			t.Errorf("totalAllTime = %v, want 400", overview.TotalAllTime)
		}
	})

	t.Run("financial years", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/dashboard/financial-years", nil)
		var years []string
		decodeData(t, rec, &years)
		if len(years) != 1 || years[0] != "FY24-25" {
			t.Errorf("years = %v, want [FY24-25]", years)
		}
	})

	t.Run("fy metrics", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/dashboard/analytics/FY24-25", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("metrics status = %d, body: %s", rec.Code, rec.Body.String())
		}
		var metrics struct {
			CurrentYearTotal float64 `json:"currentYearTotal"`
			CommissionCount  int     `json:"commissionCount"`
		}
		decodeData(t, rec, &metrics)
		if metrics.CurrentYearTotal != 400 || metrics.CommissionCount != 2 {
			t.Errorf("metrics = %+v, want total 400 count 2", metrics)
		}
	})

	t.Run("malformed fy label is 404", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/dashboard/analytics/2024-25", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404 for loose label", rec.Code)
		}
	})

	t.Run("quarterly always four rows", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/dashboard/analytics/FY24-25/quarterly", nil)
		var quarters []struct {
			Quarter int     `json:"quarter"`
			Total   float64 `json:"total"`
		}
		decodeData(t, rec, &quarters)
		if len(quarters) != 4 {
			t.Fatalf("quarters = %d, want 4", len(quarters))
		}
		// December lands in Q3 of the fiscal year
		if quarters[2].Total != 300 {
			t.Errorf("Q3 total = %v, want 300", quarters[2].Total)
		}
	})

	t.Run("cache invalidated by writes", func(t *testing.T) {
		rec := doJSON(t, s, http.MethodGet, "/api/dashboard/overview", nil)
		var before struct {
			TotalAllTime float64 `json:"totalAllTime"`
		}
		decodeData(t, rec, &before)

		createCommission(t, s, partner.ID, "50", "2024-06-01")

		rec = doJSON(t, s, http.MethodGet, "/api/dashboard/overview", nil)
		var after struct {
			TotalAllTime float64 `json:"totalAllTime"`
		}
		decodeData(t, rec, &after)
		if after.TotalAllTime != before.TotalAllTime+50 {
			t.Errorf("totalAllTime after write = %v, want %v", after.TotalAllTime, before.TotalAllTime+50)
		}
	})
}

func TestTrendsDefaultWindow(t *testing.T) {
	s := newTestServer(t)
	partner := createPartner(t, s)
	// Thirteen consecutive months of activity; the default window keeps
	// the latest twelve.
	for month := 0; month < 13; month++ {
		date := time.Date(2024, time.January+time.Month(month), 15, 0, 0, 0, 0, time.UTC)
		createCommission(t, s, partner.ID, "100", date.Format("2006-01-02"))
	}

	rec := doJSON(t, s, http.MethodGet, "/api/dashboard/trends", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trends status = %d", rec.Code)
	}
	var months []json.RawMessage
	decodeData(t, rec, &months)
	if len(months) != 12 {
		t.Errorf("default trend months = %d, want 12", len(months))
	}

	rec = doJSON(t, s, http.MethodGet, "/api/dashboard/trends?months=3", nil)
	months = nil
	decodeData(t, rec, &months)
	if len(months) != 3 {
		t.Errorf("trend months with limit = %d, want 3", len(months))
	}
}

func TestPartnerWritesInvalidateDashboard(t *testing.T) {
	s := newTestServer(t)
	createPartner(t, s)

	countRows := func() int {
		rec := doJSON(t, s, http.MethodGet, "/api/dashboard/partner-performance", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("partner-performance status = %d", rec.Code)
		}
		var rows []json.RawMessage
		decodeData(t, rec, &rows)
		return len(rows)
	}

	// Prime the cache, then add a second partner; the next read must see it.
	if got := countRows(); got != 1 {
		t.Fatalf("initial rows = %d, want 1", got)
	}

	rec := doJSON(t, s, http.MethodPost, "/api/partners", map[string]string{
		"name":        "Beta Insurance",
		"entity_type": "Life Insurance",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create second partner status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var second partnerDTO
	decodeData(t, rec, &second)

	if got := countRows(); got != 2 {
		t.Errorf("rows after second partner = %d, want 2", got)
	}

	rec = doJSON(t, s, http.MethodDelete, "/api/partners/"+second.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete partner status = %d", rec.Code)
	}
	if got := countRows(); got != 1 {
		t.Errorf("rows after delete = %d, want 1", got)
	}
}

func TestDeletePartnerWithCommissions(t *testing.T) {
	s := newTestServer(t)
	partner := createPartner(t, s)
	createCommission(t, s, partner.ID, "100", "2024-05-01")

	rec := doJSON(t, s, http.MethodDelete, "/api/partners/"+partner.ID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete partner with commissions status = %d, want 400", rec.Code)
	}
}

func TestSystemMetrics(t *testing.T) {
	s := newTestServer(t)
	doJSON(t, s, http.MethodGet, "/healthz", nil)

	rec := doJSON(t, s, http.MethodGet, "/api/system/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	var metrics struct {
		TotalRequests int64 `json:"total_requests"`
	}
	decodeData(t, rec, &metrics)
	if metrics.TotalRequests < 1 {
		t.Errorf("total_requests = %d, want at least 1", metrics.TotalRequests)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, s, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
