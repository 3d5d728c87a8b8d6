package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"advisor360/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_CommissionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	c := testCommission(t, "p1", 1250.51, "2024-07-15")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !got.Amount.Equal(c.Amount) {
		t.Errorf("amount = %v, want %v", got.Amount, c.Amount)
	}
	if !got.TransactionDate.Equal(c.TransactionDate) {
		t.Errorf("transaction date = %v, want %v", got.TransactionDate, c.TransactionDate)
	}
	if got.FinancialYear.String() != "FY24-25" {
		t.Errorf("financial year = %s, want FY24-25 rederived from the date", got.FinancialYear)
	}
	if got.Description != "test payout" {
		t.Errorf("description = %q, want test payout", got.Description)
	}
	if !got.UpdatedAt.IsZero() {
		t.Error("fresh row should have zero UpdatedAt")
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, core.ErrCommissionNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrCommissionNotFound", err)
	}
}

func TestSQLiteRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	c := testCommission(t, "p1", 100, "2024-07-15")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	updated, err := c.UpdateAmount(mustMoneyFromFloat(t, 250))
	if err != nil {
		t.Fatalf("UpdateAmount() error: %v", err)
	}
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Amount.Float64() != 250 {
		t.Errorf("amount after update = %v, want 250", got.Amount.Float64())
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should survive the round trip")
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := repo.Delete(ctx, c.ID); !errors.Is(err, core.ErrCommissionNotFound) {
		t.Errorf("double Delete() error = %v, want ErrCommissionNotFound", err)
	}
	if err := repo.Update(ctx, updated); !errors.Is(err, core.ErrCommissionNotFound) {
		t.Errorf("Update() after delete error = %v, want ErrCommissionNotFound", err)
	}
}

func TestSQLiteRepository_FinancialYearRange(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, c := range []core.Commission{
		testCommission(t, "p1", 100, "2024-04-01"),
		testCommission(t, "p1", 200, "2025-03-31"),
		testCommission(t, "p1", 300, "2025-04-01"),
	} {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	fy, err := core.FinancialYearFromYear(2024)
	if err != nil {
		t.Fatalf("FinancialYearFromYear() error: %v", err)
	}
	got, err := repo.GetByFinancialYear(ctx, fy)
	if err != nil {
		t.Fatalf("GetByFinancialYear() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("FY24-25 rows = %d, want 2 (both boundaries inclusive)", len(got))
	}
}

func TestSQLiteRepository_SyncLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	c := testCommission(t, "p1", 100, "2024-07-15")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != c.ID {
		t.Fatalf("pending = %v, want the new row", pending)
	}

	if err := repo.MarkSynced(ctx, c.ID); err != nil {
		t.Fatalf("MarkSynced() error: %v", err)
	}
	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after MarkSynced = %d, want 0", len(pending))
	}

	// Any update re-queues the row for sync.
	updated, err := c.UpdateDescription("revised")
	if err != nil {
		t.Fatalf("UpdateDescription() error: %v", err)
	}
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending after update = %d, want 1", len(pending))
	}

	if err := repo.MarkSynced(ctx, "missing"); !errors.Is(err, core.ErrCommissionNotFound) {
		t.Errorf("MarkSynced(missing) error = %v, want ErrCommissionNotFound", err)
	}
}

func TestSQLitePartnerStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	partners := repo.Partners()

	p, err := core.NewPartner("Acme Wealth", core.EntityMutualFunds)
	if err != nil {
		t.Fatalf("NewPartner() error: %v", err)
	}
	if err := partners.Create(ctx, p); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := partners.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.Name != p.Name || got.EntityType != core.EntityMutualFunds {
		t.Errorf("partner = %+v, want round-tripped fields", got)
	}

	retyped, err := p.UpdateEntityType(core.EntityHealthInsurance)
	if err != nil {
		t.Fatalf("UpdateEntityType() error: %v", err)
	}
	if err := partners.Update(ctx, retyped); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ = partners.GetByID(ctx, p.ID)
	if got.EntityType != core.EntityHealthInsurance {
		t.Errorf("entity type = %q, want Health Insurance", got.EntityType)
	}

	if err := partners.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := partners.GetByID(ctx, p.ID); !errors.Is(err, core.ErrPartnerNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrPartnerNotFound", err)
	}
}

func mustMoneyFromFloat(t *testing.T, amount float64) core.Money {
	t.Helper()
	m, err := core.MoneyFromFloat(amount, core.DefaultCurrency)
	if err != nil {
		t.Fatalf("build money: %v", err)
	}
	return m
}
