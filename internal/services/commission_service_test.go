package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"advisor360/internal/core"
	"advisor360/internal/storage"
)

type recordingPublisher struct {
	synced  []string
	deleted []string
	fail    bool
}

func (p *recordingPublisher) PublishCommissionSync(ctx context.Context, id string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.synced = append(p.synced, id)
	return nil
}

func (p *recordingPublisher) PublishCommissionDelete(ctx context.Context, id string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.deleted = append(p.deleted, id)
	return nil
}

func newTestService(t *testing.T) (*CommissionService, *storage.MemoryStore, *recordingPublisher, core.Partner) {
	t.Helper()
	store := storage.NewMemoryStore()
	publisher := &recordingPublisher{}
	service := NewCommissionService(store, store.Partners(), publisher)

	partner, err := core.NewPartner("Acme Wealth", core.EntityMutualFunds)
	if err != nil {
		t.Fatalf("NewPartner: %v", err)
	}
	if err := store.Partners().Create(context.Background(), partner); err != nil {
		t.Fatalf("create partner: %v", err)
	}
	return service, store, publisher, partner
}

func mustMoney(t *testing.T, amount float64) core.Money {
	t.Helper()
	m, err := core.MoneyFromFloat(amount, core.DefaultCurrency)
	if err != nil {
		t.Fatalf("MoneyFromFloat(%v): %v", amount, err)
	}
	return m
}

func TestCommissionService_Create(t *testing.T) {
	service, store, publisher, partner := newTestService(t)
	ctx := context.Background()

	date := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	commission, err := service.Create(ctx, partner.ID, mustMoney(t, 1250.50), date, "Q2 payout")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := store.GetByID(ctx, commission.ID)
	if err != nil {
		t.Fatalf("GetByID after create: %v", err)
	}
	if !stored.Amount.Equal(commission.Amount) {
		t.Errorf("stored amount = %v, want %v", stored.Amount, commission.Amount)
	}
	if stored.FinancialYear.String() != "FY24-25" {
		t.Errorf("financial year = %v, want FY24-25", stored.FinancialYear)
	}

	if len(publisher.synced) != 1 || publisher.synced[0] != commission.ID {
		t.Errorf("publisher.synced = %v, want [%s]", publisher.synced, commission.ID)
	}
}

func TestCommissionService_Create_UnknownPartner(t *testing.T) {
	service, _, _, _ := newTestService(t)

	date := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	_, err := service.Create(context.Background(), "missing", mustMoney(t, 100), date, "")
	if !errors.Is(err, core.ErrPartnerNotFound) {
		t.Errorf("Create with unknown partner = %v, want ErrPartnerNotFound", err)
	}
}

func TestCommissionService_Create_PublishFailureDoesNotFailWrite(t *testing.T) {
	service, store, publisher, partner := newTestService(t)
	publisher.fail = true
	ctx := context.Background()

	date := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	commission, err := service.Create(ctx, partner.ID, mustMoney(t, 100), date, "")
	if err != nil {
		t.Fatalf("Create with failing publisher: %v", err)
	}
	if _, err := store.GetByID(ctx, commission.ID); err != nil {
		t.Errorf("commission should be stored despite publish failure: %v", err)
	}
}

func TestCommissionService_Update(t *testing.T) {
	service, _, publisher, partner := newTestService(t)
	ctx := context.Background()

	date := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	commission, err := service.Create(ctx, partner.ID, mustMoney(t, 100), date, "initial")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newAmount := mustMoney(t, 175.25)
	newDate := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	updated, err := service.Update(ctx, commission.ID, UpdateParams{
		Amount:          &newAmount,
		TransactionDate: &newDate,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !updated.Amount.Equal(newAmount) {
		t.Errorf("updated amount = %v, want %v", updated.Amount, newAmount)
	}
	// February 2025 still falls in FY24-25
	if updated.FinancialYear.String() != "FY24-25" {
		t.Errorf("financial year after date change = %v, want FY24-25", updated.FinancialYear)
	}
	if updated.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set after update")
	}
	if len(publisher.synced) != 2 {
		t.Errorf("publish count = %d, want 2 (create + update)", len(publisher.synced))
	}
}

func TestCommissionService_Update_NotFound(t *testing.T) {
	service, _, _, _ := newTestService(t)

	_, err := service.Update(context.Background(), "missing", UpdateParams{})
	if !errors.Is(err, core.ErrCommissionNotFound) {
		t.Errorf("Update missing commission = %v, want ErrCommissionNotFound", err)
	}
}

func TestCommissionService_Delete(t *testing.T) {
	service, store, publisher, partner := newTestService(t)
	ctx := context.Background()

	date := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	commission, err := service.Create(ctx, partner.ID, mustMoney(t, 100), date, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := service.Delete(ctx, commission.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, commission.ID); !errors.Is(err, core.ErrCommissionNotFound) {
		t.Errorf("GetByID after delete = %v, want ErrCommissionNotFound", err)
	}
	if len(publisher.deleted) != 1 || publisher.deleted[0] != commission.ID {
		t.Errorf("publisher.deleted = %v, want [%s]", publisher.deleted, commission.ID)
	}
}

func TestCommissionService_ListByFinancialYear(t *testing.T) {
	service, _, _, partner := newTestService(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),   // FY24-25
		time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), // FY24-25
		time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),  // FY25-26
	}
	for _, d := range dates {
		if _, err := service.Create(ctx, partner.ID, mustMoney(t, 100), d, ""); err != nil {
			t.Fatalf("Create(%v): %v", d, err)
		}
	}

	got, err := service.ListByFinancialYear(ctx, "FY24-25")
	if err != nil {
		t.Fatalf("ListByFinancialYear: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("FY24-25 commissions = %d, want 2", len(got))
	}

	if _, err := service.ListByFinancialYear(ctx, "not-a-year"); err == nil {
		t.Error("ListByFinancialYear should fail for a malformed label")
	}
}

func TestPartnerService_DeleteWithCommissions(t *testing.T) {
	service, store, _, partner := newTestService(t)
	partnerService := NewPartnerService(store.Partners(), store)
	ctx := context.Background()

	date := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	if _, err := service.Create(ctx, partner.ID, mustMoney(t, 100), date, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := partnerService.Delete(ctx, partner.ID)
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Delete partner with commissions = %v, want ErrValidation", err)
	}
	if _, err := store.Partners().GetByID(ctx, partner.ID); err != nil {
		t.Errorf("partner should still exist: %v", err)
	}
}

func TestPartnerService_Update(t *testing.T) {
	_, store, _, partner := newTestService(t)
	partnerService := NewPartnerService(store.Partners(), store)
	ctx := context.Background()

	name := "Acme Insurance"
	entityType := core.EntityLifeInsurance
	updated, err := partnerService.Update(ctx, partner.ID, UpdatePartnerParams{
		Name:       &name,
		EntityType: &entityType,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != name || updated.EntityType != entityType {
		t.Errorf("updated partner = %+v, want name %q type %q", updated, name, entityType)
	}
}
