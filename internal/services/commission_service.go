package services

import (
	"context"
	"fmt"
	"time"

	"advisor360/internal/core"
	"advisor360/internal/log"
	"advisor360/internal/storage"
)

// SyncPublisher is the slice of the AMQP client the service needs. A nil
// publisher means local-only mode; writes still succeed.
type SyncPublisher interface {
	PublishCommissionSync(ctx context.Context, commissionID string) error
	PublishCommissionDelete(ctx context.Context, commissionID string) error
}

// CommissionService orchestrates commission writes across local storage
// and the sync queue.
type CommissionService struct {
	commissions storage.CommissionRepository
	partners    storage.PartnerRepository
	publisher   SyncPublisher
}

func NewCommissionService(
	commissions storage.CommissionRepository,
	partners storage.PartnerRepository,
	publisher SyncPublisher,
) *CommissionService {
	return &CommissionService{
		commissions: commissions,
		partners:    partners,
		publisher:   publisher,
	}
}

// Create validates the partner reference, stores the commission locally,
// and publishes a sync message. A publish failure does not fail the write.
func (s *CommissionService) Create(ctx context.Context, partnerID string, amount core.Money, transactionDate time.Time, description string) (core.Commission, error) {
	if _, err := s.partners.GetByID(ctx, partnerID); err != nil {
		return core.Commission{}, fmt.Errorf("check partner %s: %w", partnerID, err)
	}

	commission, err := core.NewCommission(partnerID, amount, transactionDate, description)
	if err != nil {
		return core.Commission{}, err
	}

	if err := s.commissions.Create(ctx, commission); err != nil {
		return core.Commission{}, fmt.Errorf("save commission: %w", err)
	}

	log.FromContext(ctx).InfoContext(ctx, "Commission created",
		log.NewFields().
			WithCommission(commission.ID, commission.PartnerID,
				commission.Amount.String(), commission.FinancialYear.String()).
			WithOperation(log.OpCreate).
			WithComponent(log.ComponentCommission).
			ToSlice()...)

	s.publishSync(ctx, commission.ID)
	return commission, nil
}

// UpdateParams carries the optional fields of a commission update. Nil
// fields are left unchanged.
type UpdateParams struct {
	Amount          *core.Money
	TransactionDate *time.Time
	Description     *string
}

// Update applies the given changes to an existing commission.
func (s *CommissionService) Update(ctx context.Context, id string, params UpdateParams) (core.Commission, error) {
	commission, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return core.Commission{}, err
	}

	if params.Amount != nil {
		if commission, err = commission.UpdateAmount(*params.Amount); err != nil {
			return core.Commission{}, err
		}
	}
	if params.TransactionDate != nil {
		if commission, err = commission.UpdateTransactionDate(*params.TransactionDate); err != nil {
			return core.Commission{}, err
		}
	}
	if params.Description != nil {
		if commission, err = commission.UpdateDescription(*params.Description); err != nil {
			return core.Commission{}, err
		}
	}

	if err := s.commissions.Update(ctx, commission); err != nil {
		return core.Commission{}, fmt.Errorf("update commission: %w", err)
	}

	s.publishSync(ctx, commission.ID)
	return commission, nil
}

// Delete removes a commission locally and publishes a delete message.
func (s *CommissionService) Delete(ctx context.Context, id string) error {
	if err := s.commissions.Delete(ctx, id); err != nil {
		return err
	}

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishCommissionDelete(ctx, id); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to publish delete message",
			log.FieldCommissionID, id, log.FieldError, err.Error())
		// Don't fail the request - commission is deleted locally
	}
	return nil
}

func (s *CommissionService) Get(ctx context.Context, id string) (core.Commission, error) {
	return s.commissions.GetByID(ctx, id)
}

func (s *CommissionService) List(ctx context.Context) ([]core.Commission, error) {
	return s.commissions.GetAll(ctx)
}

func (s *CommissionService) ListByPartner(ctx context.Context, partnerID string) ([]core.Commission, error) {
	if _, err := s.partners.GetByID(ctx, partnerID); err != nil {
		return nil, err
	}
	return s.commissions.GetByPartnerID(ctx, partnerID)
}

// ListByFinancialYear accepts any label form the parser understands,
// e.g. "FY24-25", "2024-25" or "2024-2025".
func (s *CommissionService) ListByFinancialYear(ctx context.Context, label string) ([]core.Commission, error) {
	fy, err := core.ParseFinancialYear(label)
	if err != nil {
		return nil, err
	}
	return s.commissions.GetByFinancialYear(ctx, fy)
}

func (s *CommissionService) Recent(ctx context.Context, limit int) ([]core.Commission, error) {
	return s.commissions.GetRecent(ctx, limit)
}

func (s *CommissionService) publishSync(ctx context.Context, commissionID string) {
	if s.publisher == nil {
		log.FromContext(ctx).DebugContext(ctx, "Sync publisher not available, skipping sync message")
		return
	}
	if err := s.publisher.PublishCommissionSync(ctx, commissionID); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to publish sync message",
			log.FieldCommissionID, commissionID, log.FieldError, err.Error())
		// Don't fail the request - commission is saved locally
	}
}
