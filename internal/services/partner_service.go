package services

import (
	"context"
	"fmt"

	"advisor360/internal/core"
	"advisor360/internal/storage"
)

// PartnerService manages the partner catalogue.
type PartnerService struct {
	partners    storage.PartnerRepository
	commissions storage.CommissionRepository
}

func NewPartnerService(partners storage.PartnerRepository, commissions storage.CommissionRepository) *PartnerService {
	return &PartnerService{partners: partners, commissions: commissions}
}

func (s *PartnerService) Create(ctx context.Context, name string, entityType core.EntityType) (core.Partner, error) {
	partner, err := core.NewPartner(name, entityType)
	if err != nil {
		return core.Partner{}, err
	}
	if err := s.partners.Create(ctx, partner); err != nil {
		return core.Partner{}, fmt.Errorf("save partner: %w", err)
	}
	return partner, nil
}

// UpdatePartnerParams carries the optional fields of a partner update.
type UpdatePartnerParams struct {
	Name       *string
	EntityType *core.EntityType
}

func (s *PartnerService) Update(ctx context.Context, id string, params UpdatePartnerParams) (core.Partner, error) {
	partner, err := s.partners.GetByID(ctx, id)
	if err != nil {
		return core.Partner{}, err
	}

	if params.Name != nil {
		if partner, err = partner.UpdateName(*params.Name); err != nil {
			return core.Partner{}, err
		}
	}
	if params.EntityType != nil {
		if partner, err = partner.UpdateEntityType(*params.EntityType); err != nil {
			return core.Partner{}, err
		}
	}

	if err := s.partners.Update(ctx, partner); err != nil {
		return core.Partner{}, fmt.Errorf("update partner: %w", err)
	}
	return partner, nil
}

// Delete refuses to remove a partner that still has commissions; those
// rows would otherwise dangle.
func (s *PartnerService) Delete(ctx context.Context, id string) error {
	commissions, err := s.commissions.GetByPartnerID(ctx, id)
	if err != nil {
		return err
	}
	if len(commissions) > 0 {
		return fmt.Errorf("%w: partner %s has %d commissions", core.ErrValidation, id, len(commissions))
	}
	return s.partners.Delete(ctx, id)
}

func (s *PartnerService) Get(ctx context.Context, id string) (core.Partner, error) {
	return s.partners.GetByID(ctx, id)
}

func (s *PartnerService) List(ctx context.Context) ([]core.Partner, error) {
	return s.partners.GetAll(ctx)
}
