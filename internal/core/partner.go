package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType classifies the financial product a partner distributes.
type EntityType string

const (
	EntityMutualFunds      EntityType = "Mutual Funds"
	EntityLifeInsurance    EntityType = "Life Insurance"
	EntityHealthInsurance  EntityType = "Health Insurance"
	EntityGeneralInsurance EntityType = "General Insurance"
)

// EntityTypes lists every valid entity type.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityMutualFunds,
		EntityLifeInsurance,
		EntityHealthInsurance,
		EntityGeneralInsurance,
	}
}

// Valid reports whether e names a known entity type.
func (e EntityType) Valid() bool {
	switch e {
	case EntityMutualFunds, EntityLifeInsurance, EntityHealthInsurance, EntityGeneralInsurance:
		return true
	}
	return false
}

// Partner is the counterparty commissions are attributed to. Like the
// other entities it is immutable; updates return fresh validated copies.
type Partner struct {
	ID         string
	Name       string
	EntityType EntityType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewPartner creates a partner with a generated id.
func NewPartner(name string, entityType EntityType) (Partner, error) {
	p := Partner{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		EntityType: entityType,
		CreatedAt:  time.Now(),
	}
	if err := p.Validate(); err != nil {
		return Partner{}, err
	}
	return p, nil
}

// Validate checks every partner invariant.
func (p Partner) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: partner id cannot be empty", ErrEmptyID)
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("%w: partner name cannot be empty", ErrValidation)
	}
	if len(name) < 2 {
		return fmt.Errorf("%w: partner name must be at least 2 characters", ErrValidation)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: partner name cannot exceed 255 characters", ErrValidation)
	}
	if !p.EntityType.Valid() {
		return fmt.Errorf("%w: %q is not a known entity type", ErrInvalidEntityType, p.EntityType)
	}
	if p.CreatedAt.After(time.Now()) {
		return fmt.Errorf("%w: created date cannot be in the future", ErrInvalidDate)
	}
	if !p.UpdatedAt.IsZero() && p.UpdatedAt.Before(p.CreatedAt) {
		return fmt.Errorf("%w: updated date cannot be before created date", ErrInvalidDate)
	}
	return nil
}

// UpdateName returns a copy with a new name.
func (p Partner) UpdateName(name string) (Partner, error) {
	updated := p
	updated.Name = strings.TrimSpace(name)
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Partner{}, err
	}
	return updated, nil
}

// UpdateEntityType returns a copy with a new entity type.
func (p Partner) UpdateEntityType(entityType EntityType) (Partner, error) {
	updated := p
	updated.EntityType = entityType
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Partner{}, err
	}
	return updated, nil
}

// DisplayName renders the name with its entity type for UI listings.
func (p Partner) DisplayName() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.EntityType)
}

func (p Partner) String() string {
	return fmt.Sprintf("Partner(id=%s, name=%s, type=%s)", p.ID, p.Name, p.EntityType)
}
