// Package storage provides the persistence ports for commissions and
// partners, with sqlite, Supabase and in-memory adapters behind them.
//
// Repositories hand back fully materialized, validated domain collections;
// all aggregation happens downstream in the analytics engine.
package storage

import (
	"context"

	"advisor360/internal/core"
)

type (
	// CommissionRepository is the outbound port for commission persistence.
	CommissionRepository interface {
		GetAll(ctx context.Context) ([]core.Commission, error)
		// GetByID fails with core.ErrCommissionNotFound for unknown ids.
		GetByID(ctx context.Context, id string) (core.Commission, error)
		GetByPartnerID(ctx context.Context, partnerID string) ([]core.Commission, error)
		GetByFinancialYear(ctx context.Context, fy core.FinancialYear) ([]core.Commission, error)
		// GetRecent returns at most limit commissions, newest transaction
		// date first.
		GetRecent(ctx context.Context, limit int) ([]core.Commission, error)
		Create(ctx context.Context, c core.Commission) error
		Update(ctx context.Context, c core.Commission) error
		Delete(ctx context.Context, id string) error
	}

	// PartnerRepository is the outbound port for partner persistence.
	PartnerRepository interface {
		GetAll(ctx context.Context) ([]core.Partner, error)
		// GetByID fails with core.ErrPartnerNotFound for unknown ids.
		GetByID(ctx context.Context, id string) (core.Partner, error)
		Create(ctx context.Context, p core.Partner) error
		Update(ctx context.Context, p core.Partner) error
		Delete(ctx context.Context, id string) error
	}
)
