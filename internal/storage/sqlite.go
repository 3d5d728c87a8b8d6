package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"advisor360/internal/core"

	_ "modernc.org/sqlite"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// SQLiteRepository is the local store. It implements both repository ports
// and keeps a synced_at marker per commission for the Supabase sync worker.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const commissionColumns = `id, partner_id, amount, currency, transaction_date, description, created_at, updated_at`

// GetAll implements CommissionRepository.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]core.Commission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commissionColumns+` FROM commissions ORDER BY transaction_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query commissions: %w", err)
	}
	defer rows.Close()
	return scanCommissions(rows)
}

// GetByID implements CommissionRepository.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (core.Commission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+commissionColumns+` FROM commissions WHERE id = ?`, id)
	c, err := scanCommission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Commission{}, fmt.Errorf("%w: %s", core.ErrCommissionNotFound, id)
	}
	return c, err
}

// GetByPartnerID implements CommissionRepository.
func (r *SQLiteRepository) GetByPartnerID(ctx context.Context, partnerID string) ([]core.Commission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commissionColumns+` FROM commissions WHERE partner_id = ? ORDER BY transaction_date DESC`,
		partnerID)
	if err != nil {
		return nil, fmt.Errorf("query commissions by partner: %w", err)
	}
	defer rows.Close()
	return scanCommissions(rows)
}

// GetByFinancialYear implements CommissionRepository. The financial year's
// window translates to a date range filter.
func (r *SQLiteRepository) GetByFinancialYear(ctx context.Context, fy core.FinancialYear) ([]core.Commission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commissionColumns+` FROM commissions
		 WHERE transaction_date >= ? AND transaction_date <= ?
		 ORDER BY transaction_date DESC`,
		fy.StartDate().Format(dateLayout), fy.EndDate().Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("query commissions by financial year: %w", err)
	}
	defer rows.Close()
	return scanCommissions(rows)
}

// GetRecent implements CommissionRepository.
func (r *SQLiteRepository) GetRecent(ctx context.Context, limit int) ([]core.Commission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commissionColumns+` FROM commissions
		 ORDER BY transaction_date DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent commissions: %w", err)
	}
	defer rows.Close()
	return scanCommissions(rows)
}

// Create implements CommissionRepository. New rows start unsynced.
func (r *SQLiteRepository) Create(ctx context.Context, c core.Commission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO commissions (id, partner_id, amount, currency, transaction_date, description, created_at, updated_at, synced_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		c.ID, c.PartnerID, c.Amount.Amount().String(), c.Amount.Currency(),
		c.TransactionDate.Format(dateLayout), nullableString(c.Description),
		c.CreatedAt.UTC().Format(timestampLayout), nullableTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert commission: %w", err)
	}
	slog.InfoContext(ctx, "Commission saved to SQLite",
		"id", c.ID, "partner_id", c.PartnerID, "amount", c.Amount.String())
	return nil
}

// Update implements CommissionRepository. Updated rows are marked unsynced
// so the worker pushes the change upstream.
func (r *SQLiteRepository) Update(ctx context.Context, c core.Commission) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE commissions
		 SET partner_id = ?, amount = ?, currency = ?, transaction_date = ?, description = ?, updated_at = ?, synced_at = NULL
		 WHERE id = ?`,
		c.PartnerID, c.Amount.Amount().String(), c.Amount.Currency(),
		c.TransactionDate.Format(dateLayout), nullableString(c.Description),
		nullableTime(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update commission: %w", err)
	}
	return requireRowAffected(res, core.ErrCommissionNotFound, c.ID)
}

// Delete implements CommissionRepository.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM commissions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete commission: %w", err)
	}
	return requireRowAffected(res, core.ErrCommissionNotFound, id)
}

// GetPendingSync returns up to limit commissions that have not been pushed
// to Supabase yet, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]core.Commission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+commissionColumns+` FROM commissions
		 WHERE synced_at IS NULL ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending sync commissions: %w", err)
	}
	defer rows.Close()
	return scanCommissions(rows)
}

// MarkSynced records a successful push to Supabase.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE commissions SET synced_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timestampLayout), id)
	if err != nil {
		return fmt.Errorf("mark commission synced: %w", err)
	}
	return requireRowAffected(res, core.ErrCommissionNotFound, id)
}

// Partners returns a PartnerRepository view over the same database.
func (r *SQLiteRepository) Partners() PartnerRepository {
	return &sqlitePartnerStore{db: r.db}
}

type sqlitePartnerStore struct {
	db *sql.DB
}

func (s *sqlitePartnerStore) GetAll(ctx context.Context) ([]core.Partner, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, entity_type, created_at, updated_at FROM partners ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query partners: %w", err)
	}
	defer rows.Close()

	var partners []core.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

func (s *sqlitePartnerStore) GetByID(ctx context.Context, id string) (core.Partner, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, entity_type, created_at, updated_at FROM partners WHERE id = ?`, id)
	p, err := scanPartner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Partner{}, fmt.Errorf("%w: %s", core.ErrPartnerNotFound, id)
	}
	return p, err
}

func (s *sqlitePartnerStore) Create(ctx context.Context, p core.Partner) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO partners (id, name, entity_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(p.EntityType),
		p.CreatedAt.UTC().Format(timestampLayout), nullableTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

func (s *sqlitePartnerStore) Update(ctx context.Context, p core.Partner) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE partners SET name = ?, entity_type = ?, updated_at = ? WHERE id = ?`,
		p.Name, string(p.EntityType), nullableTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update partner: %w", err)
	}
	return requireRowAffected(res, core.ErrPartnerNotFound, p.ID)
}

func (s *sqlitePartnerStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM partners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	return requireRowAffected(res, core.ErrPartnerNotFound, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommission(row rowScanner) (core.Commission, error) {
	var (
		id, partnerID, amountStr, currency, dateStr, createdStr string
		description, updatedStr                                 sql.NullString
	)
	if err := row.Scan(&id, &partnerID, &amountStr, &currency, &dateStr, &description, &createdStr, &updatedStr); err != nil {
		return core.Commission{}, err
	}
	return rehydrateCommission(id, partnerID, amountStr, currency, dateStr,
		description.String, createdStr, updatedStr.String)
}

func scanCommissions(rows *sql.Rows) ([]core.Commission, error) {
	var commissions []core.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission: %w", err)
		}
		commissions = append(commissions, c)
	}
	return commissions, rows.Err()
}

func scanPartner(row rowScanner) (core.Partner, error) {
	var (
		id, name, entityType, createdStr string
		updatedStr                       sql.NullString
	)
	if err := row.Scan(&id, &name, &entityType, &createdStr, &updatedStr); err != nil {
		return core.Partner{}, err
	}
	createdAt, err := time.Parse(timestampLayout, createdStr)
	if err != nil {
		return core.Partner{}, fmt.Errorf("parse partner created_at: %w", err)
	}
	p := core.Partner{
		ID:         id,
		Name:       name,
		EntityType: core.EntityType(entityType),
		CreatedAt:  createdAt,
	}
	if updatedStr.Valid && updatedStr.String != "" {
		if p.UpdatedAt, err = time.Parse(timestampLayout, updatedStr.String); err != nil {
			return core.Partner{}, fmt.Errorf("parse partner updated_at: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return core.Partner{}, fmt.Errorf("invalid partner row %s: %w", id, err)
	}
	return p, nil
}

// rehydrateCommission rebuilds and re-validates a domain commission from
// its flat row representation. The financial year is derived from the
// transaction date, which guarantees the date-in-year invariant.
func rehydrateCommission(id, partnerID, amountStr, currency, dateStr, description, createdStr, updatedStr string) (core.Commission, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return core.Commission{}, fmt.Errorf("parse commission amount: %w", err)
	}
	money, err := core.NewMoney(amount, currency)
	if err != nil {
		return core.Commission{}, fmt.Errorf("invalid commission amount in row %s: %w", id, err)
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return core.Commission{}, fmt.Errorf("parse transaction date: %w", err)
	}
	createdAt, err := time.Parse(timestampLayout, createdStr)
	if err != nil {
		return core.Commission{}, fmt.Errorf("parse commission created_at: %w", err)
	}

	c := core.Commission{
		ID:              id,
		PartnerID:       partnerID,
		Amount:          money,
		TransactionDate: date,
		FinancialYear:   core.FinancialYearFromDate(date),
		Description:     description,
		CreatedAt:       createdAt,
	}
	if updatedStr != "" {
		if c.UpdatedAt, err = time.Parse(timestampLayout, updatedStr); err != nil {
			return core.Commission{}, fmt.Errorf("parse commission updated_at: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return core.Commission{}, fmt.Errorf("invalid commission row %s: %w", id, err)
	}
	return c, nil
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timestampLayout), Valid: true}
}

func requireRowAffected(res sql.Result, notFound error, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
