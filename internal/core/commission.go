package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Commission is a commission payment attributed to a partner. PartnerID is
// a lookup key into the partner collection, not an ownership edge.
//
// Commissions are immutable: every Update* method validates and returns a
// fresh instance with UpdatedAt set, leaving the receiver untouched. A zero
// UpdatedAt means the record was never updated.
type Commission struct {
	ID              string
	PartnerID       string
	Amount          Money
	TransactionDate time.Time
	FinancialYear   FinancialYear
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewCommission creates a commission with a generated id and the financial
// year derived from the transaction date.
func NewCommission(partnerID string, amount Money, transactionDate time.Time, description string) (Commission, error) {
	c := Commission{
		ID:              uuid.NewString(),
		PartnerID:       partnerID,
		Amount:          amount,
		TransactionDate: dateOnly(transactionDate),
		FinancialYear:   FinancialYearFromDate(transactionDate),
		Description:     description,
		CreatedAt:       time.Now(),
	}
	if err := c.Validate(); err != nil {
		return Commission{}, err
	}
	return c, nil
}

// Validate checks every commission invariant. Repositories call this when
// rehydrating rows so an invalid record can never circulate.
func (c Commission) Validate() error {
	return validateRecord("commission", c.ID, c.PartnerID, c.Amount,
		c.TransactionDate, c.FinancialYear, c.Description, c.CreatedAt, c.UpdatedAt)
}

// UpdateAmount returns a copy with a new amount.
func (c Commission) UpdateAmount(amount Money) (Commission, error) {
	updated := c
	updated.Amount = amount
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Commission{}, err
	}
	return updated, nil
}

// UpdateDescription returns a copy with a new description.
func (c Commission) UpdateDescription(description string) (Commission, error) {
	updated := c
	updated.Description = strings.TrimSpace(description)
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Commission{}, err
	}
	return updated, nil
}

// UpdateTransactionDate returns a copy with a new date and the financial
// year recomputed from it.
func (c Commission) UpdateTransactionDate(date time.Time) (Commission, error) {
	updated := c
	updated.TransactionDate = dateOnly(date)
	updated.FinancialYear = FinancialYearFromDate(date)
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Commission{}, err
	}
	return updated, nil
}

// MonthName returns the English month name of the transaction date.
func (c Commission) MonthName() string {
	return c.TransactionDate.Month().String()
}

// Year returns the calendar year of the transaction date.
func (c Commission) Year() int {
	return c.TransactionDate.Year()
}

// Quarter returns the fiscal quarter (1-4) of the transaction date.
func (c Commission) Quarter() (int, error) {
	return c.FinancialYear.Quarter(c.TransactionDate)
}

// IsInCurrentFinancialYear reports whether the commission belongs to the
// financial year containing today.
func (c Commission) IsInCurrentFinancialYear() bool {
	return c.FinancialYear.Equal(CurrentFinancialYear())
}

// AgeInDays returns whole days elapsed since the transaction date.
func (c Commission) AgeInDays() int {
	return int(today().Sub(dateOnly(c.TransactionDate)).Hours() / 24)
}

// IsRecent reports whether the transaction date is within the last n days.
func (c Commission) IsRecent(days int) bool {
	return c.AgeInDays() <= days
}

// TaxAmount computes the tax portion for a rate in [0, 1].
func (c Commission) TaxAmount(rate float64) (Money, error) {
	if rate < 0 || rate > 1 {
		return Money{}, fmt.Errorf("%w: rate must be between 0 and 1, got %v", ErrInvalidTaxRate, rate)
	}
	return c.Amount.Multiply(decimal.NewFromFloat(rate))
}

// NetAmount computes the amount remaining after tax for a rate in [0, 1].
func (c Commission) NetAmount(rate float64) (Money, error) {
	tax, err := c.TaxAmount(rate)
	if err != nil {
		return Money{}, err
	}
	return c.Amount.Subtract(tax)
}

func (c Commission) String() string {
	return fmt.Sprintf("Commission(id=%s, partner=%s, amount=%s, date=%s)",
		c.ID, c.PartnerID, c.Amount, c.TransactionDate.Format("2006-01-02"))
}

// validateRecord checks the invariants shared by commissions and
// transactions.
func validateRecord(kind, id, partnerID string, amount Money, transactionDate time.Time,
	fy FinancialYear, description string, createdAt, updatedAt time.Time) error {

	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s id cannot be empty", ErrEmptyID, kind)
	}
	if strings.TrimSpace(partnerID) == "" {
		return fmt.Errorf("%w: partner id cannot be empty", ErrEmptyID)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s amount must be positive", ErrInvalidAmount, kind)
	}
	if dateOnly(transactionDate).After(today()) {
		return fmt.Errorf("%w: transaction date cannot be in the future", ErrInvalidDate)
	}
	if !fy.ContainsDate(transactionDate) {
		return fmt.Errorf("%w: transaction date %s does not fall within %s",
			ErrInvalidDate, dateOnly(transactionDate).Format("2006-01-02"), fy)
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) > 500 {
		return fmt.Errorf("%w: description cannot exceed 500 characters", ErrInvalidDescription)
	}
	if createdAt.After(time.Now()) {
		return fmt.Errorf("%w: created date cannot be in the future", ErrInvalidDate)
	}
	if !updatedAt.IsZero() && updatedAt.Before(createdAt) {
		return fmt.Errorf("%w: updated date cannot be before created date", ErrInvalidDate)
	}
	return nil
}
