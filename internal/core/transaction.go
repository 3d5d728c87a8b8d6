package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transaction is a generic financial transaction attributed to a partner.
// It shares the commission's invariants and immutable-update lifecycle but
// carries no tax semantics.
type Transaction struct {
	ID              string
	PartnerID       string
	Amount          Money
	TransactionDate time.Time
	FinancialYear   FinancialYear
	Description     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewTransaction creates a transaction with a generated id and the
// financial year derived from the transaction date.
func NewTransaction(partnerID string, amount Money, transactionDate time.Time, description string) (Transaction, error) {
	t := Transaction{
		ID:              uuid.NewString(),
		PartnerID:       partnerID,
		Amount:          amount,
		TransactionDate: dateOnly(transactionDate),
		FinancialYear:   FinancialYearFromDate(transactionDate),
		Description:     description,
		CreatedAt:       time.Now(),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Validate checks every transaction invariant.
func (t Transaction) Validate() error {
	return validateRecord("transaction", t.ID, t.PartnerID, t.Amount,
		t.TransactionDate, t.FinancialYear, t.Description, t.CreatedAt, t.UpdatedAt)
}

// UpdateAmount returns a copy with a new amount.
func (t Transaction) UpdateAmount(amount Money) (Transaction, error) {
	updated := t
	updated.Amount = amount
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Transaction{}, err
	}
	return updated, nil
}

// UpdateDescription returns a copy with a new description.
func (t Transaction) UpdateDescription(description string) (Transaction, error) {
	updated := t
	updated.Description = strings.TrimSpace(description)
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Transaction{}, err
	}
	return updated, nil
}

// UpdateTransactionDate returns a copy with a new date and the financial
// year recomputed from it.
func (t Transaction) UpdateTransactionDate(date time.Time) (Transaction, error) {
	updated := t
	updated.TransactionDate = dateOnly(date)
	updated.FinancialYear = FinancialYearFromDate(date)
	updated.UpdatedAt = time.Now()
	if err := updated.Validate(); err != nil {
		return Transaction{}, err
	}
	return updated, nil
}

// MonthName returns the English month name of the transaction date.
func (t Transaction) MonthName() string {
	return t.TransactionDate.Month().String()
}

// Year returns the calendar year of the transaction date.
func (t Transaction) Year() int {
	return t.TransactionDate.Year()
}

// Quarter returns the fiscal quarter (1-4) of the transaction date.
func (t Transaction) Quarter() (int, error) {
	return t.FinancialYear.Quarter(t.TransactionDate)
}

// IsInCurrentFinancialYear reports whether the transaction belongs to the
// financial year containing today.
func (t Transaction) IsInCurrentFinancialYear() bool {
	return t.FinancialYear.Equal(CurrentFinancialYear())
}

// AgeInDays returns whole days elapsed since the transaction date.
func (t Transaction) AgeInDays() int {
	return int(today().Sub(dateOnly(t.TransactionDate)).Hours() / 24)
}

// IsRecent reports whether the transaction date is within the last n days.
func (t Transaction) IsRecent(days int) bool {
	return t.AgeInDays() <= days
}

func (t Transaction) String() string {
	return fmt.Sprintf("Transaction(id=%s, partner=%s, amount=%s, date=%s)",
		t.ID, t.PartnerID, t.Amount, t.TransactionDate.Format("2006-01-02"))
}
