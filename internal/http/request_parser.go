package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"advisor360/internal/core"
)

const dateLayout = "2006-01-02"

// maxBodySize caps request bodies; commission payloads are tiny.
const maxBodySize = 64 << 10

type createCommissionRequest struct {
	PartnerID       string      `json:"partner_id"`
	Amount          json.Number `json:"amount"`
	Currency        string      `json:"currency"`
	TransactionDate string      `json:"transaction_date"`
	Description     string      `json:"description"`
}

type updateCommissionRequest struct {
	Amount          *json.Number `json:"amount"`
	Currency        string       `json:"currency"`
	TransactionDate *string      `json:"transaction_date"`
	Description     *string      `json:"description"`
}

type partnerRequest struct {
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
}

type updatePartnerRequest struct {
	Name       *string `json:"name"`
	EntityType *string `json:"entity_type"`
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", core.ErrValidation, err)
	}
	return nil
}

func parseMoney(amount json.Number, currency string) (core.Money, error) {
	value, err := decimal.NewFromString(amount.String())
	if err != nil {
		return core.Money{}, fmt.Errorf("%w: amount %q is not a number", core.ErrInvalidAmount, amount)
	}
	if currency == "" {
		currency = core.DefaultCurrency
	}
	return core.NewMoney(value, strings.ToUpper(currency))
}

func parseTransactionDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", core.ErrInvalidDate, value)
	}
	return date, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
