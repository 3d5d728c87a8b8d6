package http

import (
	"net/http"
	"time"

	"advisor360/internal/core"
	"advisor360/internal/services"
)

// commissionDTO is the wire form of a commission. Amounts are serialized
// as fixed-point strings so clients never see float artifacts.
type commissionDTO struct {
	ID              string `json:"id"`
	PartnerID       string `json:"partner_id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	TransactionDate string `json:"transaction_date"`
	FinancialYear   string `json:"financial_year"`
	Description     string `json:"description,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

func toCommissionDTO(c core.Commission) commissionDTO {
	dto := commissionDTO{
		ID:              c.ID,
		PartnerID:       c.PartnerID,
		Amount:          c.Amount.Amount().StringFixed(2),
		Currency:        c.Amount.Currency(),
		TransactionDate: c.TransactionDate.Format(dateLayout),
		FinancialYear:   c.FinancialYear.String(),
		Description:     c.Description,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !c.UpdatedAt.IsZero() {
		dto.UpdatedAt = c.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func toCommissionDTOs(commissions []core.Commission) []commissionDTO {
	dtos := make([]commissionDTO, 0, len(commissions))
	for _, c := range commissions {
		dtos = append(dtos, toCommissionDTO(c))
	}
	return dtos
}

func (s *Server) handleListCommissions(w http.ResponseWriter, r *http.Request) {
	// Optional financial year filter, e.g. ?financial_year=FY24-25
	if label := r.URL.Query().Get("financial_year"); label != "" {
		commissions, err := s.commissions.ListByFinancialYear(r.Context(), label)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeData(w, http.StatusOK, toCommissionDTOs(commissions))
		return
	}

	commissions, err := s.commissions.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toCommissionDTOs(commissions))
}

func (s *Server) handleRecentCommissions(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultRecentLimit)
	commissions, err := s.commissions.Recent(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toCommissionDTOs(commissions))
}

func (s *Server) handleGetCommission(w http.ResponseWriter, r *http.Request) {
	commission, err := s.commissions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toCommissionDTO(commission))
}

func (s *Server) handleCreateCommission(w http.ResponseWriter, r *http.Request) {
	var req createCommissionRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	amount, err := parseMoney(req.Amount, req.Currency)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	date, err := parseTransactionDate(req.TransactionDate)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	commission, err := s.commissions.Create(r.Context(), req.PartnerID, amount, date, sanitizeInput(req.Description))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateDashboard()
	writeData(w, http.StatusCreated, toCommissionDTO(commission))
}

func (s *Server) handleUpdateCommission(w http.ResponseWriter, r *http.Request) {
	var req updateCommissionRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var params services.UpdateParams
	if req.Amount != nil {
		amount, err := parseMoney(*req.Amount, req.Currency)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		params.Amount = &amount
	}
	if req.TransactionDate != nil {
		date, err := parseTransactionDate(*req.TransactionDate)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		params.TransactionDate = &date
	}
	if req.Description != nil {
		description := sanitizeInput(*req.Description)
		params.Description = &description
	}

	commission, err := s.commissions.Update(r.Context(), r.PathValue("id"), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateDashboard()
	writeData(w, http.StatusOK, toCommissionDTO(commission))
}

func (s *Server) handleDeleteCommission(w http.ResponseWriter, r *http.Request) {
	if err := s.commissions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	s.invalidateDashboard()
	writeMessage(w, http.StatusOK, "commission deleted")
}
