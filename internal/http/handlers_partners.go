package http

import (
	"net/http"
	"time"

	"advisor360/internal/core"
	"advisor360/internal/services"
)

type partnerDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EntityType string `json:"entity_type"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}

func toPartnerDTO(p core.Partner) partnerDTO {
	dto := partnerDTO{
		ID:         p.ID,
		Name:       p.Name,
		EntityType: string(p.EntityType),
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !p.UpdatedAt.IsZero() {
		dto.UpdatedAt = p.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := s.partners.List(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	dtos := make([]partnerDTO, 0, len(partners))
	for _, p := range partners {
		dtos = append(dtos, toPartnerDTO(p))
	}
	writeData(w, http.StatusOK, dtos)
}

func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	partner, err := s.partners.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toPartnerDTO(partner))
}

func (s *Server) handleCreatePartner(w http.ResponseWriter, r *http.Request) {
	var req partnerRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	partner, err := s.partners.Create(r.Context(), sanitizeInput(req.Name), core.EntityType(req.EntityType))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateDashboard()
	writeData(w, http.StatusCreated, toPartnerDTO(partner))
}

func (s *Server) handleUpdatePartner(w http.ResponseWriter, r *http.Request) {
	var req updatePartnerRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var params services.UpdatePartnerParams
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		params.Name = &name
	}
	if req.EntityType != nil {
		entityType := core.EntityType(*req.EntityType)
		params.EntityType = &entityType
	}

	partner, err := s.partners.Update(r.Context(), r.PathValue("id"), params)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateDashboard()
	writeData(w, http.StatusOK, toPartnerDTO(partner))
}

func (s *Server) handleDeletePartner(w http.ResponseWriter, r *http.Request) {
	if err := s.partners.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateDashboard()
	writeMessage(w, http.StatusOK, "partner deleted")
}

func (s *Server) handlePartnerCommissions(w http.ResponseWriter, r *http.Request) {
	commissions, err := s.commissions.ListByPartner(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toCommissionDTOs(commissions))
}
