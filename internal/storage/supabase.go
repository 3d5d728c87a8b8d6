package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"advisor360/internal/core"
)

// SupabaseClient talks to a Supabase project through its PostgREST API.
// Rows live in the commissions and partners tables; the apikey and bearer
// token are the project's service key.
type SupabaseClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

func NewSupabaseClient(projectURL, apiKey string) (*SupabaseClient, error) {
	if projectURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase url and api key are required")
	}
	parsed, err := url.Parse(projectURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid supabase url %q", projectURL)
	}
	return &SupabaseClient{
		baseURL: parsed.String() + "/rest/v1",
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// commissionRow is the flat PostgREST representation of a commission.
type commissionRow struct {
	ID              string  `json:"id"`
	PartnerID       string  `json:"partner_id"`
	Amount          string  `json:"amount"`
	Currency        string  `json:"currency"`
	TransactionDate string  `json:"transaction_date"`
	Description     *string `json:"description,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       *string `json:"updated_at,omitempty"`
}

type partnerRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	EntityType string  `json:"entity_type"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  *string `json:"updated_at,omitempty"`
}

func (s *SupabaseClient) GetAll(ctx context.Context) ([]core.Commission, error) {
	return s.queryCommissions(ctx, url.Values{
		"select": {"*"},
		"order":  {"transaction_date.desc"},
	})
}

func (s *SupabaseClient) GetByID(ctx context.Context, id string) (core.Commission, error) {
	rows, err := s.queryCommissions(ctx, url.Values{
		"select": {"*"},
		"id":     {"eq." + id},
	})
	if err != nil {
		return core.Commission{}, err
	}
	if len(rows) == 0 {
		return core.Commission{}, fmt.Errorf("%w: %s", core.ErrCommissionNotFound, id)
	}
	return rows[0], nil
}

func (s *SupabaseClient) GetByPartnerID(ctx context.Context, partnerID string) ([]core.Commission, error) {
	return s.queryCommissions(ctx, url.Values{
		"select":     {"*"},
		"partner_id": {"eq." + partnerID},
		"order":      {"transaction_date.desc"},
	})
}

func (s *SupabaseClient) GetByFinancialYear(ctx context.Context, fy core.FinancialYear) ([]core.Commission, error) {
	return s.queryCommissions(ctx, url.Values{
		"select": {"*"},
		"and": {fmt.Sprintf("(transaction_date.gte.%s,transaction_date.lte.%s)",
			fy.StartDate().Format(dateLayout), fy.EndDate().Format(dateLayout))},
		"order": {"transaction_date.desc"},
	})
}

func (s *SupabaseClient) GetRecent(ctx context.Context, limit int) ([]core.Commission, error) {
	return s.queryCommissions(ctx, url.Values{
		"select": {"*"},
		"order":  {"transaction_date.desc"},
		"limit":  {strconv.Itoa(limit)},
	})
}

func (s *SupabaseClient) Create(ctx context.Context, c core.Commission) error {
	return s.write(ctx, http.MethodPost, "/commissions", nil, commissionToRow(c), "")
}

func (s *SupabaseClient) Update(ctx context.Context, c core.Commission) error {
	return s.write(ctx, http.MethodPatch, "/commissions",
		url.Values{"id": {"eq." + c.ID}}, commissionToRow(c), "")
}

func (s *SupabaseClient) Delete(ctx context.Context, id string) error {
	return s.write(ctx, http.MethodDelete, "/commissions",
		url.Values{"id": {"eq." + id}}, nil, "")
}

// Upsert writes a commission idempotently, used by the sync worker so a
// replayed message does not duplicate rows.
func (s *SupabaseClient) Upsert(ctx context.Context, c core.Commission) error {
	return s.write(ctx, http.MethodPost, "/commissions", nil, commissionToRow(c),
		"resolution=merge-duplicates")
}

// Partners returns a PartnerRepository view over the same project.
func (s *SupabaseClient) Partners() PartnerRepository {
	return &supabasePartnerStore{client: s}
}

type supabasePartnerStore struct {
	client *SupabaseClient
}

func (s *supabasePartnerStore) GetAll(ctx context.Context) ([]core.Partner, error) {
	var rows []partnerRow
	if err := s.client.get(ctx, "/partners", url.Values{"select": {"*"}, "order": {"name.asc"}}, &rows); err != nil {
		return nil, err
	}
	partners := make([]core.Partner, 0, len(rows))
	for _, row := range rows {
		p, err := partnerFromRow(row)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, nil
}

func (s *supabasePartnerStore) GetByID(ctx context.Context, id string) (core.Partner, error) {
	var rows []partnerRow
	if err := s.client.get(ctx, "/partners", url.Values{"select": {"*"}, "id": {"eq." + id}}, &rows); err != nil {
		return core.Partner{}, err
	}
	if len(rows) == 0 {
		return core.Partner{}, fmt.Errorf("%w: %s", core.ErrPartnerNotFound, id)
	}
	return partnerFromRow(rows[0])
}

func (s *supabasePartnerStore) Create(ctx context.Context, p core.Partner) error {
	return s.client.write(ctx, http.MethodPost, "/partners", nil, partnerToRow(p), "")
}

func (s *supabasePartnerStore) Update(ctx context.Context, p core.Partner) error {
	return s.client.write(ctx, http.MethodPatch, "/partners",
		url.Values{"id": {"eq." + p.ID}}, partnerToRow(p), "")
}

func (s *supabasePartnerStore) Delete(ctx context.Context, id string) error {
	return s.client.write(ctx, http.MethodDelete, "/partners",
		url.Values{"id": {"eq." + id}}, nil, "")
}

func (s *SupabaseClient) queryCommissions(ctx context.Context, query url.Values) ([]core.Commission, error) {
	var rows []commissionRow
	if err := s.get(ctx, "/commissions", query, &rows); err != nil {
		return nil, err
	}
	commissions := make([]core.Commission, 0, len(rows))
	for _, row := range rows {
		c, err := commissionFromRow(row)
		if err != nil {
			return nil, err
		}
		commissions = append(commissions, c)
	}
	return commissions, nil
}

func (s *SupabaseClient) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build supabase request: %w", err)
	}
	s.authorize(req)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return supabaseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode supabase response: %w", err)
	}
	return nil
}

func (s *SupabaseClient) write(ctx context.Context, method, path string, query url.Values, body any, prefer string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal supabase payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	target := s.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build supabase request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return supabaseError(resp)
	}
	return nil
}

func (s *SupabaseClient) authorize(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

func supabaseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("supabase responded %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

func commissionToRow(c core.Commission) commissionRow {
	row := commissionRow{
		ID:              c.ID,
		PartnerID:       c.PartnerID,
		Amount:          c.Amount.Amount().String(),
		Currency:        c.Amount.Currency(),
		TransactionDate: c.TransactionDate.Format(dateLayout),
		CreatedAt:       c.CreatedAt.UTC().Format(timestampLayout),
	}
	if c.Description != "" {
		row.Description = &c.Description
	}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt.UTC().Format(timestampLayout)
		row.UpdatedAt = &updated
	}
	return row
}

func commissionFromRow(row commissionRow) (core.Commission, error) {
	description := ""
	if row.Description != nil {
		description = *row.Description
	}
	updated := ""
	if row.UpdatedAt != nil {
		updated = *row.UpdatedAt
	}
	return rehydrateCommission(row.ID, row.PartnerID, row.Amount, row.Currency,
		row.TransactionDate, description, row.CreatedAt, updated)
}

func partnerToRow(p core.Partner) partnerRow {
	row := partnerRow{
		ID:         p.ID,
		Name:       p.Name,
		EntityType: string(p.EntityType),
		CreatedAt:  p.CreatedAt.UTC().Format(timestampLayout),
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt.UTC().Format(timestampLayout)
		row.UpdatedAt = &updated
	}
	return row
}

func partnerFromRow(row partnerRow) (core.Partner, error) {
	createdAt, err := time.Parse(timestampLayout, row.CreatedAt)
	if err != nil {
		return core.Partner{}, fmt.Errorf("parse partner created_at: %w", err)
	}
	p := core.Partner{
		ID:         row.ID,
		Name:       row.Name,
		EntityType: core.EntityType(row.EntityType),
		CreatedAt:  createdAt,
	}
	if row.UpdatedAt != nil && *row.UpdatedAt != "" {
		if p.UpdatedAt, err = time.Parse(timestampLayout, *row.UpdatedAt); err != nil {
			return core.Partner{}, fmt.Errorf("parse partner updated_at: %w", err)
		}
	}
	if err := p.Validate(); err != nil {
		return core.Partner{}, fmt.Errorf("invalid partner row %s: %w", row.ID, err)
	}
	return p, nil
}
