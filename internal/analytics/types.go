// Package analytics is the commission aggregation engine: pure transforms
// from materialized commission/partner collections to the aggregate
// structures served by the dashboard.
//
// Nothing here performs I/O or keeps state between calls, so concurrent
// invocation over independent inputs needs no coordination. Functions that
// depend on "now" take it as an argument.
package analytics

// MonthlyTotal is one calendar-month bucket of commission totals.
type MonthlyTotal struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
	// Growth is the percentage change against the previous bucket. It is
	// nil for the first bucket of a series and whenever the previous
	// bucket's total is not positive.
	Growth *float64 `json:"growth,omitempty"`
}

// PartnerTotal is one partner's share of the commission pie.
type PartnerTotal struct {
	PartnerID         string  `json:"partner_id"`
	Total             float64 `json:"total"`
	Count             int     `json:"count"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
	Rank              int     `json:"rank"`
}

// CategoryTotal is one entity-type bucket of the category breakdown.
type CategoryTotal struct {
	Category          string  `json:"category"`
	Total             float64 `json:"total"`
	PercentageOfTotal float64 `json:"percentage_of_total"`
}

// FYMetrics are the key figures for a selected financial year.
type FYMetrics struct {
	SelectedFY       string  `json:"selectedFY"`
	CurrentYearTotal float64 `json:"currentYearTotal"`
	YoYGrowth        float64 `json:"yoyGrowth"`
	CommissionCount  int     `json:"commissionCount"`
}

// QuarterTotal is one fiscal-quarter bucket. All four quarters are always
// reported, zero-valued when empty.
type QuarterTotal struct {
	Quarter int     `json:"quarter"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
}

// Overview is the dashboard headline stat set.
type Overview struct {
	TotalAllTime         float64 `json:"totalAllTime"`
	CurrentMonthTotal    float64 `json:"currentMonthTotal"`
	PreviousMonthTotal   float64 `json:"previousMonthTotal"`
	CurrentFY            string  `json:"currentFY"`
	CurrentFYTotal       float64 `json:"currentFYTotal"`
	MonthOverMonthGrowth float64 `json:"monthOverMonthGrowth"`
}

// PartnerPerformance is a per-partner summary row joined against the
// partner collection.
type PartnerPerformance struct {
	PartnerID   string  `json:"partner_id"`
	PartnerName string  `json:"partner_name"`
	EntityType  string  `json:"entity_type"`
	Total       float64 `json:"total_commission"`
	Count       int     `json:"commission_count"`
}
