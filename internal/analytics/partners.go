package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"advisor360/internal/core"
)

// PartnerTotals groups commissions by partner id and ranks partners by
// total, highest first. Percentage shares are of the grand total across all
// commissions (0 when the grand total is zero). Ties keep the order in
// which partners first appear in the input.
func PartnerTotals(commissions []core.Commission) []PartnerTotal {
	index := make(map[string]int)
	var totals []PartnerTotal
	sums := make([]decimal.Decimal, 0)
	grand := decimal.Zero

	for _, c := range commissions {
		i, ok := index[c.PartnerID]
		if !ok {
			i = len(totals)
			index[c.PartnerID] = i
			totals = append(totals, PartnerTotal{PartnerID: c.PartnerID})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(c.Amount.Amount())
		totals[i].Count++
		grand = grand.Add(c.Amount.Amount())
	}

	for i := range totals {
		totals[i].Total = sums[i].InexactFloat64()
		if grand.IsPositive() {
			totals[i].PercentageOfTotal = sums[i].Div(grand).InexactFloat64() * 100
		}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total > totals[j].Total
	})
	for i := range totals {
		totals[i].Rank = i + 1
	}
	return totals
}

// CategoryTotals groups commissions by the entity type of their partner,
// joined against the partner collection. Commissions whose partner id has
// no match are left out of the breakdown entirely, including its grand
// total.
func CategoryTotals(commissions []core.Commission, partners []core.Partner) []CategoryTotal {
	lookup := make(map[string]core.Partner, len(partners))
	for _, p := range partners {
		lookup[p.ID] = p
	}

	index := make(map[string]int)
	var totals []CategoryTotal
	sums := make([]decimal.Decimal, 0)
	grand := decimal.Zero

	for _, c := range commissions {
		partner, ok := lookup[c.PartnerID]
		if !ok {
			continue
		}
		category := string(partner.EntityType)
		i, ok := index[category]
		if !ok {
			i = len(totals)
			index[category] = i
			totals = append(totals, CategoryTotal{Category: category})
			sums = append(sums, decimal.Zero)
		}
		sums[i] = sums[i].Add(c.Amount.Amount())
		grand = grand.Add(c.Amount.Amount())
	}

	for i := range totals {
		totals[i].Total = sums[i].InexactFloat64()
		if grand.IsPositive() {
			totals[i].PercentageOfTotal = sums[i].Div(grand).InexactFloat64() * 100
		}
	}
	return totals
}

// CategoryTotalsForFY narrows the breakdown to a single financial year,
// selected by its strict label form.
func CategoryTotalsForFY(commissions []core.Commission, partners []core.Partner, fyLabel string) ([]CategoryTotal, error) {
	selected, err := filterByFYLabel(commissions, fyLabel)
	if err != nil {
		return nil, err
	}
	return CategoryTotals(selected, partners), nil
}

// PartnerPerformanceSummary builds a per-partner row for every partner,
// including those with no commissions, sorted by total descending.
func PartnerPerformanceSummary(commissions []core.Commission, partners []core.Partner) []PartnerPerformance {
	sums := make(map[string]decimal.Decimal, len(partners))
	counts := make(map[string]int, len(partners))
	for _, c := range commissions {
		sums[c.PartnerID] = sums[c.PartnerID].Add(c.Amount.Amount())
		counts[c.PartnerID]++
	}

	rows := make([]PartnerPerformance, 0, len(partners))
	for _, p := range partners {
		rows = append(rows, PartnerPerformance{
			PartnerID:   p.ID,
			PartnerName: p.Name,
			EntityType:  string(p.EntityType),
			Total:       sums[p.ID].InexactFloat64(),
			Count:       counts[p.ID],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}
