package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"advisor360/internal/core"
)

type monthKey struct {
	year  int
	month time.Month
}

type monthBucket struct {
	key   monthKey
	total decimal.Decimal
	count int
}

// MonthlyTotals groups commissions by calendar month and sums their
// amounts, oldest month first. With growth enabled, each bucket after the
// first carries the percentage change against the previous bucket; the
// growth value is absent when the previous total is not positive.
func MonthlyTotals(commissions []core.Commission, withGrowth bool) []MonthlyTotal {
	buckets := bucketByMonth(commissions)
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].key.year != buckets[j].key.year {
			return buckets[i].key.year < buckets[j].key.year
		}
		return buckets[i].key.month < buckets[j].key.month
	})

	totals := make([]MonthlyTotal, len(buckets))
	for i, b := range buckets {
		totals[i] = MonthlyTotal{
			Month: b.key.month.String(),
			Year:  b.key.year,
			Total: b.total.InexactFloat64(),
			Count: b.count,
		}
		if withGrowth && i > 0 && buckets[i-1].total.IsPositive() {
			g := percentChange(buckets[i-1].total, b.total)
			totals[i].Growth = &g
		}
	}
	return totals
}

// MonthlyTotalsForFY restricts the monthly breakdown to a single financial
// year, selected by its strict FY label.
func MonthlyTotalsForFY(commissions []core.Commission, fyLabel string) ([]MonthlyTotal, error) {
	selected, err := filterByFYLabel(commissions, fyLabel)
	if err != nil {
		return nil, err
	}
	return MonthlyTotals(selected, false), nil
}

// Trend aggregates monthly totals across all financial years and returns
// the newest months first, at most the requested number.
func Trend(commissions []core.Commission, months int) []MonthlyTotal {
	totals := MonthlyTotals(commissions, false)
	// Newest first.
	for i, j := 0, len(totals)-1; i < j; i, j = i+1, j-1 {
		totals[i], totals[j] = totals[j], totals[i]
	}
	if months > 0 && len(totals) > months {
		totals = totals[:months]
	}
	return totals
}

func bucketByMonth(commissions []core.Commission) []monthBucket {
	index := make(map[monthKey]int)
	var buckets []monthBucket
	for _, c := range commissions {
		key := monthKey{year: c.Year(), month: c.TransactionDate.Month()}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, monthBucket{key: key, total: decimal.Zero})
		}
		buckets[i].total = buckets[i].total.Add(c.Amount.Amount())
		buckets[i].count++
	}
	return buckets
}

// percentChange returns (curr-prev)/prev*100. Callers must ensure prev is
// positive.
func percentChange(prev, curr decimal.Decimal) float64 {
	return curr.Sub(prev).Div(prev).InexactFloat64() * 100
}
