package analytics

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/shopspring/decimal"

	"advisor360/internal/core"
)

// fyLabelPattern is the strict label form accepted by the aggregation entry
// points. The core parser is more permissive; API-facing selections are not.
var fyLabelPattern = regexp.MustCompile(`^FY\d{2}-\d{2}$`)

// FinancialYearMetrics sums commissions for the selected financial year and
// compares against the preceding one. A previous year with no records is a
// zero baseline, not an error, and yields a growth of 0. Only a malformed
// target label fails.
func FinancialYearMetrics(commissions []core.Commission, fyLabel string) (FYMetrics, error) {
	target, err := parseStrictLabel(fyLabel)
	if err != nil {
		return FYMetrics{}, err
	}

	current := decimal.Zero
	previous := decimal.Zero
	count := 0
	prev := target.Previous()
	for _, c := range commissions {
		switch {
		case c.FinancialYear.Equal(target):
			current = current.Add(c.Amount.Amount())
			count++
		case c.FinancialYear.Equal(prev):
			previous = previous.Add(c.Amount.Amount())
		}
	}

	metrics := FYMetrics{
		SelectedFY:       fyLabel,
		CurrentYearTotal: current.InexactFloat64(),
		CommissionCount:  count,
	}
	if previous.IsPositive() {
		metrics.YoYGrowth = percentChange(previous, current)
	}
	return metrics, nil
}

// QuarterlyBreakdown buckets a financial year's commissions into its four
// fiscal quarters. Every quarter is present in the result, zero-valued when
// empty.
func QuarterlyBreakdown(commissions []core.Commission, fyLabel string) ([]QuarterTotal, error) {
	selected, err := filterByFYLabel(commissions, fyLabel)
	if err != nil {
		return nil, err
	}

	sums := [5]decimal.Decimal{}
	counts := [5]int{}
	for _, c := range selected {
		q, err := c.Quarter()
		if err != nil {
			// The date-in-year invariant makes this unreachable for
			// validated commissions.
			continue
		}
		sums[q] = sums[q].Add(c.Amount.Amount())
		counts[q]++
	}

	breakdown := make([]QuarterTotal, 4)
	for q := 1; q <= 4; q++ {
		breakdown[q-1] = QuarterTotal{
			Quarter: q,
			Total:   sums[q].InexactFloat64(),
			Count:   counts[q],
		}
	}
	return breakdown, nil
}

// AvailableFinancialYears lists the short labels of every financial year
// present in the commission set, newest first.
func AvailableFinancialYears(commissions []core.Commission) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, c := range commissions {
		label := c.FinancialYear.Format(core.FormatShort)
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(labels)))
	return labels
}

// parseStrictLabel enforces the API-boundary label form before handing the
// label to the permissive core parser.
func parseStrictLabel(fyLabel string) (core.FinancialYear, error) {
	if !fyLabelPattern.MatchString(fyLabel) {
		return core.FinancialYear{}, fmt.Errorf("%w: %q", core.ErrFinancialYearNotFound, fyLabel)
	}
	fy, err := core.ParseFinancialYear(fyLabel)
	if err != nil {
		return core.FinancialYear{}, fmt.Errorf("%w: %q", core.ErrFinancialYearNotFound, fyLabel)
	}
	return fy, nil
}

func filterByFYLabel(commissions []core.Commission, fyLabel string) ([]core.Commission, error) {
	target, err := parseStrictLabel(fyLabel)
	if err != nil {
		return nil, err
	}
	var selected []core.Commission
	for _, c := range commissions {
		if c.FinancialYear.Equal(target) {
			selected = append(selected, c)
		}
	}
	return selected, nil
}
