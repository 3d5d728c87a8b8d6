package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"advisor360/internal/core"
)

// OverviewStats composes the dashboard headline figures as of the given
// instant: all-time total, current and previous calendar-month totals
// (rolling back across the year boundary), the running financial year's
// total, and month-over-month growth.
//
// Growth edge rules: a previous month of zero with a non-zero current month
// is reported as 100%; zero against zero is 0%.
func OverviewStats(commissions []core.Commission, now time.Time) Overview {
	currentYear, currentMonth := now.Year(), now.Month()
	prevYear, prevMonth := currentYear, currentMonth-1
	if currentMonth == time.January {
		prevYear, prevMonth = currentYear-1, time.December
	}
	currentFY := core.FinancialYearFromDate(now)

	allTime := decimal.Zero
	currMonthTotal := decimal.Zero
	prevMonthTotal := decimal.Zero
	fyTotal := decimal.Zero

	for _, c := range commissions {
		amount := c.Amount.Amount()
		allTime = allTime.Add(amount)
		if c.Year() == currentYear && c.TransactionDate.Month() == currentMonth {
			currMonthTotal = currMonthTotal.Add(amount)
		}
		if c.Year() == prevYear && c.TransactionDate.Month() == prevMonth {
			prevMonthTotal = prevMonthTotal.Add(amount)
		}
		if c.FinancialYear.Equal(currentFY) {
			fyTotal = fyTotal.Add(amount)
		}
	}

	var growth float64
	switch {
	case prevMonthTotal.IsPositive():
		growth = percentChange(prevMonthTotal, currMonthTotal)
	case currMonthTotal.IsPositive():
		growth = 100
	}

	return Overview{
		TotalAllTime:         allTime.InexactFloat64(),
		CurrentMonthTotal:    currMonthTotal.InexactFloat64(),
		PreviousMonthTotal:   prevMonthTotal.InexactFloat64(),
		CurrentFY:            currentFY.Format(core.FormatShort),
		CurrentFYTotal:       fyTotal.InexactFloat64(),
		MonthOverMonthGrowth: growth,
	}
}
