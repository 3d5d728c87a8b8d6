package analytics

import (
	"testing"
	"time"

	"advisor360/internal/core"
)

func TestOverviewStats(t *testing.T) {
	now := time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)
	commissions := []core.Commission{
		commission(t, "p1", 100, "2025-01-10"), // previous month
		commission(t, "p1", 150, "2025-02-05"), // current month
		commission(t, "p1", 50, "2025-02-15"),  // current month
		commission(t, "p1", 400, "2024-06-01"), // earlier in FY24-25
		commission(t, "p1", 999, "2023-06-01"), // FY23-24, all-time only
	}

	overview := OverviewStats(commissions, now)

	if overview.TotalAllTime != 1699 {
		t.Errorf("totalAllTime = %v, want 1699", overview.TotalAllTime)
	}
	if overview.CurrentMonthTotal != 200 {
		t.Errorf("currentMonthTotal = %v, want 200", overview.CurrentMonthTotal)
	}
	if overview.PreviousMonthTotal != 100 {
		t.Errorf("previousMonthTotal = %v, want 100", overview.PreviousMonthTotal)
	}
	if overview.CurrentFY != "FY24-25" {
		t.Errorf("currentFY = %s, want FY24-25", overview.CurrentFY)
	}
	if overview.CurrentFYTotal != 700 {
		t.Errorf("currentFYTotal = %v, want 700", overview.CurrentFYTotal)
	}
	if overview.MonthOverMonthGrowth != 100 {
		t.Errorf("monthOverMonthGrowth = %v, want 100", overview.MonthOverMonthGrowth)
	}
}

func TestOverviewStats_GrowthEdges(t *testing.T) {
	now := time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)

	t.Run("prev zero curr positive is 100", func(t *testing.T) {
		commissions := []core.Commission{
			commission(t, "p1", 200, "2025-02-05"),
		}
		overview := OverviewStats(commissions, now)
		if overview.MonthOverMonthGrowth != 100 {
			t.Errorf("growth = %v, want 100", overview.MonthOverMonthGrowth)
		}
	})

	t.Run("both zero is 0", func(t *testing.T) {
		commissions := []core.Commission{
			commission(t, "p1", 500, "2024-06-01"),
		}
		overview := OverviewStats(commissions, now)
		if overview.MonthOverMonthGrowth != 0 {
			t.Errorf("growth = %v, want 0", overview.MonthOverMonthGrowth)
		}
	})

	t.Run("no commissions at all", func(t *testing.T) {
		overview := OverviewStats(nil, now)
		if overview.TotalAllTime != 0 || overview.MonthOverMonthGrowth != 0 {
			t.Errorf("empty overview = %+v, want zeros", overview)
		}
	})
}

func TestOverviewStats_JanuaryRollsBackAcrossYear(t *testing.T) {
	now := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	commissions := []core.Commission{
		commission(t, "p1", 100, "2024-12-20"),
		commission(t, "p1", 150, "2025-01-05"),
	}

	overview := OverviewStats(commissions, now)
	if overview.PreviousMonthTotal != 100 {
		t.Errorf("previousMonthTotal = %v, want December 2024's 100", overview.PreviousMonthTotal)
	}
	if overview.MonthOverMonthGrowth != 50 {
		t.Errorf("growth = %v, want 50", overview.MonthOverMonthGrowth)
	}
}
