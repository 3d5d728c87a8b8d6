package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BaseCentury is the century assumed for 2-digit start years in financial
// year labels: "24-25" parses as 2024-2025. Labels outside the 2000s must
// be written with 4-digit start years.
const BaseCentury = 2000

const (
	minStartYear = 1900
	maxStartYear = 2100
)

// FinancialYear is the Apr 1 - Mar 31 accounting window, labeled by its
// calendar year pair (e.g. FY24-25 runs Apr 1 2024 through Mar 31 2025).
// Equality and ordering are by StartYear.
type FinancialYear struct {
	StartYear int
	EndYear   int
}

// FormatStyle selects a label layout for FinancialYear.Format.
type FormatStyle int

const (
	FormatShort  FormatStyle = iota // FY24-25
	FormatMedium                    // FY2024-25
	FormatLong                      // FY2024-2025
)

var (
	fyLongPattern   = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
	fyMediumPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	fyShortPattern  = regexp.MustCompile(`^(\d{2})-(\d{2})$`)
)

// NewFinancialYear builds a validated financial year from its two calendar
// years.
func NewFinancialYear(startYear, endYear int) (FinancialYear, error) {
	if endYear != startYear+1 {
		return FinancialYear{}, fmt.Errorf("%w: end year must be start year + 1, got %d-%d",
			ErrInvalidFinancialYear, startYear, endYear)
	}
	if startYear < minStartYear || startYear > maxStartYear {
		return FinancialYear{}, fmt.Errorf("%w: start year must be between %d and %d, got %d",
			ErrInvalidFinancialYear, minStartYear, maxStartYear, startYear)
	}
	return FinancialYear{StartYear: startYear, EndYear: endYear}, nil
}

// FinancialYearFromYear builds the financial year starting in the given
// calendar year.
func FinancialYearFromYear(startYear int) (FinancialYear, error) {
	return NewFinancialYear(startYear, startYear+1)
}

// ParseFinancialYear parses a financial year label. It accepts, case
// insensitively and with an optional FY prefix: "2024-2025", "2024-25" and
// "24-25". Two-digit start years are resolved against BaseCentury.
func ParseFinancialYear(label string) (FinancialYear, error) {
	if strings.TrimSpace(label) == "" {
		return FinancialYear{}, fmt.Errorf("%w: label cannot be empty", ErrInvalidFinancialYear)
	}

	clean := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(label)), "FY")

	for _, pattern := range []*regexp.Regexp{fyLongPattern, fyMediumPattern, fyShortPattern} {
		match := pattern.FindStringSubmatch(clean)
		if match == nil {
			continue
		}
		startStr, endStr := match[1], match[2]

		startYear, _ := strconv.Atoi(startStr)
		if len(startStr) == 2 {
			startYear += BaseCentury
		}

		fy, err := NewFinancialYear(startYear, resolveEndYear(startYear, endStr))
		if err != nil {
			return FinancialYear{}, fmt.Errorf("%w (from %q)", err, label)
		}
		return fy, nil
	}

	return FinancialYear{}, fmt.Errorf("%w: unrecognized label %q, expected FY24-25, 2024-25 or 2024-2025",
		ErrInvalidFinancialYear, label)
}

// resolveEndYear reconstructs the end year from a possibly 2-digit suffix.
// The suffix normally names start+1 within the same century; a 2-digit
// suffix that doesn't is reconstructed in the start year's century, except
// at the x99 boundary where the window wraps into the next century.
func resolveEndYear(startYear int, endStr string) int {
	endYear, _ := strconv.Atoi(endStr)
	if len(endStr) != 2 {
		return endYear
	}
	switch {
	case endYear == (startYear+1)%100:
		return startYear + 1
	case startYear%100 == 99:
		return startYear + 1
	default:
		return (startYear/100)*100 + endYear
	}
}

// FinancialYearFromDate returns the financial year containing the given
// date: April onward belongs to the year starting in that calendar year,
// January through March to the year that started the calendar year before.
func FinancialYearFromDate(d time.Time) FinancialYear {
	if d.Month() >= time.April {
		return FinancialYear{StartYear: d.Year(), EndYear: d.Year() + 1}
	}
	return FinancialYear{StartYear: d.Year() - 1, EndYear: d.Year()}
}

// CurrentFinancialYear returns the financial year containing today.
func CurrentFinancialYear() FinancialYear {
	return FinancialYearFromDate(time.Now())
}

// StartDate returns April 1 of the start year.
func (fy FinancialYear) StartDate() time.Time {
	return time.Date(fy.StartYear, time.April, 1, 0, 0, 0, 0, time.UTC)
}

// EndDate returns March 31 of the end year.
func (fy FinancialYear) EndDate() time.Time {
	return time.Date(fy.EndYear, time.March, 31, 0, 0, 0, 0, time.UTC)
}

// ContainsDate reports whether d falls inside the window, inclusive on both
// ends. Only the calendar date matters, not the time of day.
func (fy FinancialYear) ContainsDate(d time.Time) bool {
	day := dateOnly(d)
	return !day.Before(fy.StartDate()) && !day.After(fy.EndDate())
}

// ContainsMonth reports whether the given calendar month falls inside the
// window.
func (fy FinancialYear) ContainsMonth(year int, month time.Month) bool {
	return fy.ContainsDate(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Months lists the twelve calendar months of the window in order, April
// through March.
func (fy FinancialYear) Months() []YearMonth {
	months := make([]YearMonth, 0, 12)
	for m := time.April; m <= time.December; m++ {
		months = append(months, YearMonth{Year: fy.StartYear, Month: m})
	}
	for m := time.January; m <= time.March; m++ {
		months = append(months, YearMonth{Year: fy.EndYear, Month: m})
	}
	return months
}

// Quarter returns the fiscal quarter (1-4) containing d. Q4 (Jan-Mar) falls
// in the second calendar year of the window. Fails when d is outside the
// window.
func (fy FinancialYear) Quarter(d time.Time) (int, error) {
	if !fy.ContainsDate(d) {
		return 0, fmt.Errorf("%w: date %s is not within %s",
			ErrInvalidDate, dateOnly(d).Format("2006-01-02"), fy)
	}
	switch {
	case d.Month() >= time.April && d.Month() <= time.June:
		return 1, nil
	case d.Month() >= time.July && d.Month() <= time.September:
		return 2, nil
	case d.Month() >= time.October && d.Month() <= time.December:
		return 3, nil
	default:
		return 4, nil
	}
}

// Next returns the following financial year.
func (fy FinancialYear) Next() FinancialYear {
	return FinancialYear{StartYear: fy.StartYear + 1, EndYear: fy.EndYear + 1}
}

// Previous returns the preceding financial year.
func (fy FinancialYear) Previous() FinancialYear {
	return FinancialYear{StartYear: fy.StartYear - 1, EndYear: fy.EndYear - 1}
}

// Equal reports whether both windows start in the same year.
func (fy FinancialYear) Equal(other FinancialYear) bool {
	return fy.StartYear == other.StartYear
}

// Before reports whether fy starts before other.
func (fy FinancialYear) Before(other FinancialYear) bool {
	return fy.StartYear < other.StartYear
}

// After reports whether fy starts after other.
func (fy FinancialYear) After(other FinancialYear) bool {
	return fy.StartYear > other.StartYear
}

// Format renders the label in the requested style. Note that the short
// style drops century information: FY1924-25 and FY2024-25 both render as
// FY24-25.
func (fy FinancialYear) Format(style FormatStyle) string {
	switch style {
	case FormatMedium:
		return fmt.Sprintf("FY%d-%02d", fy.StartYear, fy.EndYear%100)
	case FormatLong:
		return fmt.Sprintf("FY%d-%d", fy.StartYear, fy.EndYear)
	default:
		return fmt.Sprintf("FY%02d-%02d", fy.StartYear%100, fy.EndYear%100)
	}
}

func (fy FinancialYear) String() string {
	return fy.Format(FormatShort)
}

// dateOnly strips the time of day, keeping the calendar date in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// today returns the current calendar date.
func today() time.Time {
	return dateOnly(time.Now())
}
