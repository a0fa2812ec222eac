// Package billing holds the pure date arithmetic behind the statement cycle:
// closing dates, due dates and weekend adjustment. All dates are civil dates
// represented as UTC midnight, which is also how statements persist them.
package billing

import (
	"time"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// Date builds a civil date at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates an instant to its civil date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return Date(y, m, d)
}

// LastDayOfMonth returns the number of days in the given month.
func LastDayOfMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths shifts a year/month pair without the day-overflow behavior of
// time.Time.AddDate (Jan 31 + 1 month must not become Mar 2/3).
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	t := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), t.Month()
}

// clampDay returns day limited to the month's length. Day 31 is treated as
// "month end" by callers before reaching here.
func clampDay(year int, month time.Month, day int) time.Time {
	last := LastDayOfMonth(year, month)
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date(year, month, day)
}

// PreviousClosingDate returns the prior period's closing date: one month before
// closingDate, with the day clamped to that month's last day when closingDay
// exceeds it. A nil or out-of-range closingDay falls back to exactly one month
// earlier.
func PreviousClosingDate(closingDate time.Time, closingDay *int) time.Time {
	y, m, _ := closingDate.UTC().Date()
	py, pm := addMonths(y, m, -1)
	if closingDay == nil || *closingDay < 1 || *closingDay > 31 {
		return clampDay(py, pm, closingDate.UTC().Day())
	}
	return clampDay(py, pm, *closingDay)
}

// NextClosingDate resolves the closing date of the billing period containing
// the given civil date: the earliest closing date on or after it. A date just
// past a period's closing day rolls into the next month's closing.
func NextClosingDate(date time.Time, closingDay *int) time.Time {
	d := DateOf(date)
	y, m, _ := d.Date()

	day := 31 // default to month-end when no closing day is configured
	if closingDay != nil && *closingDay >= 1 && *closingDay <= 31 {
		day = *closingDay
	}

	candidate := clampDay(y, m, day)
	if !candidate.Before(d) {
		return candidate
	}
	ny, nm := addMonths(y, m, 1)
	return clampDay(ny, nm, day)
}

// ComputeDueDate derives the payment due date from a closing date. monthOffset
// is clamped to [0,2]. The target day is dueDay clamped to 28, except a dueDay
// of 31 maps to the base month's last day; a nil dueDay keeps the closing
// date's day-of-month. The result is then weekend-adjusted per policy.
func ComputeDueDate(closingDate time.Time, monthOffset int, dueDay *int, policy domain.HolidayPolicy) time.Time {
	offset := monthOffset
	if offset < 0 {
		offset = 0
	}
	if offset > 2 {
		offset = 2
	}

	y, m, d := closingDate.UTC().Date()
	by, bm := addMonths(y, m, offset)

	targetDay := d
	if dueDay != nil {
		if *dueDay == 31 {
			targetDay = LastDayOfMonth(by, bm)
		} else {
			targetDay = *dueDay
			if targetDay > 28 {
				targetDay = 28
			}
		}
	}

	return AdjustHoliday(clampDay(by, bm, targetDay), policy)
}

// AdjustHoliday shifts a date off a weekend. ADVANCE moves Saturday/Sunday back
// to the preceding Friday, POSTPONE moves them forward to the following Monday.
// NONE or an unrecognized policy leaves the date untouched.
func AdjustHoliday(date time.Time, policy domain.HolidayPolicy) time.Time {
	dow := date.Weekday()
	if dow != time.Saturday && dow != time.Sunday {
		return date
	}
	switch policy {
	case domain.HolidayAdvance:
		if dow == time.Saturday {
			return date.AddDate(0, 0, -1)
		}
		return date.AddDate(0, 0, -2)
	case domain.HolidayPostpone:
		if dow == time.Saturday {
			return date.AddDate(0, 0, 2)
		}
		return date.AddDate(0, 0, 1)
	default:
		return date
	}
}

// PeriodBounds returns the inclusive civil-date bounds of the period ending at
// closingDate: the day after the previous closing through the closing date.
func PeriodBounds(closingDate time.Time, closingDay *int) (time.Time, time.Time) {
	prev := PreviousClosingDate(closingDate, closingDay)
	return prev.AddDate(0, 0, 1), DateOf(closingDate)
}

// PeriodInstants converts inclusive civil-date bounds to the half-open instant
// range [periodStart 00:00, periodEnd+1d 00:00) used for summing transactions.
func PeriodInstants(periodStart, periodEnd time.Time) (time.Time, time.Time) {
	return DateOf(periodStart), DateOf(periodEnd).AddDate(0, 0, 1)
}
