package dto

import (
	"fmt"
	"strings"
	"time"
)

const civilDateLayout = "2006-01-02"

// CivilDate is a time.Time that marshals as a plain "YYYY-MM-DD" date, the
// wire format for closing and due dates.
type CivilDate time.Time

// Time returns the underlying time at UTC midnight.
func (d CivilDate) Time() time.Time {
	t := time.Time(d)
	y, m, day := t.UTC().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(d).UTC().Format(civilDateLayout) + `"`), nil
}

// UnmarshalJSON parses "YYYY-MM-DD".
func (d *CivilDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = CivilDate(time.Time{})
		return nil
	}
	t, err := time.ParseInLocation(civilDateLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	*d = CivilDate(t)
	return nil
}

// IsZero reports whether the date is unset.
func (d CivilDate) IsZero() bool {
	return time.Time(d).IsZero()
}
