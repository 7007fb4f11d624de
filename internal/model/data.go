package model

import (
	"encoding/json"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a calendar day, stored as midnight UTC
type Day struct {
	time.Time
}

// NewDay builds a Day from its components
func NewDay(year int, month time.Month, day int) Day {
	return Day{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of t in t's own location
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// ParseDay parses a YYYY-MM-DD string
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, err
	}
	return Day{t}, nil
}

func (d Day) String() string {
	return d.Format(dayLayout)
}

// AddDays moves the day by n calendar days
func (d Day) AddDays(n int) Day {
	return Day{d.Time.AddDate(0, 0, n)}
}

// WeekStart returns the Monday of d's week
func (d Day) WeekStart() Day {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// MonthStart returns the first day of d's month
func (d Day) MonthStart() Day {
	return NewDay(d.Year(), d.Month(), 1)
}

// DaysInMonth returns the length of d's month
func (d Day) DaysInMonth() int {
	return d.MonthStart().AddDate(0, 1, -1).Day()
}

// Within reports whether from <= d <= to
func (d Day) Within(from, to Day) bool {
	return !d.Before(from.Time) && !d.After(to.Time)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NormalizedRecord is one calendar day of consumption in canonical units
type NormalizedRecord struct {
	Date   Day      `json:"date"`
	Liters float64  `json:"liters"`
	M3     float64  `json:"m3"`
	Euros  *float64 `json:"euros"`
	Raw    *Node    `json:"-"` // kept for traceability only
}
