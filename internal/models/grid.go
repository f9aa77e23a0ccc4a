package models

import "fmt"

// DefaultDays lists the school week used when a structure omits days.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DefaultPeriodCount is the number of periods generated for a new day structure.
const DefaultPeriodCount = 6

// Slot identifies one (day, period) cell of the weekly grid.
type Slot struct {
	Day    string `json:"day" validate:"required"`
	Period string `json:"period" validate:"required"`
}

// String renders the slot as "Day/Period".
func (s Slot) String() string {
	return fmt.Sprintf("%s/%s", s.Day, s.Period)
}

// DayPeriods declares the ordered period labels of a single day.
type DayPeriods struct {
	Day     string   `json:"day"`
	Periods []string `json:"periods"`
}

// DayStructure is the serialisable declaration of a grid. Uniform structures apply
// Periods to every entry of Days; otherwise PerDay is used in its declared order.
type DayStructure struct {
	Uniform bool         `json:"uniform"`
	Days    []string     `json:"days,omitempty"`
	Periods []string     `json:"periods,omitempty"`
	PerDay  []DayPeriods `json:"per_day,omitempty"`
}

// DefaultPeriodNames returns "Period 1".."Period n".
func DefaultPeriodNames(n int) []string {
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		names = append(names, fmt.Sprintf("Period %d", i))
	}
	return names
}

// DefaultDayStructure returns a uniform Monday-Friday week of six periods.
func DefaultDayStructure() DayStructure {
	days := make([]string, len(DefaultDays))
	copy(days, DefaultDays)
	return DayStructure{
		Uniform: true,
		Days:    days,
		Periods: DefaultPeriodNames(DefaultPeriodCount),
	}
}
