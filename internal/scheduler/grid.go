// Package scheduler holds the slot allocation and conflict detection engine.
// Everything in this package is pure: no I/O, no package-level mutable state.
package scheduler

import (
	"fmt"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Grid is the validated day/period structure of a cycle.
type Grid struct {
	days    []string
	periods map[string][]string
	slots   []models.Slot
	index   map[models.Slot]int
}

// NewGrid builds a grid from its serialisable declaration.
func NewGrid(structure models.DayStructure) (*Grid, error) {
	if structure.Uniform {
		return NewUniformGrid(structure.Days, structure.Periods)
	}
	return NewPerDayGrid(structure.PerDay)
}

// NewUniformGrid applies the same period sequence to every day.
func NewUniformGrid(days, periods []string) (*Grid, error) {
	perDay := make([]models.DayPeriods, 0, len(days))
	for _, day := range days {
		perDay = append(perDay, models.DayPeriods{Day: day, Periods: periods})
	}
	return NewPerDayGrid(perDay)
}

// NewPerDayGrid builds a grid where every day declares its own periods.
func NewPerDayGrid(days []models.DayPeriods) (*Grid, error) {
	if len(days) == 0 {
		return nil, invalidGrid("grid requires at least one day")
	}
	g := &Grid{
		days:    make([]string, 0, len(days)),
		periods: make(map[string][]string, len(days)),
		index:   make(map[models.Slot]int),
	}
	for _, dp := range days {
		if strings.TrimSpace(dp.Day) == "" {
			return nil, invalidGrid("day label must not be blank")
		}
		if _, dup := g.periods[dp.Day]; dup {
			return nil, invalidGrid(fmt.Sprintf("duplicate day %q", dp.Day))
		}
		if len(dp.Periods) == 0 {
			return nil, invalidGrid(fmt.Sprintf("day %q has no periods", dp.Day))
		}
		seen := make(map[string]struct{}, len(dp.Periods))
		periods := make([]string, 0, len(dp.Periods))
		for _, period := range dp.Periods {
			if strings.TrimSpace(period) == "" {
				return nil, invalidGrid(fmt.Sprintf("day %q has a blank period label", dp.Day))
			}
			if _, dup := seen[period]; dup {
				return nil, invalidGrid(fmt.Sprintf("duplicate period %q on %q", period, dp.Day))
			}
			seen[period] = struct{}{}
			periods = append(periods, period)

			slot := models.Slot{Day: dp.Day, Period: period}
			g.index[slot] = len(g.slots)
			g.slots = append(g.slots, slot)
		}
		g.days = append(g.days, dp.Day)
		g.periods[dp.Day] = periods
	}
	return g, nil
}

// Slots returns every slot, days in declared order then periods in declared order.
func (g *Grid) Slots() []models.Slot {
	out := make([]models.Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

// Len is the total number of slots.
func (g *Grid) Len() int {
	return len(g.slots)
}

// IsValid reports whether the slot belongs to the grid.
func (g *Grid) IsValid(slot models.Slot) bool {
	_, ok := g.index[slot]
	return ok
}

// Index returns the canonical position of a slot.
func (g *Grid) Index(slot models.Slot) (int, bool) {
	idx, ok := g.index[slot]
	return idx, ok
}

// DaysInOrder returns the declared day labels.
func (g *Grid) DaysInOrder() []string {
	out := make([]string, len(g.days))
	copy(out, g.days)
	return out
}

// PeriodsFor returns the period labels of a day, or nil for an unknown day.
func (g *Grid) PeriodsFor(day string) []string {
	periods, ok := g.periods[day]
	if !ok {
		return nil
	}
	out := make([]string, len(periods))
	copy(out, periods)
	return out
}

// Structure returns the per-day declaration the grid was built from.
func (g *Grid) Structure() models.DayStructure {
	perDay := make([]models.DayPeriods, 0, len(g.days))
	for _, day := range g.days {
		perDay = append(perDay, models.DayPeriods{Day: day, Periods: g.PeriodsFor(day)})
	}
	return models.DayStructure{PerDay: perDay}
}

func invalidGrid(message string) error {
	return appErrors.Clone(appErrors.ErrInvalidGridConfiguration, message)
}
