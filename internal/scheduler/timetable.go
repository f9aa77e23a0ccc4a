package scheduler

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Timetable maps each grid slot to the ordered class ids occupying it.
// A Timetable is not modified after Allocate or TimetableFromEntries returns it.
type Timetable struct {
	slots []models.Slot
	cells map[models.Slot][]string
}

func newTimetable(grid *Grid) *Timetable {
	return &Timetable{
		slots: grid.Slots(),
		cells: make(map[models.Slot][]string, grid.Len()),
	}
}

func (t *Timetable) place(slot models.Slot, classID string) {
	t.cells[slot] = append(t.cells[slot], classID)
}

func (t *Timetable) holds(slot models.Slot, classID string) bool {
	for _, id := range t.cells[slot] {
		if id == classID {
			return true
		}
	}
	return false
}

// TimetableFromEntries rebuilds a timetable from its serialised form, for example
// one supplied by a caller for conflict detection.
func TimetableFromEntries(grid *Grid, entries []models.TimetableEntry) (*Timetable, error) {
	t := newTimetable(grid)
	for _, entry := range entries {
		slot := entry.Slot()
		if !grid.IsValid(slot) {
			return nil, appErrors.Clone(appErrors.ErrInvalidSlot, fmt.Sprintf("slot %s is not part of the grid", slot))
		}
		for _, id := range entry.ClassIDs {
			t.place(slot, id)
		}
	}
	return t, nil
}

// Slots returns the grid slots in canonical order.
func (t *Timetable) Slots() []models.Slot {
	out := make([]models.Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

// Occupants returns a copy of the class ids placed in the slot.
func (t *Timetable) Occupants(slot models.Slot) []string {
	ids := t.cells[slot]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// PlacedCount returns how many slots hold the class.
func (t *Timetable) PlacedCount(classID string) int {
	count := 0
	for _, slot := range t.slots {
		if t.holds(slot, classID) {
			count++
		}
	}
	return count
}

// SlotsFor returns the slots holding the class, in canonical order.
func (t *Timetable) SlotsFor(classID string) []models.Slot {
	var out []models.Slot
	for _, slot := range t.slots {
		if t.holds(slot, classID) {
			out = append(out, slot)
		}
	}
	return out
}

// OccupiedCount returns the number of slots with at least one occupant.
func (t *Timetable) OccupiedCount() int {
	count := 0
	for _, slot := range t.slots {
		if len(t.cells[slot]) > 0 {
			count++
		}
	}
	return count
}

// Entries returns one entry per grid slot in canonical order, empty slots included.
func (t *Timetable) Entries() []models.TimetableEntry {
	entries := make([]models.TimetableEntry, 0, len(t.slots))
	for _, slot := range t.slots {
		entries = append(entries, models.TimetableEntry{
			Day:      slot.Day,
			Period:   slot.Period,
			ClassIDs: t.Occupants(slot),
		})
	}
	return entries
}

// Equal reports whether both timetables cover the same slots with identical occupants.
func (t *Timetable) Equal(other *Timetable) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.slots) != len(other.slots) {
		return false
	}
	for i, slot := range t.slots {
		if other.slots[i] != slot {
			return false
		}
		a, b := t.cells[slot], other.cells[slot]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// Shortfalls lists, in request order, every class placed fewer times than it needs.
func Shortfalls(t *Timetable, requests []models.ClassRequest) []models.Shortfall {
	out := make([]models.Shortfall, 0)
	for _, req := range requests {
		placed := t.PlacedCount(req.ID)
		if placed >= req.OccurrencesNeeded {
			continue
		}
		out = append(out, models.Shortfall{
			ClassID: req.ID,
			Mode:    req.Mode,
			Needed:  req.OccurrencesNeeded,
			Placed:  placed,
			Missing: req.OccurrencesNeeded - placed,
		})
	}
	return out
}
