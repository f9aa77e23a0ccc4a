package scheduler

import "github.com/noah-isme/sma-timetable-api/internal/models"

// occupancy tracks slots claimed during a single Allocate call.
type occupancy struct {
	used map[models.Slot]struct{}
}

func newOccupancy(size int) *occupancy {
	return &occupancy{used: make(map[models.Slot]struct{}, size)}
}

func (o *occupancy) mark(slot models.Slot) {
	o.used[slot] = struct{}{}
}

func (o *occupancy) taken(slot models.Slot) bool {
	_, ok := o.used[slot]
	return ok
}

// Allocate places every class request onto the grid in two passes. Strict
// requests are placed on their pinned slots first, even when a slot is already
// held, and never fall back to free slots. Relaxed requests then take the first
// free slots in canonical grid order. Unmet occurrences are left unplaced; use
// Shortfalls to report them.
func Allocate(grid *Grid, requests []models.ClassRequest) *Timetable {
	timetable := newTimetable(grid)
	used := newOccupancy(grid.Len())

	for _, req := range requests {
		if req.Mode != models.ClassModeStrict {
			continue
		}
		placeStrict(grid, timetable, used, req)
	}
	for _, req := range requests {
		if req.Mode != models.ClassModeRelaxed {
			continue
		}
		placeRelaxed(grid, timetable, used, req)
	}
	return timetable
}

func placeStrict(grid *Grid, timetable *Timetable, used *occupancy, req models.ClassRequest) {
	remaining := req.OccurrencesNeeded
	for _, slot := range req.PinnedSlots {
		if remaining <= 0 {
			return
		}
		if !grid.IsValid(slot) || timetable.holds(slot, req.ID) {
			continue
		}
		timetable.place(slot, req.ID)
		used.mark(slot)
		remaining--
	}
}

func placeRelaxed(grid *Grid, timetable *Timetable, used *occupancy, req models.ClassRequest) {
	remaining := req.OccurrencesNeeded
	for _, slot := range grid.slots {
		if remaining <= 0 {
			return
		}
		if used.taken(slot) {
			continue
		}
		timetable.place(slot, req.ID)
		used.mark(slot)
		remaining--
	}
}
