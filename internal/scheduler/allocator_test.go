package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func threePeriodGrid(t *testing.T) *Grid {
	t.Helper()
	grid, err := NewUniformGrid([]string{"Mon"}, []string{"P1", "P2", "P3"})
	require.NoError(t, err)
	return grid
}

func slot(period string) models.Slot {
	return models.Slot{Day: "Mon", Period: period}
}

func strictClass(id, teacher string, occurrences int, pins ...models.Slot) models.ClassRequest {
	return models.ClassRequest{ID: id, TeacherID: teacher, SubjectID: "S1", OccurrencesNeeded: occurrences, Mode: models.ClassModeStrict, PinnedSlots: pins}
}

func relaxedClass(id, teacher string, occurrences int) models.ClassRequest {
	return models.ClassRequest{ID: id, TeacherID: teacher, SubjectID: "S1", OccurrencesNeeded: occurrences, Mode: models.ClassModeRelaxed}
}

func TestAllocateStrictThenRelaxed(t *testing.T) {
	grid := threePeriodGrid(t)

	timetable := Allocate(grid, []models.ClassRequest{
		strictClass("C1", "T1", 1, slot("P1")),
		relaxedClass("C2", "T1", 2),
	})

	assert.Equal(t, []string{"C1"}, timetable.Occupants(slot("P1")))
	assert.Equal(t, []string{"C2"}, timetable.Occupants(slot("P2")))
	assert.Equal(t, []string{"C2"}, timetable.Occupants(slot("P3")))
}

func TestAllocateRelaxedDeclaredBeforeStrictStillAvoidsPins(t *testing.T) {
	grid := threePeriodGrid(t)

	timetable := Allocate(grid, []models.ClassRequest{
		relaxedClass("C2", "T2", 1),
		strictClass("C1", "T1", 1, slot("P1")),
	})

	assert.Equal(t, []string{"C1"}, timetable.Occupants(slot("P1")))
	assert.Equal(t, []string{"C2"}, timetable.Occupants(slot("P2")))
}

func TestAllocateStrictOverbooksPinnedSlot(t *testing.T) {
	grid := threePeriodGrid(t)

	timetable := Allocate(grid, []models.ClassRequest{
		strictClass("C1", "T1", 1, slot("P1")),
		strictClass("C2", "T2", 1, slot("P1")),
	})

	assert.Equal(t, []string{"C1", "C2"}, timetable.Occupants(slot("P1")))
	assert.Empty(t, timetable.Occupants(slot("P2")))
}

func TestAllocateRelaxedRunsOutOfSlots(t *testing.T) {
	grid, err := NewUniformGrid([]string{"Mon"}, []string{"P1", "P2"})
	require.NoError(t, err)
	requests := []models.ClassRequest{
		relaxedClass("C1", "T1", 1),
		relaxedClass("C2", "T2", 1),
		relaxedClass("C3", "T3", 1),
	}

	timetable := Allocate(grid, requests)

	assert.Equal(t, []string{"C1"}, timetable.Occupants(slot("P1")))
	assert.Equal(t, []string{"C2"}, timetable.Occupants(slot("P2")))
	assert.Equal(t, 0, timetable.PlacedCount("C3"))

	shortfalls := Shortfalls(timetable, requests)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, "C3", shortfalls[0].ClassID)
	assert.Equal(t, 1, shortfalls[0].Missing)
}

func TestAllocateStrictDoesNotFallBackToFreeSlots(t *testing.T) {
	grid := threePeriodGrid(t)
	requests := []models.ClassRequest{strictClass("C1", "T1", 3, slot("P2"))}

	timetable := Allocate(grid, requests)

	assert.Equal(t, []models.Slot{slot("P2")}, timetable.SlotsFor("C1"))
	shortfalls := Shortfalls(timetable, requests)
	require.Len(t, shortfalls, 1)
	assert.Equal(t, models.Shortfall{ClassID: "C1", Mode: models.ClassModeStrict, Needed: 3, Placed: 1, Missing: 2}, shortfalls[0])
}

func TestAllocateStrictSkipsInvalidAndRepeatedPins(t *testing.T) {
	grid := threePeriodGrid(t)

	timetable := Allocate(grid, []models.ClassRequest{
		strictClass("C1", "T1", 3, slot("P9"), slot("P1"), slot("P1"), slot("P3")),
	})

	assert.Equal(t, []models.Slot{slot("P1"), slot("P3")}, timetable.SlotsFor("C1"))
	for _, s := range timetable.Slots() {
		assert.True(t, grid.IsValid(s))
	}
}

func TestAllocateStrictStopsAtOccurrencesNeeded(t *testing.T) {
	grid := threePeriodGrid(t)

	timetable := Allocate(grid, []models.ClassRequest{
		strictClass("C1", "T1", 1, slot("P1"), slot("P2")),
	})

	assert.Equal(t, 1, timetable.PlacedCount("C1"))
	assert.Empty(t, timetable.Occupants(slot("P2")))
}

func TestAllocateIsDeterministic(t *testing.T) {
	grid, err := NewUniformGrid(models.DefaultDays, models.DefaultPeriodNames(6))
	require.NoError(t, err)
	requests := []models.ClassRequest{
		relaxedClass("R1", "T1", 4),
		strictClass("S1", "T2", 2, models.Slot{Day: "Tuesday", Period: "Period 3"}, models.Slot{Day: "Monday", Period: "Period 1"}),
		relaxedClass("R2", "T3", 5),
		strictClass("S2", "T1", 1, models.Slot{Day: "Tuesday", Period: "Period 3"}),
	}

	first := Allocate(grid, requests)
	second := Allocate(grid, requests)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Entries(), second.Entries())
}

func TestAllocateStrictFidelity(t *testing.T) {
	grid := threePeriodGrid(t)
	pins := []models.Slot{slot("P1"), slot("P2")}

	timetable := Allocate(grid, []models.ClassRequest{
		strictClass("A", "T1", 2, pins...),
		strictClass("B", "T2", 2, pins...),
	})

	for _, pin := range pins {
		assert.Contains(t, timetable.Occupants(pin), "A")
		assert.Contains(t, timetable.Occupants(pin), "B")
	}
}

func TestAllocateRelaxedNeverCollides(t *testing.T) {
	grid, err := NewUniformGrid([]string{"Mon", "Tue"}, []string{"P1", "P2", "P3"})
	require.NoError(t, err)
	requests := []models.ClassRequest{
		strictClass("S1", "T1", 1, models.Slot{Day: "Mon", Period: "P2"}),
		relaxedClass("R1", "T2", 2),
		relaxedClass("R2", "T3", 2),
		relaxedClass("R3", "T4", 5),
	}

	timetable := Allocate(grid, requests)

	for _, s := range timetable.Slots() {
		assert.LessOrEqual(t, len(timetable.Occupants(s)), 1, "slot %s", s)
	}
	assert.Equal(t, 1, timetable.PlacedCount("R3"))
}

func TestTimetableFromEntriesRejectsUnknownSlot(t *testing.T) {
	grid := threePeriodGrid(t)

	_, err := TimetableFromEntries(grid, []models.TimetableEntry{{Day: "Sun", Period: "P1", ClassIDs: []string{"C1"}}})
	require.Error(t, err)

	timetable, err := TimetableFromEntries(grid, []models.TimetableEntry{{Day: "Mon", Period: "P2", ClassIDs: []string{"C1", "C2"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"C1", "C2"}, timetable.Occupants(slot("P2")))
	assert.Equal(t, 1, timetable.OccupiedCount())
	assert.Len(t, timetable.Entries(), 3)
}

func TestTimetableOccupantsReturnsCopy(t *testing.T) {
	grid := threePeriodGrid(t)
	timetable := Allocate(grid, []models.ClassRequest{relaxedClass("C1", "T1", 1)})

	occupants := timetable.Occupants(slot("P1"))
	occupants[0] = "mutated"

	assert.Equal(t, []string{"C1"}, timetable.Occupants(slot("P1")))
}
