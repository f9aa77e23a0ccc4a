package scheduler

import (
	"fmt"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type occupantGroup struct {
	key      string
	classIDs []string
}

// DetectConflicts scans the timetable slot by slot in canonical grid order.
// Within a slot conflicts are emitted as overbooking, then teacher, then room.
// Occupants unknown to the registry count towards overbooking only.
func DetectConflicts(grid *Grid, registry *Registry, timetable *Timetable) models.ConflictReport {
	report := models.ConflictReport{Conflicts: make([]models.Conflict, 0)}
	for _, slot := range grid.slots {
		occupants := timetable.Occupants(slot)
		if len(occupants) > 1 {
			report.Conflicts = append(report.Conflicts, models.Conflict{
				Slot:     slot,
				Kind:     models.ConflictSlotOverbooked,
				ClassIDs: occupants,
				Detail:   fmt.Sprintf("%s holds %d classes: %s", slot, len(occupants), strings.Join(occupants, ", ")),
			})
		}

		byTeacher := groupOccupants(occupants, func(id string) string {
			class, ok := registry.Class(id)
			if !ok {
				return ""
			}
			return class.TeacherID
		})
		for _, group := range byTeacher {
			report.Conflicts = append(report.Conflicts, models.Conflict{
				Slot:      slot,
				Kind:      models.ConflictTeacherDoubleBooked,
				ClassIDs:  group.classIDs,
				TeacherID: group.key,
				Detail:    fmt.Sprintf("teacher %s is booked for %s at %s", group.key, strings.Join(group.classIDs, ", "), slot),
			})
		}

		byRoom := groupOccupants(occupants, func(id string) string {
			class, ok := registry.Class(id)
			if !ok {
				return ""
			}
			return class.RoomID
		})
		for _, group := range byRoom {
			report.Conflicts = append(report.Conflicts, models.Conflict{
				Slot:     slot,
				Kind:     models.ConflictRoomDoubleBooked,
				ClassIDs: group.classIDs,
				RoomID:   group.key,
				Detail:   fmt.Sprintf("room %s is booked for %s at %s", group.key, strings.Join(group.classIDs, ", "), slot),
			})
		}
	}
	return report
}

// groupOccupants returns groups holding more than one distinct class id,
// ordered by first appearance. A blank key excludes the occupant.
func groupOccupants(occupants []string, keyOf func(string) string) []occupantGroup {
	var groups []occupantGroup
	positions := make(map[string]int)
	for _, id := range occupants {
		key := keyOf(id)
		if key == "" {
			continue
		}
		pos, ok := positions[key]
		if !ok {
			positions[key] = len(groups)
			groups = append(groups, occupantGroup{key: key, classIDs: []string{id}})
			continue
		}
		if !containsString(groups[pos].classIDs, id) {
			groups[pos].classIDs = append(groups[pos].classIDs, id)
		}
	}
	out := make([]occupantGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.classIDs) > 1 {
			out = append(out, g)
		}
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
