package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// RosterKind names one of the importable roster tables.
type RosterKind string

const (
	RosterTeachers RosterKind = "teachers"
	RosterSubjects RosterKind = "subjects"
	RosterRooms    RosterKind = "rooms"
	RosterClasses  RosterKind = "classes"
)

// rosterHeaders lists template columns per kind. The first column is required.
var rosterHeaders = map[RosterKind][]string{
	RosterTeachers: {"UID", "Email", "Title", "FirstName", "MiddleName", "LastName", "PreferredName", "Department1", "Department2"},
	RosterSubjects: {"ID", "Subject", "PreferredRoom", "AlternativeRoom", "Building", "Level"},
	RosterRooms:    {"ID", "Building", "Capacity", "Specialty"},
	RosterClasses:  {"ID", "TeacherID", "SubjectID", "RoomID", "Occurrences", "Mode", "PinnedSlots"},
}

// ParseRosterKind validates a kind taken from a URL or CLI argument.
func ParseRosterKind(raw string) (RosterKind, error) {
	kind := RosterKind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := rosterHeaders[kind]; !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown roster kind %q", raw))
	}
	return kind, nil
}

// RosterTemplate renders the header-only CSV for kind.
func RosterTemplate(kind RosterKind) ([]byte, error) {
	headers, ok := rosterHeaders[kind]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown roster kind %q", kind))
	}
	return export.NewCSVExporter().Render(export.Dataset{Headers: headers})
}

// engineInputs is a validated grid and registry built from a project payload.
type engineInputs struct {
	grid     *scheduler.Grid
	registry *scheduler.Registry
}

// buildEngineInputs validates the payload structurally. Grid, registry and pin
// errors are returned unchanged so callers see the typed domain error.
func buildEngineInputs(payload models.ProjectPayload) (*engineInputs, error) {
	grid, err := scheduler.NewGrid(payload.Structure)
	if err != nil {
		return nil, err
	}
	registry, err := scheduler.BuildRegistry(payload.Teachers, payload.Subjects, payload.Rooms, payload.Classes)
	if err != nil {
		return nil, err
	}
	if err := scheduler.ValidatePins(grid, registry.Classes()); err != nil {
		return nil, err
	}
	return &engineInputs{grid: grid, registry: registry}, nil
}

func requireHeader(data export.Dataset, kind RosterKind) error {
	first := rosterHeaders[kind][0]
	if !data.HasHeader(first) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s csv is missing the %s column", kind, first))
	}
	return nil
}

func rowError(kind RosterKind, row int, message string) error {
	// row+2 accounts for the header line and 1-based numbering.
	return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s csv line %d: %s", kind, row+2, message))
}

func parseTeacherRows(data export.Dataset) ([]models.Teacher, error) {
	if err := requireHeader(data, RosterTeachers); err != nil {
		return nil, err
	}
	teachers := make([]models.Teacher, 0, len(data.Rows))
	for i := range data.Rows {
		id := data.Value(i, "UID")
		if id == "" {
			return nil, rowError(RosterTeachers, i, "UID is required")
		}
		teachers = append(teachers, models.Teacher{
			ID:            id,
			Email:         data.Value(i, "Email"),
			Title:         data.Value(i, "Title"),
			FirstName:     data.Value(i, "FirstName"),
			MiddleName:    data.Value(i, "MiddleName"),
			LastName:      data.Value(i, "LastName"),
			PreferredName: data.Value(i, "PreferredName"),
			Department1:   data.Value(i, "Department1"),
			Department2:   data.Value(i, "Department2"),
		})
	}
	return teachers, nil
}

func parseSubjectRows(data export.Dataset) ([]models.Subject, error) {
	if !data.HasHeader("ID") && !data.HasHeader("Subject") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subjects csv needs an ID or Subject column")
	}
	subjects := make([]models.Subject, 0, len(data.Rows))
	for i := range data.Rows {
		name := data.Value(i, "Subject")
		id := data.Value(i, "ID")
		if id == "" {
			id = name
		}
		if id == "" {
			return nil, rowError(RosterSubjects, i, "ID or Subject is required")
		}
		subjects = append(subjects, models.Subject{
			ID:                id,
			Name:              name,
			PreferredRoomID:   data.Value(i, "PreferredRoom"),
			AlternativeRoomID: data.Value(i, "AlternativeRoom"),
			Building:          data.Value(i, "Building"),
			Level:             data.Value(i, "Level"),
		})
	}
	return subjects, nil
}

func parseRoomRows(data export.Dataset) ([]models.Room, error) {
	if err := requireHeader(data, RosterRooms); err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0, len(data.Rows))
	for i := range data.Rows {
		id := data.Value(i, "ID")
		if id == "" {
			return nil, rowError(RosterRooms, i, "ID is required")
		}
		capacity := 0
		if raw := data.Value(i, "Capacity"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, rowError(RosterRooms, i, fmt.Sprintf("capacity %q is not a non-negative integer", raw))
			}
			capacity = n
		}
		rooms = append(rooms, models.Room{
			ID:        id,
			Building:  data.Value(i, "Building"),
			Capacity:  capacity,
			Specialty: data.Value(i, "Specialty"),
		})
	}
	return rooms, nil
}

func parseClassRows(data export.Dataset) ([]models.ClassRequest, error) {
	if err := requireHeader(data, RosterClasses); err != nil {
		return nil, err
	}
	classes := make([]models.ClassRequest, 0, len(data.Rows))
	for i := range data.Rows {
		id := data.Value(i, "ID")
		if id == "" {
			return nil, rowError(RosterClasses, i, "ID is required")
		}
		occurrences := 1
		if raw := data.Value(i, "Occurrences"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return nil, rowError(RosterClasses, i, fmt.Sprintf("occurrences %q must be a positive integer", raw))
			}
			occurrences = n
		}
		mode := models.ClassModeRelaxed
		if raw := data.Value(i, "Mode"); raw != "" {
			mode = models.ClassMode(strings.ToUpper(raw))
			if !mode.Valid() {
				return nil, rowError(RosterClasses, i, fmt.Sprintf("mode %q must be STRICT or RELAXED", raw))
			}
		}
		pins, err := parsePinnedSlots(data.Value(i, "PinnedSlots"))
		if err != nil {
			return nil, rowError(RosterClasses, i, err.Error())
		}
		classes = append(classes, models.ClassRequest{
			ID:                id,
			TeacherID:         data.Value(i, "TeacherID"),
			SubjectID:         data.Value(i, "SubjectID"),
			RoomID:            data.Value(i, "RoomID"),
			OccurrencesNeeded: occurrences,
			Mode:              mode,
			PinnedSlots:       pins,
		})
	}
	return classes, nil
}

// parsePinnedSlots reads "Day|Period;Day|Period".
func parsePinnedSlots(raw string) ([]models.Slot, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var slots []models.Slot
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, period, ok := strings.Cut(part, "|")
		day, period = strings.TrimSpace(day), strings.TrimSpace(period)
		if !ok || day == "" || period == "" {
			return nil, fmt.Errorf("pinned slot %q must look like Day|Period", part)
		}
		slots = append(slots, models.Slot{Day: day, Period: period})
	}
	return slots, nil
}
