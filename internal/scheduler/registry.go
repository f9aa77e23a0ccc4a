package scheduler

import (
	"fmt"
	"strings"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// Registry holds validated roster entities keyed by id. Inserts are append-only.
type Registry struct {
	teachers map[string]models.Teacher
	subjects map[string]models.Subject
	rooms    map[string]models.Room
	classes  map[string]models.ClassRequest

	teacherOrder []string
	subjectOrder []string
	roomOrder    []string
	classOrder   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		teachers: make(map[string]models.Teacher),
		subjects: make(map[string]models.Subject),
		rooms:    make(map[string]models.Room),
		classes:  make(map[string]models.ClassRequest),
	}
}

// BuildRegistry inserts rooms, teachers, subjects then classes, failing on the first error.
func BuildRegistry(teachers []models.Teacher, subjects []models.Subject, rooms []models.Room, classes []models.ClassRequest) (*Registry, error) {
	reg := NewRegistry()
	for _, room := range rooms {
		if err := reg.AddRoom(room); err != nil {
			return nil, err
		}
	}
	for _, teacher := range teachers {
		if err := reg.AddTeacher(teacher); err != nil {
			return nil, err
		}
	}
	for _, subject := range subjects {
		if err := reg.AddSubject(subject); err != nil {
			return nil, err
		}
	}
	for _, class := range classes {
		if err := reg.AddClass(class); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// AddTeacher registers a teacher.
func (r *Registry) AddTeacher(teacher models.Teacher) error {
	if err := requireID("teacher", teacher.ID); err != nil {
		return err
	}
	if _, exists := r.teachers[teacher.ID]; exists {
		return duplicate("teacher", teacher.ID)
	}
	r.teachers[teacher.ID] = teacher
	r.teacherOrder = append(r.teacherOrder, teacher.ID)
	return nil
}

// AddRoom registers a room.
func (r *Registry) AddRoom(room models.Room) error {
	if err := requireID("room", room.ID); err != nil {
		return err
	}
	if _, exists := r.rooms[room.ID]; exists {
		return duplicate("room", room.ID)
	}
	r.rooms[room.ID] = room
	r.roomOrder = append(r.roomOrder, room.ID)
	return nil
}

// AddSubject registers a subject; preferred and alternative rooms must already exist.
func (r *Registry) AddSubject(subject models.Subject) error {
	if err := requireID("subject", subject.ID); err != nil {
		return err
	}
	if _, exists := r.subjects[subject.ID]; exists {
		return duplicate("subject", subject.ID)
	}
	for _, roomID := range []string{subject.PreferredRoomID, subject.AlternativeRoomID} {
		if roomID == "" {
			continue
		}
		if _, ok := r.rooms[roomID]; !ok {
			return unknown(fmt.Sprintf("subject %s references unknown room %s", subject.ID, roomID))
		}
	}
	r.subjects[subject.ID] = subject
	r.subjectOrder = append(r.subjectOrder, subject.ID)
	return nil
}

// AddClass registers a class request after checking its references.
func (r *Registry) AddClass(class models.ClassRequest) error {
	if err := requireID("class", class.ID); err != nil {
		return err
	}
	if _, exists := r.classes[class.ID]; exists {
		return duplicate("class", class.ID)
	}
	if class.OccurrencesNeeded < 1 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %s occurrences_needed must be >= 1", class.ID))
	}
	if !class.Mode.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %s has unsupported mode %q", class.ID, class.Mode))
	}
	if _, ok := r.teachers[class.TeacherID]; !ok {
		return unknown(fmt.Sprintf("class %s references unknown teacher %q", class.ID, class.TeacherID))
	}
	if _, ok := r.subjects[class.SubjectID]; !ok {
		return unknown(fmt.Sprintf("class %s references unknown subject %q", class.ID, class.SubjectID))
	}
	if class.HasRoom() {
		if _, ok := r.rooms[class.RoomID]; !ok {
			return unknown(fmt.Sprintf("class %s references unknown room %q", class.ID, class.RoomID))
		}
	}
	pinned := make([]models.Slot, len(class.PinnedSlots))
	copy(pinned, class.PinnedSlots)
	class.PinnedSlots = pinned
	r.classes[class.ID] = class
	r.classOrder = append(r.classOrder, class.ID)
	return nil
}

// Teacher looks up a teacher by id.
func (r *Registry) Teacher(id string) (models.Teacher, bool) {
	t, ok := r.teachers[id]
	return t, ok
}

// Subject looks up a subject by id.
func (r *Registry) Subject(id string) (models.Subject, bool) {
	s, ok := r.subjects[id]
	return s, ok
}

// Room looks up a room by id.
func (r *Registry) Room(id string) (models.Room, bool) {
	room, ok := r.rooms[id]
	return room, ok
}

// Class looks up a class request by id.
func (r *Registry) Class(id string) (models.ClassRequest, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// Classes returns class requests in insertion order.
func (r *Registry) Classes() []models.ClassRequest {
	out := make([]models.ClassRequest, 0, len(r.classOrder))
	for _, id := range r.classOrder {
		out = append(out, r.classes[id])
	}
	return out
}

// Teachers returns teachers in insertion order.
func (r *Registry) Teachers() []models.Teacher {
	out := make([]models.Teacher, 0, len(r.teacherOrder))
	for _, id := range r.teacherOrder {
		out = append(out, r.teachers[id])
	}
	return out
}

// Rooms returns rooms in insertion order.
func (r *Registry) Rooms() []models.Room {
	out := make([]models.Room, 0, len(r.roomOrder))
	for _, id := range r.roomOrder {
		out = append(out, r.rooms[id])
	}
	return out
}

// Subjects returns subjects in insertion order.
func (r *Registry) Subjects() []models.Subject {
	out := make([]models.Subject, 0, len(r.subjectOrder))
	for _, id := range r.subjectOrder {
		out = append(out, r.subjects[id])
	}
	return out
}

// ValidatePins checks that every pinned slot of a strict class belongs to the grid.
func ValidatePins(grid *Grid, classes []models.ClassRequest) error {
	for _, class := range classes {
		if class.Mode != models.ClassModeStrict {
			continue
		}
		for _, slot := range class.PinnedSlots {
			if !grid.IsValid(slot) {
				return appErrors.Clone(appErrors.ErrInvalidSlot, fmt.Sprintf("class %s pins %s which is not part of the grid", class.ID, slot))
			}
		}
	}
	return nil
}

func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return appErrors.Clone(appErrors.ErrValidation, kind+" id is required")
	}
	return nil
}

func duplicate(kind, id string) error {
	return appErrors.Clone(appErrors.ErrDuplicateIdentifier, fmt.Sprintf("%s %s already exists", kind, id))
}

func unknown(message string) error {
	return appErrors.Clone(appErrors.ErrUnknownReference, message)
}
