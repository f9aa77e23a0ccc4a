package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TimetableEntry is the serialisable form of one grid cell and its occupants.
type TimetableEntry struct {
	Day      string   `json:"day" validate:"required"`
	Period   string   `json:"period" validate:"required"`
	ClassIDs []string `json:"class_ids"`
}

// Slot returns the cell the entry describes.
func (e TimetableEntry) Slot() Slot {
	return Slot{Day: e.Day, Period: e.Period}
}

// ConflictKind enumerates detected resource violations.
type ConflictKind string

const (
	ConflictSlotOverbooked      ConflictKind = "SLOT_OVERBOOKED"
	ConflictTeacherDoubleBooked ConflictKind = "TEACHER_DOUBLE_BOOKED"
	ConflictRoomDoubleBooked    ConflictKind = "ROOM_DOUBLE_BOOKED"
)

// Conflict describes a single violation found in one slot.
type Conflict struct {
	Slot      Slot         `json:"slot"`
	Kind      ConflictKind `json:"kind"`
	ClassIDs  []string     `json:"class_ids"`
	TeacherID string       `json:"teacher_id,omitempty"`
	RoomID    string       `json:"room_id,omitempty"`
	Detail    string       `json:"detail"`
}

// ConflictReport is the ordered result of a detection pass.
type ConflictReport struct {
	Conflicts []Conflict `json:"conflicts"`
}

// HasConflicts reports whether any violation was found.
func (r ConflictReport) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// CountByKind tallies conflicts per kind.
func (r ConflictReport) CountByKind() map[ConflictKind]int {
	counts := make(map[ConflictKind]int, 3)
	for _, c := range r.Conflicts {
		counts[c.Kind]++
	}
	return counts
}

// Shortfall records a class that was placed fewer times than it needed.
type Shortfall struct {
	ClassID string    `json:"class_id"`
	Mode    ClassMode `json:"mode"`
	Needed  int       `json:"needed"`
	Placed  int       `json:"placed"`
	Missing int       `json:"missing"`
}

// TimetableEntries persists entries as a JSONB column.
type TimetableEntries []TimetableEntry

// Value marshals entries to JSON for persistence.
func (t TimetableEntries) Value() (driver.Value, error) {
	if t == nil {
		t = TimetableEntries{}
	}
	return marshalJSONColumn(t, "timetable entries")
}

// Scan unmarshals a JSON column into entries.
func (t *TimetableEntries) Scan(value interface{}) error {
	return scanJSONColumn(value, t, "timetable entries")
}

// ConflictList persists conflicts as a JSONB column.
type ConflictList []Conflict

// Value marshals conflicts to JSON for persistence.
func (c ConflictList) Value() (driver.Value, error) {
	if c == nil {
		c = ConflictList{}
	}
	return marshalJSONColumn(c, "conflicts")
}

// Scan unmarshals a JSON column into conflicts.
func (c *ConflictList) Scan(value interface{}) error {
	return scanJSONColumn(value, c, "conflicts")
}

func marshalJSONColumn(v interface{}, name string) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return data, nil
}

func scanJSONColumn(value interface{}, dest interface{}, name string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
