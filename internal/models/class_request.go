package models

// ClassMode selects how a class request is placed.
type ClassMode string

const (
	// ClassModeRelaxed classes are placed into the earliest free slots.
	ClassModeRelaxed ClassMode = "RELAXED"
	// ClassModeStrict classes are placed exactly into their pinned slots.
	ClassModeStrict ClassMode = "STRICT"
)

// Valid reports whether the mode is one of the known values.
func (m ClassMode) Valid() bool {
	return m == ClassModeRelaxed || m == ClassModeStrict
}

// ClassRequest asks the allocator to place a class OccurrencesNeeded times per cycle.
type ClassRequest struct {
	ID                string    `json:"id" validate:"required"`
	Name              string    `json:"name,omitempty"`
	TeacherID         string    `json:"teacher_id" validate:"required"`
	SubjectID         string    `json:"subject_id" validate:"required"`
	RoomID            string    `json:"room_id,omitempty"`
	OccurrencesNeeded int       `json:"occurrences_needed" validate:"required,min=1"`
	Mode              ClassMode `json:"mode" validate:"required,oneof=RELAXED STRICT"`
	PinnedSlots       []Slot    `json:"pinned_slots,omitempty" validate:"omitempty,dive"`
}

// HasRoom reports whether the class names a room.
func (c ClassRequest) HasRoom() bool {
	return c.RoomID != ""
}
