package models

// Subject represents an academic subject taught in the grid.
type Subject struct {
	ID                string `json:"id" validate:"required"`
	Name              string `json:"name,omitempty"`
	PreferredRoomID   string `json:"preferred_room_id,omitempty"`
	AlternativeRoomID string `json:"alternative_room_id,omitempty"`
	Building          string `json:"building,omitempty"`
	Level             string `json:"level,omitempty"`
}
