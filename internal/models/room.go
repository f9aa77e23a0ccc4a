package models

// Room is a teaching space. Capacity is informational only.
type Room struct {
	ID        string `json:"id" validate:"required"`
	Building  string `json:"building,omitempty"`
	Capacity  int    `json:"capacity,omitempty" validate:"min=0"`
	Specialty string `json:"specialty,omitempty"`
}
