package dto

import "github.com/noah-isme/sma-timetable-api/internal/models"

// DayStructureRequest declares the weekly grid. Uniform structures repeat
// Periods (or PeriodCount generated names) on every day.
type DayStructureRequest struct {
	Uniform     bool                `json:"uniform"`
	Days        []string            `json:"days" validate:"omitempty,max=7,dive,required"`
	Periods     []string            `json:"periods" validate:"omitempty,max=12,dive,required"`
	PeriodCount int                 `json:"periodCount" validate:"omitempty,min=1,max=12"`
	PerDay      []DayPeriodsRequest `json:"perDay" validate:"omitempty,max=7,dive"`
}

// DayPeriodsRequest declares the periods of a single day.
type DayPeriodsRequest struct {
	Day         string   `json:"day" validate:"required"`
	Periods     []string `json:"periods" validate:"omitempty,max=12,dive,required"`
	PeriodCount int      `json:"periodCount" validate:"omitempty,min=1,max=12"`
}

// ToModel expands generated period names and default days.
func (r DayStructureRequest) ToModel() models.DayStructure {
	if r.Uniform {
		days := r.Days
		if len(days) == 0 {
			days = append([]string(nil), models.DefaultDays...)
		}
		periods := r.Periods
		if len(periods) == 0 {
			count := r.PeriodCount
			if count == 0 {
				count = models.DefaultPeriodCount
			}
			periods = models.DefaultPeriodNames(count)
		}
		return models.DayStructure{Uniform: true, Days: days, Periods: periods}
	}
	perDay := make([]models.DayPeriods, 0, len(r.PerDay))
	for _, dp := range r.PerDay {
		periods := dp.Periods
		if len(periods) == 0 && dp.PeriodCount > 0 {
			periods = models.DefaultPeriodNames(dp.PeriodCount)
		}
		perDay = append(perDay, models.DayPeriods{Day: dp.Day, Periods: periods})
	}
	return models.DayStructure{PerDay: perDay}
}

// ProjectPayloadRequest is the roster and grid of a project.
type ProjectPayloadRequest struct {
	Structure DayStructureRequest   `json:"structure"`
	Teachers  []models.Teacher      `json:"teachers" validate:"dive"`
	Subjects  []models.Subject      `json:"subjects" validate:"dive"`
	Rooms     []models.Room         `json:"rooms" validate:"dive"`
	Classes   []models.ClassRequest `json:"classes" validate:"dive"`
}

// ToModel converts the request into the persisted payload.
func (r ProjectPayloadRequest) ToModel() models.ProjectPayload {
	return models.ProjectPayload{
		Structure: r.Structure.ToModel(),
		Teachers:  nonNil(r.Teachers),
		Subjects:  nonNil(r.Subjects),
		Rooms:     nonNil(r.Rooms),
		Classes:   nonNil(r.Classes),
	}
}

// CreateProjectRequest creates a named project.
type CreateProjectRequest struct {
	Name    string                `json:"name" validate:"required,max=120"`
	Payload ProjectPayloadRequest `json:"payload"`
}

// UpdateProjectRequest replaces the project name and whole payload.
type UpdateProjectRequest struct {
	Name    string                `json:"name" validate:"required,max=120"`
	Payload ProjectPayloadRequest `json:"payload"`
}

// ProjectQuery filters the project list.
type ProjectQuery struct {
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

// ImportResult summarises a roster CSV import.
type ImportResult struct {
	Kind     string `json:"kind"`
	Imported int    `json:"imported"`
	Replaced bool   `json:"replaced"`
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
