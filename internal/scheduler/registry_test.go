package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestRegistryAddAndLookup(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddRoom(models.Room{ID: "R1", Capacity: 30}))
	require.NoError(t, reg.AddTeacher(models.Teacher{ID: "T1", FirstName: "Ada"}))
	require.NoError(t, reg.AddSubject(models.Subject{ID: "MATH", Name: "Mathematics", PreferredRoomID: "R1"}))
	require.NoError(t, reg.AddClass(models.ClassRequest{ID: "C1", TeacherID: "T1", SubjectID: "MATH", RoomID: "R1", OccurrencesNeeded: 2, Mode: models.ClassModeRelaxed}))

	teacher, ok := reg.Teacher("T1")
	require.True(t, ok)
	assert.Equal(t, "Ada", teacher.FirstName)

	_, ok = reg.Teacher("missing")
	assert.False(t, ok)

	class, ok := reg.Class("C1")
	require.True(t, ok)
	assert.Equal(t, 2, class.OccurrencesNeeded)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddTeacher(models.Teacher{ID: "T1"}))

	err := reg.AddTeacher(models.Teacher{ID: "T1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateIdentifier)

	require.NoError(t, reg.AddRoom(models.Room{ID: "R1"}))
	assert.ErrorIs(t, reg.AddRoom(models.Room{ID: "R1"}), appErrors.ErrDuplicateIdentifier)
}

func TestRegistryRejectsUnknownReferences(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddTeacher(models.Teacher{ID: "T1"}))
	require.NoError(t, reg.AddSubject(models.Subject{ID: "S1"}))

	cases := map[string]models.ClassRequest{
		"teacher": {ID: "C1", TeacherID: "T9", SubjectID: "S1", OccurrencesNeeded: 1, Mode: models.ClassModeRelaxed},
		"subject": {ID: "C1", TeacherID: "T1", SubjectID: "S9", OccurrencesNeeded: 1, Mode: models.ClassModeRelaxed},
		"room":    {ID: "C1", TeacherID: "T1", SubjectID: "S1", RoomID: "R9", OccurrencesNeeded: 1, Mode: models.ClassModeRelaxed},
	}
	for name, class := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, reg.AddClass(class), appErrors.ErrUnknownReference)
		})
	}

	err := reg.AddSubject(models.Subject{ID: "S2", AlternativeRoomID: "R9"})
	assert.ErrorIs(t, err, appErrors.ErrUnknownReference)
	_, ok := reg.Class("C1")
	assert.False(t, ok)
}

func TestRegistryValidatesClassFields(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddTeacher(models.Teacher{ID: "T1"}))
	require.NoError(t, reg.AddSubject(models.Subject{ID: "S1"}))

	err := reg.AddClass(models.ClassRequest{ID: "C1", TeacherID: "T1", SubjectID: "S1", OccurrencesNeeded: 0, Mode: models.ClassModeRelaxed})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = reg.AddClass(models.ClassRequest{ID: "C1", TeacherID: "T1", SubjectID: "S1", OccurrencesNeeded: 1, Mode: "SOMETIMES"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	err = reg.AddClass(models.ClassRequest{ID: " ", TeacherID: "T1", SubjectID: "S1", OccurrencesNeeded: 1, Mode: models.ClassModeRelaxed})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestBuildRegistryKeepsClassOrder(t *testing.T) {
	reg, err := BuildRegistry(
		[]models.Teacher{{ID: "T1"}},
		[]models.Subject{{ID: "S1", PreferredRoomID: "R1"}},
		[]models.Room{{ID: "R1"}},
		[]models.ClassRequest{
			{ID: "C2", TeacherID: "T1", SubjectID: "S1", OccurrencesNeeded: 1, Mode: models.ClassModeRelaxed},
			{ID: "C1", TeacherID: "T1", SubjectID: "S1", OccurrencesNeeded: 1, Mode: models.ClassModeRelaxed},
		},
	)
	require.NoError(t, err)

	classes := reg.Classes()
	require.Len(t, classes, 2)
	assert.Equal(t, "C2", classes[0].ID)
	assert.Equal(t, "C1", classes[1].ID)
}

func TestValidatePinsRejectsSlotsOutsideGrid(t *testing.T) {
	grid, err := NewUniformGrid([]string{"Mon"}, []string{"P1"})
	require.NoError(t, err)

	err = ValidatePins(grid, []models.ClassRequest{
		{ID: "C1", Mode: models.ClassModeStrict, PinnedSlots: []models.Slot{{Day: "Mon", Period: "P9"}}},
	})
	assert.ErrorIs(t, err, appErrors.ErrInvalidSlot)

	err = ValidatePins(grid, []models.ClassRequest{
		{ID: "C2", Mode: models.ClassModeRelaxed, PinnedSlots: []models.Slot{{Day: "Mon", Period: "P9"}}},
	})
	assert.NoError(t, err)
}
