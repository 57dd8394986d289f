package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, Date("2024-02-29"), d)

	for _, bad := range []string{"2023-02-29", "2024-1-5", "15/10/2024", ""} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
		assert.False(t, Date(bad).Valid(), bad)
	}
}

func TestDateOf_UsesWallClock(t *testing.T) {
	lima := time.FixedZone("PET", -5*60*60)
	late := time.Date(2024, 10, 1, 23, 30, 0, 0, lima)
	assert.Equal(t, Date("2024-10-01"), DateOf(late), "not shifted to UTC")
	assert.True(t, Date("2024-09-30").Before(DateOf(late)))
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), DateOf(late).Time())
}

func TestSyllabusStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to SyllabusStatus
		want     bool
	}{
		{SyllabusStatusPending, SyllabusStatusProcessing, true},
		{SyllabusStatusPending, SyllabusStatusCompleted, false},
		{SyllabusStatusProcessing, SyllabusStatusCompleted, true},
		{SyllabusStatusProcessing, SyllabusStatusError, true},
		{SyllabusStatusProcessing, SyllabusStatusPending, false},
		{SyllabusStatusCompleted, SyllabusStatusError, false},
		{SyllabusStatusError, SyllabusStatusProcessing, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPaletteColor(t *testing.T) {
	require.Len(t, Palette, 14)
	assert.Equal(t, Palette[0], PaletteColor(0))
	assert.Equal(t, Palette[13], PaletteColor(13))
	assert.Equal(t, Palette[0], PaletteColor(14))
}

func TestEventType_Valid(t *testing.T) {
	for _, et := range EventTypes {
		assert.True(t, et.Valid())
	}
	assert.False(t, EventType("exam").Valid())
}

func TestSubject_CloneIsDeep(t *testing.T) {
	s := Subject{ID: "s1", Syllabi: []SyllabusFile{{ID: "f1", Status: SyllabusStatusProcessing}}}
	c := s.Clone()
	c.Syllabi[0].Status = SyllabusStatusError
	assert.Equal(t, SyllabusStatusProcessing, s.Syllabi[0].Status)

	f, ok := s.Syllabus("f1")
	assert.True(t, ok)
	assert.Equal(t, "f1", f.ID)
	assert.Empty(t, Subject{}.Clone().Syllabi)
	assert.NotNil(t, Subject{}.Clone().Syllabi)
}
