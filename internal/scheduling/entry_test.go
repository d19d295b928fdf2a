package scheduling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inPerson(id, room string, day Weekday, start, duration int) Entry {
	return Entry{ID: id, CourseID: "course-" + id, RoomID: room, Modality: ModalityInPerson, DayOfWeek: day, StartTime: start, DurationMinutes: duration, Active: true}
}

func clock(t *testing.T, raw string) int {
	t.Helper()
	m, err := ParseClock(raw)
	require.NoError(t, err)
	return m
}

func TestNewEntryRejectsInvalid(t *testing.T) {
	cases := []struct {
		name     string
		room     string
		modality Modality
		day      Weekday
		start    int
		duration int
		field    string
	}{
		{"zero duration", "r1", ModalityInPerson, Monday, 600, 0, "duration_minutes"},
		{"negative duration", "r1", ModalityInPerson, Monday, 600, -5, "duration_minutes"},
		{"crosses midnight", "r1", ModalityInPerson, Monday, 23 * 60, 61, "duration_minutes"},
		{"in person without room", "", ModalityInPerson, Monday, 600, 60, "room_id"},
		{"virtual with room", "r1", ModalityVirtual, Monday, 600, 60, "room_id"},
		{"day out of range", "r1", ModalityInPerson, Weekday(8), 600, 60, "day_of_week"},
		{"day zero", "r1", ModalityInPerson, Weekday(0), 600, 60, "day_of_week"},
		{"unknown modality", "r1", Modality("HYBRID"), Monday, 600, 60, "modality"},
		{"negative start", "r1", ModalityInPerson, Monday, -1, 60, "start_time"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewEntry("e1", "c1", tc.room, tc.modality, tc.day, tc.start, tc.duration, true)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidEntry))
			var invalid *InvalidEntryError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestNewEntryAcceptsSessionEndingAtMidnight(t *testing.T) {
	e, err := NewEntry("e1", "c1", "r1", ModalityInPerson, Sunday, 23*60, 60, true)
	require.NoError(t, err)
	assert.Equal(t, MinutesPerDay, e.EndTime())

	v, err := NewEntry("e2", "c1", "", ModalityVirtual, Friday, 8*60, 45, true)
	require.NoError(t, err)
	assert.Equal(t, 8*60+45, v.EndTime())
}

func TestIntervalsOverlap(t *testing.T) {
	assert.True(t, IntervalsOverlap(600, 660, 630, 690))
	assert.True(t, IntervalsOverlap(600, 720, 630, 660), "containment")
	assert.False(t, IntervalsOverlap(600, 660, 660, 690), "touching end and start")
	assert.False(t, IntervalsOverlap(600, 660, 700, 760))
}

func TestOverlapIsSymmetric(t *testing.T) {
	starts := []int{480, 510, 540, 600, 659, 660}
	durations := []int{1, 30, 60, 90}
	for _, s1 := range starts {
		for _, d1 := range durations {
			for _, s2 := range starts {
				for _, d2 := range durations {
					a := inPerson("a", "r1", Monday, s1, d1)
					b := inPerson("b", "r1", Monday, s2, d2)
					assert.Equal(t, a.Overlaps(b), b.Overlaps(a), "a=%d+%d b=%d+%d", s1, d1, s2, d2)
				}
			}
		}
	}
}

func TestOverlapsRequiresSameDay(t *testing.T) {
	a := inPerson("a", "r1", Monday, 600, 60)
	b := inPerson("b", "r1", Tuesday, 600, 60)
	assert.False(t, a.Overlaps(b))
}

func TestParseClock(t *testing.T) {
	assert.Equal(t, 0, clock(t, "00:00"))
	assert.Equal(t, 8*60+30, clock(t, "08:30"))
	assert.Equal(t, 9*60, clock(t, "9:00"))
	assert.Equal(t, 13*60+5, clock(t, "13:05:00"))
	assert.Equal(t, MinutesPerDay, clock(t, "24:00"))

	for _, raw := range []string{"", "8", "25:00", "24:01", "10:60", "aa:bb", "10:00:30", "1:2:3:4"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "08:05", FormatClock(8*60+5))
	assert.Equal(t, "24:00", FormatClock(MinutesPerDay))
}

func TestParseModality(t *testing.T) {
	m, err := ParseModality("in_person")
	require.NoError(t, err)
	assert.Equal(t, ModalityInPerson, m)

	m, err = ParseModality(" Virtual ")
	require.NoError(t, err)
	assert.Equal(t, ModalityVirtual, m)

	_, err = ParseModality("hybrid")
	assert.Error(t, err)
}
