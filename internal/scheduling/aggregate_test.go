package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByRoomAndDayKeepsInputOrder(t *testing.T) {
	entries := []Entry{
		inPerson("3", "lab-a", Monday, 900, 60),
		inPerson("1", "lab-a", Monday, 480, 60),
		inPerson("2", "lab-b", Monday, 480, 60),
		inPerson("4", "lab-a", Friday, 480, 60),
		{ID: "v", Modality: ModalityVirtual, DayOfWeek: Monday, StartTime: 480, DurationMinutes: 30, Active: true},
	}

	grouped := GroupByRoomAndDay(entries)
	require.Len(t, grouped, 3)
	require.Len(t, grouped["lab-a"][Monday], 2)
	assert.Equal(t, "3", grouped["lab-a"][Monday][0].ID)
	assert.Equal(t, "1", grouped["lab-a"][Monday][1].ID)
	assert.Len(t, grouped["lab-a"][Friday], 1)
	assert.Len(t, grouped["lab-b"][Monday], 1)
	assert.Len(t, grouped[""][Monday], 1)
}

func TestGroupByDayFiltersRoom(t *testing.T) {
	entries := []Entry{
		inPerson("1", "lab-a", Monday, 480, 60),
		inPerson("2", "lab-b", Monday, 480, 60),
		inPerson("3", "lab-a", Tuesday, 480, 60),
		inPerson("4", "lab-a", Monday, 600, 60),
	}

	grouped := GroupByDay(entries, "lab-a")
	require.Len(t, grouped, 2)
	assert.Equal(t, []string{"1", "4"}, []string{grouped[Monday][0].ID, grouped[Monday][1].ID})
	assert.Equal(t, "3", grouped[Tuesday][0].ID)

	assert.Empty(t, GroupByDay(entries, "lab-z"))
}
