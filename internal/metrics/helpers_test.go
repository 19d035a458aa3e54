package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage_ZeroTotal(t *testing.T) {
	assert.Equal(t, 0.0, percentage(5, 0))
	assert.InDelta(t, 25.0, percentage(1, 4), 0.0001)
}

func TestPercentChange(t *testing.T) {
	assert.Nil(t, percentChange(5, 0))

	v := percentChange(15, 10)
	require.NotNil(t, v)
	assert.InDelta(t, 50.0, *v, 0.0001)

	v = percentChange(10, 10)
	require.NotNil(t, v)
	assert.Equal(t, 0.0, *v)
}

func TestRank_OrderAndTieBreak(t *testing.T) {
	got := rank(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
	assert.Equal(t, []RankedItem{{"c", 5}, {"a", 2}, {"b", 2}}, got)

	assert.Len(t, rank(map[string]int{"x": 1}, 0), 1)
	assert.Equal(t, RankedItem{}, top(nil))
}

func TestStartOfWeek_Monday(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), startOfWeek(sunday))

	monday := time.Date(2024, 3, 11, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), startOfWeek(monday))
}

func TestDayLabel(t *testing.T) {
	ref := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "4 mar", dayLabel(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), ref))
	assert.Equal(t, "30 dic 2023", dayLabel(time.Date(2023, 12, 30, 0, 0, 0, 0, time.UTC), ref))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h 0m", formatDuration(0))
	assert.Equal(t, "1h 1m", formatDuration(3661))
	assert.Equal(t, "25h 30m", formatDuration(25*3600+30*60+59))
	assert.Equal(t, "0h 0m", formatDuration(-5))
}
