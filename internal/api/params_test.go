package api

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camaras-ia/licencias-cli/internal/metrics"
)

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("", "", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, r)

	r, err = ParseDateRange("2024-01-15", "", bogota)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, bogota), r.Start)
	assert.True(t, r.End.IsZero())

	r, err = ParseDateRange("", "2024-01-15", time.UTC)
	require.NoError(t, err)
	assert.True(t, r.Start.IsZero())
	assert.True(t, r.Contains(time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)))

	// Same start and end covers the whole day.
	r, err = ParseDateRange("2024-01-15", "2024-01-15", time.UTC)
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)))

	_, err = ParseDateRange("2024-02-01", "2024-01-01", time.UTC)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = ParseDateRange("yesterday", "", time.UTC)
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestParseParams(t *testing.T) {
	q := url.Values{
		"start":      {"2024-01-01"},
		"user_type":  {"empresa"},
		"chamber_id": {" c1 "},
	}
	p, err := parseParams(q, time.UTC)
	require.NoError(t, err)

	require.NotNil(t, p.Overview.DateRange)
	assert.Equal(t, p.Overview.DateRange, p.Usage.DateRange)
	assert.Equal(t, metrics.UserTypeEmployee, p.Usage.UserType)
	assert.Equal(t, "c1", p.Usage.ChamberID)
}

func TestParseUserType(t *testing.T) {
	ut, err := ParseUserType("")
	require.NoError(t, err)
	assert.Equal(t, metrics.UserTypeAll, ut)

	_, err = ParseUserType("robot")
	require.ErrorIs(t, err, ErrBadRequest)
	assert.Contains(t, err.Error(), "invalid user_type")
}
