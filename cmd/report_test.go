package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camaras-ia/licencias-cli/internal/api"
	"github.com/camaras-ia/licencias-cli/internal/dashboard"
	"github.com/camaras-ia/licencias-cli/internal/metrics"
	"github.com/camaras-ia/licencias-cli/internal/model"
)

func TestReportOptions_Actor(t *testing.T) {
	a, err := reportOptions{role: "admin"}.actor()
	require.NoError(t, err)
	assert.Equal(t, model.Actor{Role: model.RoleAdmin}, a)

	a, err = reportOptions{role: "camara", chamber: " Cámara Norte "}.actor()
	require.NoError(t, err)
	assert.Equal(t, "Cámara Norte", a.ChamberName)

	_, err = reportOptions{role: "camara"}.actor()
	assert.ErrorContains(t, err, "--chamber is required")

	_, err = reportOptions{role: "root"}.actor()
	assert.ErrorContains(t, err, `unknown role "root"`)
}

func TestReportOptions_Params(t *testing.T) {
	o := reportOptions{start: "2024-03-01", end: "2024-03-31", userType: "colaborador", chamberID: "c1"}

	ov, err := o.overviewParams(time.UTC)
	require.NoError(t, err)
	require.NotNil(t, ov.DateRange)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ov.DateRange.Start)

	us, err := o.usageParams(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, metrics.UserTypeCollaborator, us.UserType)
	assert.Equal(t, "c1", us.ChamberID)

	_, err = reportOptions{start: "2024-04-01", end: "2024-03-01"}.overviewParams(time.UTC)
	assert.ErrorIs(t, err, api.ErrBadRequest)

	_, err = reportOptions{userType: "robot"}.usageParams(time.UTC)
	assert.ErrorIs(t, err, api.ErrBadRequest)
}

func TestWriteOutput(t *testing.T) {
	info := dashboard.SnapshotInfo{Version: 2, Applications: 3}

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, "json", info))
	assert.Contains(t, buf.String(), `"version": 2`)
	assert.Contains(t, buf.String(), `"applications": 3`)

	buf.Reset()
	require.NoError(t, writeOutput(&buf, "yaml", info))
	assert.Contains(t, buf.String(), "version: 2\n")
	assert.Contains(t, buf.String(), "applications: 3\n")

	assert.ErrorContains(t, writeOutput(&buf, "xml", info), `unsupported format "xml"`)
}
