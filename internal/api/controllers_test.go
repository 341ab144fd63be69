package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/persistence"
	"github.com/markusressel/twiddle/internal/pid"
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestService(t *testing.T) *echo.Echo {
	config := configuration.ControllerConfig{
		ID:     "temperature",
		Tuning: configuration.DefaultTuning,
		Plant: configuration.PlantConfig{
			FirstOrder: &configuration.FirstOrderPlantConfig{
				Gain:         1,
				TimeConstant: 5,
				Step:         0.1,
				SetPoint:     1,
			},
		},
	}
	config.Tuning.WindowSize = 10
	config.Tuning.MaxIterations = 2
	s, err := tuning.NewSessionFromConfig(config)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))
	tuning.SessionMap.Set(s.GetId(), s)
	t.Cleanup(func() {
		tuning.SessionMap.Remove(s.GetId())
	})

	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "twiddle.db"))
	require.NoError(t, pers.Init())
	require.NoError(t, pers.SaveReport(s.Report()))

	e := echo.New()
	registerControllerEndpoints(e, pers)
	return e
}

func request(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetControllers(t *testing.T) {
	// GIVEN
	e := createTestService(t)

	// WHEN
	rec := request(e, http.MethodGet, "/controller/")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	var result map[string]tuning.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Contains(t, result, "temperature")
	assert.Equal(t, 2, result["temperature"].Iteration)
	assert.Equal(t, tuning.StatusStopped, result["temperature"].Status)
}

func TestGetController(t *testing.T) {
	// GIVEN
	e := createTestService(t)

	// WHEN
	rec := request(e, http.MethodGet, "/controller/temperature/")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	var result tuning.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "temperature", result.Id)
	assert.Equal(t, "firstOrder", result.Plant)
	assert.Equal(t, 2, result.Iteration)
	assert.NotEqual(t, pid.PhaseSettled, result.State.Phase)
}

func TestGetController_NotFound(t *testing.T) {
	// GIVEN
	e := createTestService(t)

	// WHEN
	rec := request(e, http.MethodGet, "/controller/unknown/")

	// THEN
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var result Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "No item with id 'unknown' found", result.Message)
}

func TestGetControllerReport(t *testing.T) {
	// GIVEN
	e := createTestService(t)

	// WHEN
	rec := request(e, http.MethodGet, "/controller/temperature/report/")
	withoutWindows := request(e, http.MethodGet, "/controller/temperature/report/?windows=false")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	var report tuning.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "temperature", report.ControllerId)
	assert.Len(t, report.Windows, 2)

	assert.Equal(t, http.StatusOK, withoutWindows.Code)
	var short tuning.Report
	require.NoError(t, json.Unmarshal(withoutWindows.Body.Bytes(), &short))
	assert.Empty(t, short.Windows)
}

func TestGetControllerHistory(t *testing.T) {
	// GIVEN
	e := createTestService(t)

	// WHEN
	rec := request(e, http.MethodGet, "/controller/temperature/history/?windows=false")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	var reports []tuning.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "temperature", reports[0].ControllerId)
	assert.Equal(t, 2, reports[0].Iterations)
	assert.Empty(t, reports[0].Windows)
}

func TestGetControllerHistory_NotFound(t *testing.T) {
	// GIVEN
	e := createTestService(t)

	// WHEN
	rec := request(e, http.MethodGet, "/controller/unknown/history/")

	// THEN
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteControllerHistory(t *testing.T) {
	// GIVEN
	e := createTestService(t)

	// WHEN
	rec := request(e, http.MethodDelete, "/controller/temperature/history/")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	var result DeleteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Deleted)

	// WHEN
	rec = request(e, http.MethodGet, "/controller/temperature/history/")

	// THEN
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
