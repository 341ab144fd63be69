package internal

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/persistence"
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createControllerConfig(id string) configuration.ControllerConfig {
	config := configuration.ControllerConfig{
		ID:     id,
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
	config.Tuning.WindowSize = 20
	config.Tuning.MaxIterations = 4
	return config
}

func TestInitializeObjects_InvalidConfig(t *testing.T) {
	// GIVEN
	config := createControllerConfig("broken")
	config.Plant = configuration.PlantConfig{}

	// WHEN
	sessions, err := InitializeObjects([]configuration.ControllerConfig{config})

	// THEN
	assert.Error(t, err)
	assert.Nil(t, sessions)
}

func TestInitializeObjects_NoConfig(t *testing.T) {
	// WHEN
	sessions, err := InitializeObjects(nil)

	// THEN
	assert.EqualError(t, err, "no valid controller configurations")
	assert.Nil(t, sessions)
}

func TestInitializeObjectsAndRunSession(t *testing.T) {
	// GIVEN
	configs := []configuration.ControllerConfig{
		createControllerConfig("first"),
		createControllerConfig("second"),
	}
	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "twiddle.db"))
	require.NoError(t, pers.Init())

	// WHEN
	sessions, err := InitializeObjects(configs)

	// THEN
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.True(t, tuning.SessionMap.Has("first"))
	assert.True(t, tuning.SessionMap.Has("second"))

	// WHEN
	err = RunSession(context.Background(), sessions[0], pers)

	// THEN
	assert.NoError(t, err)
	reports, err := pers.LoadReports("first")
	assert.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, tuning.StatusStopped, reports[0].Status)
	assert.Equal(t, 4, reports[0].Iterations)

	_, err = pers.LoadReports("second")
	assert.Error(t, err)
}
