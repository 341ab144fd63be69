package statistics

import (
	"context"
	"strings"
	"testing"

	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createSession(t *testing.T) tuning.Session {
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
	config.Tuning.MaxIterations = 1
	s, err := tuning.NewSessionFromConfig(config)
	require.NoError(t, err)
	return s
}

func TestControllerCollector(t *testing.T) {
	// GIVEN
	s := createSession(t)
	require.NoError(t, s.Run(context.Background()))
	collector := NewControllerCollector(func() []tuning.Session {
		return []tuning.Session{s}
	})

	// WHEN
	count := testutil.CollectAndCount(collector)

	// THEN
	// 3 gains + 3 step sizes + 8 single value metrics
	assert.Equal(t, 14, count)

	expected := `
# HELP twiddle_controller_gain_index Index of the gain currently being tuned (0 = p, 1 = i, 2 = d)
# TYPE twiddle_controller_gain_index gauge
twiddle_controller_gain_index{id="temperature"} 0
# HELP twiddle_controller_iterations_total Number of evaluation windows passed to the tuner
# TYPE twiddle_controller_iterations_total counter
twiddle_controller_iterations_total{id="temperature"} 1
# HELP twiddle_controller_phase Current tuning phase of the gain being tuned, 1 for the active phase
# TYPE twiddle_controller_phase gauge
twiddle_controller_phase{id="temperature",phase="TryDecrease"} 1
# HELP twiddle_controller_converged 1 if the step sizes have converged
# TYPE twiddle_controller_converged gauge
twiddle_controller_converged{id="temperature"} 0
`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"twiddle_controller_gain_index",
		"twiddle_controller_iterations_total",
		"twiddle_controller_phase",
		"twiddle_controller_converged",
	)
	assert.NoError(t, err)
}

func TestControllerCollector_NoSessions(t *testing.T) {
	// GIVEN
	collector := NewControllerCollector(func() []tuning.Session {
		return nil
	})

	// WHEN
	count := testutil.CollectAndCount(collector)

	// THEN
	assert.Equal(t, 0, count)
}
