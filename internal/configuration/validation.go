package configuration

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/markusressel/twiddle/internal/ui"
	"golang.org/x/exp/slices"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if len(config.Controllers) <= 0 {
		return errors.New("no controllers configured")
	}

	err := validateControllers(config)
	if err != nil {
		return err
	}

	if config.Api.Enabled {
		if err := validatePort("api", config.Api.Port); err != nil {
			return err
		}
	}
	if config.Statistics.Enabled {
		if err := validatePort("statistics", config.Statistics.Port); err != nil {
			return err
		}
	}
	if config.Profiling.Enabled {
		if err := validatePort("profiling", config.Profiling.Port); err != nil {
			return err
		}
	}

	return nil
}

func validatePort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s: invalid port %d", name, port)
	}
	return nil
}

func validateControllers(config *Configuration) error {
	var ids []string
	for _, controllerConfig := range config.Controllers {
		if len(controllerConfig.ID) <= 0 {
			return errors.New("controller: missing id")
		}
		if strings.Contains(controllerConfig.ID, "/") {
			return fmt.Errorf("Controller %s: id must not contain '/'", controllerConfig.ID)
		}
		if slices.Contains(ids, controllerConfig.ID) {
			return fmt.Errorf("duplicate controller id detected: %s", controllerConfig.ID)
		}
		ids = append(ids, controllerConfig.ID)

		gains := controllerConfig.Gains
		if gains != nil && (!isFinite(gains.P) || !isFinite(gains.I) || !isFinite(gains.D)) {
			return fmt.Errorf("Controller %s: gains must be finite numbers", controllerConfig.ID)
		}

		if err := validateTuning(controllerConfig.ID, controllerConfig.Tuning); err != nil {
			return err
		}
		if err := validatePlant(controllerConfig.ID, controllerConfig.Plant); err != nil {
			return err
		}
	}

	return nil
}

func validateTuning(id string, tuning TuningConfig) error {
	positive := map[string]float64{
		"initialStepSize": tuning.InitialStepSize,
		"tolerance":       tuning.Tolerance,
		"errorScale":      tuning.ErrorScale,
		"stepIncrease":    tuning.StepIncrease,
		"stepDecrease":    tuning.StepDecrease,
	}
	for _, name := range []string{"initialStepSize", "tolerance", "errorScale", "stepIncrease", "stepDecrease"} {
		value := positive[name]
		if !isFinite(value) || value <= 0 {
			return fmt.Errorf("Controller %s: tuning.%s must be > 0", id, name)
		}
	}

	if tuning.StepIncrease <= 1 {
		ui.Warning("Controller %s: tuning.stepIncrease <= 1, step sizes will never grow", id)
	}
	if tuning.StepDecrease >= 1 {
		return fmt.Errorf("Controller %s: tuning.stepDecrease must be < 1, otherwise tuning can never converge", id)
	}
	if tuning.WindowSize <= 0 {
		return fmt.Errorf("Controller %s: tuning.windowSize must be >= 1", id)
	}
	if tuning.MaxIterations < 0 {
		return fmt.Errorf("Controller %s: tuning.maxIterations must be >= 0", id)
	}
	if tuning.Pacing < 0 {
		return fmt.Errorf("Controller %s: tuning.pacing must not be negative", id)
	}
	if tuning.History.Enabled && tuning.History.Size <= 0 {
		return fmt.Errorf("Controller %s: tuning.history.size must be >= 1", id)
	}
	return nil
}

func validatePlant(id string, plant PlantConfig) error {
	subConfigs := 0
	if plant.Vehicle != nil {
		subConfigs++
	}
	if plant.FirstOrder != nil {
		subConfigs++
	}
	supportedTypes := []string{PlantTypeVehicle, PlantTypeFirstOrder}
	if subConfigs > 1 {
		return fmt.Errorf("Controller %s: only one plant type can be used per controller definition block", id)
	}
	if subConfigs <= 0 {
		return fmt.Errorf("Controller %s: sub-configuration for plant is missing, use one of: %s", id, strings.Join(supportedTypes, " | "))
	}

	if plant.Vehicle != nil {
		v := plant.Vehicle
		if v.Length <= 0 {
			return fmt.Errorf("Controller %s: vehicle length must be > 0", id)
		}
		if v.Speed <= 0 {
			return fmt.Errorf("Controller %s: vehicle speed must be > 0", id)
		}
		if v.MaxSteeringAngle <= 0 || v.MaxSteeringAngle >= math.Pi/2 {
			return fmt.Errorf("Controller %s: vehicle maxSteeringAngle must be within (0, pi/2)", id)
		}
	}

	if plant.FirstOrder != nil {
		f := plant.FirstOrder
		if f.TimeConstant <= 0 {
			return fmt.Errorf("Controller %s: firstOrder timeConstant must be > 0", id)
		}
		if f.Step <= 0 || f.Step > f.TimeConstant {
			return fmt.Errorf("Controller %s: firstOrder step must be within (0, timeConstant]", id)
		}
	}

	return nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
