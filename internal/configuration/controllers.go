package configuration

import "time"

type ControllerConfig struct {
	ID string `json:"id"`

	// nil if the gains were omitted
	Gains  *GainsConfig `json:"gains,omitempty"`
	Tuning TuningConfig `json:"tuning"`
	Plant  PlantConfig  `json:"plant"`
}

// GainsConfig can be given as a map (p, i, d) or as a list [p, i, d]
type GainsConfig struct {
	P float64 `json:"p"`
	I float64 `json:"i"`
	D float64 `json:"d"`
}

type TuningConfig struct {
	InitialStepSize float64 `json:"initialStepSize"`
	Tolerance       float64 `json:"tolerance"`
	ErrorScale      float64 `json:"errorScale"`
	StepIncrease    float64 `json:"stepIncrease"`
	StepDecrease    float64 `json:"stepDecrease"`

	// number of samples per evaluation window
	WindowSize int `json:"windowSize"`
	// 0 means no limit
	MaxIterations int `json:"maxIterations"`
	// delay between two evaluation windows
	Pacing time.Duration `json:"pacing"`

	History HistoryConfig `json:"history"`
}

type HistoryConfig struct {
	Enabled bool `json:"enabled"`
	Size    int  `json:"size"`
}

var (
	DefaultGains = GainsConfig{
		P: 0.25,
		I: 0.0025,
		D: 10,
	}

	DefaultTuning = TuningConfig{
		InitialStepSize: 1.0,
		Tolerance:       0.2,
		ErrorScale:      1000,
		StepIncrease:    1.1,
		StepDecrease:    0.9,
		WindowSize:      200,
		MaxIterations:   0,
		Pacing:          0,
		History: HistoryConfig{
			Enabled: false,
			Size:    50,
		},
	}
)

// applyDefaults fills in every value that was left empty in the config file
func applyDefaults(config *Configuration) {
	for idx := range config.Controllers {
		c := &config.Controllers[idx]
		if c.Gains == nil {
			gains := DefaultGains
			c.Gains = &gains
		}

		t := &c.Tuning
		setIfZero(&t.InitialStepSize, DefaultTuning.InitialStepSize)
		setIfZero(&t.Tolerance, DefaultTuning.Tolerance)
		setIfZero(&t.ErrorScale, DefaultTuning.ErrorScale)
		setIfZero(&t.StepIncrease, DefaultTuning.StepIncrease)
		setIfZero(&t.StepDecrease, DefaultTuning.StepDecrease)
		setIfZero(&t.WindowSize, DefaultTuning.WindowSize)
		setIfZero(&t.History.Size, DefaultTuning.History.Size)

		if c.Plant.Vehicle != nil {
			applyVehicleDefaults(c.Plant.Vehicle)
		}
		if c.Plant.FirstOrder != nil {
			applyFirstOrderDefaults(c.Plant.FirstOrder)
		}
	}
}

func setIfZero[T float64 | int](value *T, fallback T) {
	if *value == 0 {
		*value = fallback
	}
}
