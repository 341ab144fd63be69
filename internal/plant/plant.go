package plant

import (
	"fmt"

	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/util"
)

// Plant is a simulated process which is driven by a controller output
// and reports the resulting cross-track error.
type Plant interface {
	// Reset restores the initial state, it is called before every evaluation window
	Reset()
	// CrossTrackError returns the current deviation from the desired state
	CrossTrackError() float64
	// Apply advances the simulation by one sample using the given actuation
	Apply(actuation float64)
}

type plantFactory func(config configuration.PlantConfig) Plant

var plants = map[string]plantFactory{
	configuration.PlantTypeVehicle: func(config configuration.PlantConfig) Plant {
		return NewVehicle(*config.Vehicle)
	},
	configuration.PlantTypeFirstOrder: func(config configuration.PlantConfig) Plant {
		return NewFirstOrder(*config.FirstOrder)
	},
}

// Types returns the names of all supported plant types
func Types() []string {
	return util.SortedKeys(plants)
}

func NewPlant(config configuration.PlantConfig) (Plant, error) {
	f, ok := plants[config.Type()]
	if !ok {
		return nil, fmt.Errorf("no matching plant type, use one of: %v", Types())
	}
	return f(config), nil
}
