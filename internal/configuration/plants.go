package configuration

const (
	PlantTypeVehicle    = "vehicle"
	PlantTypeFirstOrder = "firstOrder"
)

// PlantConfig selects the simulated process a controller is tuned against.
// Exactly one of the sub-configurations must be set.
type PlantConfig struct {
	Vehicle    *VehiclePlantConfig    `json:"vehicle,omitempty"`
	FirstOrder *FirstOrderPlantConfig `json:"firstOrder,omitempty"`
}

// VehiclePlantConfig describes a kinematic bicycle model driving along the x-axis,
// the cross-track error is its lateral offset.
type VehiclePlantConfig struct {
	// distance between front and rear axle
	Length float64 `json:"length"`
	// distance travelled per sample
	Speed float64 `json:"speed"`
	// maximum steering angle in radians
	MaxSteeringAngle float64 `json:"maxSteeringAngle"`
	// constant steering bias in radians
	SteeringDrift float64 `json:"steeringDrift"`

	InitialOffset  float64 `json:"initialOffset"`
	InitialHeading float64 `json:"initialHeading"`
}

// FirstOrderPlantConfig describes a first-order lag process
type FirstOrderPlantConfig struct {
	Gain         float64 `json:"gain"`
	TimeConstant float64 `json:"timeConstant"`
	// integration step per sample
	Step        float64 `json:"step"`
	SetPoint    float64 `json:"setPoint"`
	Initial     float64 `json:"initial"`
	Disturbance float64 `json:"disturbance"`
}

func applyVehicleDefaults(c *VehiclePlantConfig) {
	setIfZero(&c.Length, 20.0)
	setIfZero(&c.Speed, 1.0)
	setIfZero(&c.MaxSteeringAngle, 0.785398)
}

func applyFirstOrderDefaults(c *FirstOrderPlantConfig) {
	setIfZero(&c.Gain, 1.0)
	setIfZero(&c.TimeConstant, 5.0)
	setIfZero(&c.Step, 0.1)
}

// Type returns the plant type name of the configured sub-configuration
func (c PlantConfig) Type() string {
	switch {
	case c.Vehicle != nil:
		return PlantTypeVehicle
	case c.FirstOrder != nil:
		return PlantTypeFirstOrder
	default:
		return ""
	}
}
