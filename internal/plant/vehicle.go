package plant

import (
	"math"

	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/util"
)

// Vehicle is a kinematic bicycle model which is supposed to follow the x-axis.
// The controller output is used as the steering angle.
type Vehicle struct {
	config configuration.VehiclePlantConfig

	x           float64
	y           float64
	orientation float64
}

func NewVehicle(config configuration.VehiclePlantConfig) *Vehicle {
	v := &Vehicle{config: config}
	v.Reset()
	return v
}

func (v *Vehicle) Reset() {
	v.x = 0
	v.y = v.config.InitialOffset
	v.orientation = normalizeAngle(v.config.InitialHeading)
}

func (v *Vehicle) CrossTrackError() float64 {
	return v.y
}

func (v *Vehicle) Apply(actuation float64) {
	maxAngle := v.config.MaxSteeringAngle
	steering := util.Coerce(actuation, -maxAngle, maxAngle) + v.config.SteeringDrift

	distance := v.config.Speed
	turn := math.Tan(steering) * distance / v.config.Length

	if math.Abs(turn) < 0.001 {
		// approximately straight
		v.x += distance * math.Cos(v.orientation)
		v.y += distance * math.Sin(v.orientation)
		v.orientation = normalizeAngle(v.orientation + turn)
		return
	}

	radius := distance / turn
	cx := v.x - math.Sin(v.orientation)*radius
	cy := v.y + math.Cos(v.orientation)*radius
	v.orientation = normalizeAngle(v.orientation + turn)
	v.x = cx + math.Sin(v.orientation)*radius
	v.y = cy - math.Cos(v.orientation)*radius
}

// Position returns the current position and orientation of the vehicle
func (v *Vehicle) Position() (x, y, orientation float64) {
	return v.x, v.y, v.orientation
}

// normalizeAngle maps the given angle to [0, 2*pi)
func normalizeAngle(angle float64) float64 {
	result := math.Mod(angle, 2*math.Pi)
	if result < 0 {
		result += 2 * math.Pi
	}
	return result
}
