package plant

import (
	"github.com/markusressel/twiddle/internal/configuration"
)

// FirstOrder is a first-order lag process: y' = (gain * (u + disturbance) - y) / timeConstant,
// integrated with a fixed step (explicit euler).
type FirstOrder struct {
	config configuration.FirstOrderPlantConfig

	value float64
}

func NewFirstOrder(config configuration.FirstOrderPlantConfig) *FirstOrder {
	p := &FirstOrder{config: config}
	p.Reset()
	return p
}

func (p *FirstOrder) Reset() {
	p.value = p.config.Initial
}

func (p *FirstOrder) CrossTrackError() float64 {
	return p.value - p.config.SetPoint
}

func (p *FirstOrder) Apply(actuation float64) {
	c := p.config
	derivative := (c.Gain*(actuation+c.Disturbance) - p.value) / c.TimeConstant
	p.value += derivative * c.Step
}

// Value returns the current process value
func (p *FirstOrder) Value() float64 {
	return p.value
}
