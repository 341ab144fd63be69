package tuning

import (
	"time"

	"github.com/markusressel/twiddle/internal/pid"
	"github.com/markusressel/twiddle/internal/util"
	"gopkg.in/yaml.v3"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusConverged Status = "converged"
	// StatusStopped the iteration limit was reached before the step sizes converged
	StatusStopped   Status = "stopped"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// WindowResult is the outcome of a single Tune call
type WindowResult struct {
	Iteration int `json:"iteration" yaml:"iteration"`
	// scaled squared error of the window
	Error     float64    `json:"error" yaml:"error"`
	BestError float64    `json:"bestError" yaml:"bestError"`
	Gains     pid.Gains  `json:"gains" yaml:"gains"`
	StepSizes [3]float64 `json:"stepSizes" yaml:"stepSizes"`
	StepSum   float64    `json:"stepSum" yaml:"stepSum"`
	Index     int        `json:"index" yaml:"index"`
	Phase     pid.Phase  `json:"phase" yaml:"phase"`
}

// Report summarizes a tuning session
type Report struct {
	ControllerId string    `json:"controllerId" yaml:"controllerId"`
	Plant        string    `json:"plant" yaml:"plant"`
	Status       Status    `json:"status" yaml:"status"`
	StartedAt    time.Time `json:"startedAt" yaml:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt" yaml:"finishedAt"`
	Iterations   int       `json:"iterations" yaml:"iterations"`

	InitialGains pid.Gains  `json:"initialGains" yaml:"initialGains"`
	Gains        pid.Gains  `json:"gains" yaml:"gains"`
	StepSizes    [3]float64 `json:"stepSizes" yaml:"stepSizes"`
	BestError    float64    `json:"bestError" yaml:"bestError"`

	Windows []WindowResult `json:"windows" yaml:"windows"`
}

func (r Report) Converged() bool {
	return r.Status == StatusConverged
}

// Errors returns the window errors in the order they were evaluated
func (r Report) Errors() []float64 {
	result := make([]float64, 0, len(r.Windows))
	for _, window := range r.Windows {
		result = append(result, window.Error)
	}
	return result
}

// ExportReport writes the given report as yaml to path
func ExportReport(report Report, path string) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data)
}
