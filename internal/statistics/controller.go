package statistics

import (
	"github.com/markusressel/twiddle/internal/tuning"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

var gainNames = []string{"p", "i", "d"}

// ControllerCollector exposes the tuning progress of all known sessions
type ControllerCollector struct {
	sessions func() []tuning.Session

	gain        *prometheus.Desc
	stepSize    *prometheus.Desc
	stepSum     *prometheus.Desc
	windowError *prometheus.Desc
	bestError   *prometheus.Desc
	recentError *prometheus.Desc
	iteration   *prometheus.Desc
	gainIndex   *prometheus.Desc
	phase       *prometheus.Desc
	converged   *prometheus.Desc
}

func NewControllerCollector(sessions func() []tuning.Session) *ControllerCollector {
	return &ControllerCollector{
		sessions: sessions,
		gain: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "gain"),
			"Current value of a PID gain",
			[]string{"id", "gain"}, nil,
		),
		stepSize: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "step_size"),
			"Current perturbation step size of a PID gain",
			[]string{"id", "gain"}, nil,
		),
		stepSum: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "step_size_sum"),
			"Sum of all step sizes, tuning stops once this drops below the tolerance",
			[]string{"id"}, nil,
		),
		windowError: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "window_error"),
			"Scaled squared error of the last evaluation window",
			[]string{"id"}, nil,
		),
		bestError: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "best_error"),
			"Lowest scaled squared error of all evaluation windows",
			[]string{"id"}, nil,
		),
		recentError: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "recent_error"),
			"Average scaled squared error of the most recent evaluation windows",
			[]string{"id"}, nil,
		),
		iteration: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "iterations_total"),
			"Number of evaluation windows passed to the tuner",
			[]string{"id"}, nil,
		),
		gainIndex: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "gain_index"),
			"Index of the gain currently being tuned (0 = p, 1 = i, 2 = d)",
			[]string{"id"}, nil,
		),
		phase: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "phase"),
			"Current tuning phase of the gain being tuned, 1 for the active phase",
			[]string{"id", "phase"}, nil,
		),
		converged: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "converged"),
			"1 if the step sizes have converged",
			[]string{"id"}, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.gain
	ch <- collector.stepSize
	ch <- collector.stepSum
	ch <- collector.windowError
	ch <- collector.bestError
	ch <- collector.recentError
	ch <- collector.iteration
	ch <- collector.gainIndex
	ch <- collector.phase
	ch <- collector.converged
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	for _, session := range collector.sessions() {
		snapshot := session.Snapshot()
		id := snapshot.Id
		state := snapshot.State

		gains := []float64{state.Gains.P, state.Gains.I, state.Gains.D}
		for idx, name := range gainNames {
			ch <- prometheus.MustNewConstMetric(collector.gain, prometheus.GaugeValue, gains[idx], id, name)
			ch <- prometheus.MustNewConstMetric(collector.stepSize, prometheus.GaugeValue, state.StepSizes[idx], id, name)
		}
		ch <- prometheus.MustNewConstMetric(collector.stepSum, prometheus.GaugeValue, state.StepSum, id)
		ch <- prometheus.MustNewConstMetric(collector.windowError, prometheus.GaugeValue, state.LastWindowError, id)
		ch <- prometheus.MustNewConstMetric(collector.bestError, prometheus.GaugeValue, state.BestError, id)
		ch <- prometheus.MustNewConstMetric(collector.recentError, prometheus.GaugeValue, snapshot.RecentError, id)
		ch <- prometheus.MustNewConstMetric(collector.iteration, prometheus.CounterValue, float64(snapshot.Iteration), id)
		ch <- prometheus.MustNewConstMetric(collector.gainIndex, prometheus.GaugeValue, float64(state.Index), id)
		ch <- prometheus.MustNewConstMetric(collector.phase, prometheus.GaugeValue, 1, id, state.Phase.String())
		ch <- prometheus.MustNewConstMetric(collector.converged, prometheus.GaugeValue, boolToFloat(snapshot.Status == tuning.StatusConverged), id)
	}
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
