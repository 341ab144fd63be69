package tuning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/twiddle/internal/configuration"
	"github.com/markusressel/twiddle/internal/pid"
	"github.com/markusressel/twiddle/internal/plant"
	"github.com/markusressel/twiddle/internal/ui"
	"github.com/markusressel/twiddle/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const recentErrorWindowSize = 10

var (
	SessionMap = cmap.New[Session]()
)

// Session drives a pid.Controller against a plant.Plant, one evaluation window at a time,
// until the controller has converged.
type Session interface {
	GetId() string

	// Run tunes the controller until it converges, the iteration limit is reached or ctx is done
	Run(ctx context.Context) error

	// Snapshot returns the current progress, it is safe to call while Run is active
	Snapshot() Snapshot
	// Report returns a summary of all windows evaluated so far
	Report() Report
}

type Options struct {
	// number of samples per evaluation window
	WindowSize int
	// 0 means no limit
	MaxIterations int
	// delay between two evaluation windows
	Pacing time.Duration
}

// Snapshot is the current progress of a session
type Snapshot struct {
	Id        string    `json:"id"`
	Plant     string    `json:"plant"`
	Status    Status    `json:"status"`
	Iteration int       `json:"iteration"`
	State     pid.State `json:"state"`
	// average error of the most recent windows
	RecentError float64 `json:"recentError"`
}

type session struct {
	id        string
	plantType string
	options   Options

	// guards everything below
	mu           sync.RWMutex
	controller   *pid.Controller
	plant        plant.Plant
	status       Status
	iteration    int
	startedAt    time.Time
	finishedAt   time.Time
	initialGains pid.Gains
	windows      []WindowResult
	recentErrors *rolling.PointPolicy
}

func NewSession(id string, plantType string, controller *pid.Controller, p plant.Plant, options Options) (Session, error) {
	if options.WindowSize <= 0 {
		return nil, fmt.Errorf("session %s: window size must be >= 1", id)
	}
	if options.MaxIterations < 0 {
		return nil, fmt.Errorf("session %s: max iterations must be >= 0", id)
	}

	return &session{
		id:           id,
		plantType:    plantType,
		options:      options,
		controller:   controller,
		plant:        p,
		status:       StatusIdle,
		initialGains: controller.Gains(),
		recentErrors: util.CreateRollingWindow(recentErrorWindowSize),
	}, nil
}

// NewSessionFromConfig creates the controller, plant and session described by the given configuration
func NewSessionFromConfig(config configuration.ControllerConfig) (Session, error) {
	controller, err := pid.NewController(ControllerConfig(config))
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", config.ID, err)
	}

	p, err := plant.NewPlant(config.Plant)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", config.ID, err)
	}

	options := Options{
		WindowSize:    config.Tuning.WindowSize,
		MaxIterations: config.Tuning.MaxIterations,
		Pacing:        config.Tuning.Pacing,
	}
	return NewSession(config.ID, config.Plant.Type(), controller, p, options)
}

// ControllerConfig maps the controller section of the config file to a pid.Config
func ControllerConfig(config configuration.ControllerConfig) pid.Config {
	tuning := config.Tuning
	gains := configuration.DefaultGains
	if config.Gains != nil {
		gains = *config.Gains
	}
	return pid.Config{
		Gains: pid.Gains{
			P: gains.P,
			I: gains.I,
			D: gains.D,
		},
		InitialStepSize: tuning.InitialStepSize,
		Tolerance:       tuning.Tolerance,
		ErrorScale:      tuning.ErrorScale,
		StepIncrease:    tuning.StepIncrease,
		StepDecrease:    tuning.StepDecrease,
		HistoryEnabled:  tuning.History.Enabled,
		HistorySize:     tuning.History.Size,
	}
}

func (s *session) GetId() string {
	return s.id
}

func (s *session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusRunning {
		s.mu.Unlock()
		return fmt.Errorf("session %s is already running", s.id)
	}
	s.status = StatusRunning
	s.startedAt = time.Now()
	s.mu.Unlock()

	ui.Info("Starting tuning of controller '%s' (window size: %d)", s.id, s.options.WindowSize)

	status := StatusRunning
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.status = status
		s.finishedAt = time.Now()
	}()

	for {
		if ctx.Err() != nil {
			ui.Warning("Tuning of controller '%s' cancelled after %d iterations", s.id, s.Iteration())
			status = StatusCancelled
			return nil
		}
		if s.options.MaxIterations > 0 && s.Iteration() >= s.options.MaxIterations {
			ui.Warning("Tuning of controller '%s' stopped after reaching the iteration limit of %d", s.id, s.options.MaxIterations)
			status = StatusStopped
			return nil
		}

		converged, err := s.step()
		if err != nil {
			status = StatusFailed
			return err
		}
		if converged {
			gains := s.controller.Gains()
			ui.Success("Controller '%s' converged after %d iterations: %s", s.id, s.Iteration(), gains)
			status = StatusConverged
			return nil
		}

		if s.options.Pacing > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.options.Pacing):
			}
		}
	}
}

// step runs a single evaluation window and passes it to the tuner
func (s *session) step() (converged bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plant.Reset()
	for i := 0; i < s.options.WindowSize; i++ {
		err = s.controller.UpdateError(s.plant.CrossTrackError())
		if err != nil {
			return false, fmt.Errorf("controller %s, window %d, sample %d: %w", s.id, s.iteration, i, err)
		}
		s.plant.Apply(s.controller.Output())
	}

	if !s.controller.Tune() {
		return true, nil
	}

	s.iteration++
	state := s.controller.State()
	s.windows = append(s.windows, WindowResult{
		Iteration: s.iteration,
		Error:     state.LastWindowError,
		BestError: state.BestError,
		Gains:     state.Gains,
		StepSizes: state.StepSizes,
		StepSum:   state.StepSum,
		Index:     state.Index,
		Phase:     state.Phase,
	})

	if s.iteration == 1 {
		util.FillWindow(s.recentErrors, recentErrorWindowSize, state.LastWindowError)
	} else {
		s.recentErrors.Append(state.LastWindowError)
	}
	return false, nil
}

func (s *session) Iteration() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iteration
}

func (s *session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Id:          s.id,
		Plant:       s.plantType,
		Status:      s.status,
		Iteration:   s.iteration,
		State:       s.controller.State(),
		RecentError: util.GetWindowAvg(s.recentErrors),
	}
}

func (s *session) Report() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.controller.State()
	windows := make([]WindowResult, len(s.windows))
	copy(windows, s.windows)

	return Report{
		ControllerId: s.id,
		Plant:        s.plantType,
		Status:       s.status,
		StartedAt:    s.startedAt,
		FinishedAt:   s.finishedAt,
		Iterations:   s.iteration,
		InitialGains: s.initialGains,
		Gains:        state.Gains,
		StepSizes:    state.StepSizes,
		BestError:    state.BestError,
		Windows:      windows,
	}
}
