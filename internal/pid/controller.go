package pid

import (
	"errors"
	"fmt"
	"math"

	"github.com/markusressel/twiddle/internal/ui"
)

var (
	ErrNonFiniteError = errors.New("cross-track error must be a finite number")
)

// Gains holds the coefficients of the proportional, integral and derivative terms
type Gains struct {
	P float64 `json:"p" yaml:"p"`
	I float64 `json:"i" yaml:"i"`
	D float64 `json:"d" yaml:"d"`
}

func (g Gains) String() string {
	return fmt.Sprintf("[%g,%g,%g]", g.P, g.I, g.D)
}

func (g Gains) toArray() [3]float64 {
	return [3]float64{g.P, g.I, g.D}
}

func gainsFromArray(ks [3]float64) Gains {
	return Gains{P: ks[0], I: ks[1], D: ks[2]}
}

// Config holds the construction parameters of a Controller
type Config struct {
	// Gains used before any tuning took place
	Gains Gains `json:"gains"`
	// InitialStepSize is the starting perturbation magnitude of every gain
	InitialStepSize float64 `json:"initialStepSize"`
	// Tolerance for the sum of all step sizes, tuning stops once the sum is below it
	Tolerance float64 `json:"tolerance"`
	// ErrorScale divides the accumulated squared error of a window before it is compared
	ErrorScale float64 `json:"errorScale"`
	// StepIncrease is the factor a step size grows by after an improvement
	StepIncrease float64 `json:"stepIncrease"`
	// StepDecrease is the factor a step size shrinks by after a failed +/- trial
	StepDecrease float64 `json:"stepDecrease"`

	// HistoryEnabled records the most recent samples, this has no influence on the output
	HistoryEnabled bool `json:"historyEnabled"`
	HistorySize    int  `json:"historySize"`
}

var (
	DefaultGains = Gains{
		P: 0.25,
		I: 0.0025,
		D: 10,
	}

	DefaultConfig = Config{
		Gains:           DefaultGains,
		InitialStepSize: 1.0,
		Tolerance:       0.2,
		ErrorScale:      1000.0,
		StepIncrease:    1.1,
		StepDecrease:    0.9,
		HistoryEnabled:  false,
		HistorySize:     50,
	}
)

func (c Config) Validate() error {
	for name, value := range map[string]float64{
		"initialStepSize": c.InitialStepSize,
		"tolerance":       c.Tolerance,
		"errorScale":      c.ErrorScale,
		"stepIncrease":    c.StepIncrease,
		"stepDecrease":    c.StepDecrease,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			return fmt.Errorf("%s must be a positive finite number, got %v", name, value)
		}
	}
	for _, k := range c.Gains.toArray() {
		if math.IsNaN(k) || math.IsInf(k, 0) {
			return fmt.Errorf("gains must be finite, got %s", c.Gains)
		}
	}
	if c.HistoryEnabled && c.HistorySize <= 0 {
		return fmt.Errorf("historySize must be >= 1 when the history is enabled, got %d", c.HistorySize)
	}
	return nil
}

// Controller is a PID controller which tunes its own gains using the twiddle algorithm.
// It is not safe for concurrent use.
type Controller struct {
	config Config

	ks        [3]float64
	stepSizes [3]float64

	proportionalError float64
	integralError     float64
	derivativeError   float64
	cumulativeError   float64

	// scaled cumulative error of the last window evaluated by Tune
	lastWindowError float64
	bestError       float64
	isFirstRun      bool

	index int
	phase Phase

	history *ErrorHistory
}

// State is a snapshot of the internal state of a Controller
type State struct {
	Gains             Gains      `json:"gains" yaml:"gains"`
	StepSizes         [3]float64 `json:"stepSizes" yaml:"stepSizes"`
	StepSum           float64    `json:"stepSum" yaml:"stepSum"`
	ProportionalError float64    `json:"proportionalError" yaml:"proportionalError"`
	IntegralError     float64    `json:"integralError" yaml:"integralError"`
	DerivativeError   float64    `json:"derivativeError" yaml:"derivativeError"`
	CumulativeError   float64    `json:"cumulativeError" yaml:"cumulativeError"`
	LastWindowError   float64    `json:"lastWindowError" yaml:"lastWindowError"`
	BestError         float64    `json:"bestError" yaml:"bestError"`
	FirstRun          bool       `json:"firstRun" yaml:"firstRun"`
	Index             int        `json:"index" yaml:"index"`
	Phase             Phase      `json:"phase" yaml:"phase"`
	Output            float64    `json:"output" yaml:"output"`
}

// NewController creates a Controller from the given configuration
func NewController(config Config) (*Controller, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		config:     config,
		ks:         config.Gains.toArray(),
		isFirstRun: true,
		phase:      PhaseTryIncrease,
	}
	for i := range c.stepSizes {
		c.stepSizes[i] = config.InitialStepSize
	}
	if config.HistoryEnabled {
		c.history = NewErrorHistory(config.HistorySize)
	}
	return c, nil
}

// NewDefaultController creates a Controller using DefaultConfig
func NewDefaultController() *Controller {
	c, _ := NewController(DefaultConfig)
	return c
}

// NewControllerWithGains creates a Controller using DefaultConfig with the given initial gains
func NewControllerWithGains(kp, ki, kd float64) (*Controller, error) {
	config := DefaultConfig
	config.Gains = Gains{P: kp, I: ki, D: kd}
	return NewController(config)
}

// UpdateError feeds a new cross-track error sample into the controller
func (c *Controller) UpdateError(cte float64) error {
	if math.IsNaN(cte) || math.IsInf(cte, 0) {
		return ErrNonFiniteError
	}

	c.derivativeError = cte - c.proportionalError
	c.proportionalError = cte
	c.cumulativeError += cte * cte
	c.integralError += cte

	if c.history != nil {
		c.history.Append(cte)
	}
	return nil
}

// Output returns the corrective signal for the current error terms
func (c *Controller) Output() float64 {
	return -(c.ks[0]*c.proportionalError + c.ks[1]*c.integralError + c.ks[2]*c.derivativeError)
}

// Tune evaluates the window accumulated since the last call and advances the
// twiddle state machine by exactly one step.
// Returns false once the step sizes have converged, true otherwise.
func (c *Controller) Tune() bool {
	stepSum := c.StepSum()
	if stepSum < c.config.Tolerance {
		c.phase = PhaseSettled
		ui.Info("Finished twiddle - %s CErr = %g BErr = %g Phase = %s CV = %d FT = %g",
			gainsFromArray(c.ks), c.cumulativeError, c.bestError, c.phase, c.index, stepSum)
		return false
	}

	c.cumulativeError = c.cumulativeError / c.config.ErrorScale
	c.lastWindowError = c.cumulativeError

	if c.isFirstRun {
		c.bestError = c.cumulativeError
		c.isFirstRun = false
	}

	ui.Debug("Twiddling - %s CErr = %g BErr = %g Phase = %s CV = %d FT = %g",
		gainsFromArray(c.ks), c.cumulativeError, c.bestError, c.phase, c.index, stepSum)

	i := c.index
	switch {
	case c.phase == PhaseTryIncrease:
		c.ks[i] += c.stepSizes[i]
		c.phase = PhaseTryDecrease
	case c.cumulativeError < c.bestError:
		// keep the gain as it is and widen the step for the next round
		c.bestError = c.cumulativeError
		c.stepSizes[i] *= c.config.StepIncrease
		c.nextGain()
	case c.phase == PhaseTryDecrease:
		c.ks[i] -= 2 * c.stepSizes[i]
		c.phase = PhaseEvaluate
	default:
		// neither direction helped, restore the original value
		c.ks[i] += c.stepSizes[i]
		c.stepSizes[i] *= c.config.StepDecrease
		c.nextGain()
	}

	c.resetWindow()
	return true
}

func (c *Controller) nextGain() {
	c.phase = PhaseTryIncrease
	c.index = (c.index + 1) % len(c.ks)
}

func (c *Controller) resetWindow() {
	c.proportionalError = 0
	c.integralError = 0
	c.derivativeError = 0
	c.cumulativeError = 0
}

func (c *Controller) Gains() Gains {
	return gainsFromArray(c.ks)
}

func (c *Controller) StepSizes() [3]float64 {
	return c.stepSizes
}

// StepSum returns the sum of all step sizes, which is compared against the tolerance
func (c *Controller) StepSum() float64 {
	total := 0.0
	for _, step := range c.stepSizes {
		total += step
	}
	return total
}

// Index returns the index of the gain currently being tuned (0 = P, 1 = I, 2 = D)
func (c *Controller) Index() int {
	return c.index
}

func (c *Controller) Phase() Phase {
	return c.phase
}

// BestError returns the lowest scaled window error seen so far and
// whether any window has been evaluated yet
func (c *Controller) BestError() (float64, bool) {
	return c.bestError, !c.isFirstRun
}

// Converged reports whether Tune has stopped adjusting the gains
func (c *Controller) Converged() bool {
	return c.phase == PhaseSettled
}

func (c *Controller) Config() Config {
	return c.config
}

// History returns the recorded samples, oldest first, or nil if the history is disabled
func (c *Controller) History() []float64 {
	if c.history == nil {
		return nil
	}
	return c.history.Values()
}

func (c *Controller) State() State {
	return State{
		Gains:             c.Gains(),
		StepSizes:         c.stepSizes,
		StepSum:           c.StepSum(),
		ProportionalError: c.proportionalError,
		IntegralError:     c.integralError,
		DerivativeError:   c.derivativeError,
		CumulativeError:   c.cumulativeError,
		LastWindowError:   c.lastWindowError,
		BestError:         c.bestError,
		FirstRun:          c.isFirstRun,
		Index:             c.index,
		Phase:             c.phase,
		Output:            c.Output(),
	}
}
