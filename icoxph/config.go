package icoxph

import (
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// ICoxRegConfig defines configuration parameters for an integrative Cox
// regression.  The zero value of a field means "use the default" only
// when the config is produced by DefaultICoxRegConfig; a config built
// directly must set every field it cares about.
type ICoxRegConfig struct {

	// GradTol is the gradient-norm tolerance of the inner Newton
	// maximizer.
	GradTol float64

	// StepMax is the maximum trust-region step size of the inner
	// Newton maximizer.
	StepMax float64

	// StepTol is the minimum relative step size of the inner Newton
	// maximizer.
	StepTol float64

	// IterLim is the iteration cap of the inner Newton maximizer.
	IterLim int

	// StepTolECM is the convergence tolerance for the relative
	// squared difference between successive coefficient vectors in
	// the outer ECM loop.
	StepTolECM float64

	// IterLimECM is the iteration cap of the outer ECM loop.
	IterLimECM int

	// NoSE skips the SECM variance estimation step when true.
	NoSE bool

	// FDStep is the finite-difference step used to build the DM
	// matrix.  When zero it defaults to sqrt(StepTolECM).
	FDStep float64

	// AlwaysUpdatePi forces the posterior membership weights to be
	// refreshed on every ECM iteration.  When nil, the policy is
	// derived from the run's starting censoring rate: rates below
	// 0.8 refresh every iteration, higher rates refresh only after
	// the relative coefficient change drops below sqrt(StepTolECM).
	// This mirrors the reference behavior and is a heuristic, not a
	// correctness requirement.
	AlwaysUpdatePi *bool

	// Start contains starting values for the coefficients, optional.
	Start []float64

	// CensorRates lists prior censoring-rate assumptions to use as
	// starting configurations, optional.  Each must lie in [0, 1].
	CensorRates []float64

	// PiVec is an explicit prior membership-probability vector, one
	// value per input record, overriding censoring-rate-based
	// initialization.
	PiVec []float64

	// MultiStart requests a grid search over censoring rates from 0
	// to 1 in steps of 0.1, in addition to the empirical rate.
	MultiStart bool

	// Workers bounds the number of concurrent goroutines used to run
	// independent starting configurations.  Values below 2 select the
	// sequential reference behavior.
	Workers int

	// OptMethod optionally replaces the built-in trust-region Newton
	// maximizer with a Gonum optimization method.
	OptMethod optimize.Method

	// OptSettings configures the Gonum optimization routine when
	// OptMethod is set.
	OptSettings *optimize.Settings

	// Log receives iteration summaries when non-nil.
	Log *log.Logger
}

// DefaultICoxRegConfig returns the default configuration for an
// integrative Cox regression.
func DefaultICoxRegConfig() *ICoxRegConfig {
	return &ICoxRegConfig{
		GradTol:    1e-6,
		StepMax:    1e2,
		StepTol:    1e-6,
		IterLim:    100,
		StepTolECM: 1e-4,
		IterLimECM: 100,
		NoSE:       true,
	}
}

// validate checks the configuration against the number of input
// records, filling derived defaults.  It is called once, before any
// optimization begins.
func (c *ICoxRegConfig) validate(nrec, nvar int) error {

	if c.GradTol <= 0 || c.StepTol <= 0 || c.StepTolECM <= 0 {
		return fmt.Errorf("icoxph: tolerances must be positive")
	}
	if c.StepMax <= 0 {
		return fmt.Errorf("icoxph: StepMax must be positive")
	}
	if c.IterLim <= 0 || c.IterLimECM <= 0 {
		return fmt.Errorf("icoxph: iteration limits must be positive")
	}

	if c.FDStep == 0 {
		c.FDStep = math.Sqrt(c.StepTolECM)
	}
	if c.FDStep <= 0 {
		return fmt.Errorf("icoxph: FDStep must be positive")
	}

	for _, r := range c.CensorRates {
		if r < 0 || r > 1 || math.IsNaN(r) {
			return fmt.Errorf("icoxph: censoring rate %v outside [0, 1]", r)
		}
	}

	if c.PiVec != nil {
		if len(c.PiVec) != nrec {
			return fmt.Errorf("icoxph: PiVec has length %d, expected %d", len(c.PiVec), nrec)
		}
		for _, v := range c.PiVec {
			if v < 0 || v > 1 || math.IsNaN(v) {
				return fmt.Errorf("icoxph: PiVec value %v outside [0, 1]", v)
			}
		}
	}

	if c.Start != nil && len(c.Start) != nvar {
		return fmt.Errorf("icoxph: Start has length %d, expected %d", len(c.Start), nvar)
	}

	return nil
}
