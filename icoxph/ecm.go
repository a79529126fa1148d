package icoxph

import (
	"math"
)

// FitState accumulates one ECM run: the coefficient and log-likelihood
// trajectories, the terminal weights and hazards, and how the run
// ended.  Runs that do not win the multi-start selection are discarded.
type FitState struct {

	// The starting configuration of this run
	Start StartConfig

	// Final coefficients and their trajectory across iterations
	Beta           []float64
	BetaTrajectory [][]float64

	// Observed-data log-likelihood per iteration
	LogLike []float64

	// Convergence code of the last maximizer call
	Code ConvergenceCode

	// Terminal state of the loop
	Converged    bool
	IterLimitHit bool
	NIter        int

	// Hessian of the negated profile log-likelihood at Beta
	Hess []float64

	// Final prior and posterior membership weights, sorted order
	Pi  []float64
	Pwt []float64

	// Hazard table at the final coefficients and weights
	Hazard *HazardTable
}

// FinalLogLike returns the last finite entry of the log-likelihood
// trajectory, or -Inf when no finite entry exists.
func (st *FitState) FinalLogLike() float64 {
	for i := len(st.LogLike) - 1; i >= 0; i-- {
		v := st.LogLike[i]
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	return math.Inf(-1)
}

// clippedExpLinPred fills elp with exp(X*beta), clipped at expClip.
func (m *ICoxReg) clippedExpLinPred(beta, elp []float64) {
	lp := m.linearPredictors(beta)
	for i, v := range lp {
		if v > lpClip {
			elp[i] = expClip
		} else {
			elp[i] = math.Exp(v)
		}
	}
}

// relSqDiff is the relative squared difference between successive
// coefficient vectors.
func relSqDiff(bnew, bold []float64) float64 {
	var num, den float64
	for i := range bnew {
		d := bnew[i] - bold[i]
		num += d * d
		den += bold[i] * bold[i]
	}
	return num / (den + 1e-10)
}

// runECM performs one full ECM run from the given starting
// configuration: E-steps that refresh the membership weights alternate
// with conditional-maximization steps for the coefficients, until the
// coefficients stabilize or the iteration cap is hit.  Both terminal
// states yield a usable FitState.
func (m *ICoxReg) runECM(start StartConfig) *FitState {

	cfg := m.config
	n := m.NumObs()
	np := m.NumParams()

	pi := m.initialPi(start)
	pwt := cloneSlice(pi)
	tmp := make([]float64, n)
	elp := make([]float64, n)
	rs := newRiskSet(len(m.utimes), np)

	var beta []float64
	if cfg.Start != nil {
		beta = cloneSlice(cfg.Start)
	} else {
		beta = make([]float64, np)
	}

	// Weight-refresh policy: refresh every iteration, or only once
	// the coefficients have nearly stabilized.
	alwaysUpdate := start.CensorRate < 0.8
	if cfg.AlwaysUpdatePi != nil {
		alwaysUpdate = *cfg.AlwaysUpdatePi
	}
	secondaryTol := math.Sqrt(cfg.StepTolECM)

	st := &FitState{Start: start}
	rel := math.Inf(1)

	for iter := 0; iter < cfg.IterLimECM; iter++ {

		m.clippedExpLinPred(beta, elp)
		rs.compute(m, pwt, elp)
		ht := estimateHazard(rs, m.utimes)

		ll := m.eStep(pi, elp, ht, tmp)
		st.LogLike = append(st.LogLike, ll)

		if alwaysUpdate || rel < secondaryTol {
			copy(pi, tmp)
			copy(pwt, tmp)
		}

		betaNew, hess, code := m.maximize(pwt, beta)
		st.Code = code
		st.Hess = hess

		rel = relSqDiff(betaNew, beta)
		beta = betaNew
		st.BetaTrajectory = append(st.BetaTrajectory, cloneSlice(beta))
		st.NIter = iter + 1

		if cfg.Log != nil {
			cfg.Log.Printf("icoxph: start %v iteration %d loglike %f rel %e code %v",
				start.describe(), iter+1, ll, rel, code)
		}

		if rel < cfg.StepTolECM {
			st.Converged = true
			break
		}
	}
	if !st.Converged {
		st.IterLimitHit = true
	}

	// Rebuild the hazard table at the terminal coefficients and
	// weights so the reported table matches Beta.
	m.clippedExpLinPred(beta, elp)
	rs.compute(m, pwt, elp)

	st.Beta = beta
	st.Pi = pi
	st.Pwt = pwt
	st.Hazard = estimateHazard(rs, m.utimes)

	return st
}

// initialPi derives the prior membership probabilities, in sorted
// record order, from a starting configuration.  Within a multi-record
// subject, a censoring record carries prior mass proportional to the
// assumed censoring rate and an event record mass proportional to its
// complement; a degenerate all-zero subject falls back to uniform
// weights.  Single-record subjects are fixed at 1.
func (m *ICoxReg) initialPi(start StartConfig) []float64 {

	n := m.NumObs()
	pi := make([]float64, n)

	if start.piSorted != nil {
		copy(pi, start.piSorted)
		for _, recs := range m.subjRecs {
			if len(recs) == 1 {
				pi[recs[0]] = 1
			}
		}
		return pi
	}

	c := start.CensorRate
	for _, recs := range m.subjRecs {

		if len(recs) == 1 {
			pi[recs[0]] = 1
			continue
		}

		var tot float64
		for _, i := range recs {
			if m.status[i] == 0 {
				pi[i] = c
			} else {
				pi[i] = 1 - c
			}
			tot += pi[i]
		}

		if tot <= 0 {
			for _, i := range recs {
				pi[i] = 1 / float64(len(recs))
			}
		} else {
			for _, i := range recs {
				pi[i] /= tot
			}
		}
	}

	return pi
}
