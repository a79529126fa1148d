package icoxph

import (
	"fmt"
	"math"

	"github.com/guhjy/intsurv"
)

// ICoxResults describes the results of a fitted integrative Cox
// regression model.
type ICoxResults struct {
	intsurv.BaseResults

	model    *ICoxReg
	state    *FitState
	postProb []float64
	varErr   error
}

// Fit fits the model to the data: every starting configuration is run
// to termination, the run with the largest final observed-data
// log-likelihood is kept, and unless NoSE is set the SECM correction
// produces standard errors for its coefficients.
func (m *ICoxReg) Fit() (*ICoxResults, error) {

	starts := m.buildStartConfigs()
	states := m.runStarts(starts)
	win := selectWinner(states)

	var vcov []float64
	var varErr error
	if !m.config.NoSE {
		vcov, varErr = m.secmVCov(win)
		if varErr != nil && m.config.Log != nil {
			m.config.Log.Printf("icoxph: %v; standard errors unavailable", varErr)
		}
	}

	rslt := &ICoxResults{
		BaseResults: intsurv.NewBaseResults(win.FinalLogLike(), win.Beta, m.xnames, vcov),
		model:       m,
		state:       win,
		postProb:    m.restoreOrder(win.Pwt),
		varErr:      varErr,
	}

	return rslt, nil
}

// Model returns the model that produced the results.
func (rslt *ICoxResults) Model() *ICoxReg {
	return rslt.model
}

// HazardTable returns the baseline hazard table at the final
// coefficients and membership weights.
func (rslt *ICoxResults) HazardTable() *HazardTable {
	return rslt.state.Hazard
}

// PosteriorProb returns the posterior membership probability of each
// input record, in original input order.
func (rslt *ICoxResults) PosteriorProb() []float64 {
	return rslt.postProb
}

// LogLikeTrajectory returns the observed-data log-likelihood of the
// winning run at each ECM iteration.
func (rslt *ICoxResults) LogLikeTrajectory() []float64 {
	return rslt.state.LogLike
}

// BetaTrajectory returns the coefficient vector of the winning run at
// each ECM iteration.
func (rslt *ICoxResults) BetaTrajectory() [][]float64 {
	return rslt.state.BetaTrajectory
}

// ConvergenceCode returns the maximizer's convergence code from the
// last conditional-maximization step of the winning run.
func (rslt *ICoxResults) ConvergenceCode() ConvergenceCode {
	return rslt.state.Code
}

// Converged reports whether the winning ECM run met the coefficient
// tolerance before hitting its iteration cap.
func (rslt *ICoxResults) Converged() bool {
	return rslt.state.Converged
}

// NIter returns the number of ECM iterations of the winning run.
func (rslt *ICoxResults) NIter() int {
	return rslt.state.NIter
}

// StartUsed returns the starting configuration of the winning run.
func (rslt *ICoxResults) StartUsed() StartConfig {
	return rslt.state.Start
}

// Hessian returns the complete-data Hessian of the negated profile
// log-likelihood at the final coefficients, vectorized.
func (rslt *ICoxResults) Hessian() []float64 {
	return rslt.state.Hess
}

// VarianceError returns the error from SECM variance estimation, or
// nil; a non-nil value means standard errors are unavailable while the
// point estimates remain valid.
func (rslt *ICoxResults) VarianceError() error {
	return rslt.varErr
}

// LinearPredictors returns the fitted linear predictor of each record,
// in original input order.
func (rslt *ICoxResults) LinearPredictors() []float64 {
	return rslt.model.restoreOrder(rslt.model.linearPredictors(rslt.Params()))
}

// Summary returns a text summary table of the fitted model.
func (rslt *ICoxResults) Summary() *intsurv.SummaryTable {

	m := rslt.model
	st := rslt.state

	var nAmbig int
	for _, recs := range m.subjRecs {
		if len(recs) > 1 {
			nAmbig++
		}
	}

	sum := &intsurv.SummaryTable{
		Title: "Integrative Cox proportional hazards regression",
	}

	sum.Top = append(sum.Top, fmt.Sprintf("  Records:            %8d", m.NumObs()))
	sum.Top = append(sum.Top, fmt.Sprintf("  Subjects:           %8d", m.NumSubjects()))
	sum.Top = append(sum.Top, fmt.Sprintf("  Events:             %8d", m.nEvents))
	sum.Top = append(sum.Top, fmt.Sprintf("  Ambiguous subjects: %8d", nAmbig))
	sum.Top = append(sum.Top, fmt.Sprintf("  ECM iterations:     %8d", st.NIter))
	sum.Top = append(sum.Top, fmt.Sprintf("  Start:              %s", st.Start.describe()))
	sum.Top = append(sum.Top, "  Ties:               Breslow")

	se := rslt.StdErr()
	if se != nil {
		var lcb, ucb []float64
		for j, b := range rslt.Params() {
			lcb = append(lcb, math.Exp(b-2*se[j]))
			ucb = append(ucb, math.Exp(b+2*se[j]))
		}
		sum.ColNames = []string{"Variable", "Coefficient", "SE", "HR", "LCB", "UCB", "Z-score", "P-value"}
		sum.Cols = [][]string{
			intsurv.FmtString(rslt.Names()),
			intsurv.FmtNumber(rslt.Params()),
			intsurv.FmtNumber(se),
			intsurv.FmtNumber(rslt.HazardRatios()),
			intsurv.FmtNumber(lcb),
			intsurv.FmtNumber(ucb),
			intsurv.FmtNumber(rslt.ZScores()),
			intsurv.FmtNumber(rslt.PValues()),
		}
	} else {
		sum.ColNames = []string{"Variable", "Coefficient", "HR"}
		sum.Cols = [][]string{
			intsurv.FmtString(rslt.Names()),
			intsurv.FmtNumber(rslt.Params()),
			intsurv.FmtNumber(rslt.HazardRatios()),
		}
	}

	if rslt.varErr != nil {
		sum.Msg = append(sum.Msg, fmt.Sprintf("Standard errors unavailable: %v", rslt.varErr))
	}
	if st.IterLimitHit {
		sum.Msg = append(sum.Msg, fmt.Sprintf("ECM iteration limit (%d) reached", m.config.IterLimECM))
	}
	if st.Code != ConvSuccess && st.Code != ConvGradTol {
		sum.Msg = append(sum.Msg, fmt.Sprintf("Maximizer status: %v", st.Code))
	}

	return sum
}
