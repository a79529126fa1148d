package icoxph

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// ConvergenceCode reports how the coefficient maximizer terminated.
// Any non-success code is surfaced in the final results rather than
// treated as fatal; the outer ECM loop keeps using the returned
// coefficients.
type ConvergenceCode int

const (
	// ConvSuccess: successive iterates are within the step tolerance.
	ConvSuccess ConvergenceCode = iota

	// ConvGradTol: the gradient norm dropped below the tolerance.
	ConvGradTol

	// ConvStepTol: no downhill step of acceptable size could be found.
	ConvStepTol

	// ConvIterLim: the iteration cap was reached.
	ConvIterLim

	// ConvFailed: the objective or its derivatives became unusable.
	ConvFailed
)

func (c ConvergenceCode) String() string {
	switch c {
	case ConvSuccess:
		return "success"
	case ConvGradTol:
		return "gradient tolerance met"
	case ConvStepTol:
		return "step size too small"
	case ConvIterLim:
		return "iteration limit reached"
	}
	return "failure"
}

// objFunc evaluates an objective with gradient and Hessian at beta,
// overwriting obj.
type objFunc func(beta []float64, obj *objective)

// newtonMinimize drives fn to a local minimum with a Newton-type
// trust-region iteration: the Newton direction is computed from the
// (ridge-stabilized) Hessian, clamped to stepmax, and backtracked until
// the objective decreases.  It returns the minimizing point, the
// Hessian evaluated there, and a convergence code.
func newtonMinimize(fn objFunc, start []float64, gradtol, stepmax, steptol float64, iterlim int) ([]float64, []float64, ConvergenceCode) {

	np := len(start)
	beta := make([]float64, np)
	copy(beta, start)

	obj := newObjective(np)
	trialObj := newObjective(np)
	trial := make([]float64, np)
	step := make([]float64, np)

	fn(beta, obj)
	if !allFinite(obj.value, obj.grad) {
		return beta, cloneSlice(obj.hess), ConvFailed
	}

	code := ConvIterLim
	for iter := 0; iter < iterlim; iter++ {

		if floats.Norm(obj.grad, math.Inf(1)) < gradtol {
			code = ConvGradTol
			break
		}

		if !newtonDirection(obj, step) {
			code = ConvFailed
			break
		}

		// Clamp to the maximum trust-region step
		if sn := floats.Norm(step, 2); sn > stepmax {
			floats.Scale(stepmax/sn, step)
		}

		// Backtrack until the objective decreases
		alpha := 1.0
		accepted := false
		for {
			copy(trial, beta)
			floats.AddScaled(trial, alpha, step)

			fn(trial, trialObj)
			if allFinite(trialObj.value, trialObj.grad) && trialObj.value < obj.value {
				accepted = true
				break
			}

			alpha /= 2
			if alpha*relStepSize(step, beta) < steptol {
				break
			}
		}
		if !accepted {
			code = ConvStepTol
			break
		}

		rel := alpha * relStepSize(step, beta)
		copy(beta, trial)
		obj, trialObj = trialObj, obj

		if rel < steptol {
			code = ConvSuccess
			break
		}
	}

	return beta, cloneSlice(obj.hess), code
}

// newtonDirection solves hess * step = -grad, adding an escalating
// ridge when the Hessian is not positive definite.  It reports whether
// a usable direction was found.
func newtonDirection(obj *objective, step []float64) bool {

	np := len(step)

	sym := mat.NewSymDense(np, nil)
	for i := 0; i < np; i++ {
		for j := i; j < np; j++ {
			sym.SetSym(i, j, 0.5*(obj.hess[i*np+j]+obj.hess[j*np+i]))
		}
	}

	var maxDiag float64
	for i := 0; i < np; i++ {
		if d := math.Abs(sym.At(i, i)); d > maxDiag {
			maxDiag = d
		}
	}

	ng := mat.NewVecDense(np, nil)
	for i := 0; i < np; i++ {
		ng.SetVec(i, -obj.grad[i])
	}

	var chol mat.Cholesky
	lam := 0.0
	for k := 0; k < 40; k++ {
		if lam > 0 {
			for i := 0; i < np; i++ {
				sym.SetSym(i, i, sym.At(i, i)+lam)
			}
		}
		if chol.Factorize(sym) {
			var dst mat.VecDense
			if err := chol.SolveVecTo(&dst, ng); err == nil {
				for i := 0; i < np; i++ {
					step[i] = dst.AtVec(i)
				}
				return allFinite(0, step)
			}
		}
		if lam == 0 {
			lam = 1e-8 * (1 + maxDiag)
		} else {
			lam *= 10
		}
	}

	return false
}

// relStepSize is the largest component of the step relative to the
// magnitude of the current point.
func relStepSize(step, beta []float64) float64 {
	var r float64
	for i := range step {
		d := math.Abs(beta[i])
		if d < 1 {
			d = 1
		}
		if v := math.Abs(step[i]) / d; v > r {
			r = v
		}
	}
	return r
}

func allFinite(v float64, x []float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	for _, u := range x {
		if math.IsNaN(u) || math.IsInf(u, 0) {
			return false
		}
	}
	return true
}

func cloneSlice(x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	return y
}

// gonumMinimize runs a Gonum optimization method over fn, for callers
// that configure OptMethod.  The Hessian at the returned point is
// re-evaluated from fn so that downstream variance estimation sees the
// same information matrix as with the built-in Newton path.
func gonumMinimize(fn objFunc, start []float64, method optimize.Method, settings *optimize.Settings,
	gradtol float64, iterlim int) ([]float64, []float64, ConvergenceCode) {

	np := len(start)
	obj := newObjective(np)

	prob := optimize.Problem{
		Func: func(x []float64) float64 {
			fn(x, obj)
			return obj.value
		},
		Grad: func(grad, x []float64) {
			fn(x, obj)
			copy(grad, obj.grad)
		},
		Hess: func(dst *mat.SymDense, x []float64) {
			fn(x, obj)
			for i := 0; i < np; i++ {
				for j := i; j < np; j++ {
					dst.SetSym(i, j, 0.5*(obj.hess[i*np+j]+obj.hess[j*np+i]))
				}
			}
		},
	}

	if settings == nil {
		settings = &optimize.Settings{
			GradientThreshold: gradtol,
			MajorIterations:   iterlim,
		}
	}

	rslt, err := optimize.Minimize(prob, start, settings, method)
	if rslt == nil || len(rslt.X) != np {
		beta := cloneSlice(start)
		fn(beta, obj)
		return beta, cloneSlice(obj.hess), ConvFailed
	}

	beta := cloneSlice(rslt.X)
	fn(beta, obj)

	code := ConvFailed
	if err == nil {
		switch rslt.Status {
		case optimize.GradientThreshold:
			code = ConvGradTol
		case optimize.Success, optimize.FunctionConvergence, optimize.StepConvergence, optimize.MethodConverge, optimize.FunctionThreshold:
			code = ConvSuccess
		case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.GradientEvaluationLimit, optimize.RuntimeLimit:
			code = ConvIterLim
		}
	}

	return beta, cloneSlice(obj.hess), code
}

// maximize updates the coefficients for the current membership weights
// by minimizing the negated profile log-likelihood.
func (m *ICoxReg) maximize(pwt, start []float64) ([]float64, []float64, ConvergenceCode) {

	pl := newProfileLogLik(m, pwt)
	c := m.config

	if c.OptMethod != nil {
		return gonumMinimize(pl.eval, start, c.OptMethod, c.OptSettings, c.GradTol, c.IterLim)
	}

	return newtonMinimize(pl.eval, start, c.GradTol, c.StepMax, c.StepTol, c.IterLim)
}
