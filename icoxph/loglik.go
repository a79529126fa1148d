package icoxph

import (
	"math"
)

const (
	// Exponentiated linear predictors are clipped here; any clipped
	// record adds overflowPenalty to the negated log-likelihood,
	// steering the maximizer away from divergent regions.
	expClip         = 1e50
	overflowPenalty = 1e10
)

var lpClip = math.Log(expClip)

// objective carries the value, gradient and Hessian of the negated
// profile log-likelihood at one coefficient vector.  It is passed by
// reference only to reuse the buffers; every field is fully overwritten
// on each evaluation.
type objective struct {
	value float64
	grad  []float64
	hess  []float64 // np*np, row-major
}

func newObjective(np int) *objective {
	return &objective{
		grad: make([]float64, np),
		hess: make([]float64, np*np),
	}
}

// profileLogLik evaluates the negated profile partial log-likelihood of
// the coefficients for a fixed set of membership weights, together with
// its gradient and Hessian.  The baseline hazard has been profiled out
// analytically, leaving risk-set sums over the distinct record times.
type profileLogLik struct {
	m   *ICoxReg
	pwt []float64
	rs  *riskSet
	lp  []float64
	elp []float64

	// Weighted covariate sums over event records; these depend only
	// on the membership weights
	sumxd []float64
	sumd  float64
}

func newProfileLogLik(m *ICoxReg, pwt []float64) *profileLogLik {

	np := m.NumParams()
	pl := &profileLogLik{
		m:     m,
		pwt:   pwt,
		rs:    newRiskSet(len(m.utimes), np),
		lp:    make([]float64, m.NumObs()),
		elp:   make([]float64, m.NumObs()),
		sumxd: make([]float64, np),
	}

	for i := range m.status {
		if m.status[i] == 1 {
			pl.sumd += pwt[i]
			for j := 0; j < np; j++ {
				pl.sumxd[j] += pwt[i] * m.x[j][i]
			}
		}
	}

	return pl
}

// expLinPred fills lp and elp at beta, clipping overflowing
// exponentials, and returns the number of clipped records.
func (pl *profileLogLik) expLinPred(beta []float64) int {

	m := pl.m
	copy(pl.lp, m.linearPredictors(beta))

	var nclip int
	for i, v := range pl.lp {
		if v > lpClip {
			pl.elp[i] = expClip
			nclip++
		} else {
			pl.elp[i] = math.Exp(v)
		}
	}

	return nclip
}

// eval computes the negated profile log-likelihood and its derivatives
// at beta, writing them into obj.
func (pl *profileLogLik) eval(beta []float64, obj *objective) {

	m := pl.m
	np := m.NumParams()
	rs := pl.rs

	nclip := pl.expLinPred(beta)
	rs.compute(m, pl.pwt, pl.elp)

	// Value
	var ll float64
	for i := range m.status {
		if m.status[i] == 1 {
			ll += pl.pwt[i] * pl.lp[i]
		}
	}
	for t := 0; t < rs.nt; t++ {
		if rs.dmass[t] > 0 && rs.k0[t] >= denomEps {
			ll -= rs.dmass[t] * math.Log(rs.k0[t])
		}
	}
	obj.value = -ll + float64(nclip)*overflowPenalty

	// Gradient of the negated log-likelihood
	for j := 0; j < np; j++ {
		obj.grad[j] = -pl.sumxd[j]
	}
	r := make([]float64, np)
	for t := 0; t < rs.nt; t++ {
		d := rs.dmass[t]
		if d == 0 || rs.k0[t] < denomEps {
			continue
		}
		k1 := rs.k1[t*np : (t+1)*np]
		for j := 0; j < np; j++ {
			r[j] = k1[j] / rs.k0[t]
			obj.grad[j] += d * r[j]
		}
	}

	// Hessian of the negated log-likelihood
	zero(obj.hess)
	for t := 0; t < rs.nt; t++ {
		d := rs.dmass[t]
		if d == 0 || rs.k0[t] < denomEps {
			continue
		}
		k1 := rs.k1[t*np : (t+1)*np]
		k2 := rs.k2[t*np*np : (t+1)*np*np]
		for j := 0; j < np; j++ {
			r[j] = k1[j] / rs.k0[t]
		}
		for j := 0; j < np; j++ {
			for l := 0; l <= j; l++ {
				u := d * (k2[j*np+l]/rs.k0[t] - r[j]*r[l])
				obj.hess[j*np+l] += u
				if l != j {
					obj.hess[l*np+j] += u
				}
			}
		}
	}
}
