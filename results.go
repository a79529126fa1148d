package intsurv

import (
	"math"
)

// BaseResults holds the parameter estimates of a fitted model together
// with their sampling uncertainty.  The standard errors, z-scores,
// p-values and hazard ratios are computed lazily from the covariance
// matrix; if no covariance matrix is available they are all nil.
type BaseResults struct {
	loglike float64
	params  []float64
	xnames  []string
	vcov    []float64
	stderr  []float64
	zscores []float64
	pvalues []float64
	hratios []float64
}

// NewBaseResults returns a BaseResults for the given estimates.  vcov is
// the vectorized covariance matrix of the estimates and may be nil when
// no covariance estimate is available.
func NewBaseResults(loglike float64, params []float64, xnames []string, vcov []float64) BaseResults {
	return BaseResults{
		loglike: loglike,
		params:  params,
		xnames:  xnames,
		vcov:    vcov,
	}
}

// Names returns the names of the covariates in the model.
func (rslt *BaseResults) Names() []string {
	return rslt.xnames
}

// Params returns the point estimates of the model parameters.
func (rslt *BaseResults) Params() []float64 {
	return rslt.params
}

// LogLike returns the log-likelihood of the fitted model.
func (rslt *BaseResults) LogLike() float64 {
	return rslt.loglike
}

// VCov returns the covariance matrix of the parameter estimates,
// vectorized to one dimension, or nil if unavailable.
func (rslt *BaseResults) VCov() []float64 {
	return rslt.vcov
}

// StdErr returns the standard errors of the parameter estimates, or nil
// if no covariance matrix is available.
func (rslt *BaseResults) StdErr() []float64 {

	if rslt.vcov == nil {
		return nil
	}
	if rslt.stderr != nil {
		return rslt.stderr
	}

	p := len(rslt.params)
	rslt.stderr = make([]float64, p)
	for i := range rslt.stderr {
		rslt.stderr[i] = math.Sqrt(rslt.vcov[i*p+i])
	}

	return rslt.stderr
}

// ZScores returns the parameter estimates divided by their standard
// errors, or nil if no covariance matrix is available.
func (rslt *BaseResults) ZScores() []float64 {

	std := rslt.StdErr()
	if std == nil {
		return nil
	}
	if rslt.zscores != nil {
		return rslt.zscores
	}

	rslt.zscores = make([]float64, len(std))
	for i := range std {
		rslt.zscores[i] = rslt.params[i] / std[i]
	}

	return rslt.zscores
}

func normcdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt(2))
}

// PValues returns two-sided p-values for the null hypothesis that each
// parameter is zero, or nil if no covariance matrix is available.
func (rslt *BaseResults) PValues() []float64 {

	z := rslt.ZScores()
	if z == nil {
		return nil
	}
	if rslt.pvalues != nil {
		return rslt.pvalues
	}

	rslt.pvalues = make([]float64, len(z))
	for i := range z {
		rslt.pvalues[i] = 2 * normcdf(-math.Abs(z[i]))
	}

	return rslt.pvalues
}

// HazardRatios returns the exponentiated parameter estimates.
func (rslt *BaseResults) HazardRatios() []float64 {

	if rslt.hratios != nil {
		return rslt.hratios
	}

	rslt.hratios = make([]float64, len(rslt.params))
	for i, b := range rslt.params {
		rslt.hratios[i] = math.Exp(b)
	}

	return rslt.hratios
}
