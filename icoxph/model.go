// Package icoxph fits a Cox-type proportional hazards regression model
// when imperfect record linkage has produced several candidate
// event/censoring records per subject, at most one of which is true.
// Estimation alternates posterior membership updates with profile
// partial-likelihood maximization (an ECM iteration), searches over
// several prior censoring-rate assumptions, and optionally corrects the
// standard errors for the latent-record uncertainty with a supplemented
// ECM (SECM) step.
package icoxph

import (
	"fmt"
	"sort"

	"github.com/guhjy/intsurv"
)

// ICoxReg describes an integrative Cox regression model for right
// censored, imperfectly linked data.
type ICoxReg struct {

	// Names of the covariates, in model order
	xnames []string

	// Records sorted by time, then subject, then input order.
	// These are immutable after ingestion.
	time   []float64
	status []float64
	x      [][]float64 // one column per covariate

	// Dense subject index per sorted record
	subj []int

	// Record indices (sorted order) belonging to each subject
	subjRecs [][]int

	// multi[i] is true when the subject of sorted record i has more
	// than one candidate record
	multi []bool

	// Distinct record times, ascending, and the index into them for
	// each sorted record
	utimes []float64
	timeIx []int

	// toOrig[i] is the original row of sorted record i
	toOrig []int

	// Empirical censoring rate among subjects with a single
	// unambiguous record
	empCensor float64

	nEvents int

	config *ICoxRegConfig
}

// NumObs returns the number of candidate records.
func (m *ICoxReg) NumObs() int {
	return len(m.time)
}

// NumParams returns the number of regression coefficients.
func (m *ICoxReg) NumParams() int {
	return len(m.x)
}

// NumSubjects returns the number of distinct subjects.
func (m *ICoxReg) NumSubjects() int {
	return len(m.subjRecs)
}

// NewICoxReg returns an ICoxReg value that can be used to fit an
// integrative Cox regression model.  subject, time and status name the
// subject id, event/censoring time and binary event indicator columns
// of data; predictors names the covariate columns.
func NewICoxReg(data intsurv.Dataset, subject, time, status string, predictors []string, config *ICoxRegConfig) (*ICoxReg, error) {

	if config == nil {
		config = DefaultICoxRegConfig()
	}

	subjCol, err := data.Column(subject)
	if err != nil {
		return nil, err
	}
	timeCol, err := data.Column(time)
	if err != nil {
		return nil, err
	}
	statusCol, err := data.Column(status)
	if err != nil {
		return nil, err
	}

	xcols := make([][]float64, len(predictors))
	for j, na := range predictors {
		xcols[j], err = data.Column(na)
		if err != nil {
			return nil, err
		}
	}
	if len(xcols) == 0 {
		return nil, fmt.Errorf("icoxph: no predictors given")
	}

	n := data.NumObs()
	for i := 0; i < n; i++ {
		if timeCol[i] < 0 {
			return nil, fmt.Errorf("icoxph: times cannot be negative")
		}
		if statusCol[i] != 0 && statusCol[i] != 1 {
			return nil, fmt.Errorf("icoxph: status variable '%s' has values other than 0 and 1", status)
		}
	}

	if err := config.validate(n, len(predictors)); err != nil {
		return nil, err
	}

	m := &ICoxReg{
		xnames: append([]string(nil), predictors...),
		config: config,
	}
	m.ingest(subjCol, timeCol, statusCol, xcols)

	return m, nil
}

// ingest copies the input columns into time order and builds the
// subject and tie indexes.  The sorted copies are never modified after
// this point, so concurrent ECM runs can share them freely.
func (m *ICoxReg) ingest(subjCol, timeCol, statusCol []float64, xcols [][]float64) {

	n := len(timeCol)

	inds := make([]int, n)
	for i := range inds {
		inds[i] = i
	}
	sort.SliceStable(inds, func(a, b int) bool {
		i, j := inds[a], inds[b]
		if timeCol[i] != timeCol[j] {
			return timeCol[i] < timeCol[j]
		}
		return subjCol[i] < subjCol[j]
	})

	m.toOrig = inds
	m.time = make([]float64, n)
	m.status = make([]float64, n)
	for i, j := range inds {
		m.time[i] = timeCol[j]
		m.status[i] = statusCol[j]
	}

	m.x = make([][]float64, len(xcols))
	for k, col := range xcols {
		xs := make([]float64, n)
		for i, j := range inds {
			xs[i] = col[j]
		}
		m.x[k] = xs
	}

	// Dense subject index, numbered by first appearance in sorted order
	m.subj = make([]int, n)
	subjOf := make(map[float64]int)
	for i, j := range inds {
		id := subjCol[j]
		s, ok := subjOf[id]
		if !ok {
			s = len(m.subjRecs)
			subjOf[id] = s
			m.subjRecs = append(m.subjRecs, nil)
		}
		m.subj[i] = s
		m.subjRecs[s] = append(m.subjRecs[s], i)
	}

	m.multi = make([]bool, n)
	for _, recs := range m.subjRecs {
		if len(recs) > 1 {
			for _, i := range recs {
				m.multi[i] = true
			}
		}
	}

	// Distinct times
	m.timeIx = make([]int, n)
	for i := 0; i < n; i++ {
		if i == 0 || m.time[i] != m.time[i-1] {
			m.utimes = append(m.utimes, m.time[i])
		}
		m.timeIx[i] = len(m.utimes) - 1
	}

	// Empirical censoring rate among unambiguous subjects
	var nSingle, nSingleCens int
	for _, recs := range m.subjRecs {
		if len(recs) == 1 {
			nSingle++
			if m.status[recs[0]] == 0 {
				nSingleCens++
			}
		}
	}
	if nSingle > 0 {
		m.empCensor = float64(nSingleCens) / float64(nSingle)
	} else {
		var nc int
		for i := range m.status {
			if m.status[i] == 0 {
				nc++
			}
		}
		m.empCensor = float64(nc) / float64(n)
	}

	for i := range m.status {
		if m.status[i] == 1 {
			m.nEvents++
		}
	}
}

// restoreOrder maps a per-record vector from sorted order back to the
// original input order.
func (m *ICoxReg) restoreOrder(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, j := range m.toOrig {
		out[j] = v[i]
	}
	return out
}

// linearPredictors returns X*beta over the sorted records.
func (m *ICoxReg) linearPredictors(beta []float64) []float64 {
	lp := make([]float64, m.NumObs())
	for j, col := range m.x {
		b := beta[j]
		for i, v := range col {
			lp[i] += b * v
		}
	}
	return lp
}
