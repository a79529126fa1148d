package icoxph

import (
	"math"
)

// eStep recomputes the posterior membership probability of every record
// from the current prior pi, exponentiated linear predictors elp and
// hazard table ht, writing the posteriors into pwt.  It returns the
// observed-data log-likelihood, the sum over subjects of the log total
// membership score.
//
// An event record scores pi * h0(t)*exp(xb) * S(t) * Sc(t) and a
// censoring record pi * hc(t) * S(t) * Sc(t), where S is the
// event-process survival at the record's own linear predictor and Sc
// the censoring-process survival.  Subjects with a single candidate
// record keep weight 1; a multi-record subject whose scores sum to zero
// falls back to its prior weights.
func (m *ICoxReg) eStep(pi, elp []float64, ht *HazardTable, pwt []float64) float64 {

	n := m.NumObs()
	score := make([]float64, n)

	for i := 0; i < n; i++ {
		t := m.timeIx[i]
		surv := math.Exp(-ht.CumH0[t] * elp[i])
		csurv := math.Exp(-ht.CumHc[t])

		if m.status[i] == 1 {
			score[i] = pi[i] * ht.H0[t] * elp[i] * surv * csurv
		} else {
			score[i] = pi[i] * ht.Hc[t] * surv * csurv
		}
	}

	var ll float64
	for _, recs := range m.subjRecs {

		if len(recs) == 1 {
			i := recs[0]
			pwt[i] = 1
			ll += math.Log(score[i])
			continue
		}

		var tot float64
		for _, i := range recs {
			tot += score[i]
		}

		if tot <= 0 {
			// Degenerate zero-mass subject
			for _, i := range recs {
				pwt[i] = pi[i]
			}
		} else {
			for _, i := range recs {
				pwt[i] = score[i] / tot
			}
		}
		ll += math.Log(tot)
	}

	return ll
}
