package icoxph

// riskSet holds, for each distinct record time, reverse-cumulative
// (tail) sums over the records still at risk at that time.  With w_i =
// p_i * exp(x_i' beta),
//
//	k0[t] = sum of w_i over records with time >= t
//	k1[t] = sum of w_i * x_ij over the same records, one entry per covariate
//	k2[t] = sum of w_i * x_ij * x_il, one entry per covariate pair
//
// Tied times are collapsed: per-record contributions are summed within
// each tie group before the tail accumulation.  The aggregator also
// tracks the tie-aggregated event mass, censoring mass and tail weight
// sums needed by the hazard estimator.
type riskSet struct {
	nt int
	np int

	k0 []float64 // nt
	k1 []float64 // nt*np, row per time
	k2 []float64 // nt*np*np, row per time

	// Tie-aggregated masses per distinct time
	dmass []float64 // sum of status * p
	cmass []float64 // sum of (1-status) * p

	// Tail sum of the membership weights themselves
	wtail []float64
}

func newRiskSet(nt, np int) *riskSet {
	return &riskSet{
		nt:    nt,
		np:    np,
		k0:    make([]float64, nt),
		k1:    make([]float64, nt*np),
		k2:    make([]float64, nt*np*np),
		dmass: make([]float64, nt),
		cmass: make([]float64, nt),
		wtail: make([]float64, nt),
	}
}

// compute rebuilds every aggregate from the current membership weights
// pwt and exponentiated linear predictors elp, both in sorted record
// order.
func (rs *riskSet) compute(m *ICoxReg, pwt, elp []float64) {

	np := rs.np

	zero(rs.k0)
	zero(rs.k1)
	zero(rs.k2)
	zero(rs.dmass)
	zero(rs.cmass)
	zero(rs.wtail)

	// Within-tie-group sums
	for i := range m.time {
		t := m.timeIx[i]
		w := pwt[i] * elp[i]

		rs.k0[t] += w
		rs.wtail[t] += pwt[i]
		if m.status[i] == 1 {
			rs.dmass[t] += pwt[i]
		} else {
			rs.cmass[t] += pwt[i]
		}

		k1 := rs.k1[t*np : (t+1)*np]
		k2 := rs.k2[t*np*np : (t+1)*np*np]
		for j := 0; j < np; j++ {
			xj := m.x[j][i]
			k1[j] += w * xj
			for l := 0; l <= j; l++ {
				u := w * xj * m.x[l][i]
				k2[j*np+l] += u
				if l != j {
					k2[l*np+j] += u
				}
			}
		}
	}

	// Tail accumulation from the latest time backwards
	for t := rs.nt - 2; t >= 0; t-- {
		rs.k0[t] += rs.k0[t+1]
		rs.wtail[t] += rs.wtail[t+1]

		k1, k1n := rs.k1[t*np:(t+1)*np], rs.k1[(t+1)*np:(t+2)*np]
		for j := range k1 {
			k1[j] += k1n[j]
		}
		k2, k2n := rs.k2[t*np*np:(t+1)*np*np], rs.k2[(t+1)*np*np:(t+2)*np*np]
		for j := range k2 {
			k2[j] += k2n[j]
		}
	}
}

func zero(x []float64) {
	for i := range x {
		x[i] = 0
	}
}
