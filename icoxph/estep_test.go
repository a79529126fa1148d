package icoxph

import (
	"fmt"
	"math"
	"testing"

	"github.com/guhjy/intsurv"
)

// Six subjects, three of them with two candidate records each.
func data3() intsurv.Dataset {

	da := [][]float64{
		{1, 1, 2, 3, 3, 4, 5, 5, 6},
		{2, 5, 1, 3, 6, 4, 2, 7, 5},
		{1, 0, 1, 1, 0, 0, 0, 1, 1},
		{1, 2, -1, 0.5, 1, 2, -0.5, 1.5, 0},
	}
	names := []string{"subject", "time", "status", "x"}

	ds, err := intsurv.NewDataset(da, names)
	if err != nil {
		panic(err)
	}
	return ds
}

func model3(t *testing.T) *ICoxReg {
	m, err := NewICoxReg(data3(), "subject", "time", "status", []string{"x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func (m *ICoxReg) runOneEStep(beta []float64, pi []float64, pwt []float64) float64 {
	n := m.NumObs()
	elp := make([]float64, n)
	rs := newRiskSet(len(m.utimes), m.NumParams())
	m.clippedExpLinPred(beta, elp)
	rs.compute(m, pi, elp)
	ht := estimateHazard(rs, m.utimes)
	return m.eStep(pi, elp, ht, pwt)
}

func TestEStepWeightsSumToOne(t *testing.T) {

	m := model3(t)
	n := m.NumObs()

	for _, beta := range [][]float64{{0}, {0.5}, {-1}} {

		pi := m.initialPi(StartConfig{CensorRate: 0.4})
		pwt := make([]float64, n)
		m.runOneEStep(beta, pi, pwt)

		for s, recs := range m.subjRecs {
			if len(recs) == 1 {
				if pwt[recs[0]] != 1 {
					fmt.Printf("single-record subject %d has weight %v\n", s, pwt[recs[0]])
					t.Fail()
				}
				continue
			}
			var tot float64
			for _, i := range recs {
				tot += pwt[i]
			}
			if math.Abs(tot-1) > 1e-10 {
				fmt.Printf("subject %d weights sum to %v\n", s, tot)
				t.Fail()
			}
		}
	}
}

func TestEStepZeroMassFallback(t *testing.T) {

	m := model3(t)
	n := m.NumObs()

	pi := m.initialPi(StartConfig{CensorRate: 0.4})
	elp := ones(n)

	// An all-zero hazard table gives every record a zero score
	ht := &HazardTable{
		Time:  m.utimes,
		H0:    make([]float64, len(m.utimes)),
		CumH0: make([]float64, len(m.utimes)),
		Hc:    make([]float64, len(m.utimes)),
		CumHc: make([]float64, len(m.utimes)),
	}

	pwt := make([]float64, n)
	m.eStep(pi, elp, ht, pwt)

	for _, recs := range m.subjRecs {
		if len(recs) == 1 {
			if pwt[recs[0]] != 1 {
				t.Fail()
			}
			continue
		}
		for _, i := range recs {
			if pwt[i] != pi[i] {
				fmt.Printf("expected prior fallback, got %v want %v\n", pwt[i], pi[i])
				t.Fail()
			}
		}
	}
}

func TestInitialPi(t *testing.T) {

	m := model3(t)

	pi := m.initialPi(StartConfig{CensorRate: 0.25})

	for s, recs := range m.subjRecs {
		if len(recs) == 1 {
			if pi[recs[0]] != 1 {
				t.Fail()
			}
			continue
		}
		var tot float64
		for _, i := range recs {
			tot += pi[i]
			// Censoring records carry mass proportional to the
			// assumed censoring rate
			if m.status[i] == 0 && pi[i] > 0.5 {
				fmt.Printf("subject %d: censoring record overweighted: %v\n", s, pi[i])
				t.Fail()
			}
		}
		if math.Abs(tot-1) > 1e-12 {
			fmt.Printf("subject %d priors sum to %v\n", s, tot)
			t.Fail()
		}
	}

	// Degenerate rates fall back to valid distributions
	for _, r := range []float64{0, 1} {
		pi := m.initialPi(StartConfig{CensorRate: r})
		for _, recs := range m.subjRecs {
			var tot float64
			for _, i := range recs {
				tot += pi[i]
			}
			if math.Abs(tot-1) > 1e-12 {
				fmt.Printf("rate %v: weights sum to %v\n", r, tot)
				t.Fail()
			}
		}
	}

	// An explicit vector passes through, with unambiguous records
	// forced to one
	ps := make([]float64, m.NumObs())
	for i := range ps {
		ps[i] = 0.5
	}
	pi = m.initialPi(StartConfig{piSorted: ps})
	for _, recs := range m.subjRecs {
		if len(recs) == 1 && pi[recs[0]] != 1 {
			t.Fail()
		}
		if len(recs) > 1 {
			for _, i := range recs {
				if pi[i] != 0.5 {
					t.Fail()
				}
			}
		}
	}

}
