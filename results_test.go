package intsurv

import (
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestBaseResults(t *testing.T) {

	params := []float64{0.2, -0.3}
	vcov := []float64{0.04, 0, 0, 0.09}

	rslt := NewBaseResults(-12.5, params, []string{"x1", "x2"}, vcov)

	if rslt.LogLike() != -12.5 {
		t.Fail()
	}
	if !floats.Equal(rslt.Params(), params) {
		t.Fail()
	}
	if rslt.Names()[1] != "x2" {
		t.Fail()
	}

	if !floats.EqualApprox(rslt.StdErr(), []float64{0.2, 0.3}, 1e-12) {
		t.Fail()
	}
	if !floats.EqualApprox(rslt.ZScores(), []float64{1, -1}, 1e-12) {
		t.Fail()
	}

	// Two-sided normal p-value at |z| = 1
	p := 2 * (1 - 0.8413447460685429)
	if !floats.EqualApprox(rslt.PValues(), []float64{p, p}, 1e-10) {
		t.Fail()
	}

	hr := rslt.HazardRatios()
	if math.Abs(hr[0]-math.Exp(0.2)) > 1e-12 || math.Abs(hr[1]-math.Exp(-0.3)) > 1e-12 {
		t.Fail()
	}
}

func TestBaseResultsNoVCov(t *testing.T) {

	rslt := NewBaseResults(-3, []float64{1}, []string{"x"}, nil)

	if rslt.VCov() != nil || rslt.StdErr() != nil {
		t.Fail()
	}
	if rslt.ZScores() != nil || rslt.PValues() != nil {
		t.Fail()
	}
	if rslt.HazardRatios()[0] != math.E {
		t.Fail()
	}
}

func TestSummaryTable(t *testing.T) {

	s := &SummaryTable{
		Title:    "Test model",
		Top:      []string{"n: 10"},
		ColNames: []string{"Variable", "Coefficient"},
		Cols: [][]string{
			FmtString([]string{"x1", "x2"}),
			FmtNumber([]float64{0.2, -0.3}),
		},
		Msg: []string{"note"},
	}

	out := s.String()
	for _, frag := range []string{"Test model", "n: 10", "Variable", "Coefficient", "x1", "0.2000", "-0.3000", "note"} {
		if !strings.Contains(out, frag) {
			t.Errorf("summary missing %q:\n%s", frag, out)
		}
	}
}
