package icoxph

import (
	"fmt"
	"testing"

	"github.com/guhjy/intsurv"
	"gonum.org/v1/gonum/floats"
)

// Four records, one tie pair at time 1, every subject unambiguous.
func data1() intsurv.Dataset {

	da := [][]float64{
		{1, 2, 3, 4},
		{1, 1, 2, 3},
		{1, 0, 1, 0},
		{1, 2, 3, 4},
	}
	names := []string{"subject", "time", "status", "x"}

	ds, err := intsurv.NewDataset(da, names)
	if err != nil {
		panic(err)
	}
	return ds
}

func model1(t *testing.T) *ICoxReg {
	m, err := NewICoxReg(data1(), "subject", "time", "status", []string{"x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func TestRiskSetUnitWeights(t *testing.T) {

	m := model1(t)

	rs := newRiskSet(len(m.utimes), 1)
	rs.compute(m, ones(4), ones(4))

	if !floats.EqualApprox(rs.k0, []float64{4, 2, 1}, 1e-12) {
		fmt.Printf("k0: got %v\n", rs.k0)
		t.Fail()
	}
	if !floats.EqualApprox(rs.k1, []float64{10, 7, 4}, 1e-12) {
		fmt.Printf("k1: got %v\n", rs.k1)
		t.Fail()
	}
	if !floats.EqualApprox(rs.k2, []float64{30, 25, 16}, 1e-12) {
		fmt.Printf("k2: got %v\n", rs.k2)
		t.Fail()
	}
	if !floats.EqualApprox(rs.dmass, []float64{1, 1, 0}, 1e-12) {
		fmt.Printf("dmass: got %v\n", rs.dmass)
		t.Fail()
	}
	if !floats.EqualApprox(rs.cmass, []float64{1, 0, 1}, 1e-12) {
		fmt.Printf("cmass: got %v\n", rs.cmass)
		t.Fail()
	}
	if !floats.EqualApprox(rs.wtail, []float64{4, 2, 1}, 1e-12) {
		fmt.Printf("wtail: got %v\n", rs.wtail)
		t.Fail()
	}
}

func TestRiskSetMembershipWeights(t *testing.T) {

	m := model1(t)

	pwt := []float64{0.5, 1, 1, 0.25}
	rs := newRiskSet(len(m.utimes), 1)
	rs.compute(m, pwt, ones(4))

	if !floats.EqualApprox(rs.k0, []float64{2.75, 1.25, 0.25}, 1e-12) {
		fmt.Printf("k0: got %v\n", rs.k0)
		t.Fail()
	}
	if !floats.EqualApprox(rs.k1, []float64{6.5, 4, 1}, 1e-12) {
		fmt.Printf("k1: got %v\n", rs.k1)
		t.Fail()
	}
	if !floats.EqualApprox(rs.k2, []float64{17.5, 13, 4}, 1e-12) {
		fmt.Printf("k2: got %v\n", rs.k2)
		t.Fail()
	}
	if !floats.EqualApprox(rs.dmass, []float64{0.5, 1, 0}, 1e-12) {
		fmt.Printf("dmass: got %v\n", rs.dmass)
		t.Fail()
	}
	if !floats.EqualApprox(rs.cmass, []float64{1, 0, 0.25}, 1e-12) {
		fmt.Printf("cmass: got %v\n", rs.cmass)
		t.Fail()
	}
}

func TestRiskSetExpPredictors(t *testing.T) {

	m := model1(t)

	// elp = 2^x
	elp := []float64{2, 4, 8, 16}
	rs := newRiskSet(len(m.utimes), 1)
	rs.compute(m, ones(4), elp)

	if !floats.EqualApprox(rs.k0, []float64{30, 24, 16}, 1e-12) {
		fmt.Printf("k0: got %v\n", rs.k0)
		t.Fail()
	}
	// k1 groups: 2*1+4*2=10, 8*3=24, 16*4=64
	if !floats.EqualApprox(rs.k1, []float64{98, 88, 64}, 1e-12) {
		fmt.Printf("k1: got %v\n", rs.k1)
		t.Fail()
	}
}
