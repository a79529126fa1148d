package icoxph

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// HazardTable holds Breslow-type baseline hazard increments for the
// event process and the censoring process, one row per distinct record
// time, together with their cumulative sums.  It is rebuilt from the
// current membership weights on every ECM iteration.
type HazardTable struct {

	// Distinct record times, ascending
	Time []float64

	// Event-process hazard increment and its cumulative sum
	H0    []float64
	CumH0 []float64

	// Censoring-process hazard increment and its cumulative sum
	Hc    []float64
	CumHc []float64
}

// estimateHazard derives the baseline hazard table from risk-set
// aggregates.  The event increment at a time is the tie-aggregated
// event mass divided by k0; the censoring increment is the censoring
// mass divided by the tail sum of membership weights.  A zero numerator
// yields a zero increment, and near-zero denominators are guarded so
// that no NaN propagates.
func estimateHazard(rs *riskSet, times []float64) *HazardTable {

	nt := rs.nt
	ht := &HazardTable{
		Time:  times,
		H0:    make([]float64, nt),
		CumH0: make([]float64, nt),
		Hc:    make([]float64, nt),
		CumHc: make([]float64, nt),
	}

	for t := 0; t < nt; t++ {
		ht.H0[t] = guardedDiv(rs.dmass[t], rs.k0[t])
		ht.Hc[t] = guardedDiv(rs.cmass[t], rs.wtail[t])
	}

	var c0, cc float64
	for t := 0; t < nt; t++ {
		c0 += ht.H0[t]
		cc += ht.Hc[t]
		ht.CumH0[t] = c0
		ht.CumHc[t] = cc
	}

	return ht
}

const denomEps = 1e-300

// guardedDiv returns num/den, or zero when the numerator is zero or the
// denominator is vanishingly small.
func guardedDiv(num, den float64) float64 {
	if num == 0 || den < denomEps {
		return 0
	}
	return num / den
}

// HazardPlotter plots cumulative hazard functions as step curves.
type HazardPlotter struct {
	plt    *plot.Plot
	width  vg.Length
	height vg.Length
	lines  []*plotter.Line
	labels []string
}

// NewHazardPlotter returns a default HazardPlotter.
func NewHazardPlotter() *HazardPlotter {

	hp := &HazardPlotter{
		width:  4,
		height: 4,
	}
	hp.plt = plot.New()

	return hp
}

// Width sets the width of the plot in inches.
func (hp *HazardPlotter) Width(w float64) *HazardPlotter {
	hp.width = vg.Length(w)
	return hp
}

// Height sets the height of the plot in inches.
func (hp *HazardPlotter) Height(h float64) *HazardPlotter {
	hp.height = vg.Length(h)
	return hp
}

// Add plots the cumulative step function through the given times and
// cumulative values, e.g. a HazardTable's Time and CumH0 columns.
func (hp *HazardPlotter) Add(time, cum []float64, label string) *HazardPlotter {

	m := len(time)
	pts := make(plotter.XYs, 2*m+1)

	j := 0
	pts[j].X = 0
	pts[j].Y = 0
	j++

	for i := range time {
		pts[j].X = time[i]
		pts[j].Y = pts[j-1].Y
		j++
		pts[j].X = time[i]
		pts[j].Y = cum[i]
		j++
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		panic(err)
	}
	line.Color = plotutil.Color(len(hp.lines))

	hp.lines = append(hp.lines, line)
	hp.labels = append(hp.labels, label)

	return hp
}

// Plot assembles the plot from the curves added so far.
func (hp *HazardPlotter) Plot() *HazardPlotter {

	hp.plt.X.Label.Text = "Time"
	hp.plt.Y.Label.Text = "Cumulative hazard"

	for i := range hp.lines {
		hp.plt.Add(hp.lines[i])
		hp.plt.Legend.Add(hp.labels[i], hp.lines[i])
	}
	if len(hp.lines) > 1 {
		hp.plt.Legend.Top = true
		hp.plt.Legend.Left = true
	}

	return hp
}

// Save writes the plot to the given file.
func (hp *HazardPlotter) Save(fname string) error {
	return hp.plt.Save(hp.width*vg.Inch, hp.height*vg.Inch, fname)
}
