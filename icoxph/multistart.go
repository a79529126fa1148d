package icoxph

import (
	"fmt"
	"sort"
	"sync"
)

// StartConfig is one entry in the multi-start search: a scalar prior
// censoring-rate assumption, or an explicit prior membership vector
// that overrides it.
type StartConfig struct {

	// CensorRate is the assumed prior censoring rate in [0, 1].
	CensorRate float64

	// piSorted is an explicit prior membership vector in sorted
	// record order, set when the caller supplied PiVec.
	piSorted []float64
}

// Explicit reports whether this start was built from an explicit
// membership vector rather than a censoring rate.
func (sc StartConfig) Explicit() bool {
	return sc.piSorted != nil
}

func (sc StartConfig) describe() string {
	if sc.piSorted != nil {
		return "explicit pi vector"
	}
	return fmt.Sprintf("censoring rate %.3f", sc.CensorRate)
}

// buildStartConfigs assembles the starting configurations for the
// multi-start search: an explicit membership vector when given, the
// listed censoring rates when given, a grid plus the empirical rate
// when MultiStart is requested, and otherwise the single empirical
// censoring rate among unambiguous subjects.
func (m *ICoxReg) buildStartConfigs() []StartConfig {

	cfg := m.config

	if cfg.PiVec != nil {
		// PiVec is given in original input order
		ps := make([]float64, len(cfg.PiVec))
		for i, j := range m.toOrig {
			ps[i] = cfg.PiVec[j]
		}
		return []StartConfig{{CensorRate: m.empCensor, piSorted: ps}}
	}

	var rates []float64
	switch {
	case cfg.CensorRates != nil:
		rates = append(rates, cfg.CensorRates...)
	case cfg.MultiStart:
		for k := 0; k <= 10; k++ {
			rates = append(rates, float64(k)/10)
		}
		rates = append(rates, m.empCensor)
		sort.Float64s(rates)
		rates = dedupFloats(rates)
	default:
		rates = []float64{m.empCensor}
	}

	starts := make([]StartConfig, len(rates))
	for i, r := range rates {
		starts[i] = StartConfig{CensorRate: r}
	}
	return starts
}

func dedupFloats(x []float64) []float64 {
	j := 0
	for i := 1; i < len(x); i++ {
		if x[i] != x[j] {
			j++
			x[j] = x[i]
		}
	}
	return x[:j+1]
}

// runStarts executes one ECM run per starting configuration.  The runs
// share only the immutable ingested records, so they fan out over
// goroutines when Workers exceeds one; otherwise they run sequentially,
// which is the reference behavior.
func (m *ICoxReg) runStarts(starts []StartConfig) []*FitState {

	states := make([]*FitState, len(starts))

	nw := m.config.Workers
	if nw <= 1 || len(starts) == 1 {
		for i, sc := range starts {
			states[i] = m.runECM(sc)
		}
		return states
	}
	if nw > len(starts) {
		nw = len(starts)
	}

	var wg sync.WaitGroup
	ch := make(chan int)
	for w := 0; w < nw; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				states[i] = m.runECM(starts[i])
			}
		}()
	}
	for i := range starts {
		ch <- i
	}
	close(ch)
	wg.Wait()

	return states
}

// selectWinner returns the run with the strictly largest final
// log-likelihood; ties keep the first run found.
func selectWinner(states []*FitState) *FitState {

	best := states[0]
	bestLL := best.FinalLogLike()
	for _, st := range states[1:] {
		if ll := st.FinalLogLike(); ll > bestLL {
			best = st
			bestLL = ll
		}
	}
	return best
}
