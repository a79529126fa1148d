// This script demonstrates fitting an integrative Cox regression model
// to simulated data in which a fraction of the subjects carry a decoy
// candidate record in addition to the true one.

package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"

	"github.com/guhjy/intsurv"
	"github.com/guhjy/intsurv/icoxph"
)

// simulate generates exponential survival times with hazard
// exp(beta*x), censors them at an independent exponential time, and
// duplicates a fraction of the subjects with a censored decoy record.
func simulate(n int, beta, censRate, dupFrac float64, rng *rand.Rand) intsurv.Dataset {

	var subj, time, status, x []float64

	for i := 0; i < n; i++ {
		xi := rng.NormFloat64()
		t := rng.ExpFloat64() / math.Exp(beta*xi)

		st := 1.0
		if censRate > 0 {
			c := rng.ExpFloat64() / censRate
			if c < t {
				t = c
				st = 0
			}
		}

		subj = append(subj, float64(i))
		time = append(time, t)
		status = append(status, st)
		x = append(x, xi)

		if rng.Float64() < dupFrac {
			// Decoy record: censored late, same covariate plus noise
			subj = append(subj, float64(i))
			time = append(time, t+rng.ExpFloat64())
			status = append(status, 0)
			x = append(x, xi+0.5*rng.NormFloat64())
		}
	}

	ds, err := intsurv.NewDataset([][]float64{subj, time, status, x},
		[]string{"subject", "time", "status", "x"})
	if err != nil {
		panic(err)
	}
	return ds
}

func main() {

	n := flag.Int("n", 500, "number of subjects")
	beta := flag.Float64("beta", 0.5, "true log hazard ratio")
	censRate := flag.Float64("cens", 0.3, "censoring hazard rate")
	dupFrac := flag.Float64("dup", 0.2, "fraction of subjects with a decoy record")
	seed := flag.Int64("seed", 23, "random seed")
	plotFile := flag.String("plot", "", "write a cumulative hazard plot to this file")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	data := simulate(*n, *beta, *censRate, *dupFrac, rng)

	config := icoxph.DefaultICoxRegConfig()
	config.NoSE = false
	config.MultiStart = true
	config.Workers = 4

	model, err := icoxph.NewICoxReg(data, "subject", "time", "status", []string{"x"}, config)
	if err != nil {
		panic(err)
	}

	rslt, err := model.Fit()
	if err != nil {
		panic(err)
	}

	fmt.Print(rslt.Summary().String())
	fmt.Printf("\nTrue coefficient: %.3f\n", *beta)

	if *plotFile != "" {
		ht := rslt.HazardTable()
		hp := icoxph.NewHazardPlotter()
		hp.Add(ht.Time, ht.CumH0, "Event").
			Add(ht.Time, ht.CumHc, "Censoring").
			Plot()
		if err := hp.Save(*plotFile); err != nil {
			panic(err)
		}
	}
}
