package cmd

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/probsamp/linemc/diag"
	"github.com/probsamp/linemc/model"
	grand "github.com/probsamp/linemc/rand"
	"github.com/probsamp/linemc/sampler"
)

// Histogram bins used for the posterior discrepancy suite
const compareBins = 40

func checkCompareConfig(sp *startupParams) error {
	if sp.chains < 1 || sp.tuneIters < 0 || sp.draws < 1 {
		return errors.Errorf("Invalid gradient sampler config: chains=%d tune=%d draws=%d", sp.chains, sp.tuneIters, sp.draws)
	}
	if sp.targetAccept <= 0.0 || sp.targetAccept >= 1.0 {
		return errors.Errorf("Invalid target acceptance rate %v", sp.targetAccept)
	}
	if sp.walkers < 2 || sp.ensembleIters < 1 {
		return errors.Errorf("Invalid ensemble config: walkers=%d iters=%d", sp.walkers, sp.ensembleIters)
	}
	if sp.burnIn < 0 || sp.burnIn >= sp.ensembleIters {
		return errors.Errorf("Invalid burn-in %d for %d iterations", sp.burnIn, sp.ensembleIters)
	}
	if sp.thin < 1 {
		return errors.Errorf("Invalid thinning stride %d", sp.thin)
	}
	return nil
}

// CompareRun executes the entire comparison: one dataset, one model, both
// samplers, and the diagnostics over their output.
func CompareRun(sp *startupParams) error {
	if err := checkCompareConfig(sp); err != nil {
		return err
	}

	startTime := time.Now()

	gen, err := grand.NewGenerator(sp.randomSeed)
	if err != nil {
		return err
	}

	// Dataset: from file if given, else synthetic from the true params
	var data *model.Dataset
	if len(sp.dataFile) > 0 {
		sp.out.Printf("Reading dataset from %s\n", sp.dataFile)
		data, err = model.NewDatasetFromFile(sp.dataFile)
		if err != nil {
			return err
		}
	} else {
		sp.out.Printf("Generating %d synthetic points (slope=%.3f, intercept=%.3f, logs=%.3f)\n",
			sp.points, sp.trueSlope, sp.trueIntercept, sp.trueLogS)
		data, err = model.SyntheticDataset(gen, sp.points, sp.trueSlope, sp.trueIntercept, sp.trueLogS)
		if err != nil {
			return err
		}
	}
	sp.out.Printf("Dataset %s has %d points\n", data.Name, data.Len())

	mod, err := model.LineFit(data, gen)
	if err != nil {
		return err
	}
	sp.verb.Printf("Model %s: dim=%d\n", mod.Name, mod.Dim())

	mode, err := mod.MAP(make([]float64, mod.Dim()))
	if err != nil {
		return err
	}
	sp.verb.Printf("Mode estimate: %.5f\n", mode)

	var mon *monitor
	if sp.useMonitor {
		mon = &monitor{}
		if err := mon.Start(); err != nil {
			return err
		}
		defer mon.Stop()

		mon.Chains.Set(int64(sp.chains))
		mon.TuneIters.Set(int64(sp.tuneIters))
		mon.Draws.Set(int64(sp.draws))
		mon.Walkers.Set(int64(sp.walkers))
		mon.EnsembleIters.Set(int64(sp.ensembleIters))
	}

	// Gradient-based sampler
	sp.out.Printf("Gradient sampler: %d chains x (%d tune + %d draws), target acceptance %.2f\n",
		sp.chains, sp.tuneIters, sp.draws, sp.targetAccept)

	hmc, err := sampler.NewHMC(gen, mod, sp.targetAccept)
	if err != nil {
		return err
	}
	if mon != nil {
		hmc.OnIteration = func(iter int) {
			mon.GradIterations.Add(1)
			mon.GradWindowAccept.Set(hmc.WindowAcceptRate())
			mon.RunTime.Set(time.Since(startTime).Seconds())
		}
	}

	hmcStart, err := sampler.WalkerBall(gen, mode, 0.1, sp.chains)
	if err != nil {
		return err
	}
	trace, err := hmc.Run(hmcStart, sp.tuneIters, sp.draws)
	if err != nil {
		return errors.Wrap(err, "Gradient sampler run failed")
	}
	sp.out.Printf("Gradient sampler done: acceptance %.3f, tuned step size %.5f\n",
		hmc.AcceptRate(), hmc.StepSize())

	// Ensemble sampler
	sp.out.Printf("Ensemble sampler: %d walkers x %d iters (burn %d, thin %d)\n",
		sp.walkers, sp.ensembleIters, sp.burnIn, sp.thin)

	ens, err := sampler.NewEnsemble(gen, mod, sp.walkers)
	if err != nil {
		return err
	}
	if mon != nil {
		ens.OnIteration = func(iter int) {
			mon.EnsembleIterations.Add(1)
			mon.EnsembleWinAccept.Set(ens.WindowAcceptRate())
			mon.RunTime.Set(time.Since(startTime).Seconds())
		}
	}

	ensStart, err := sampler.WalkerBall(gen, mode, 1e-2, sp.walkers)
	if err != nil {
		return err
	}
	chain, err := ens.Run(ensStart, sp.ensembleIters)
	if err != nil {
		return errors.Wrap(err, "Ensemble sampler run failed")
	}
	sp.out.Printf("Ensemble sampler done: acceptance %.3f\n", ens.AcceptRate())

	if err := compareReport(sp, hmc.Schema().Names(), trace, chain); err != nil {
		return err
	}

	if err := writeTraceRows(sp, hmc.Schema().Names(), chain); err != nil {
		return err
	}

	sp.out.Printf("Total run time: %.2fs\n", time.Since(startTime).Seconds())
	return nil
}

// compareReport prints per-quantity posterior summaries, autocorrelation
// times, and the discrepancy suite between the two samplers.
func compareReport(sp *startupParams, names []string, trace *sampler.Trace, chain *sampler.EnsembleChain) error {
	sp.out.Printf("%-8s %12s %12s %12s %12s %8s %8s %8s %8s\n",
		"var", "grad-mean", "grad-sd", "ens-mean", "ens-sd", "grad-tau", "ens-tau", "hel", "jsd")

	for _, name := range names {
		gMean, err := trace.Mean(name)
		if err != nil {
			return err
		}
		gSD, err := trace.StdDev(name)
		if err != nil {
			return err
		}
		eMean, err := chain.Mean(name, sp.burnIn, sp.thin)
		if err != nil {
			return err
		}
		eSD, err := chain.StdDev(name, sp.burnIn, sp.thin)
		if err != nil {
			return err
		}

		gChains, err := trace.SeriesAll(name)
		if err != nil {
			return err
		}
		gTau, err := diag.IntegratedTime(gChains)
		if err != nil {
			return err
		}

		eChains := make([][]float64, chain.Walkers)
		for w := 0; w < chain.Walkers; w++ {
			s, err := chain.WalkerSeries(name, w, sp.burnIn, 1)
			if err != nil {
				return err
			}
			eChains[w] = s
		}
		eTau, err := diag.IntegratedTime(eChains)
		if err != nil {
			return err
		}

		gFlat, err := trace.Flat(name)
		if err != nil {
			return err
		}
		eFlat, err := chain.Flat(name, sp.burnIn, sp.thin)
		if err != nil {
			return err
		}
		suite, err := diag.NewErrorSuite(gFlat, eFlat, compareBins)
		if err != nil {
			return err
		}

		sp.out.Printf("%-8s %12.5f %12.5f %12.5f %12.5f %8.2f %8.2f %8.4f %8.4f\n",
			name, gMean, gSD, eMean, eSD, gTau, eTau, suite.Hellinger, suite.JSDiverge)
	}

	return nil
}

// writeTraceRows writes the retained ensemble draws (flattened across
// walkers) to the trace file, one row per draw, one column per quantity.
func writeTraceRows(sp *startupParams, names []string, chain *sampler.EnsembleChain) error {
	if len(sp.traceFile) < 1 {
		return nil
	}
	sp.out.Printf("Writing retained ensemble draws to trace file %v\n", sp.traceFile)

	cols := make([][]float64, len(names))
	for i, name := range names {
		flat, err := chain.Flat(name, sp.burnIn, sp.thin)
		if err != nil {
			return err
		}
		cols[i] = flat
	}

	sp.trace.Printf("# %s\n", strings.Join(names, " "))
	for r := 0; r < len(cols[0]); r++ {
		row := make([]string, len(cols))
		for i := range cols {
			row[i] = formatFloat(cols[i][r])
		}
		sp.trace.Printf("%s\n", strings.Join(row, " "))
	}

	return nil
}
