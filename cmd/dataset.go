package cmd

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/probsamp/linemc/model"
	grand "github.com/probsamp/linemc/rand"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}

// DatasetRun generates a synthetic dataset from the configured true
// parameters and writes it to the --data file, ready for later compare runs.
func DatasetRun(sp *startupParams) error {
	if len(sp.dataFile) < 1 {
		return errors.Errorf("The dataset command requires --data as the output file")
	}
	if sp.points < 2 {
		return errors.Errorf("Invalid point count %d", sp.points)
	}

	gen, err := grand.NewGenerator(sp.randomSeed)
	if err != nil {
		return err
	}

	sp.out.Printf("Generating %d points (slope=%.3f, intercept=%.3f, logs=%.3f, seed=%d)\n",
		sp.points, sp.trueSlope, sp.trueIntercept, sp.trueLogS, sp.randomSeed)

	data, err := model.SyntheticDataset(gen, sp.points, sp.trueSlope, sp.trueIntercept, sp.trueLogS)
	if err != nil {
		return err
	}

	if err := data.WriteFile(sp.dataFile); err != nil {
		return err
	}

	sp.out.Printf("Wrote %d points to %s\n", data.Len(), sp.dataFile)
	return nil
}
