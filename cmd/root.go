package cmd

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// startupParams is everything the CLI collects before a run. The loggers are
// part of the params so that commands never touch os.Stdout directly: out is
// the always-on report logger, verb only prints when --verbose is set, and
// trace writes to the optional trace file.
type startupParams struct {
	verbose    bool
	dataFile   string
	traceFile  string
	useMonitor bool
	randomSeed int64

	// Synthetic data generation
	points        int
	trueSlope     float64
	trueIntercept float64
	trueLogS      float64

	// Gradient (HMC) sampler
	chains       int
	tuneIters    int
	draws        int
	targetAccept float64

	// Ensemble sampler
	walkers       int
	ensembleIters int
	burnIn        int
	thin          int

	out        *log.Logger
	verb       *log.Logger
	trace      *log.Logger
	traceClose func()
}

// Setup creates the loggers from the collected flags.
func (sp *startupParams) Setup() error {
	sp.out = log.New(os.Stdout, "", 0)

	if sp.verbose {
		sp.verb = sp.out
	} else {
		sp.verb = log.New(ioutil.Discard, "", 0)
	}

	if len(sp.traceFile) > 0 {
		f, err := os.Create(sp.traceFile)
		if err != nil {
			return errors.Wrapf(err, "Could not create trace file %s", sp.traceFile)
		}
		sp.trace = log.New(f, "", 0)
		sp.traceClose = func() { f.Close() }
	} else {
		sp.trace = log.New(ioutil.Discard, "", 0)
		sp.traceClose = func() {}
	}

	return nil
}

var sp = &startupParams{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linemc",
	Short: "MCMC sampler comparison on a Bayesian line fit",
	Long: `linemc fits one small Bayesian linear regression two ways and compares the
results:

  - A gradient-based sampler (leapfrog HMC with tuned step size)
  - A gradient-free affine-invariant ensemble sampler

Both consume the model through the same narrow interface: a log-probability
function over a flat parameter vector that also returns every variable and
derived quantity as a fixed-schema blob record.
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&sp.verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")
	rootCmd.PersistentFlags().StringVarP(&sp.dataFile, "data", "d", "", "Dataset file of whitespace-delimited x y pairs (default is synthetic data)")
	rootCmd.PersistentFlags().StringVarP(&sp.traceFile, "trace", "t", "", "Trace file for retained draws (default is no trace)")
	rootCmd.PersistentFlags().Int64VarP(&sp.randomSeed, "seed", "r", 42, "Random seed to use")

	rootCmd.PersistentFlags().IntVar(&sp.points, "points", 50, "Synthetic dataset size")
	rootCmd.PersistentFlags().Float64Var(&sp.trueSlope, "true-slope", 0.5, "Synthetic data true slope")
	rootCmd.PersistentFlags().Float64Var(&sp.trueIntercept, "true-intercept", -2.3, "Synthetic data true intercept")
	rootCmd.PersistentFlags().Float64Var(&sp.trueLogS, "true-logs", -0.23, "Synthetic data true log noise scale")

	compareCmd.Flags().IntVar(&sp.chains, "chains", 2, "Gradient sampler chain count")
	compareCmd.Flags().IntVar(&sp.tuneIters, "tune", 1000, "Gradient sampler tuning iterations per chain")
	compareCmd.Flags().IntVar(&sp.draws, "draws", 2000, "Gradient sampler recorded draws per chain")
	compareCmd.Flags().Float64Var(&sp.targetAccept, "target-accept", 0.9, "Gradient sampler tuning target acceptance rate")
	compareCmd.Flags().IntVar(&sp.walkers, "walkers", 25, "Ensemble walker count")
	compareCmd.Flags().IntVar(&sp.ensembleIters, "iters", 5000, "Ensemble iteration count")
	compareCmd.Flags().IntVar(&sp.burnIn, "burn-in", 100, "Ensemble iterations to discard")
	compareCmd.Flags().IntVar(&sp.thin, "thin", 30, "Ensemble thinning stride")
	compareCmd.Flags().BoolVar(&sp.useMonitor, "monitor", false, "Serve run progress over HTTP (expvar)")

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(datasetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var compareCmd = &cobra.Command{
	Use:          "compare",
	Short:        "Run both samplers on the same model and compare posteriors",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sp.Setup(); err != nil {
			return err
		}
		defer sp.traceClose()
		return CompareRun(sp)
	},
}

var datasetCmd = &cobra.Command{
	Use:          "dataset",
	Short:        "Generate a synthetic dataset file",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sp.Setup(); err != nil {
			return err
		}
		defer sp.traceClose()
		return DatasetRun(sp)
	},
}
