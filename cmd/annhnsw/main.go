// Command annhnsw is the CLI harness that drives the hnsw core: build or
// load an index over a data file, run a batch of k-NN queries against it,
// and optionally save the result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagMethod         string
	flagSpaceType      string
	flagDataFile       string
	flagQueryFile      string
	flagMaxNumData     int
	flagMaxNumQuery    int
	flagCreateIndex    string
	flagQueryTimeParams string
	flagSaveIndex      string
	flagLoadIndex      string
	flagSaveData       bool
	flagKNN            string
	flagSeed           int64
	flagVerbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "annhnsw",
	Short: "Build and query a Hierarchical Navigable Small-World index",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark()
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagMethod, "method", "hnsw", "index method (only \"hnsw\" is supported)")
	flags.StringVar(&flagSpaceType, "spaceType", "l2", "space name, optionally with key=value params, e.g. cosinesimil:dim=128")
	flags.StringVar(&flagDataFile, "dataFile", "", "path to the dataset file (plain text) or a sqlite:// DSN")
	flags.StringVar(&flagQueryFile, "queryFile", "", "path to the query file (plain text) or a sqlite:// DSN")
	flags.IntVar(&flagMaxNumData, "maxNumData", 0, "cap on the number of data records read (0 = unlimited)")
	flags.IntVar(&flagMaxNumQuery, "maxNumQuery", 0, "cap on the number of query records read (0 = unlimited)")
	flags.StringVar(&flagCreateIndex, "createIndex", "", "comma-separated build params, e.g. M=16,efConstruction=200,delaunay_type=2,indexThreadQty=4")
	flags.StringVar(&flagQueryTimeParams, "queryTimeParams", "", "comma-separated query params, e.g. ef=50,algo=old")
	flags.StringVar(&flagSaveIndex, "saveIndex", "", "path to save the built/loaded index to")
	flags.StringVar(&flagLoadIndex, "loadIndex", "", "path to load an existing index from instead of building")
	flags.BoolVar(&flagSaveData, "saveData", false, "accepted but has no effect: no sibling .dat file is written")
	flags.StringVar(&flagKNN, "knn", "10", "comma-separated list of k values, one run per k")
	flags.Int64Var(&flagSeed, "seed", 0, "random seed (0 picks one and logs it)")
	flags.BoolVar(&flagVerbose, "verbose", false, "log at Info level instead of Warn")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "annhnsw:", err)
		os.Exit(exitCodeFor(err))
	}
}
