// Package main implements the judged command line: a batch runner, a
// REPL and a one-shot query command over the three evaluation
// contexts in pkg/worlds (spec section 6, supplemented per
// original_source/judged/__main__.go's deterministic/exact/montecarlo
// subcommand split, replaced here with a single --mode flag shared
// across subcommands per the idiomatic cobra multi-command shape).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagMode    string
	flagConfig  string
	flagVerbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "judged",
	Short: "JudgeD: a probabilistic Datalog engine",
	Long: `judged evaluates programs written in JudgeD's Datalog-with-
descriptive-sentences surface syntax against one of three evaluation
contexts: deterministic (one chosen world), exact (every admitted
world, sentence-annotated) and montecarlo (sampled world frequencies).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.TimeKey = ""
		if flagVerbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		built, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = built
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagMode, "mode", "m", "det",
		"Evaluation mode: det (deterministic), exact, or mc (montecarlo)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "judged.yaml",
		"Path to a judged.yaml config file (ignored if it does not exist)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"Echo each executed action and enable debug logging")

	rootCmd.AddCommand(newRunCmd(), newReplCmd(), newQueryCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
