// Package cli implements the command-line interface for apriori.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/Hafizh1187/apriory/internal/logctx"
	"github.com/Hafizh1187/apriory/pkg/apriori"
	"github.com/Hafizh1187/apriory/pkg/export"
	"github.com/Hafizh1187/apriory/pkg/humanfmt"
	"github.com/Hafizh1187/apriory/pkg/logging"
	"github.com/Hafizh1187/apriory/pkg/membudget"
	"github.com/Hafizh1187/apriory/pkg/memdiag"
	"github.com/Hafizh1187/apriory/pkg/source"
	"github.com/mattn/go-isatty"
)

const usage = "usage: apriori <command> [options]\ncommands: mine, generate"

// Run executes the CLI with the given arguments, writing results to stdout.
func Run(args []string) error {
	return RunContext(context.Background(), args, os.Stdout)
}

// RunContext is like Run but honors ctx and writes results to stdout.
// Logs always go to stderr.
func RunContext(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}

	switch args[0] {
	case "mine":
		return runMine(ctx, args[1:], stdout)
	case "generate":
		return runGenerate(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func runMine(ctx context.Context, args []string, stdout io.Writer) error {
	defaults := apriori.DefaultOptions()
	srcDefaults := source.DefaultConfig()

	fs := flag.NewFlagSet("mine", flag.ContinueOnError)
	input := fs.String("input", "", "transactions file (.csv, .csv.gz, .xlsx, .parquet) or s3://bucket/key")
	column := fs.String("column", srcDefaults.Column, "column holding the items of each transaction")
	delimiter := fs.String("delimiter", srcDefaults.Delimiter, "separator between items within the column")
	basket := fs.Bool("basket", false, "every non-empty cell is an item; input has no header")
	sheet := fs.String("sheet", "", "XLSX worksheet (default: active sheet)")
	minSupport := fs.Float64("min-support", defaults.MinSupport, "minimum support, in (0, 1]")
	minConfidence := fs.Float64("min-confidence", defaults.MinConfidence, "minimum confidence, in (0, 1]")
	minLift := fs.Float64("min-lift", defaults.MinLift, "minimum lift, >= 0")
	maxLength := fs.Int("max-length", 0, "maximum itemset size (0 = no cap below 63)")
	workers := fs.Int("workers", runtime.NumCPU(), "goroutines counting support")
	memBudget := fs.String("mem-budget", "", "candidate memory budget, e.g. 2GiB (default: $"+membudget.EnvVar+" or 50% of RAM)")
	out := fs.String("out", "", "also write rules to FILE (.csv, .parquet, .db)")
	showItemsets := fs.Bool("itemsets", false, "print frequent itemsets before the rules")
	preview := fs.Int("preview", 0, "print the first N transactions before mining")
	chart := fs.Bool("chart", false, "draw support and confidence bars after the rules")
	debug := fs.Bool("debug", false, "enable debug logging")
	human := fs.Bool("human", isatty.IsTerminal(os.Stderr.Fd()), "human-readable console logs")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" && fs.NArg() == 1 {
		*input = fs.Arg(0)
	}
	if *input == "" {
		return errors.New("--input is required")
	}

	logging.Init(*debug, *human)

	opts := apriori.Options{
		MinSupport:    *minSupport,
		MinConfidence: *minConfidence,
		MinLift:       *minLift,
		MaxLength:     *maxLength,
		Workers:       *workers,
	}
	// Reject bad thresholds before touching the input.
	if err := opts.Validate(); err != nil {
		return err
	}

	budget, err := determineMemoryBudget(*memBudget)
	if err != nil {
		return err
	}
	opts = opts.WithBudget(budget)

	srcCfg := srcDefaults.
		WithColumn(*column).
		WithDelimiter(*delimiter).
		WithBasket(*basket).
		WithSheet(*sheet)

	log := logging.WithPhase("mine").With().Str("input", *input).Logger()
	ctx = logctx.WithLogger(ctx, log)

	memCfg := memdiag.DefaultConfig()
	memCfg.Enabled = memCfg.Enabled || *debug
	tracker := memdiag.NewTracker(memCfg, log, budget)
	tracker.Start()
	runStart := time.Now()
	defer func() {
		tracker.Stop()
		if memCfg.Enabled {
			logging.PhaseComplete(log, "run", time.Since(runStart)).
				Bytes("peak_heap", tracker.PeakHeap()).
				LogDebug("memory summary")
		}
	}()

	log.Info().
		Uint64("mem_budget", budget.Total()).
		Str("mem_budget_h", humanfmt.BytesUint64(budget.Total())).
		Str("mem_budget_source", string(budget.Source())).
		Msg("starting")

	tracker.SetPhase("load")
	loadStart := time.Now()
	txs, err := source.Load(ctx, *input, srcCfg)
	if err != nil {
		return fmt.Errorf("load %s: %w", *input, err)
	}
	logging.PhaseComplete(log, "load", time.Since(loadStart)).
		Count("rows", int64(len(txs))).
		Log("transactions loaded")
	if *preview > 0 {
		if err := export.WritePreview(stdout, txs, *preview); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	}

	tracker.SetPhase("mine")
	res, err := apriori.Mine(ctx, txs, opts)
	if err != nil {
		return err
	}
	tracker.SetPhase("output")

	if *showItemsets {
		if err := export.WriteItemsets(stdout, res.Itemsets); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
	}
	if err := export.WriteTable(stdout, res.Rules); err != nil {
		return err
	}
	if *chart && !res.Empty() {
		fmt.Fprintln(stdout)
		if err := export.WriteCharts(stdout, res.Rules); err != nil {
			return err
		}
	}
	if !res.Empty() {
		fmt.Fprintf(stdout, "\n%d rules from %d transactions (%d frequent itemsets, %s)\n",
			len(res.Rules), res.Transactions, len(res.Itemsets), humanfmt.Duration(res.Duration))
	}

	if *out != "" {
		if err := export.WriteFile(ctx, *out, res); err != nil {
			return err
		}
	}
	return nil
}

// determineMemoryBudget resolves the budget from the --mem-budget value, the
// environment, or system RAM, in that order.
func determineMemoryBudget(cliValue string) (*membudget.Budget, error) {
	return membudget.Resolve(cliValue)
}
