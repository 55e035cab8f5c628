package cli

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Hafizh1187/apriory/pkg/benchutil"
	"github.com/Hafizh1187/apriory/pkg/fileutil"
	"github.com/Hafizh1187/apriory/pkg/source"
)

// runGenerate writes synthetic baskets as a CSV file with an Items column,
// readable by mine with default settings.
func runGenerate(args []string, stdout io.Writer) error {
	defaults := benchutil.DefaultConfig(10000)

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	out := fs.String("out", "", "output CSV file")
	transactions := fs.Int("transactions", defaults.NumTransactions, "number of baskets")
	items := fs.Int("items", defaults.NumItems, "catalogue size")
	basketSize := fs.Int("basket-size", defaults.MeanBasketSize, "mean random items per basket")
	patterns := fs.Int("patterns", defaults.NumPatterns, "number of planted itemsets")
	patternSize := fs.Int("pattern-size", defaults.PatternSize, "size of each planted itemset")
	seed := fs.Int64("seed", defaults.Seed, "random seed")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return errors.New("--out is required")
	}

	cfg := defaults
	cfg.NumTransactions = *transactions
	cfg.NumItems = *items
	cfg.MeanBasketSize = *basketSize
	cfg.NumPatterns = *patterns
	cfg.PatternSize = *patternSize
	cfg.Seed = *seed

	gen, err := benchutil.NewGenerator(cfg)
	if err != nil {
		return fmt.Errorf("invalid generator settings: %w", err)
	}

	err = fileutil.WriteAtomic(*out, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{source.DefaultConfig().Column}); err != nil {
			return err
		}
		for basket := range gen.GenerateChannel() {
			if err := cw.Write([]string{strings.Join(basket, ",")}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	fmt.Fprintf(stdout, "wrote %d baskets over %d items to %s\n", cfg.NumTransactions, cfg.NumItems, *out)
	return nil
}
