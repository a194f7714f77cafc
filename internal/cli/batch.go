package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phisheye/phisheye/internal/model"
	"github.com/phisheye/phisheye/internal/pipeline"
	"github.com/phisheye/phisheye/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
	batchJSON    string
	domainRPS    float64
	domainBurst  int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Score multiple URLs from a file in parallel",
	Long: `Batch scores many URLs concurrently:
- Read URLs from the input file (one per line, # comments allowed)
- Score URLs in parallel with a configurable worker count
- Pace network probes per registrable domain
- Print one line per URL plus a summary, optionally writing all verdicts
  to a JSON file

Example:
  phisheye batch urls.txt
  phisheye batch urls.txt --deep --concurrency 16
  phisheye batch urls.txt --json verdicts.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchJSON, "json", "", "write all verdicts to this JSON file")
	batchCmd.Flags().Float64Var(&domainRPS, "domain-rps", 0, "probe requests per second per domain (default from config)")
	batchCmd.Flags().IntVar(&domainBurst, "domain-burst", 0, "probe burst per domain (default from config)")

	batchCmd.Flags().BoolVar(&deepScan, "deep", false, "enable network probes (WHOIS age, redirect chain)")
	batchCmd.Flags().StringVar(&callerID, "caller", "batch", "caller identity recorded in scan history")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache (force fresh analysis)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	cfg.Cache.Enabled = !noCache
	if concurrency > 0 {
		cfg.Concurrency.BatchWorkers = concurrency
	}
	if domainRPS > 0 {
		cfg.Concurrency.DomainRPS = domainRPS
	}
	if domainBurst > 0 {
		cfg.Concurrency.DomainBurst = domainBurst
	}

	urls, err := worker.ReadURLs(file)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Loaded %d URLs from %s\n", len(urls), file)
	fmt.Fprintf(os.Stderr, "Scoring with %d workers (%s scan)\n\n",
		cfg.Concurrency.BatchWorkers, model.ScanTypeName(deepScan))

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(ctx) }()

	scanner := pipeline.NewScanner(cfg, st)
	limiter := worker.NewLimiter(cfg.Concurrency.DomainRPS, cfg.Concurrency.DomainBurst)
	processor := worker.NewBatchProcessor(scanner, limiter, cfg.Concurrency.BatchWorkers)

	outcomes := processor.Process(ctx, urls, callerID, deepScan)

	if cfg.Output.NoColor {
		color.NoColor = true
	}
	counts := map[model.Label]int{}
	for _, o := range outcomes {
		counts[o.Verdict.Label]++
		fmt.Printf("%s  %s\n", labelTag(o.Verdict.Label), o.Request.URL)
	}

	fmt.Fprintf(os.Stderr, "\nScored %d URLs: %d safe, %d suspicious, %d malicious, %d unknown\n",
		len(outcomes),
		counts[model.LabelSafe],
		counts[model.LabelSuspicious],
		counts[model.LabelMalicious],
		counts[model.LabelUnknown])

	if batchJSON != "" {
		verdicts := make([]model.Verdict, len(outcomes))
		for i, o := range outcomes {
			verdicts[i] = o.Verdict
		}
		data, err := json.MarshalIndent(verdicts, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal verdicts: %w", err)
		}
		if err := os.WriteFile(batchJSON, data, 0o644); err != nil {
			return fmt.Errorf("write verdicts: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote verdicts to %s\n", batchJSON)
	}

	return nil
}

// labelTag renders a fixed-width colored label for one-line batch output.
func labelTag(label model.Label) string {
	switch label {
	case model.LabelSafe:
		return color.GreenString("%-10s", string(label))
	case model.LabelSuspicious:
		return color.YellowString("%-10s", string(label))
	case model.LabelMalicious:
		return color.RedString("%-10s", string(label))
	default:
		return fmt.Sprintf("%-10s", string(label))
	}
}
