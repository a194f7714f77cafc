package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/phisheye/phisheye/internal/model"
	"github.com/phisheye/phisheye/internal/pipeline"
)

var (
	deepScan     bool
	callerID     string
	noCache      bool
	jsonOut      bool
	probeTimeout time.Duration
	modelPath    string
	scalerPath   string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Score a single URL for phishing risk",
	Long: `Scan scores one URL and prints the verdict.

A quick scan (the default) uses only lexical URL features and completes
without touching the network. A deep scan additionally looks up WHOIS domain
age and follows the redirect chain.

Example:
  phisheye scan http://paypal-secure-login.example.ru
  phisheye scan suspicious-site.com --deep
  phisheye scan http://example.com --json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&deepScan, "deep", false, "enable network probes (WHOIS age, redirect chain)")
	scanCmd.Flags().StringVar(&callerID, "caller", "cli", "caller identity recorded in scan history")
	scanCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache (force fresh analysis)")
	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "print the verdict as JSON")
	scanCmd.Flags().DurationVar(&probeTimeout, "probe-timeout", 5*time.Second, "timeout per network probe")
	scanCmd.Flags().StringVar(&modelPath, "model", "", "classifier model artifact path")
	scanCmd.Flags().StringVar(&scalerPath, "scaler", "", "feature scaler artifact path")
}

func runScan(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := loadConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Probe.WhoisTimeout = probeTimeout
	cfg.Probe.RedirectTimeout = probeTimeout
	if modelPath != "" {
		cfg.Artifacts.ModelPath = modelPath
	}
	if scalerPath != "" {
		cfg.Artifacts.ScalerPath = scalerPath
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(ctx) }()

	scanner := pipeline.NewScanner(cfg, st)

	if verbose {
		fmt.Fprintf(os.Stderr, "Scanning: %s\n", url)
		fmt.Fprintf(os.Stderr, "Mode: %s\n", model.ScanTypeName(deepScan))
		if !scanner.ClassifierAvailable() {
			fmt.Fprintf(os.Stderr, "Classifier artifact not loaded; scoring heuristic-only\n")
		}
		fmt.Fprintln(os.Stderr)
	}

	verdict := scanner.Scan(ctx, model.ScanRequest{
		URL:      url,
		DeepScan: deepScan,
		CallerID: callerID,
	})

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(verdict)
	}

	renderVerdict(verdict, cfg)
	return nil
}

// renderVerdict prints a human-readable verdict to stdout.
func renderVerdict(v model.Verdict, cfg *model.Config) {
	if cfg.Output.NoColor {
		color.NoColor = true
	}

	labelColor := color.New(color.FgWhite, color.Bold)
	switch v.Label {
	case model.LabelSafe:
		labelColor = color.New(color.FgGreen, color.Bold)
	case model.LabelSuspicious:
		labelColor = color.New(color.FgYellow, color.Bold)
	case model.LabelMalicious:
		labelColor = color.New(color.FgRed, color.Bold)
	}

	fmt.Printf("URL:        %s\n", v.URL)
	fmt.Printf("Verdict:    %s\n", labelColor.Sprint(string(v.Label)))
	fmt.Printf("Confidence: %.0f%%\n", v.Confidence*100)
	if v.Cached {
		fmt.Printf("Source:     cached result\n")
	}
	fmt.Printf("\n%s\n", v.Explanation)

	if len(v.Signals) > 0 {
		fmt.Println("\nSignals:")
		for _, s := range v.Signals {
			fmt.Printf("  - %s\n", s)
		}
	}

	if v.Advice != "" {
		fmt.Printf("\n%s\n", v.Advice)
	}

	if cfg.Output.Verbose && v.Label != model.LabelUnknown {
		features := v.Features.Map()
		names := make([]string, 0, len(features))
		for name := range features {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nFeatures:")
		for _, name := range names {
			fmt.Printf("  %-26s %d\n", name, features[name])
		}
	}
}
