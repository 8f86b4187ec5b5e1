// Package main provides the CLI entry point for btctracker.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"btctracker/internal/coindesk"
	"btctracker/internal/config"
	"btctracker/internal/httpx"
	"btctracker/internal/tracker"
	"btctracker/internal/workbook"
)

var (
	cfgPath    string
	filePath   string
	sheetName  string
	endpoint   string
	userAgent  string
	timeoutSec int
	localeTag  string
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "btctracker",
		Short: "Track the Bitcoin/USD rate in an xlsx workbook",
		Long: `btctracker appends the current Bitcoin/USD exchange rate to an xlsx
workbook, creating the workbook and its header row when missing.

Running without a subcommand records one quote, the same as "record".`,
		Args:         cobra.NoArgs,
		RunE:         runRecord,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "Path to config.json (optional)")
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "Workbook path (default btcprices.xlsx)")
	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "Target sheet name (default Bitcoin Prices)")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Fetch the current quote and append it to the workbook",
		Args:  cobra.NoArgs,
		RunE:  runRecord,
	}
	recordCmd.Flags().StringVar(&endpoint, "endpoint", "", "Quote endpoint URL")
	recordCmd.Flags().StringVar(&userAgent, "user-agent", "", "Client identifier sent to the quote endpoint")
	recordCmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Request timeout in seconds")
	recordCmd.Flags().StringVar(&localeTag, "locale", "", "Locale for parsing the quoted rate (e.g. en_US)")
	// The root runs record too, so it takes the same flags.
	rootCmd.Flags().AddFlagSet(recordCmd.Flags())

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the recorded rows",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
	showCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rows as JSON instead of a table")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(showCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, the optional config file, env overrides and
// finally any flags that were set.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	if filePath != "" {
		cfg.Workbook.Path = filePath
	}
	if sheetName != "" {
		cfg.Workbook.Sheet = sheetName
	}
	if endpoint != "" {
		cfg.Coindesk.Endpoint = endpoint
	}
	if userAgent != "" {
		cfg.Coindesk.UserAgent = userAgent
	}
	if timeoutSec > 0 {
		cfg.Coindesk.RequestTimeoutSec = timeoutSec
	}
	if localeTag != "" {
		cfg.Locale = localeTag
	}
	return cfg, nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	timeout := time.Duration(cfg.Coindesk.RequestTimeoutSec) * time.Second
	httpClient := httpx.New(timeout)

	client := coindesk.NewClient(
		coindesk.WithBaseURL(cfg.Coindesk.Endpoint),
		coindesk.WithHTTPClient(httpx.RequestDoer{Client: httpClient}),
		coindesk.WithUserAgent(cfg.Coindesk.UserAgent),
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := tracker.Run(ctx, cfg, client)
	if err != nil {
		return err
	}

	log.Printf("recorded %s -> $%.2f in row %d of %s",
		res.Quote.UpdatedAt.UTC().Format("2006-01-02 15:04:05"), res.Price, res.Row, res.Path)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.Workbook.Path); err != nil {
		return fmt.Errorf("no workbook at %s", cfg.Workbook.Path)
	}
	w, err := workbook.Open(cfg.Workbook.Path, cfg.Workbook.Sheet)
	if err != nil {
		return err
	}
	defer w.Close()

	records, err := w.Records()
	if err != nil {
		return err
	}

	if jsonOutput {
		out := struct {
			Records []workbook.Record `json:"records"`
		}{Records: records}
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP (UTC)\tBTC PRICE (USD)")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\n", r.Timestamp, r.Price)
	}
	return tw.Flush()
}
