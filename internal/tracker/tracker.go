// Package tracker runs the record workflow: open the workbook, make sure
// the header exists, find the next free row, fetch the current quote,
// write the row and save. Strictly sequential, one shot; the first error
// aborts the run.
package tracker

import (
	"context"
	"fmt"

	"btctracker/internal/coindesk"
	"btctracker/internal/config"
	"btctracker/internal/money"
	"btctracker/internal/workbook"
)

// Client fetches the current quote.
type Client interface {
	CurrentPrice(ctx context.Context) (coindesk.Quote, error)
}

// Result summarizes a completed run.
type Result struct {
	Path  string
	Row   int
	Quote coindesk.Quote
	Price float64
}

// Run executes the workflow once against the configured workbook.
// The in-memory workbook is only persisted at the end; a failure at any
// step leaves the on-disk file as it was.
func Run(ctx context.Context, cfg config.Config, client Client) (Result, error) {
	w, err := workbook.Open(cfg.Workbook.Path, cfg.Workbook.Sheet)
	if err != nil {
		return Result{}, err
	}
	defer w.Close()

	if err := w.EnsureHeader(); err != nil {
		return Result{}, err
	}

	row, err := w.FirstEmptyRow()
	if err != nil {
		return Result{}, err
	}

	quote, err := client.CurrentPrice(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch quote: %w", err)
	}

	price, err := money.ForLocale(cfg.Locale).Parse(quote.Rate)
	if err != nil {
		return Result{}, fmt.Errorf("quote rate %q: %w", quote.Rate, err)
	}

	if err := w.AppendQuote(row, quote.UpdatedAt, price); err != nil {
		return Result{}, err
	}

	if err := w.Save(); err != nil {
		return Result{}, err
	}

	return Result{Path: w.Path(), Row: row, Quote: quote, Price: price}, nil
}
