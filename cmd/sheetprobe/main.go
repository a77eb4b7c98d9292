// Command sheetprobe fetches a published sheet once and prints a summary of
// the records it would serve. Useful for checking that a sheet link resolves
// and parses before wiring it into the dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"spendsheet/internal/config"
	"spendsheet/internal/core"
	"spendsheet/internal/sheets"
	"spendsheet/internal/sheets/public"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sheetURL := cfg.SheetURL
	if len(os.Args) > 1 {
		sheetURL = os.Args[1]
	}
	if sheetURL == "" {
		fmt.Fprintln(os.Stderr, "usage: sheetprobe <sheet-url>  (or set SHEET_URL)")
		os.Exit(2)
	}

	src, err := sheets.ParseSheetURL(sheetURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sheet %s gid %s\n", src.SheetID, src.GID)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
	defer cancel()

	client := public.NewClient(cfg.FetchTimeout, public.DateOrder(cfg.DateOrder))
	started := time.Now()
	expenses, err := client.FetchAll(ctx, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("fetched %d records in %s\n", len(expenses), time.Since(started).Round(time.Millisecond))

	if len(expenses) == 0 {
		return
	}

	total := decimal.Zero
	perCategory := make(map[core.Category]int)
	for _, e := range expenses {
		total = total.Add(e.Amount)
		perCategory[e.Category]++
	}

	fmt.Printf("range  %s .. %s\n",
		expenses[len(expenses)-1].Date.Format("2006-01-02"),
		expenses[0].Date.Format("2006-01-02"))
	fmt.Printf("total  %s\n", total.String())
	for _, c := range core.Categories {
		if n := perCategory[c]; n > 0 {
			fmt.Printf("  %-14s %d\n", c, n)
		}
	}
}
