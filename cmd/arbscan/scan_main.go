package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sawpanic/arbscan/internal/clock"
	"github.com/sawpanic/arbscan/internal/config"
	"github.com/sawpanic/arbscan/internal/model"
)

// runScan does one fetch cycle and prints the ranked opportunities. Useful
// for cron jobs and quick market checks without running the server.
func runScan(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	tierStr, _ := cmd.Flags().GetString("tier")
	tier := model.AccessTier(tierStr)

	var filters model.Filters
	if minProfit, _ := cmd.Flags().GetFloat64("min-profit"); minProfit > 0 {
		filters.MinProfit = &minProfit
	}

	p, err := buildPipeline(cfg, clock.Real{})
	if err != nil {
		return err
	}
	defer p.close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report, err := p.engine.GetOpportunities(ctx, tier, &filters)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func printReport(report *model.OpportunityReport) {
	fmt.Printf("snapshot: %d exchanges, %d symbols, %d opportunities\n\n",
		report.Meta.ExchangeCount, report.Meta.SymbolCount, report.Meta.TotalFound)

	if len(report.Opportunities) == 0 {
		fmt.Println("no opportunities passed the filters")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tBUY\tSELL\tPROFIT%\tVOLUME\tRISK\tSCORE")
	for _, o := range report.Opportunities {
		fmt.Fprintf(w, "%s\t%s %.6g\t%s %.6g\t%.2f\t%.0f\t%s\t%.1f\n",
			o.Symbol, o.LowExchange, o.LowPrice, o.HighExchange, o.HighPrice,
			o.ProfitPercent, o.Volume24h, o.RiskLevel, o.Score)
	}
	w.Flush()
}

// splitListen parses a host:port override.
func splitListen(listen string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listen address %q: %w", listen, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listen port %q: %w", portStr, err)
	}
	return host, port, nil
}
