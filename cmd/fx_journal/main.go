// fx_journal inspects the sqlite trade journal from the command line:
// recent trades, the equity curve and per-symbol aggregates.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"forex_pilot/internal/journal"
)

var (
	dbPath string
	limit  int
)

func main() {
	root := &cobra.Command{
		Use:   "fx_journal",
		Short: "Inspect the forex_pilot trade journal",
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "forex_pilot.sqlite", "path to the journal database")

	tradesCmd := &cobra.Command{
		Use:   "trades",
		Short: "List the most recent trades",
		RunE:  runTrades,
	}
	tradesCmd.Flags().IntVar(&limit, "limit", 20, "number of trades to show")

	equityCmd := &cobra.Command{
		Use:   "equity",
		Short: "List the most recent equity snapshots",
		RunE:  runEquity,
	}
	equityCmd.Flags().IntVar(&limit, "limit", 20, "number of snapshots to show")

	statsCmd := &cobra.Command{
		Use:   "stats <symbol>",
		Short: "Aggregate trade stats for one symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}

	root.AddCommand(tradesCmd, equityCmd, statsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openJournal() (*journal.SQLite, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("journal %s not found: %w", dbPath, err)
	}
	return journal.NewSQLite(dbPath)
}

func runTrades(cmd *cobra.Command, _ []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.RecentTrades(limit)
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Println("No trades recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSYMBOL\tACTION\tUNITS\tPRICE\tBALANCE")
	for _, t := range trades {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.5f\t%.2f\n",
			t.Timestamp.Format("2006-01-02 15:04:05"), t.Symbol, t.Action, t.Units, t.Price, t.Balance)
	}
	return w.Flush()
}

func runEquity(cmd *cobra.Command, _ []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	points, err := j.RecentEquity(limit)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		fmt.Println("No equity snapshots recorded")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tBALANCE\tEQUITY\tPNL")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%+.2f\n",
			p.Timestamp.Format("2006-01-02 15:04:05"), p.Balance, p.Equity, p.PnL)
	}
	return w.Flush()
}

func runStats(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	stats, err := j.StatsFor(args[0])
	if err != nil {
		return err
	}
	if stats.Trades == 0 {
		fmt.Printf("No trades recorded for %s\n", args[0])
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Symbol:     %s\n", stats.Symbol)
	fmt.Fprintf(out, "Trades:     %d (%d buys, %d sells)\n", stats.Trades, stats.Buys, stats.Sells)
	fmt.Fprintf(out, "First seen: %s\n", stats.FirstSeen.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Last seen:  %s\n", stats.LastSeen.Format("2006-01-02 15:04:05"))
	return nil
}
