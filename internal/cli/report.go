package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reportCycles bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show scheduling statistics",
	Long:  `Fetch and display the decision trace summary from a running batling server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := NewClient(GetServerURL())

		summary, err := client.GetTraceSummary()
		if err != nil {
			return fmt.Errorf("failed to fetch summary: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprint(w, "CYCLES\tSTARTS\tREJECTS\tBACKFILLS\tMAKESPAN\n")
		_, _ = fmt.Fprintf(
			w, "%d\t%d\t%d\t%d\t%.1f\n",
			summary.Cycles,
			summary.Starts,
			summary.Rejects,
			summary.Backfills,
			summary.Makespan,
		)
		_ = w.Flush()

		if IsVerbose() {
			fmt.Printf(
				"\nContiguous backfills: %d\nNon-contiguous backfills: %d\n",
				summary.ContiguousBackfills,
				summary.NonContiguousBackfills,
			)
		}

		if !reportCycles {
			return nil
		}

		cycles, err := client.ListCycles()
		if err != nil {
			return fmt.Errorf("failed to list cycles: %w", err)
		}

		if len(cycles) == 0 {
			fmt.Println("\nNo decision cycles recorded.")
			return nil
		}

		fmt.Println()
		cw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		_, _ = fmt.Fprint(cw, "CYCLE\tSIM TIME\tDECISIONS\tRECORDED\n")
		for _, c := range cycles {
			_, _ = fmt.Fprintf(
				cw, "%s\t%.1f\t%d\t%s\n",
				c.CycleID,
				c.SimTime,
				len(c.Decisions),
				c.RecordedAt.Format("15:04:05"),
			)
		}
		_ = cw.Flush()

		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportCycles, "cycles", false, "Also list individual decision cycles")
	rootCmd.AddCommand(reportCmd)
}
