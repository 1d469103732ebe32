package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cosmico/webinar/internal/domain"
	"github.com/cosmico/webinar/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [RUN_ID]",
		Short: "List recorded download runs, or the jobs of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, nil)
			if err != nil {
				return err
			}
			if !a.Config.Store.Enabled {
				return errors.New("history store is disabled (store.enabled)")
			}

			s, err := store.Open(a.Config.Store)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				runs, err := s.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				return printRuns(out, runs)
			}

			run, err := s.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			results, err := s.GetResults(ctx, run.ID)
			if err != nil {
				return err
			}
			return printRun(out, run, results)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")
	return cmd
}

func printRuns(out io.Writer, runs []*domain.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, "No runs recorded yet.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tJOBS\tOK\tSKIPPED\tFAILED\tCANCELLED\tWRITTEN")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, humanize.Time(r.StartedAt), r.Status, r.TotalJobs,
			r.Succeeded, r.Skipped, r.Failed, r.Cancelled, humanize.IBytes(uint64(r.BytesWritten)))
	}
	return tw.Flush()
}

func printRun(out io.Writer, run *domain.Run, results []*domain.JobResult) error {
	fmt.Fprintf(out, "Run %s (%s), started %s\n", run.ID, run.Status, humanize.Time(run.StartedAt))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTCOME\tFILE\tSIZE\tERROR")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Outcome, r.OutputPath, humanize.IBytes(uint64(r.BytesWritten)), r.Error)
	}
	return tw.Flush()
}
