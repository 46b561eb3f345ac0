package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/refurb-sku-matcher/internal/api/client"
	"github.com/donaldgifford/refurb-sku-matcher/internal/engine"
)

func jobsCmd() *cobra.Command {
	var q apiclient.JobHistoryQuery

	cmd := &cobra.Command{
		Use:   "jobs [job_name]",
		Short: "Show job run history",
		Long:  "Shows recent runs of a job, newest first. Defaults to the rematch job.",
		Args:  cobra.MaximumNArgs(1),
		Example: `  skuctl jobs
  skuctl jobs rematch --limit 5 --output json
  skuctl jobs --status crashed`,
		RunE: func(_ *cobra.Command, args []string) error {
			job := engine.JobRematch
			if len(args) == 1 {
				job = args[0]
			}

			ctx, cancel := requestContext()
			defer cancel()

			runs, err := newClient().GetJobHistory(ctx, job, q)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(os.Stdout, runs)
			}
			if len(runs) == 0 {
				fmt.Printf("No runs found for job %q.\n", job)
				return nil
			}
			return printJobRunsTable(os.Stdout, runs)
		},
	}

	cmd.Flags().IntVar(&q.Limit, "limit", 20, "maximum runs to fetch")
	cmd.Flags().StringVar(&q.Status, "status", "", "only show runs with this status (running, succeeded, failed, crashed)")
	return cmd
}
