package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/resilience"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Manage the dead letter queue",
	Long:  "Inspect and retry contacts whose batch enrichment failed.",
}

// -- dlq list --

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "List retryable dead letter entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		errType, _ := cmd.Flags().GetString("error-type")
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := st.DequeueDLQ(ctx, resilience.DLQFilter{ErrorType: errType, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "dlq list")
		}

		total, err := st.CountDLQ(ctx)
		if err != nil {
			return eris.Wrap(err, "dlq count")
		}

		if len(entries) == 0 {
			fmt.Fprintf(os.Stderr, "No retryable entries (%d total in queue).\n", total)
			return nil
		}

		formatDLQList(os.Stdout, entries)
		fmt.Fprintf(os.Stderr, "%d retryable of %d total.\n", len(entries), total)
		return nil
	},
}

// -- dlq retry --

var dlqRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Re-run enrichment for retryable dead letter entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := env.Store.DequeueDLQ(ctx, resilience.DLQFilter{Limit: limit})
		if err != nil {
			return eris.Wrap(err, "dlq dequeue")
		}
		if len(entries) == 0 {
			zap.L().Info("dead letter queue is empty")
			return nil
		}

		var succeeded, failed int
		for _, entry := range entries {
			log := zap.L().With(zap.String("dlq_id", entry.ID), zap.String("contact", entry.Contact.Name()))

			report, err := enrichOne(ctx, env.Store, env.Pipeline, entry.UserID, entry.Contact)
			if err != nil {
				failed++
				log.Error("dlq retry failed", zap.Error(err))
				backoff := time.Duration(entry.RetryCount+1) * 15 * time.Minute
				if ierr := env.Store.IncrementDLQRetry(ctx, entry.ID, time.Now().UTC().Add(backoff), err.Error()); ierr != nil {
					log.Warn("failed to update dlq entry", zap.Error(ierr))
				}
				continue
			}

			succeeded++
			log.Info("dlq retry complete", zap.Int("fields_found", report.Summary.FieldsFound))
			if rerr := env.Store.RemoveDLQ(ctx, entry.ID); rerr != nil {
				log.Warn("failed to remove dlq entry", zap.Error(rerr))
			}
		}

		zap.L().Info("dlq retry finished",
			zap.Int("succeeded", succeeded),
			zap.Int("failed", failed),
		)
		return nil
	},
}

func formatDLQList(w io.Writer, entries []resilience.DLQEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCONTACT\tERROR TYPE\tRETRIES\tNEXT RETRY\tERROR")
	for _, e := range entries {
		errMsg := e.Error
		if len(errMsg) > 60 {
			errMsg = errMsg[:60] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n",
			e.ID, e.Contact.Name(), e.ErrorType, e.RetryCount, e.MaxRetries,
			e.NextRetryAt.Format("2006-01-02 15:04"), errMsg,
		)
	}
	tw.Flush()
}

func init() {
	dlqListCmd.Flags().String("error-type", "", "filter by error type (transient|permanent)")
	dlqListCmd.Flags().Int("limit", 50, "max rows")
	dlqRetryCmd.Flags().Int("limit", 20, "max entries to retry")

	dlqCmd.AddCommand(dlqListCmd)
	dlqCmd.AddCommand(dlqRetryCmd)
	rootCmd.AddCommand(dlqCmd)
}
