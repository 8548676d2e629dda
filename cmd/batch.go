package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/pipeline"
	"github.com/sells-group/contact-cli/internal/resilience"
	"github.com/sells-group/contact-cli/internal/store"
)

var (
	batchFile   string
	batchLimit  int
	batchUserID string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch enrich contacts from a file",
	Long: `Reads contacts from a CSV, XLSX, or JSON file (local path or http/ftp URL)
and enriches them concurrently. Failed contacts land in the dead letter
queue for later retry with "contact-cli dlq retry".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		contacts, err := pipeline.LoadContactsFile(ctx, batchFile)
		if err != nil {
			return eris.Wrap(err, "load contacts file")
		}

		importContacts(ctx, env.Store, contacts)

		return processBatch(ctx, env, contacts, batchLimit, cfg.Batch.MaxConcurrentContacts)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "contacts file: .csv, .xlsx, or .json (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of contacts to process (0 = all)")
	batchCmd.Flags().StringVar(&batchUserID, "user", "", "authenticated user id (required)")
	_ = batchCmd.MarkFlagRequired("file")
	_ = batchCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(batchCmd)
}

// contactImporter is satisfied by stores that support bulk contact import.
type contactImporter interface {
	ImportContacts(ctx context.Context, contacts []model.Contact) (int64, error)
}

// importContacts snapshots the batch input into the contacts table when the
// store supports it. Import failures are logged but never block the batch.
func importContacts(ctx context.Context, st store.Store, contacts []model.Contact) {
	imp, ok := st.(contactImporter)
	if !ok {
		return
	}
	n, err := imp.ImportContacts(ctx, contacts)
	if err != nil {
		zap.L().Warn("contact import failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("imported contacts", zap.Int64("rows", n))
	}
}

// processBatch applies limit, then enriches contacts concurrently. Individual
// failures do not abort the batch; they are recorded in the DLQ.
func processBatch(ctx context.Context, env *pipelineEnv, contacts []model.Contact, limit, concurrency int) error {
	if len(contacts) == 0 {
		zap.L().Info("no contacts found in file")
		return nil
	}

	if limit > 0 && len(contacts) > limit {
		contacts = contacts[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("contacts", len(contacts)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, contact := range contacts {
		g.Go(func() error {
			log := zap.L().With(zap.String("contact", contact.Name()))

			report, err := enrichOne(gctx, env.Store, env.Pipeline, batchUserID, contact)
			if err != nil {
				failed.Add(1)
				log.Error("enrichment failed", zap.Error(err))
				enqueueFailed(gctx, env.Store, contact, err)
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			log.Info("enrichment complete",
				zap.Int("fields_found", report.Summary.FieldsFound),
				zap.String("confidence", string(report.Summary.Confidence)),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

// enrichOne persists a run record around a single pipeline execution.
func enrichOne(ctx context.Context, st store.Store, p *pipeline.Pipeline, userID string, contact model.Contact) (*model.Report, error) {
	run, err := st.CreateRun(ctx, userID, contact)
	if err != nil {
		return nil, eris.Wrap(err, "create run")
	}
	if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
		return nil, eris.Wrap(err, "update run status")
	}

	report, err := p.Run(ctx, userID, contact)
	if err != nil {
		_ = st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
		return nil, err
	}

	if err := st.SaveReport(ctx, run.ID, report); err != nil {
		return nil, eris.Wrap(err, "save report")
	}
	return report, nil
}

// enqueueFailed records a failed contact in the dead letter queue.
func enqueueFailed(ctx context.Context, st store.Store, contact model.Contact, enrichErr error) {
	now := time.Now().UTC()
	entry := resilience.DLQEntry{
		Contact:      contact,
		UserID:       batchUserID,
		Error:        enrichErr.Error(),
		ErrorType:    resilience.ClassifyError(enrichErr),
		MaxRetries:   3,
		NextRetryAt:  now.Add(15 * time.Minute),
		CreatedAt:    now,
		LastFailedAt: now,
	}
	if err := st.EnqueueDLQ(ctx, entry); err != nil {
		zap.L().Warn("failed to enqueue dlq entry", zap.Error(err))
	}
}
