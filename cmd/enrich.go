package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/pipeline"
)

var (
	enrichName        string
	enrichCompany     string
	enrichEmail       string
	enrichLinkedIn    string
	enrichContactJSON string
	enrichUserID      string
	enrichFormat      string
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a single contact",
	Long: `Runs the full enrichment pipeline for one contact and prints the report.

The contact can be given as flags or as a JSON object with arbitrary fields:

  contact-cli enrich --user you@example.com --name "Jane Smith" --company "Acme Corp"
  contact-cli enrich --user you@example.com --contact-json '{"name":"Jane Smith","apollo_person_id":"abc123"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		contact, err := buildContact()
		if err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		run, err := env.Store.CreateRun(ctx, enrichUserID, contact)
		if err != nil {
			return eris.Wrap(err, "create run")
		}
		if err := env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			return eris.Wrap(err, "update run status")
		}

		report, err := env.Pipeline.Run(ctx, enrichUserID, contact)
		if err != nil {
			_ = env.Store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed)
			return eris.Wrap(err, "pipeline run")
		}

		if err := env.Store.SaveReport(ctx, run.ID, report); err != nil {
			return eris.Wrap(err, "save report")
		}

		zap.L().Info("enrichment complete",
			zap.String("run_id", run.ID),
			zap.String("contact", contact.Name()),
			zap.Int("fields_found", report.Summary.FieldsFound),
			zap.String("confidence", string(report.Summary.Confidence)),
		)

		switch enrichFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		default:
			fmt.Print(pipeline.FormatReport(contact, report))
			return nil
		}
	},
}

func buildContact() (model.Contact, error) {
	contact := model.Contact{}
	if enrichContactJSON != "" {
		if err := json.Unmarshal([]byte(enrichContactJSON), &contact); err != nil {
			return nil, eris.Wrap(err, "parse contact JSON")
		}
	}
	if enrichName != "" {
		contact["name"] = enrichName
	}
	if enrichCompany != "" {
		contact["company_name"] = enrichCompany
	}
	if enrichEmail != "" {
		contact["email"] = enrichEmail
	}
	if enrichLinkedIn != "" {
		contact["linkedin_url"] = enrichLinkedIn
	}
	if len(contact) == 0 {
		return nil, eris.New("no contact data given (use --name/--company or --contact-json)")
	}
	return contact, nil
}

func init() {
	enrichCmd.Flags().StringVar(&enrichUserID, "user", "", "authenticated user id (required)")
	enrichCmd.Flags().StringVar(&enrichName, "name", "", "contact full name")
	enrichCmd.Flags().StringVar(&enrichCompany, "company", "", "contact company name")
	enrichCmd.Flags().StringVar(&enrichEmail, "email", "", "contact email address")
	enrichCmd.Flags().StringVar(&enrichLinkedIn, "linkedin", "", "contact LinkedIn profile URL")
	enrichCmd.Flags().StringVar(&enrichContactJSON, "contact-json", "", "full contact as JSON")
	enrichCmd.Flags().StringVar(&enrichFormat, "format", "report", "output format: report or json")
	_ = enrichCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(enrichCmd)
}
