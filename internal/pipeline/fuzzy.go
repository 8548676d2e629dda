package pipeline

import (
	"context"
	"fmt"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/pkg/apollo"
)

// runFuzzySearch issues a keyword search (name + company) and accepts the top
// candidate only when the best-match score clears the acceptance threshold.
// It never fires when an exact identifier exists; the controller enforces
// that eligibility.
func (p *Pipeline) runFuzzySearch(ctx context.Context, name, company string, contact model.Contact, acc model.FieldMap) stepOutcome {
	resp, err := p.callSearch(ctx, apollo.SearchRequest{
		Keywords: name + " " + company,
		Page:     1,
		PerPage:  p.cfg.Pipeline.SearchPerPage,
	})
	if err != nil {
		return errorOutcome(err)
	}
	if resp == nil || len(resp.People) == 0 {
		return stepOutcome{status: model.StepStatusNoResults, message: "search returned no candidates"}
	}

	winner, score := pickBestMatch(resp.People, name, company, p.cfg.Pipeline.MatchAcceptThreshold)
	if winner == nil {
		return stepOutcome{
			status:  model.StepStatusNoMatch,
			message: fmt.Sprintf("top candidate score %d below threshold %d", score, p.cfg.Pipeline.MatchAcceptThreshold),
		}
	}

	fields := p.personFields(winner, contact, acc)
	if len(fields) == 0 {
		return stepOutcome{status: model.StepStatusNoData, message: "accepted candidate added no new fields"}
	}
	return stepOutcome{
		status:  model.StepStatusSuccess,
		fields:  fields,
		message: fmt.Sprintf("accepted candidate with score %d", score),
	}
}
