// Package pipeline implements the contact enrichment pipeline: an ordered
// sequence of lookup steps merged under a strict precedence policy, with
// per-field provenance and a confidence summary. All decisions are
// rule-based; there is no probabilistic inference anywhere in the run.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/config"
	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/internal/resilience"
	"github.com/sells-group/contact-cli/pkg/apollo"
	"github.com/sells-group/contact-cli/pkg/places"
	"github.com/sells-group/contact-cli/pkg/websearch"
)

// ProfileCache stores provider match responses keyed by person id or
// profile URL. The store's profile cache satisfies this.
type ProfileCache interface {
	GetCachedProfile(ctx context.Context, key string) ([]byte, error)
	SetCachedProfile(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Pipeline orchestrates one enrichment run per contact. It holds no per-run
// state; concurrent runs are independent.
type Pipeline struct {
	cfg    *config.Config
	apollo apollo.Client
	search websearch.Client
	places places.Client
	ref    *RefData
	cache  ProfileCache

	retry    resilience.RetryConfig
	apolloCB *resilience.CircuitBreaker
	searchCB *resilience.CircuitBreaker
	placesCB *resilience.CircuitBreaker
}

// New creates a Pipeline with all collaborators. A nil ref falls back to the
// built-in reference data.
func New(cfg *config.Config, apolloClient apollo.Client, searchClient websearch.Client, placesClient places.Client, ref *RefData) *Pipeline {
	if ref == nil {
		ref = DefaultRefData()
	}

	retry := resilience.FromRetryConfig(
		cfg.Retry.MaxAttempts,
		cfg.Retry.InitialBackoffMs,
		cfg.Retry.MaxBackoffMs,
		cfg.Retry.Multiplier,
		cfg.Retry.JitterFraction,
	)
	retry.ShouldRetry = isRetryable

	return &Pipeline{
		cfg:      cfg,
		apollo:   apolloClient,
		search:   searchClient,
		places:   placesClient,
		ref:      ref,
		retry:    retry,
		apolloCB: newProviderBreaker("apollo", cfg),
		searchCB: newProviderBreaker("websearch", cfg),
		placesCB: newProviderBreaker("places", cfg),
	}
}

// WithCache enables the persistent profile cache for exact-match lookups.
func (p *Pipeline) WithCache(cache ProfileCache) *Pipeline {
	p.cache = cache
	return p
}

func newProviderBreaker(name string, cfg *config.Config) *resilience.CircuitBreaker {
	c := resilience.FromCircuitConfig(cfg.Circuit.FailureThreshold, cfg.Circuit.ResetTimeoutSecs)
	c.ShouldTrip = isRetryable
	c.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("pipeline: provider circuit state change",
			zap.String("provider", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return resilience.NewCircuitBreaker(c)
}

// stepOutcome is the result of executing one step body.
type stepOutcome struct {
	status  model.StepStatus
	fields  model.FieldMap
	message string
}

// Run executes the full enrichment pipeline for a single contact. The caller
// supplies an already-authenticated user id; missing caller inputs are the
// only condition that aborts before any step runs. Step failures and
// no-signal outcomes are absorbed into the step log, so a report is always
// assembled once the run starts.
func (p *Pipeline) Run(ctx context.Context, userID string, contact model.Contact) (*model.Report, error) {
	if userID == "" {
		return nil, eris.New("pipeline: missing authenticated user id")
	}
	if len(contact) == 0 {
		return nil, eris.New("pipeline: missing contact")
	}

	log := zap.L().With(zap.String("user_id", userID), zap.String("contact", contact.Name()))
	log.Info("pipeline: starting enrichment",
		zap.Strings("missing", MissingFields(model.FieldMap(contact))),
	)

	acc := model.FieldMap{}
	prov := map[string]model.Source{}
	var steps []model.EnrichmentStep

	// runStep executes a step body, merges its candidate fields under the
	// precedence rules, records provenance for what was actually written,
	// and appends the terminal step record.
	runStep := func(source model.Source, fn func() stepOutcome) {
		start := time.Now()
		out := fn()

		step := model.EnrichmentStep{
			Source:    source,
			Status:    out.status,
			Timestamp: start.UTC(),
			Duration:  time.Since(start).Milliseconds(),
			Message:   out.message,
		}

		if out.status == model.StepStatusSuccess {
			var written []string
			acc, written = Merge(acc, out.fields, contact)
			recordProvenance(prov, written, source)
			step.FieldsFound = written
			if len(written) == 0 {
				step.Status = model.StepStatusNoData
				step.Message = "no new fields after merge"
			}
		}

		log.Info("pipeline: step finished",
			zap.String("source", string(source)),
			zap.String("status", string(step.Status)),
			zap.Strings("fields_found", step.FieldsFound),
			zap.Int64("duration_ms", step.Duration),
		)

		steps = append(steps, step)
	}

	// skipStep records an eligibility-false step without running it.
	skipStep := func(source model.Source, reason string) {
		log.Debug("pipeline: step skipped",
			zap.String("source", string(source)),
			zap.String("reason", reason),
		)
		steps = append(steps, model.EnrichmentStep{
			Source:    source,
			Status:    model.StepStatusSkipped,
			Timestamp: time.Now().UTC(),
			Message:   reason,
		})
	}

	// Step 1: internal recovery. Always runs, never skipped.
	runStep(model.SourceInternal, func() stepOutcome {
		fields := recoverInternal(contact, acc)
		if len(fields) == 0 {
			return stepOutcome{status: model.StepStatusNoData, message: "nothing to recover"}
		}
		return stepOutcome{status: model.StepStatusSuccess, fields: fields}
	})

	// Step 2: exact match, when an unambiguous identifier exists.
	apolloID := contact.ApolloID()
	profileURL := firstNonEmpty(contact.LinkedInURL(), acc.String(model.FieldLinkedInURL))
	hadExactIdentifier := apolloID != "" || profileURL != ""

	if hadExactIdentifier {
		runStep(model.SourceExactMatch, func() stepOutcome {
			return p.runExactMatch(ctx, apolloID, profileURL, contact, acc)
		})
	} else {
		skipStep(model.SourceExactMatch, "no provider id or profile url")
	}

	// Step 3: fuzzy search, only without an exact identifier and while
	// person-level fields are still worth pursuing.
	name := contact.Name()
	company := firstNonEmpty(contact.CompanyName(), acc.String(model.FieldCompanyName))
	switch {
	case hadExactIdentifier:
		skipStep(model.SourceFuzzySearch, "exact identifier present")
	case name == "" || company == "":
		skipStep(model.SourceFuzzySearch, "name or company unknown")
	case !fuzzyNeeded(contact, acc):
		skipStep(model.SourceFuzzySearch, "person fields already satisfied")
	default:
		runStep(model.SourceFuzzySearch, func() stepOutcome {
			return p.runFuzzySearch(ctx, name, company, contact, acc)
		})
	}

	// Step 4: identity discovery, only while no profile URL is known
	// anywhere. On success it re-invokes the exact-match step with the
	// discovered URL; that re-invocation's fields carry exact-match
	// provenance unless discovery itself already produced them.
	switch {
	case contact.HasValue(model.FieldLinkedInURL) || acc.HasValue(model.FieldLinkedInURL):
		skipStep(model.SourceIdentityDiscovery, "profile url already known")
	case p.search == nil:
		skipStep(model.SourceIdentityDiscovery, "search provider not configured")
	default:
		var discovered *discoveryResult
		runStep(model.SourceIdentityDiscovery, func() stepOutcome {
			out, res := p.runIdentityDiscovery(ctx, contact, acc)
			discovered = res
			return out
		})
		if discovered != nil {
			runStep(model.SourceExactMatch, func() stepOutcome {
				return p.runExactMatch(ctx, "", discovered.url, contact, acc)
			})
		}
	}

	// Step 5: company fallback, only while phone, website, and address are
	// all still missing at the company level.
	company = firstNonEmpty(contact.CompanyName(), acc.String(model.FieldCompanyName))
	switch {
	case !companyContactMissing(model.FieldMap(contact), acc):
		skipStep(model.SourceCompanyFallback, "company contact details already present")
	case company == "":
		skipStep(model.SourceCompanyFallback, "no company name known")
	case p.places == nil:
		skipStep(model.SourceCompanyFallback, "places provider not configured")
	default:
		runStep(model.SourceCompanyFallback, func() stepOutcome {
			return p.runCompanyFallback(ctx, company, contact, acc)
		})
	}

	// Scoring and final assembly. The report is built even when every step
	// failed.
	report := &model.Report{
		EnrichedData: assembleEnriched(acc, contact),
		Steps:        steps,
		Provenance:   prov,
		Summary:      buildSummary(contact, acc, prov, steps, p.cfg.Pipeline),
	}

	log.Info("pipeline: enrichment complete",
		zap.Int("fields_found", report.Summary.FieldsFound),
		zap.Int("fields_missing", len(report.Summary.FieldsMissing)),
		zap.String("confidence", string(report.Summary.Confidence)),
		zap.Strings("sources_used", report.Summary.SourcesUsed),
	)

	return report, nil
}

// fuzzyFields is the subset of checklist fields whose absence keeps the
// fuzzy search step eligible.
var fuzzyFields = []string{
	model.FieldEmail,
	model.FieldPhone,
	model.FieldLinkedInURL,
	model.FieldCity,
	model.FieldSeniority,
	model.FieldEmploymentHistory,
	model.FieldEducation,
	model.FieldHeadline,
	model.FieldPhotoURL,
}

func fuzzyNeeded(contact model.Contact, acc model.FieldMap) bool {
	for _, key := range fuzzyFields {
		if !contact.HasValue(key) && !acc.HasValue(key) {
			return true
		}
	}
	return false
}
