package pipeline

import (
	"github.com/sells-group/contact-cli/internal/config"
	"github.com/sells-group/contact-cli/internal/model"
)

// confidenceLabel derives the coarse confidence label from the count of
// distinct fields found across all steps and the count still missing from
// the checklist. Thresholds come from config (defaults: high at >=6 found
// with <=2 missing, medium at >=3 found).
func confidenceLabel(found, missing int, cfg config.PipelineConfig) model.Confidence {
	switch {
	case found >= cfg.ConfidenceHighFound && missing <= cfg.ConfidenceHighMissing:
		return model.ConfidenceHigh
	case found >= cfg.ConfidenceMediumFound:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// qualityLabel derives the UI-facing completeness label from the number of
// fields attributed via provenance.
func qualityLabel(provCount int, cfg config.PipelineConfig) model.Quality {
	switch {
	case provCount >= cfg.QualityCompleteFields:
		return model.QualityComplete
	case provCount >= cfg.QualityPartialFields:
		return model.QualityPartial
	default:
		return model.QualityMinimal
	}
}

// buildSummary assembles the final summary from the accumulated state.
func buildSummary(contact model.Contact, acc model.FieldMap, prov map[string]model.Source, steps []model.EnrichmentStep, cfg config.PipelineConfig) model.Summary {
	missing := MissingFields(model.FieldMap(contact), acc)
	found := len(prov)

	var sources []string
	seen := map[model.Source]bool{}
	for _, s := range steps {
		if s.Status != model.StepStatusSuccess || seen[s.Source] {
			continue
		}
		seen[s.Source] = true
		sources = append(sources, string(s.Source))
	}

	return model.Summary{
		FieldsFound:   found,
		FieldsMissing: missing,
		Confidence:    confidenceLabel(found, len(missing), cfg),
		SourcesUsed:   sources,
		Quality:       qualityLabel(found, cfg),
	}
}
