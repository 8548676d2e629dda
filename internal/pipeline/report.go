package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/contact-cli/internal/model"
)

// FormatReport generates a human-readable enrichment report.
func FormatReport(contact model.Contact, report *model.Report) string {
	var b strings.Builder

	name := contact.Name()
	if name == "" {
		name = "(unnamed contact)"
	}
	fmt.Fprintf(&b, "# Enrichment Report: %s\n", name)
	if company := contact.CompanyName(); company != "" {
		fmt.Fprintf(&b, "Company: %s\n", company)
	}
	b.WriteString("\n")

	// Summary.
	s := report.Summary
	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Fields found: %d\n", s.FieldsFound)
	fmt.Fprintf(&b, "- Fields missing: %d\n", len(s.FieldsMissing))
	fmt.Fprintf(&b, "- Confidence: %s\n", s.Confidence)
	fmt.Fprintf(&b, "- Quality: %s\n", s.Quality)
	if len(s.SourcesUsed) > 0 {
		fmt.Fprintf(&b, "- Sources used: %s\n", strings.Join(s.SourcesUsed, ", "))
	}
	b.WriteString("\n")

	// Step log.
	b.WriteString("## Steps\n")
	for _, step := range report.Steps {
		fmt.Fprintf(&b, "- %s: %s (%dms)\n", step.Source, step.Status, step.Duration)
		if len(step.FieldsFound) > 0 {
			fmt.Fprintf(&b, "  Fields: %s\n", strings.Join(step.FieldsFound, ", "))
		}
		if step.Message != "" {
			fmt.Fprintf(&b, "  Note: %s\n", step.Message)
		}
	}
	b.WriteString("\n")

	// Enriched fields with per-field provenance.
	b.WriteString("## Enriched Fields\n")
	if len(report.EnrichedData) == 0 {
		b.WriteString("No fields enriched.\n\n")
	} else {
		keys := report.EnrichedData.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			v := report.EnrichedData[k]
			if src, ok := report.Provenance[k]; ok {
				fmt.Fprintf(&b, "- **%s**: %s [%s]\n", k, formatValue(v), src)
			} else {
				fmt.Fprintf(&b, "- **%s**: %s [user]\n", k, formatValue(v))
			}
		}
		b.WriteString("\n")
	}

	// Still missing.
	if len(s.FieldsMissing) > 0 {
		missing := append([]string(nil), s.FieldsMissing...)
		sort.Strings(missing)
		b.WriteString("## Missing Fields\n")
		for _, k := range missing {
			fmt.Fprintf(&b, "- %s\n", k)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, "; ")
	default:
		return fmt.Sprintf("%v", val)
	}
}
