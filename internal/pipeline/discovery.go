package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/pkg/websearch"
)

// profileURLPattern extracts a LinkedIn profile URL of the /in/<handle> form
// from a search result link.
var profileURLPattern = regexp.MustCompile(`(?i)linkedin\.com/in/([A-Za-z0-9%_-]+)`)

// discoveryStrategy is one web-search query for a contact's profile URL.
// Strategies are tried in strict order of decreasing specificity.
type discoveryStrategy struct {
	name string
	// query is the full search query string.
	query string
	// context holds the extra tokens (company, title, or email domain) that
	// must also match for the result to be accepted. Empty for the name-only
	// strategy, which can reach at most medium confidence.
	context string
}

// discoveryResult is an accepted profile URL with its classification.
type discoveryResult struct {
	url        string
	confidence string // "high" or "medium"
	strategy   string
}

// buildStrategies assembles the query ladder from whatever the pipeline
// knows about the contact: name+company, name+title, name+email-domain
// (corporate domains only), then name alone.
func (p *Pipeline) buildStrategies(contact model.Contact, acc model.FieldMap) []discoveryStrategy {
	name := contact.Name()
	if name == "" {
		return nil
	}

	var strategies []discoveryStrategy

	company := firstNonEmpty(contact.CompanyName(), acc.String(model.FieldCompanyName))
	if company != "" {
		strategies = append(strategies, discoveryStrategy{
			name:    "name_company",
			query:   fmt.Sprintf(`site:linkedin.com/in "%s" "%s"`, name, company),
			context: company,
		})
	}

	title := firstNonEmpty(contact.String(model.FieldTitle), acc.String(model.FieldTitle))
	if title != "" {
		strategies = append(strategies, discoveryStrategy{
			name:    "name_title",
			query:   fmt.Sprintf(`site:linkedin.com/in "%s" "%s"`, name, title),
			context: title,
		})
	}

	email := firstNonEmpty(contact.String(model.FieldEmail), contact.String("work_email"), acc.String(model.FieldEmail))
	if domain := emailDomain(email); domain != "" && !p.ref.IsFreeEmailDomain(domain) {
		strategies = append(strategies, discoveryStrategy{
			name:    "name_email_domain",
			query:   fmt.Sprintf(`site:linkedin.com/in "%s" %s`, name, domain),
			context: strings.TrimSuffix(domain, ".com"),
		})
	}

	strategies = append(strategies, discoveryStrategy{
		name:  "name_only",
		query: fmt.Sprintf(`site:linkedin.com/in "%s"`, name),
	})

	return strategies
}

// runIdentityDiscovery searches the web for the contact's profile URL. It
// stops at the first strategy yielding a confidently classified result; the
// controller then re-invokes the exact-match step with the discovered URL.
func (p *Pipeline) runIdentityDiscovery(ctx context.Context, contact model.Contact, acc model.FieldMap) (stepOutcome, *discoveryResult) {
	strategies := p.buildStrategies(contact, acc)
	if len(strategies) == 0 {
		return stepOutcome{status: model.StepStatusSkipped, message: "no name to search on"}, nil
	}

	nameTokens := significantTokens(contact.Name(), p.ref.Honorifics)
	if len(nameTokens) == 0 {
		return stepOutcome{status: model.StepStatusSkipped, message: "name has no significant tokens"}, nil
	}

	var lastErr error
	for _, strat := range strategies {
		resp, err := p.callWebSearch(ctx, strat.query)
		if err != nil {
			// A failing strategy does not end discovery; the next, less
			// specific query may still succeed.
			lastErr = err
			continue
		}

		if res := classifyResults(resp.Items, nameTokens, strat); res != nil {
			return stepOutcome{
				status:  model.StepStatusSuccess,
				fields:  model.FieldMap{model.FieldLinkedInURL: res.url},
				message: fmt.Sprintf("found via %s (%s confidence)", res.strategy, res.confidence),
			}, res
		}
	}

	if lastErr != nil {
		return errorOutcome(lastErr), nil
	}
	return stepOutcome{status: model.StepStatusNoMatch, message: "no confident profile match across strategies"}, nil
}

// classifyResults applies the fixed acceptance rule to a strategy's results:
// every significant name token must appear in the title or snippet, and
// strategies with context (company, title, domain) additionally require a
// matching context token. Context strategies classify as high confidence,
// the name-only strategy as medium.
func classifyResults(items []websearch.Item, nameTokens []string, strat discoveryStrategy) *discoveryResult {
	contextTokens := significantTokens(strat.context, nil)

	for _, item := range items {
		url := extractProfileURL(item.Link)
		if url == "" {
			continue
		}

		haystack := normalizeText(item.Title + " " + item.Snippet)

		allNames := true
		for _, tok := range nameTokens {
			if !containsToken(haystack, tok) {
				allNames = false
				break
			}
		}
		if !allNames {
			continue
		}

		if len(contextTokens) > 0 {
			anyContext := false
			for _, tok := range contextTokens {
				if containsToken(haystack, tok) {
					anyContext = true
					break
				}
			}
			if !anyContext {
				continue
			}
			return &discoveryResult{url: url, confidence: "high", strategy: strat.name}
		}

		return &discoveryResult{url: url, confidence: "medium", strategy: strat.name}
	}

	return nil
}

// extractProfileURL returns a canonical https profile URL when the link
// matches the /in/<handle> pattern, else "".
func extractProfileURL(link string) string {
	m := profileURLPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return "https://www.linkedin.com/in/" + m[1]
}

// emailDomain returns the domain part of an email address, or "".
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return normalizeDomain(email[at+1:])
}

// normalizeDomain lowercases and trims a domain for comparison.
func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(domain, "www.")))
}
