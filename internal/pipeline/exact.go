package pipeline

import (
	"context"
	"fmt"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/pkg/apollo"
)

// runExactMatch resolves a contact via an unambiguous identifier (provider id
// or profile URL) and maps the provider person object into canonical fields.
// It is stateless: the identity discovery fallback re-invokes it with a newly
// discovered URL.
func (p *Pipeline) runExactMatch(ctx context.Context, id, profileURL string, contact model.Contact, acc model.FieldMap) stepOutcome {
	req := apollo.MatchRequest{}
	switch {
	case id != "":
		req.ID = id
	case profileURL != "":
		req.LinkedInURL = profileURL
	default:
		return stepOutcome{status: model.StepStatusSkipped, message: "no exact identifier"}
	}

	resp, err := p.callMatch(ctx, req)
	if err != nil {
		return errorOutcome(err)
	}
	if resp == nil || resp.Person == nil {
		return stepOutcome{status: model.StepStatusNoData, message: "no person payload"}
	}

	fields := p.personFields(resp.Person, contact, acc)
	if len(fields) == 0 {
		return stepOutcome{status: model.StepStatusNoData, message: "person matched but added no new fields"}
	}
	return stepOutcome{status: model.StepStatusSuccess, fields: fields}
}

// personFields maps a provider person object into canonical fields,
// extracting only fields absent from the original input record. The merge
// engine re-checks the accumulator, but extraction also skips fields already
// accumulated so the step's fields_found reflects its real contribution.
func (p *Pipeline) personFields(person *apollo.Person, contact model.Contact, acc model.FieldMap) model.FieldMap {
	fields := model.FieldMap{}

	set := func(key string, val any) {
		if contact.HasValue(key) || acc.HasValue(key) {
			return
		}
		fields[key] = val
	}

	if person.Email != "" {
		set(model.FieldEmail, person.Email)
	}
	if person.PhoneNumber != "" {
		set(model.FieldPhone, person.PhoneNumber)
	}
	if person.LinkedInURL != "" {
		set(model.FieldLinkedInURL, person.LinkedInURL)
	}
	if person.Title != "" {
		set(model.FieldTitle, person.Title)
	}
	if person.Headline != "" {
		set(model.FieldHeadline, person.Headline)
	}
	if person.Seniority != "" {
		set(model.FieldSeniority, person.Seniority)
	}
	if len(person.Departments) > 0 {
		set(model.FieldDepartments, person.Departments)
	}
	if person.City != "" {
		set(model.FieldCity, person.City)
	}
	if person.State != "" {
		set(model.FieldState, person.State)
	}
	if person.Country != "" {
		set(model.FieldCountry, person.Country)
	}
	if person.PhotoURL != "" {
		set(model.FieldPhotoURL, person.PhotoURL)
	}
	if len(person.EmploymentHistory) > 0 {
		set(model.FieldEmploymentHistory, formatEmployment(person.EmploymentHistory))
	}
	if len(person.Education) > 0 {
		set(model.FieldEducation, formatEducation(person.Education))
	}
	if person.Organization != nil && person.Organization.Name != "" {
		set(model.FieldCompanyName, person.Organization.Name)
	}

	// The decision-maker flag is derived from seniority and title by fixed
	// keyword rules, never taken from an external signal.
	seniority := firstNonEmpty(person.Seniority, contact.String(model.FieldSeniority), acc.String(model.FieldSeniority))
	title := firstNonEmpty(person.Title, contact.String(model.FieldTitle), acc.String(model.FieldTitle))
	if seniority != "" || title != "" {
		set(model.FieldIsDecisionMaker, p.isDecisionMaker(seniority, title))
	}

	return fields
}

// isDecisionMaker applies the fixed keyword rules: a known decision-maker
// seniority code, or a title containing a decision-maker keyword.
func (p *Pipeline) isDecisionMaker(seniority, title string) bool {
	s := normalizeText(seniority)
	for _, code := range p.ref.DecisionMakerSeniorities {
		if s == normalizeText(code) {
			return true
		}
	}

	t := normalizeText(title)
	if t == "" {
		return false
	}
	for _, kw := range p.ref.DecisionMakerKeywords {
		if containsToken(t, normalizeText(kw)) {
			return true
		}
	}
	return false
}

func formatEmployment(entries []apollo.Employment) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		item := e.Title
		if e.OrganizationName != "" {
			if item != "" {
				item += " at " + e.OrganizationName
			} else {
				item = e.OrganizationName
			}
		}
		if e.StartDate != "" {
			item = fmt.Sprintf("%s (%s)", item, e.StartDate)
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func formatEducation(entries []apollo.Education) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		item := e.SchoolName
		if e.Degree != "" && item != "" {
			item = e.Degree + ", " + item
		} else if e.Degree != "" {
			item = e.Degree
		}
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
