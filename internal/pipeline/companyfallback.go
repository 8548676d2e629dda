package pipeline

import (
	"context"

	"github.com/sells-group/contact-cli/internal/model"
	"github.com/sells-group/contact-cli/pkg/places"
)

// runCompanyFallback queries the business directory by company name plus
// optional hints and extracts company-level fields only. It never touches
// person-level fields; failure is non-fatal.
func (p *Pipeline) runCompanyFallback(ctx context.Context, company string, contact model.Contact, acc model.FieldMap) stepOutcome {
	req := places.FindRequest{
		Name:  company,
		City:  firstNonEmpty(contact.String(model.FieldCity), acc.String(model.FieldCity)),
		State: firstNonEmpty(contact.String(model.FieldState), acc.String(model.FieldState)),
	}

	// A corporate email domain is a useful disambiguation hint.
	email := firstNonEmpty(contact.String(model.FieldEmail), acc.String(model.FieldEmail))
	if domain := emailDomain(email); domain != "" && !p.ref.IsFreeEmailDomain(domain) {
		req.Domain = domain
	}

	biz, err := p.callPlaces(ctx, req)
	if err != nil {
		return errorOutcome(err)
	}
	if biz == nil {
		return stepOutcome{status: model.StepStatusNoResults, message: "directory returned no place"}
	}

	fields := model.FieldMap{}
	set := func(key, val string) {
		if val == "" {
			return
		}
		if contact.HasValue(key) || acc.HasValue(key) {
			return
		}
		fields[key] = val
	}

	set(model.FieldCompanyPhone, biz.Phone)
	set(model.FieldCompanyWebsite, biz.Website)
	set(model.FieldCompanyAddress, biz.FormattedAddress)
	set(model.FieldCompanyCity, biz.City)
	set(model.FieldCompanyState, biz.State)
	set(model.FieldCompanyCountry, biz.Country)
	set(model.FieldCompanyZip, biz.Zip)
	set(model.FieldCompanyMapsURL, biz.MapsURL)
	set(model.FieldCompanyBusinessStatus, biz.BusinessStatus)

	if len(fields) == 0 {
		return stepOutcome{status: model.StepStatusNoData, message: "place matched but added no new fields"}
	}
	return stepOutcome{status: model.StepStatusSuccess, fields: fields}
}
