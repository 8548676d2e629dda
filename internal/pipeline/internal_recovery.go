package pipeline

import "github.com/sells-group/contact-cli/internal/model"

// recoveryMapping maps an alternate key commonly produced by forms and CSV
// imports to its canonical field.
type recoveryMapping struct {
	altKey    string
	canonical string
}

// recoveryMappings are tried in order; the first alternate with a value wins
// for its canonical field.
var recoveryMappings = []recoveryMapping{
	{altKey: "organization_name", canonical: model.FieldCompanyName},
	{altKey: "company", canonical: model.FieldCompanyName},
	{altKey: "work_email", canonical: model.FieldEmail},
	{altKey: "mobile_phone", canonical: model.FieldPhone},
	{altKey: "work_direct_phone", canonical: model.FieldPhone},
	{altKey: "sanitized_phone", canonical: model.FieldPhone},
	{altKey: "job_title", canonical: model.FieldTitle},
	{altKey: "avatar_url", canonical: model.FieldPhotoURL},
	{altKey: "raw_address", canonical: model.FieldCompanyAddress},
}

// orgMappings pull canonical fields out of a nested organization object.
var orgMappings = []recoveryMapping{
	{altKey: "name", canonical: model.FieldCompanyName},
	{altKey: "city", canonical: model.FieldCity},
	{altKey: "state", canonical: model.FieldState},
	{altKey: "phone", canonical: model.FieldCompanyPhone},
	{altKey: "website_url", canonical: model.FieldCompanyWebsite},
}

// recoverInternal reconciles already-known but differently-named values on
// the raw record into canonical fields. No external call. A canonical field
// is only recovered while it has no value on the input or in the
// accumulator, so running the step twice is a no-op on the second pass.
func recoverInternal(contact model.Contact, acc model.FieldMap) model.FieldMap {
	recovered := model.FieldMap{}

	known := func(key string) bool {
		return contact.HasValue(key) || acc.HasValue(key) || recovered.HasValue(key)
	}

	for _, m := range recoveryMappings {
		if known(m.canonical) {
			continue
		}
		if v := contact.String(m.altKey); v != "" {
			recovered[m.canonical] = v
		}
	}

	if org := contact.Organization(); org != nil {
		for _, m := range orgMappings {
			if known(m.canonical) {
				continue
			}
			if v := org.String(m.altKey); v != "" {
				recovered[m.canonical] = v
			}
		}
	}

	return recovered
}
