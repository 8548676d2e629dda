package model

// Canonical field keys tracked by the enrichment pipeline. Person-level keys
// come first; company-level keys are only ever written by the company
// fallback step.
const (
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldLinkedInURL       = "linkedin_url"
	FieldTitle             = "title"
	FieldSeniority         = "seniority"
	FieldDepartments       = "departments"
	FieldEmploymentHistory = "employment_history"
	FieldEducation         = "education"
	FieldCity              = "city"
	FieldState             = "state"
	FieldCountry           = "country"
	FieldHeadline          = "headline"
	FieldPhotoURL          = "photo_url"
	FieldCompanyName       = "company_name"
	FieldIsDecisionMaker   = "is_decision_maker"

	FieldCompanyPhone          = "company_phone"
	FieldCompanyWebsite        = "company_website"
	FieldCompanyAddress        = "company_address"
	FieldCompanyCity           = "company_city"
	FieldCompanyState          = "company_state"
	FieldCompanyCountry        = "company_country"
	FieldCompanyZip            = "company_zip"
	FieldCompanyMapsURL        = "company_maps_url"
	FieldCompanyBusinessStatus = "company_business_status"
)

// PersonChecklist is the ordered set of person-level fields the assessor
// reports on. The order is stable so missing-field lists are deterministic.
var PersonChecklist = []string{
	FieldEmail,
	FieldPhone,
	FieldLinkedInURL,
	FieldCity,
	FieldSeniority,
	FieldDepartments,
	FieldEmploymentHistory,
	FieldEducation,
	FieldHeadline,
	FieldPhotoURL,
}

// hasAnyValue reports whether v is a non-empty string, a non-empty slice, or
// a non-string scalar (bools and numbers always count).
func hasAnyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// FieldMap is a mapping of canonical field keys to values. It is used both
// for the raw contact input and for the enrichment accumulator.
type FieldMap map[string]any

// HasValue reports whether key holds a non-empty value.
func (m FieldMap) HasValue(key string) bool {
	v, ok := m[key]
	return ok && hasAnyValue(v)
}

// String returns the value for key if it is a non-empty string.
func (m FieldMap) String(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Clone returns a shallow copy of the map.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Keys returns the keys holding non-empty values, in unspecified order.
func (m FieldMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if m.HasValue(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Contact is the raw record to enrich: canonical field keys plus whatever
// alternate keys the caller's form or import produced (organization_name,
// work_email, a nested organization object, ...). Any non-empty value present
// here is user-entered and immutable for the whole pipeline run.
type Contact map[string]any

// HasValue reports whether key holds a non-empty value on the raw record.
func (c Contact) HasValue(key string) bool {
	return FieldMap(c).HasValue(key)
}

// String returns the value for key if it is a non-empty string.
func (c Contact) String(key string) string {
	return FieldMap(c).String(key)
}

// Name returns the contact's display name.
func (c Contact) Name() string {
	if n := c.String("name"); n != "" {
		return n
	}
	first, last := c.String("first_name"), c.String("last_name")
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	default:
		return last
	}
}

// ApolloID returns a provider-assigned person id, if any.
func (c Contact) ApolloID() string {
	return c.String("apollo_person_id")
}

// LinkedInURL returns the profile URL from the raw record, if any.
func (c Contact) LinkedInURL() string {
	return c.String(FieldLinkedInURL)
}

// Organization returns the nested organization object, if present.
func (c Contact) Organization() FieldMap {
	if org, ok := c["organization"].(map[string]any); ok {
		return FieldMap(org)
	}
	return nil
}

// CompanyName returns the best company-name value available on the raw
// record, checking the canonical key first and then the alternates that
// imports commonly produce.
func (c Contact) CompanyName() string {
	for _, key := range []string{FieldCompanyName, "organization_name", "company"} {
		if v := c.String(key); v != "" {
			return v
		}
	}
	if org := c.Organization(); org != nil {
		return org.String("name")
	}
	return ""
}

// Clone returns a shallow copy of the contact.
func (c Contact) Clone() Contact {
	out := make(Contact, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
