package pipeline

import "github.com/sells-group/contact-cli/internal/model"

// MissingFields reports which person-level checklist fields hold no value in
// any of the given views (typically the raw input and the accumulator). Pure
// and deterministic: the result follows the checklist order. It runs before
// the pipeline starts and again after every merge, so later steps only fire
// while something is still worth pursuing.
func MissingFields(views ...model.FieldMap) []string {
	var missing []string
	for _, key := range model.PersonChecklist {
		found := false
		for _, v := range views {
			if v.HasValue(key) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, key)
		}
	}
	return missing
}

// companyContactMissing reports whether all three company-level contact
// fields (phone, website, address) are still absent. The company fallback
// step is only eligible while this holds.
func companyContactMissing(views ...model.FieldMap) bool {
	for _, key := range []string{model.FieldCompanyPhone, model.FieldCompanyWebsite, model.FieldCompanyAddress} {
		for _, v := range views {
			if v.HasValue(key) {
				return false
			}
		}
	}
	return true
}
