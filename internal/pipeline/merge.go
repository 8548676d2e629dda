package pipeline

import (
	"sort"

	"github.com/sells-group/contact-cli/internal/model"
)

// Merge folds a step's candidate fields into the accumulator under the
// three-tier precedence rule:
//
//  1. a non-empty value on the original input is user-entered and never
//     overwritten,
//  2. a value already in the accumulator was set by an earlier step and
//     never overwritten (first successful step wins),
//  3. otherwise the candidate value is written.
//
// The input acc is not mutated. Candidate keys are visited in sorted order so
// the result is independent of map enumeration order. Returns the new
// accumulator and the keys actually written, sorted.
func Merge(acc model.FieldMap, candidate model.FieldMap, original model.Contact) (model.FieldMap, []string) {
	out := acc.Clone()
	if out == nil {
		out = model.FieldMap{}
	}

	keys := make([]string, 0, len(candidate))
	for k := range candidate {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var written []string
	for _, k := range keys {
		if !candidate.HasValue(k) {
			continue
		}
		if original.HasValue(k) {
			continue
		}
		if out.HasValue(k) {
			continue
		}
		out[k] = candidate[k]
		written = append(written, k)
	}

	return out, written
}

// recordProvenance marks source as the origin of each newly written field.
// First writer wins, matching merge precedence.
func recordProvenance(prov map[string]model.Source, written []string, source model.Source) {
	for _, k := range written {
		if _, ok := prov[k]; !ok {
			prov[k] = source
		}
	}
}

// assembleEnriched builds the final enriched record: the accumulator overlaid
// with the user-entered canonical values from the original input, which
// always win.
func assembleEnriched(acc model.FieldMap, original model.Contact) model.FieldMap {
	out := acc.Clone()
	if out == nil {
		out = model.FieldMap{}
	}
	for k, v := range original {
		if model.FieldMap(original).HasValue(k) && isCanonicalField(k) {
			out[k] = v
		}
	}
	return out
}

// canonicalFields is the full set of keys the pipeline tracks.
var canonicalFields = map[string]bool{
	model.FieldEmail:                 true,
	model.FieldPhone:                 true,
	model.FieldLinkedInURL:           true,
	model.FieldTitle:                 true,
	model.FieldSeniority:             true,
	model.FieldDepartments:           true,
	model.FieldEmploymentHistory:     true,
	model.FieldEducation:             true,
	model.FieldCity:                  true,
	model.FieldState:                 true,
	model.FieldCountry:               true,
	model.FieldHeadline:              true,
	model.FieldPhotoURL:              true,
	model.FieldCompanyName:           true,
	model.FieldIsDecisionMaker:       true,
	model.FieldCompanyPhone:          true,
	model.FieldCompanyWebsite:        true,
	model.FieldCompanyAddress:        true,
	model.FieldCompanyCity:           true,
	model.FieldCompanyState:          true,
	model.FieldCompanyCountry:        true,
	model.FieldCompanyZip:            true,
	model.FieldCompanyMapsURL:        true,
	model.FieldCompanyBusinessStatus: true,
}

func isCanonicalField(key string) bool {
	return canonicalFields[key]
}
