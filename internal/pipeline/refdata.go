package pipeline

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RefData is the read-only reference data injected into the pipeline:
// keyword lists and domain lists that drive fixed rules. It is loaded once at
// startup and never mutated.
type RefData struct {
	// FreeEmailDomains are consumer email providers whose domains carry no
	// company signal; identity discovery skips them.
	FreeEmailDomains []string `yaml:"free_email_domains"`

	// DecisionMakerKeywords are title substrings that mark a contact as a
	// decision maker.
	DecisionMakerKeywords []string `yaml:"decision_maker_keywords"`

	// DecisionMakerSeniorities are provider seniority codes that mark a
	// contact as a decision maker regardless of title.
	DecisionMakerSeniorities []string `yaml:"decision_maker_seniorities"`

	// Honorifics are name prefixes excluded from token matching.
	Honorifics []string `yaml:"honorifics"`
}

// DefaultRefData returns the built-in reference data.
func DefaultRefData() *RefData {
	return &RefData{
		FreeEmailDomains: []string{
			"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
			"aol.com", "icloud.com", "me.com", "live.com",
			"msn.com", "protonmail.com", "proton.me", "gmx.com",
			"mail.com", "yandex.com", "zoho.com",
		},
		DecisionMakerKeywords: []string{
			"ceo", "cto", "cfo", "coo", "cmo", "cio", "chief",
			"vp", "vice president", "director", "head of",
			"owner", "founder", "president", "partner", "principal",
		},
		DecisionMakerSeniorities: []string{
			"c_suite", "founder", "owner", "vp", "director",
			"head", "partner",
		},
		Honorifics: []string{
			"mr", "mrs", "ms", "dr", "prof", "jr", "sr",
			"ii", "iii", "iv",
		},
	}
}

// LoadRefData reads reference data from a YAML file. Lists absent from the
// file fall back to the built-in defaults.
func LoadRefData(path string) (*RefData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: read %s", path)
	}

	ref := &RefData{}
	if err := yaml.Unmarshal(data, ref); err != nil {
		return nil, eris.Wrap(err, "refdata: parse")
	}

	defaults := DefaultRefData()
	if len(ref.FreeEmailDomains) == 0 {
		ref.FreeEmailDomains = defaults.FreeEmailDomains
	}
	if len(ref.DecisionMakerKeywords) == 0 {
		ref.DecisionMakerKeywords = defaults.DecisionMakerKeywords
	}
	if len(ref.DecisionMakerSeniorities) == 0 {
		ref.DecisionMakerSeniorities = defaults.DecisionMakerSeniorities
	}
	if len(ref.Honorifics) == 0 {
		ref.Honorifics = defaults.Honorifics
	}

	return ref, nil
}

// IsFreeEmailDomain reports whether domain belongs to a consumer provider.
func (r *RefData) IsFreeEmailDomain(domain string) bool {
	domain = normalizeDomain(domain)
	for _, d := range r.FreeEmailDomains {
		if domain == d {
			return true
		}
	}
	return false
}
