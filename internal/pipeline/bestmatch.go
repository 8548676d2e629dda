package pipeline

import (
	"strings"

	"github.com/sells-group/contact-cli/pkg/apollo"
)

// Best-match scoring weights. Exact field agreement outweighs substring
// overlap; name agreement outweighs company agreement.
const (
	nameExactPoints        = 3
	nameSubstringPoints    = 1
	companyExactPoints     = 2
	companySubstringPoints = 1

	// matchScoreMax is the highest achievable score.
	matchScoreMax = nameExactPoints + companyExactPoints
)

// scoreCandidate computes the integer similarity score of one candidate
// against the target name and company. Comparison is over normalized text;
// substring matches count in either direction.
func scoreCandidate(candName, candCompany, targetName, targetCompany string) int {
	score := 0

	cn, tn := normalizeText(candName), normalizeText(targetName)
	switch {
	case cn != "" && cn == tn:
		score += nameExactPoints
	case cn != "" && tn != "" && (strings.Contains(cn, tn) || strings.Contains(tn, cn)):
		score += nameSubstringPoints
	}

	cc, tc := normalizeText(candCompany), normalizeText(targetCompany)
	switch {
	case cc != "" && cc == tc:
		score += companyExactPoints
	case cc != "" && tc != "" && (strings.Contains(cc, tc) || strings.Contains(tc, cc)):
		score += companySubstringPoints
	}

	return score
}

// pickBestMatch returns the candidate with the highest score, or nil when the
// top score falls below threshold (no confident match). Ties are broken by
// input order: the first candidate reaching the top score wins, so the
// result is stable for a fixed input order.
func pickBestMatch(people []apollo.Person, targetName, targetCompany string, threshold int) (*apollo.Person, int) {
	best := -1
	bestIdx := -1

	for i, p := range people {
		company := ""
		if p.Organization != nil {
			company = p.Organization.Name
		}
		s := scoreCandidate(p.Name, company, targetName, targetCompany)
		if s > best {
			best = s
			bestIdx = i
		}
	}

	if bestIdx < 0 || best < threshold {
		return nil, best
	}
	return &people[bestIdx], best
}
