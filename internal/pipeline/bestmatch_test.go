package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/pkg/apollo"
)

func TestScoreCandidate(t *testing.T) {
	tests := []struct {
		name        string
		candName    string
		candCompany string
		want        int
	}{
		{name: "exact name and company", candName: "Jane Smith", candCompany: "Acme Fasteners", want: 5},
		{name: "exact name only", candName: "Jane Smith", candCompany: "Widget Works", want: 3},
		{name: "name substring exact company", candName: "Jane Smithson", candCompany: "Acme Fasteners", want: 3},
		{name: "company substring only", candName: "John Doe", candCompany: "Acme", want: 1},
		{name: "no overlap", candName: "John Doe", candCompany: "Widget Works", want: 0},
		{name: "diacritics fold to exact", candName: "Jané Smíth", candCompany: "Acme Fasteners", want: 5},
		{name: "case and punctuation ignored", candName: "JANE   SMITH", candCompany: "Acme, Fasteners Inc", want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreCandidate(tt.candName, tt.candCompany, "Jane Smith", "Acme Fasteners")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreCandidate_EmptyTargets(t *testing.T) {
	assert.Zero(t, scoreCandidate("", "", "Jane Smith", "Acme"))
	assert.Zero(t, scoreCandidate("Jane Smith", "Acme", "", ""))
}

func TestPickBestMatch_ThresholdRejects(t *testing.T) {
	people := []apollo.Person{
		{Name: "John Doe", Organization: &apollo.Org{Name: "Widget Works"}},
	}
	winner, score := pickBestMatch(people, "Jane Smith", "Acme Fasteners", 3)
	assert.Nil(t, winner)
	assert.Equal(t, 0, score)
}

func TestPickBestMatch_HighestScoreWins(t *testing.T) {
	people := []apollo.Person{
		{ID: "a", Name: "Jane Smithson", Organization: &apollo.Org{Name: "Acme Fasteners"}},
		{ID: "b", Name: "Jane Smith", Organization: &apollo.Org{Name: "Acme Fasteners"}},
	}
	winner, score := pickBestMatch(people, "Jane Smith", "Acme Fasteners", 3)
	require.NotNil(t, winner)
	assert.Equal(t, "b", winner.ID)
	assert.Equal(t, 5, score)
}

func TestPickBestMatch_TieBrokenByInputOrder(t *testing.T) {
	people := []apollo.Person{
		{ID: "first", Name: "Jane Smith", Organization: &apollo.Org{Name: "Acme Fasteners"}},
		{ID: "second", Name: "Jane Smith", Organization: &apollo.Org{Name: "Acme Fasteners"}},
	}
	winner, _ := pickBestMatch(people, "Jane Smith", "Acme Fasteners", 3)
	require.NotNil(t, winner)
	assert.Equal(t, "first", winner.ID)
}

func TestPickBestMatch_MissingOrganization(t *testing.T) {
	people := []apollo.Person{
		{ID: "a", Name: "Jane Smith"},
	}
	winner, score := pickBestMatch(people, "Jane Smith", "Acme Fasteners", 3)
	require.NotNil(t, winner)
	assert.Equal(t, 3, score)
}

func TestPickBestMatch_EmptyCandidates(t *testing.T) {
	winner, score := pickBestMatch(nil, "Jane Smith", "Acme", 3)
	assert.Nil(t, winner)
	assert.Equal(t, -1, score)
}
