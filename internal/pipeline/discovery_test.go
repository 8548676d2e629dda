package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-cli/internal/model"
	apollomocks "github.com/sells-group/contact-cli/pkg/apollo/mocks"
	"github.com/sells-group/contact-cli/pkg/websearch"
	searchmocks "github.com/sells-group/contact-cli/pkg/websearch/mocks"
)

func TestBuildStrategies_FullLadder(t *testing.T) {
	p := New(testConfig(), apollomocks.NewMockClient(t), nil, nil, nil)

	contact := model.Contact{
		"name":    "Jane Smith",
		"company": "Acme Fasteners",
		"title":   "VP of Operations",
		"email":   "jane@acmefasteners.com",
	}

	strategies := p.buildStrategies(contact, nil)
	require.Len(t, strategies, 4)
	assert.Equal(t, "name_company", strategies[0].name)
	assert.Equal(t, "name_title", strategies[1].name)
	assert.Equal(t, "name_email_domain", strategies[2].name)
	assert.Equal(t, "name_only", strategies[3].name)

	assert.Equal(t, `site:linkedin.com/in "Jane Smith" "Acme Fasteners"`, strategies[0].query)
	assert.Equal(t, `site:linkedin.com/in "Jane Smith" acmefasteners.com`, strategies[2].query)
	assert.Equal(t, `site:linkedin.com/in "Jane Smith"`, strategies[3].query)
}

func TestBuildStrategies_FreeEmailDomainExcluded(t *testing.T) {
	p := New(testConfig(), apollomocks.NewMockClient(t), nil, nil, nil)

	strategies := p.buildStrategies(model.Contact{
		"name":  "Jane Smith",
		"email": "jane@gmail.com",
	}, nil)

	require.Len(t, strategies, 1)
	assert.Equal(t, "name_only", strategies[0].name)
}

func TestBuildStrategies_NoName(t *testing.T) {
	p := New(testConfig(), apollomocks.NewMockClient(t), nil, nil, nil)
	assert.Nil(t, p.buildStrategies(model.Contact{"company": "Acme"}, nil))
}

func TestClassifyResults_ContextStrategyHighConfidence(t *testing.T) {
	items := []websearch.Item{
		{
			Title:   "Jane Smith - VP of Operations - Acme Fasteners",
			Snippet: "Operations leadership at Acme Fasteners.",
			Link:    "https://www.linkedin.com/in/janesmith",
		},
	}

	res := classifyResults(items, []string{"jane", "smith"}, discoveryStrategy{
		name:    "name_company",
		context: "Acme Fasteners",
	})
	require.NotNil(t, res)
	assert.Equal(t, "https://www.linkedin.com/in/janesmith", res.url)
	assert.Equal(t, "high", res.confidence)
	assert.Equal(t, "name_company", res.strategy)
}

func TestClassifyResults_NameOnlyMediumConfidence(t *testing.T) {
	items := []websearch.Item{
		{
			Title: "Jane Smith | LinkedIn",
			Link:  "https://www.linkedin.com/in/janesmith",
		},
	}

	res := classifyResults(items, []string{"jane", "smith"}, discoveryStrategy{name: "name_only"})
	require.NotNil(t, res)
	assert.Equal(t, "medium", res.confidence)
}

func TestClassifyResults_Rejections(t *testing.T) {
	strat := discoveryStrategy{name: "name_company", context: "Acme Fasteners"}
	nameTokens := []string{"jane", "smith"}

	t.Run("non-profile link", func(t *testing.T) {
		items := []websearch.Item{{Title: "Jane Smith Acme Fasteners", Link: "https://example.com/jane"}}
		assert.Nil(t, classifyResults(items, nameTokens, strat))
	})

	t.Run("company page link", func(t *testing.T) {
		items := []websearch.Item{{Title: "Jane Smith Acme Fasteners", Link: "https://www.linkedin.com/company/acme"}}
		assert.Nil(t, classifyResults(items, nameTokens, strat))
	})

	t.Run("missing name token", func(t *testing.T) {
		items := []websearch.Item{{Title: "John Smith - Acme Fasteners", Link: "https://linkedin.com/in/johnsmith"}}
		assert.Nil(t, classifyResults(items, nameTokens, strat))
	})

	t.Run("missing context token", func(t *testing.T) {
		items := []websearch.Item{{Title: "Jane Smith - Widget Works", Link: "https://linkedin.com/in/janesmith"}}
		assert.Nil(t, classifyResults(items, nameTokens, strat))
	})
}

func TestClassifyResults_SkipsBadResultTakesLater(t *testing.T) {
	items := []websearch.Item{
		{Title: "Someone Else", Link: "https://linkedin.com/in/someoneelse"},
		{Title: "Jane Smith - Acme Fasteners", Link: "https://linkedin.com/in/janesmith"},
	}

	res := classifyResults(items, []string{"jane", "smith"}, discoveryStrategy{
		name:    "name_company",
		context: "Acme Fasteners",
	})
	require.NotNil(t, res)
	assert.Equal(t, "https://www.linkedin.com/in/janesmith", res.url)
}

func TestExtractProfileURL(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.linkedin.com/in/janesmith", "https://www.linkedin.com/in/janesmith"},
		{"https://linkedin.com/in/jane-smith-123/", "https://www.linkedin.com/in/jane-smith-123"},
		{"http://uk.linkedin.com/in/janesmith?trk=people", "https://www.linkedin.com/in/janesmith"},
		{"https://www.linkedin.com/company/acme", ""},
		{"https://example.com/in/janesmith", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractProfileURL(tt.link), "link %q", tt.link)
	}
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "acmefasteners.com", emailDomain("jane@acmefasteners.com"))
	assert.Equal(t, "acmefasteners.com", emailDomain("jane@WWW.AcmeFasteners.com"))
	assert.Empty(t, emailDomain("not-an-email"))
	assert.Empty(t, emailDomain("trailing@"))
	assert.Empty(t, emailDomain(""))
}

func TestRunIdentityDiscovery_FallsThroughStrategies(t *testing.T) {
	ctx := context.Background()

	contact := model.Contact{
		"name":    "Jane Smith",
		"company": "Acme Fasteners",
	}

	ws := searchmocks.NewMockClient(t)
	// The specific strategy finds nothing; the name-only strategy succeeds.
	ws.On("Search", mock.Anything, `site:linkedin.com/in "Jane Smith" "Acme Fasteners"`).
		Return(&websearch.SearchResponse{}, nil).Once()
	ws.On("Search", mock.Anything, `site:linkedin.com/in "Jane Smith"`).
		Return(&websearch.SearchResponse{Items: []websearch.Item{
			{Title: "Jane Smith | LinkedIn", Link: "https://www.linkedin.com/in/janesmith"},
		}}, nil).Once()

	p := New(testConfig(), apollomocks.NewMockClient(t), ws, nil, nil)

	out, res := p.runIdentityDiscovery(ctx, contact, nil)
	require.NotNil(t, res)
	assert.Equal(t, model.StepStatusSuccess, out.status)
	assert.Equal(t, "medium", res.confidence)
	assert.Equal(t, "name_only", res.strategy)
}

func TestRunIdentityDiscovery_NoConfidentMatch(t *testing.T) {
	ctx := context.Background()

	ws := searchmocks.NewMockClient(t)
	ws.On("Search", mock.Anything, mock.AnythingOfType("string")).
		Return(&websearch.SearchResponse{}, nil)

	p := New(testConfig(), apollomocks.NewMockClient(t), ws, nil, nil)

	out, res := p.runIdentityDiscovery(ctx, model.Contact{"name": "Jane Smith"}, nil)
	assert.Nil(t, res)
	assert.Equal(t, model.StepStatusNoMatch, out.status)
}
