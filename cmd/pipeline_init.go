package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/contact-cli/internal/pipeline"
	"github.com/sells-group/contact-cli/internal/store"
	"github.com/sells-group/contact-cli/pkg/apollo"
	"github.com/sells-group/contact-cli/pkg/places"
	"github.com/sells-group/contact-cli/pkg/websearch"
)

// pipelineEnv holds the initialized store, clients, and pipeline needed by
// the enrich/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, all API clients, and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Apollo.Key == "" {
		return nil, eris.New("apollo API key is required (ENRICH_APOLLO_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	apolloClient := apollo.NewClient(cfg.Apollo.Key,
		apollo.WithBaseURL(cfg.Apollo.BaseURL),
		apollo.WithRateLimit(cfg.Apollo.RequestsPerSec),
	)

	// Web search is optional; without it the identity discovery step is
	// recorded as skipped on every run.
	var searchClient websearch.Client
	if cfg.WebSearch.Key != "" {
		searchClient = websearch.NewClient(cfg.WebSearch.Key, websearch.WithBaseURL(cfg.WebSearch.BaseURL))
	} else {
		zap.L().Warn("ENRICH_WEBSEARCH_KEY not set, identity discovery disabled")
	}

	var placesClient places.Client
	if cfg.Places.Key != "" {
		placesClient = places.NewClient(cfg.Places.Key, places.WithBaseURL(cfg.Places.BaseURL))
	} else {
		zap.L().Warn("ENRICH_PLACES_KEY not set, company fallback disabled")
	}

	ref, err := loadRefData()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	p := pipeline.New(cfg, apolloClient, searchClient, placesClient, ref).WithCache(st)

	return &pipelineEnv{
		Store:    st,
		Pipeline: p,
	}, nil
}

func loadRefData() (*pipeline.RefData, error) {
	if cfg.Pipeline.RefDataPath == "" {
		return pipeline.DefaultRefData(), nil
	}
	ref, err := pipeline.LoadRefData(cfg.Pipeline.RefDataPath)
	if err != nil {
		return nil, eris.Wrap(err, "load reference data")
	}
	return ref, nil
}
