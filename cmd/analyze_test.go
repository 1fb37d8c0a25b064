package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demoreel/internal/analyzer"
	"demoreel/internal/flows"
	"demoreel/internal/pipeline"
)

func TestAnalysisReportAppliesBoundaryCaps(t *testing.T) {
	repo := &analyzer.Result{Root: "/tmp/repo"}
	for i := 0; i < 30; i++ {
		repo.Dependencies = append(repo.Dependencies, fmt.Sprintf("dep-%02d", i))
		repo.DevDependencies = append(repo.DevDependencies, fmt.Sprintf("devdep-%02d", i))
	}
	fl := &flows.Result{}
	for i := 0; i < 30; i++ {
		fl.Features = append(fl.Features, flows.Feature{Name: fmt.Sprintf("Feature %d", i)})
		fl.Endpoints = append(fl.Endpoints, flows.APIEndpoint{Method: "GET", Path: fmt.Sprintf("/api/e%d", i)})
		fl.Components = append(fl.Components, fmt.Sprintf("Comp%d", i))
		fl.Models = append(fl.Models, fmt.Sprintf("Model%d", i))
	}

	r := analysisReport(&pipeline.Analysis{Repo: repo, Flows: fl})

	assert.Len(t, r.Features, showFeatures)
	assert.Len(t, r.Endpoints, showEndpoints)
	assert.Len(t, r.Components, showComponents)
	assert.Len(t, r.Models, showModels)
	assert.Len(t, r.Dependencies, showDeps)
	assert.Len(t, r.DevDependencies, showDevDeps)

	// Short lists pass through untouched.
	assert.Equal(t, "dep-00", r.Dependencies[0])
	assert.Equal(t, "GET /api/e0", r.Endpoints[0])
}

func TestAnalysisReportShortListsUncapped(t *testing.T) {
	repo := &analyzer.Result{Dependencies: []string{"next", "react"}}
	fl := &flows.Result{Components: []string{"Button"}}

	r := analysisReport(&pipeline.Analysis{Repo: repo, Flows: fl})

	assert.Equal(t, []string{"next", "react"}, r.Dependencies)
	assert.Equal(t, []string{"Button"}, r.Components)
}

func TestScriptDurationFlagDefault(t *testing.T) {
	f := scriptCmd.Flags().Lookup("duration")
	require.NotNil(t, f)
	assert.Equal(t, "60", f.DefValue)
}
