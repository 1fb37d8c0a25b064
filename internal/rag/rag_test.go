package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demoreel/internal/analyzer"
	"demoreel/internal/docs"
	"demoreel/internal/flows"
	"demoreel/internal/store"
)

// fakeStore returns canned results per query text and records the limit each
// query was issued with.
type fakeStore struct {
	results map[string][]store.Result
	errs    map[string]error
	limits  []int
}

func (f *fakeStore) Ensure(ctx context.Context, collection string) error { return nil }

func (f *fakeStore) Upsert(ctx context.Context, collection string, documents []docs.Document) error {
	return nil
}

func (f *fakeStore) Query(ctx context.Context, collection, text string, limit int) ([]store.Result, error) {
	f.limits = append(f.limits, limit)
	if err := f.errs[text]; err != nil {
		return nil, err
	}
	return f.results[text], nil
}

func (f *fakeStore) Close() error { return nil }

func result(id string, relevance float64) store.Result {
	return store.Result{ID: id, Content: "content " + id, Relevance: relevance, Distance: 1 - relevance}
}

func TestRetrievePerQueryBudget(t *testing.T) {
	fs := &fakeStore{}
	r := NewRetriever(fs, nil)

	// ceil(10/2) = 5 per query.
	_, err := r.Retrieve(context.Background(), "c", []string{"q1", "q2"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 5}, fs.limits)

	// ceil(10/3) = 4 per query.
	fs.limits = nil
	_, err = r.Retrieve(context.Background(), "c", []string{"q1", "q2", "q3"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 4, 4}, fs.limits)
}

func TestRetrieveDedupeAndRank(t *testing.T) {
	fs := &fakeStore{results: map[string][]store.Result{
		"q1": {result("a", 0.9), result("b", 0.5)},
		"q2": {result("b", 0.5), result("c", 0.7)},
	}}
	r := NewRetriever(fs, nil)

	out, err := r.Retrieve(context.Background(), "c", []string{"q1", "q2"}, 10)
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, "b", out[2].ID)
}

func TestRetrieveTruncatesToTotal(t *testing.T) {
	many := make([]store.Result, 8)
	for i := range many {
		many[i] = result(fmt.Sprintf("doc%d", i), 0.5)
	}
	fs := &fakeStore{results: map[string][]store.Result{"q1": many}}
	r := NewRetriever(fs, nil)

	out, err := r.Retrieve(context.Background(), "c", []string{"q1"}, 3)
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestRetrieveSkipsFailedQuery(t *testing.T) {
	fs := &fakeStore{
		results: map[string][]store.Result{"good": {result("a", 0.8)}},
		errs:    map[string]error{"bad": fmt.Errorf("store exploded")},
	}
	r := NewRetriever(fs, nil)

	out, err := r.Retrieve(context.Background(), "c", []string{"bad", "good"}, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
}

func TestRetrievePassesRelevanceThroughUnclamped(t *testing.T) {
	// Distances outside [0,1] yield relevance outside [0,1]; the retriever
	// ranks and returns them as-is, without clamping.
	fs := &fakeStore{results: map[string][]store.Result{
		"q1": {
			{ID: "near", Content: "a", Distance: 0.1, Relevance: 0.9},
			{ID: "far", Content: "b", Distance: 1.5, Relevance: -0.5},
			{ID: "inverted", Content: "c", Distance: -0.2, Relevance: 1.2},
		},
	}}
	r := NewRetriever(fs, nil)

	out, err := r.Retrieve(context.Background(), "c", []string{"q1"}, 10)
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "inverted", out[0].ID)
	assert.Equal(t, 1.2, out[0].Relevance)
	assert.Equal(t, "near", out[1].ID)
	assert.Equal(t, "far", out[2].ID)
	assert.Equal(t, -0.5, out[2].Relevance)
	assert.Equal(t, 1.5, out[2].Distance)
}

func TestRetrieveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRetriever(&fakeStore{}, nil)
	_, err := r.Retrieve(ctx, "c", []string{"q1"}, 10)
	assert.Error(t, err)
}

func TestBuildQueriesWithFocus(t *testing.T) {
	a := &analyzer.Result{}
	f := &flows.Result{}
	queries := BuildQueries(a, f, []string{"checkout", "search"})

	require.Len(t, queries, 3)
	assert.Contains(t, queries[0], "overall purpose")
	assert.Contains(t, queries[1], "checkout")
	assert.Contains(t, queries[2], "search")
}

func TestBuildQueriesDerived(t *testing.T) {
	a := &analyzer.Result{}
	a.Stack.Frameworks = []string{"Next.js"}
	f := &flows.Result{
		Flows: []flows.UserFlow{
			{Name: "User Authentication"}, {Name: "Data Management"},
			{Name: "Form Interaction"}, {Name: "Extra Flow"},
		},
		Features:  []flows.Feature{{Name: "API Layer"}},
		Endpoints: []flows.APIEndpoint{{Method: "GET", Path: "/api/users"}},
	}
	queries := BuildQueries(a, f, nil)

	// 1 purpose + 3 flows (capped) + 1 feature + 1 framework + 1 API.
	require.Len(t, queries, 7)
	assert.Contains(t, queries[1], "User Authentication")
	assert.NotContains(t, strings.Join(queries, " "), "Extra Flow")
	assert.Contains(t, queries[5], "Next.js")
	assert.Contains(t, queries[6], "API endpoints")
}

func TestAssembleRAGGroupsAndOrders(t *testing.T) {
	results := []store.Result{
		{ID: "f1", Content: "snippet one", Relevance: 0.9, Metadata: docs.Metadata{Type: docs.TypeFile, Path: "src/a.ts"}},
		{ID: "r1", Content: "readme text", Relevance: 0.8, Metadata: docs.Metadata{Type: docs.TypeReadme}},
		{ID: "e1", Content: "API endpoint: GET /api/users", Relevance: 0.7, Metadata: docs.Metadata{Type: docs.TypeAPI}},
		{ID: "ft1", Content: "Feature: API Layer", Relevance: 0.6, Metadata: docs.Metadata{Type: docs.TypeFeature}},
	}
	out := AssembleRAG(results)

	docsIdx := strings.Index(out, "## Project Documentation")
	featIdx := strings.Index(out, "## Detected Features")
	codeIdx := strings.Index(out, "## Relevant Code")
	apiIdx := strings.Index(out, "## API Endpoints")

	require.GreaterOrEqual(t, docsIdx, 0)
	assert.Less(t, docsIdx, featIdx)
	assert.Less(t, featIdx, codeIdx)
	assert.Less(t, codeIdx, apiIdx)
	assert.Contains(t, out, "src/a.ts")
}

func TestAssembleRAGTruncatesSnippets(t *testing.T) {
	long := strings.Repeat("z", 2000)
	results := []store.Result{
		{ID: "f1", Content: long, Relevance: 0.9, Metadata: docs.Metadata{Type: docs.TypeFile, Path: "src/big.ts"}},
	}
	out := AssembleRAG(results)
	assert.NotContains(t, out, strings.Repeat("z", 801))
	assert.Contains(t, out, strings.Repeat("z", 800))
}

func TestAssembleRAGTruncatesOnRuneBoundary(t *testing.T) {
	// 300 three-byte runes is 900 bytes; the 800-byte cap lands mid-rune
	// and must back off to the previous rune boundary.
	long := strings.Repeat("世", 300)
	results := []store.Result{
		{ID: "f1", Content: long, Relevance: 0.9, Metadata: docs.Metadata{Type: docs.TypeFile, Path: "src/big.ts"}},
	}
	out := AssembleRAG(results)

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("世", 266))
	assert.NotContains(t, out, strings.Repeat("世", 267))
}

func TestAssembleFallbackReadmeRuneBoundary(t *testing.T) {
	a := &analyzer.Result{
		KeyFiles: []analyzer.FileRecord{
			{RelPath: "README.md", Content: strings.Repeat("世", 400)},
		},
	}
	out := AssembleFallback(a, &flows.Result{})

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("世", 333))
	assert.NotContains(t, out, strings.Repeat("世", 334))
}

func TestAssembleFallback(t *testing.T) {
	a := &analyzer.Result{
		KeyFiles: []analyzer.FileRecord{
			{RelPath: "README.md", Content: strings.Repeat("r", 1500)},
		},
		Dependencies: []string{"next", "react"},
	}
	f := &flows.Result{
		Features: []flows.Feature{{Name: "API Layer", Description: "Endpoints."}},
		Flows: []flows.UserFlow{{
			Name:  "User Authentication",
			Steps: []string{"Log in with credentials", "Access protected features"},
		}},
		Endpoints:  []flows.APIEndpoint{{Method: "GET", Path: "/api/users"}},
		Components: []string{"Button"},
	}
	out := AssembleFallback(a, f)

	assert.Contains(t, out, "## README")
	assert.NotContains(t, out, strings.Repeat("r", 1001))
	assert.Contains(t, out, "API Layer")
	assert.Contains(t, out, "Log in with credentials → Access protected features")
	assert.Contains(t, out, "GET /api/users")
	assert.Contains(t, out, "- Button")
	assert.Contains(t, out, "- next")
}

func TestAssembleFallbackEndpointCap(t *testing.T) {
	f := &flows.Result{}
	for i := 0; i < 15; i++ {
		f.Endpoints = append(f.Endpoints, flows.APIEndpoint{Method: "GET", Path: fmt.Sprintf("/api/e%d", i)})
	}
	out := AssembleFallback(&analyzer.Result{}, f)

	assert.Contains(t, out, "/api/e9")
	assert.NotContains(t, out, "/api/e10")
}

func TestBuildPrompt(t *testing.T) {
	a := &analyzer.Result{}
	a.Stack.Languages = []string{"TypeScript"}
	a.Stack.Frameworks = []string{"Next.js"}

	prompt := BuildPrompt("THE CONTEXT", a, "myapp", "energetic", 90)

	assert.Contains(t, prompt, "myapp")
	assert.Contains(t, prompt, "TypeScript, Next.js")
	assert.Contains(t, prompt, "90 seconds")
	assert.Contains(t, prompt, "energetic")
	assert.Contains(t, prompt, "THE CONTEXT")
	assert.Contains(t, prompt, "## Introduction")
}
