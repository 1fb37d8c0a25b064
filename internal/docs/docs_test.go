package docs

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demoreel/internal/analyzer"
	"demoreel/internal/flows"
)

func TestChunkBounds(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat("a", 40))
	}
	chunks := Chunk(strings.Join(lines, "\n"), 100)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunkOversizedLine(t *testing.T) {
	long := strings.Repeat("x", 500)
	chunks := Chunk("short\n"+long+"\nshort again", 100)

	require.Len(t, chunks, 3)
	assert.Equal(t, "short", chunks[0])
	assert.Equal(t, long, chunks[1])
	assert.Equal(t, "short again", chunks[2])
}

func TestChunkEmpty(t *testing.T) {
	assert.Nil(t, Chunk("", 100))
	assert.Nil(t, Chunk("   \n\n  ", 100))
}

func TestChunkPreservesAllLines(t *testing.T) {
	content := "one\ntwo\nthree\nfour\nfive"
	chunks := Chunk(content, 10)
	assert.Equal(t, content, strings.Join(chunks, "\n"))
}

func TestIDDeterministic(t *testing.T) {
	a := ID(TypeFile, "src/index.ts#0")
	b := ID(TypeFile, "src/index.ts#0")
	c := ID(TypeFile, "src/index.ts#1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "file-"))
	assert.Len(t, a, len("file-")+12)
}

func TestPrepare(t *testing.T) {
	a := &analyzer.Result{
		KeyFiles: []analyzer.FileRecord{
			{RelPath: "README.md", Content: "# App\r\n\tdocs", Category: analyzer.CategoryDocumentation},
			{RelPath: "src/index.ts", Ext: ".ts", Content: "const x = 1", Category: analyzer.CategorySource},
			{RelPath: "empty.ts", Ext: ".ts", Content: "", Category: analyzer.CategorySource},
		},
	}
	f := &flows.Result{
		Features: []flows.Feature{{Name: "API Layer", Category: "backend", Description: "Endpoints."}},
		Flows: []flows.UserFlow{{
			ID: "flow-auth", Name: "User Authentication", Type: flows.FlowAuthentication,
			Description: "Log in.", Steps: []string{"Log in with credentials"},
		}},
		Endpoints:  []flows.APIEndpoint{{Method: "GET", Path: "/api/users", File: "app/api/users/route.ts"}},
		Components: []string{"Button"},
		Models:     []string{"User"},
	}

	out := Prepare(a, f)
	require.Len(t, out, 7)

	assert.Equal(t, TypeReadme, out[0].Metadata.Type)
	assert.Equal(t, "# App\n  docs", out[0].Content)

	assert.Equal(t, TypeFile, out[1].Metadata.Type)
	assert.Equal(t, "TypeScript", out[1].Metadata.Language)
	assert.Equal(t, ID(TypeFile, "src/index.ts#0"), out[1].ID)

	assert.Equal(t, TypeFeature, out[2].Metadata.Type)
	assert.Contains(t, out[2].Content, "Feature: API Layer")

	assert.Equal(t, TypeFlow, out[3].Metadata.Type)
	assert.Contains(t, out[3].Content, "1. Log in with credentials")

	assert.Equal(t, TypeAPI, out[4].Metadata.Type)
	assert.Equal(t, "GET:/api/users:app/api/users/route.ts", out[4].Metadata.Source)

	assert.Equal(t, TypeComponent, out[5].Metadata.Type)
	assert.Equal(t, TypeModel, out[6].Metadata.Type)
}

func TestPrepareEmpty(t *testing.T) {
	out := Prepare(&analyzer.Result{}, &flows.Result{})
	assert.Empty(t, out)
}

func TestPrepareChunksLargeSource(t *testing.T) {
	var lines []string
	for i := 0; i < 100; i++ {
		lines = append(lines, strings.Repeat("b", 50))
	}
	a := &analyzer.Result{
		KeyFiles: []analyzer.FileRecord{
			{RelPath: "src/big.ts", Ext: ".ts", Content: strings.Join(lines, "\n"), Category: analyzer.CategorySource},
		},
	}
	out := Prepare(a, &flows.Result{})

	assert.Greater(t, len(out), 1)
	ids := make(map[string]bool)
	for _, d := range out {
		assert.Equal(t, TypeFile, d.Metadata.Type)
		assert.Equal(t, "src/big.ts", d.Metadata.Path)
		assert.False(t, ids[d.ID], "duplicate id %s", d.ID)
		ids[d.ID] = true
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a\nb", NormalizeWhitespace("a\r\nb\n"))
	assert.Equal(t, "x  y", NormalizeWhitespace("\tx\ty\t"))
}
