package rag

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"demoreel/internal/analyzer"
	"demoreel/internal/docs"
	"demoreel/internal/flows"
	"demoreel/internal/store"
)

// Truncation caps keep the assembled context inside the generation model's
// practical input budget without any token counting.
const (
	maxCodeSnippets     = 5
	maxSnippetChars     = 800
	maxContextEndpoints = 10
	maxReadmeExcerpt    = 1000
	maxFallbackParts    = 15
	maxFallbackDeps     = 10
)

// AssembleRAG renders retrieved documents grouped by type in fixed order:
// documentation, features, flows, code snippets (top 5 by relevance, each
// truncated), then API endpoints. Results are assumed already ranked.
func AssembleRAG(results []store.Result) string {
	byType := make(map[string][]store.Result)
	for _, r := range results {
		byType[r.Metadata.Type] = append(byType[r.Metadata.Type], r)
	}

	var b strings.Builder

	if docsResults := byType[docs.TypeReadme]; len(docsResults) > 0 {
		b.WriteString("## Project Documentation\n")
		for _, r := range docsResults {
			fmt.Fprintf(&b, "[relevance %.0f%%]\n%s\n\n", r.Relevance*100, r.Content)
		}
	}

	if feats := byType[docs.TypeFeature]; len(feats) > 0 {
		b.WriteString("## Detected Features\n")
		for _, r := range feats {
			b.WriteString(r.Content)
			b.WriteString("\n\n")
		}
	}

	if flowDocs := byType[docs.TypeFlow]; len(flowDocs) > 0 {
		b.WriteString("## User Flows\n")
		for _, r := range flowDocs {
			b.WriteString(r.Content)
			b.WriteString("\n\n")
		}
	}

	if code := byType[docs.TypeFile]; len(code) > 0 {
		b.WriteString("## Relevant Code\n")
		for i, r := range code {
			if i == maxCodeSnippets {
				break
			}
			snippet := truncate(r.Content, maxSnippetChars)
			fmt.Fprintf(&b, "--- %s [relevance %.0f%%] ---\n%s\n\n", r.Metadata.Path, r.Relevance*100, snippet)
		}
	}

	if endpoints := byType[docs.TypeAPI]; len(endpoints) > 0 {
		b.WriteString("## API Endpoints\n")
		for i, r := range endpoints {
			if i == maxContextEndpoints {
				break
			}
			b.WriteString(r.Content)
			b.WriteString("\n")
		}
	}

	return strings.TrimSpace(b.String())
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// AssembleFallback renders a fixed-order summary straight from the analysis
// facts, used whenever no vector store is configured.
func AssembleFallback(a *analyzer.Result, f *flows.Result) string {
	var b strings.Builder

	for _, kf := range a.KeyFiles {
		if strings.Contains(strings.ToLower(kf.RelPath), "readme") && kf.Content != "" {
			excerpt := truncate(docs.NormalizeWhitespace(kf.Content), maxReadmeExcerpt)
			fmt.Fprintf(&b, "## README\n%s\n\n", excerpt)
			break
		}
	}

	if len(f.Features) > 0 {
		b.WriteString("## Features\n")
		for _, feat := range f.Features {
			fmt.Fprintf(&b, "- %s: %s\n", feat.Name, feat.Description)
		}
		b.WriteString("\n")
	}

	if len(f.Flows) > 0 {
		b.WriteString("## User Flows\n")
		for _, flow := range f.Flows {
			fmt.Fprintf(&b, "- %s: %s\n", flow.Name, strings.Join(flow.Steps, " → "))
		}
		b.WriteString("\n")
	}

	if len(f.Endpoints) > 0 {
		b.WriteString("## API Endpoints\n")
		for i, ep := range f.Endpoints {
			if i == maxContextEndpoints {
				break
			}
			fmt.Fprintf(&b, "- %s %s\n", ep.Method, ep.Path)
		}
		b.WriteString("\n")
	}

	if len(f.Components) > 0 {
		b.WriteString("## UI Components\n")
		for i, name := range f.Components {
			if i == maxFallbackParts {
				break
			}
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(a.Dependencies) > 0 {
		b.WriteString("## Key Dependencies\n")
		for i, dep := range a.Dependencies {
			if i == maxFallbackDeps {
				break
			}
			fmt.Fprintf(&b, "- %s\n", dep)
		}
	}

	return strings.TrimSpace(b.String())
}
