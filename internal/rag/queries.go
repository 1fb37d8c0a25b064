package rag

import (
	"fmt"

	"demoreel/internal/analyzer"
	"demoreel/internal/flows"
)

const maxFocusDerivedQueries = 3

// BuildQueries constructs the retrieval query set. The set always opens with
// an overall-purpose query; then either one query per caller-supplied focus
// area or queries derived from the top detected flows and features; then a
// framework query and an API-overview query when those were detected. The
// size of this set determines the per-query result budget downstream.
func BuildQueries(a *analyzer.Result, f *flows.Result, focus []string) []string {
	queries := []string{"What is the overall purpose and main functionality of this project?"}

	if len(focus) > 0 {
		for _, area := range focus {
			queries = append(queries, fmt.Sprintf("How does the %s functionality work?", area))
		}
	} else {
		for i, flow := range f.Flows {
			if i == maxFocusDerivedQueries {
				break
			}
			queries = append(queries, fmt.Sprintf("How does the %s flow work for users?", flow.Name))
		}
		for i, feat := range f.Features {
			if i == maxFocusDerivedQueries {
				break
			}
			queries = append(queries, fmt.Sprintf("What does the %s feature do?", feat.Name))
		}
	}

	if len(a.Stack.Frameworks) > 0 {
		queries = append(queries, fmt.Sprintf("How is the application structured with %s?", a.Stack.Frameworks[0]))
	}
	if len(f.Endpoints) > 0 {
		queries = append(queries, "What API endpoints does the application expose?")
	}
	return queries
}
