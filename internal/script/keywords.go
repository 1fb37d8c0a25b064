package script

import (
	"strings"

	"demoreel/internal/analyzer"
	"demoreel/internal/flows"
)

// Keywords collects a capped, ordered keyword list for the script: detected
// languages first, then frameworks, then feature names, then flow names.
// Duplicates are removed case-insensitively, keeping the first casing seen.
func Keywords(a *analyzer.Result, f *flows.Result) []string {
	var out []string
	seen := make(map[string]struct{})

	add := func(kw string) {
		kw = strings.TrimSpace(kw)
		if kw == "" || len(out) >= maxKeywords {
			return
		}
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, kw)
	}

	for _, lang := range a.Stack.Languages {
		add(lang)
	}
	for _, fw := range a.Stack.Frameworks {
		add(fw)
	}
	for _, feat := range f.Features {
		add(feat.Name)
	}
	for _, flow := range f.Flows {
		add(flow.Name)
	}
	return out
}
