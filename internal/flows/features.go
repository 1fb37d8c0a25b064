package flows

import (
	"fmt"
	"regexp"
	"strings"

	"demoreel/internal/analyzer"
)

var (
	pageishPattern     = regexp.MustCompile(`/pages?/|/app/|page\.(tsx|jsx|ts|js)$|route\.(ts|js)$`)
	apiPathPattern     = regexp.MustCompile(`api|route|controller`)
	componentPattern   = regexp.MustCompile(`component`)
	modelPathPattern   = regexp.MustCompile(`model|schema|entity|db|database`)
	exportedNameRe     = regexp.MustCompile(`(?m)export\s+(?:default\s+)?(?:function|const|class)\s+([A-Z][A-Za-z0-9_]*)`)
	modelNameRe        = regexp.MustCompile(`(?m)\b(?:interface|type|model|schema|entity)\s+([A-Z][A-Za-z0-9_]*)`)
)

// extractFeatures is a fixed sequence of independent checks; each emits at
// most one Feature and several can fire for the same repository.
func extractFeatures(a *analyzer.Result) []Feature {
	var out []Feature

	if f, ok := routingFeature(a); ok {
		out = append(out, f)
	}
	if f, ok := apiFeature(a); ok {
		out = append(out, f)
	}
	if f, ok := componentFeature(a); ok {
		out = append(out, f)
	}
	if f, ok := databaseFeature(a); ok {
		out = append(out, f)
	}
	return out
}

func routingFeature(a *analyzer.Result) (Feature, bool) {
	hasFramework := false
	for _, fw := range a.Stack.Frameworks {
		if fw == "Next.js" || fw == "React" {
			hasFramework = true
			break
		}
	}
	if !hasFramework {
		return Feature{}, false
	}
	var files []string
	for _, kf := range a.KeyFiles {
		if pageishPattern.MatchString(strings.ToLower(kf.RelPath)) {
			files = append(files, kf.RelPath)
		}
	}
	if len(files) == 0 {
		return Feature{}, false
	}
	return Feature{
		Name:        "Page Routing",
		Description: "Multiple pages and routes for navigating the application.",
		Category:    "navigation",
		Files:       files,
	}, true
}

func apiFeature(a *analyzer.Result) (Feature, bool) {
	var files []string
	for _, kf := range a.KeyFiles {
		if apiPathPattern.MatchString(strings.ToLower(kf.RelPath)) {
			files = append(files, kf.RelPath)
		}
	}
	if len(files) == 0 {
		return Feature{}, false
	}
	return Feature{
		Name:        "API Layer",
		Description: "Backend endpoints serving data to the application.",
		Category:    "backend",
		Files:       files,
	}, true
}

func componentFeature(a *analyzer.Result) (Feature, bool) {
	var files []string
	for _, kf := range a.KeyFiles {
		if componentPattern.MatchString(strings.ToLower(kf.RelPath)) ||
			kf.Ext == ".tsx" || kf.Ext == ".jsx" {
			files = append(files, kf.RelPath)
			if len(files) == maxComponentFiles {
				break
			}
		}
	}
	if len(files) == 0 {
		return Feature{}, false
	}
	return Feature{
		Name:        "UI Components",
		Description: "Reusable interface components composing the frontend.",
		Category:    "frontend",
		Files:       files,
	}, true
}

func databaseFeature(a *analyzer.Result) (Feature, bool) {
	label, ok := a.HasDatabaseDependency()
	if !ok {
		return Feature{}, false
	}
	var files []string
	for _, kf := range a.KeyFiles {
		if modelPathPattern.MatchString(strings.ToLower(kf.RelPath)) {
			files = append(files, kf.RelPath)
		}
	}
	return Feature{
		Name:        "Database Integration",
		Description: fmt.Sprintf("Persistent storage backed by %s.", label),
		Category:    "data",
		Files:       files,
	}, true
}

// extractComponents collects exported capitalized identifiers from
// JavaScript/TypeScript key files, deduplicated, capped at maxComponentNames.
func extractComponents(a *analyzer.Result) []string {
	seen := make(map[string]bool)
	var names []string
	for _, kf := range a.KeyFiles {
		switch kf.Ext {
		case ".tsx", ".jsx", ".ts", ".js":
		default:
			continue
		}
		for _, m := range exportedNameRe.FindAllStringSubmatch(kf.Content, -1) {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			if len(names) == maxComponentNames {
				return names
			}
		}
	}
	return names
}

// extractModels collects type-like declarations, excluding React prop/state
// shapes, deduplicated, capped at maxModelNames.
func extractModels(a *analyzer.Result) []string {
	seen := make(map[string]bool)
	var names []string
	for _, kf := range a.KeyFiles {
		if kf.Content == "" {
			continue
		}
		for _, m := range modelNameRe.FindAllStringSubmatch(kf.Content, -1) {
			name := m[1]
			if strings.HasSuffix(name, "Props") || strings.HasSuffix(name, "State") {
				continue
			}
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
			if len(names) == maxModelNames {
				return names
			}
		}
	}
	return names
}
