// Package flows derives human-readable features, user flows, API endpoints,
// UI component names, and data-model names from an analyzer result. It is a
// pure pattern-matching layer over key-file paths and content (no parsing,
// no I/O), so a future per-language extractor could replace it without
// touching downstream consumers.
package flows

import (
	"regexp"
	"strings"

	"demoreel/internal/analyzer"
)

// Flow type tags.
const (
	FlowAuthentication = "authentication"
	FlowDataManagement = "data-management"
	FlowUIInteraction  = "ui-interaction"
	FlowAPI            = "api"
	FlowGeneral        = "general"
)

const (
	maxComponentNames = 50
	maxModelNames     = 30
	maxComponentFiles = 10
)

// Feature is a detected capability. Multiple heuristics may each emit one,
// and names are not guaranteed unique.
type Feature struct {
	Name        string
	Description string
	Category    string
	Files       []string
}

// UserFlow is an ordered narrative of steps a user would take.
type UserFlow struct {
	ID          string
	Name        string
	Description string
	Steps       []string
	Type        string
	Files       []string
}

// APIEndpoint is one extracted HTTP route. The two extraction passes
// (explicit router calls and file-convention routing) can both report the
// same logical endpoint; duplicates are preserved.
type APIEndpoint struct {
	Method      string
	Path        string
	File        string
	Description string
}

// Result aggregates everything the extractor found.
type Result struct {
	Features   []Feature
	Flows      []UserFlow
	Endpoints  []APIEndpoint
	Components []string
	Models     []string
}

var (
	authKeywords   = []string{"auth", "login", "signin", "sign-in", "signup", "sign-up", "register", "session", "token", "jwt", "oauth", "password"}
	signupPattern  = regexp.MustCompile(`signup|sign-up|register`)
	loginPattern   = regexp.MustCompile(`login|signin|sign-in`)
	sessionPattern = regexp.MustCompile(`session|token|jwt`)

	crudKeywords = []string{"create", "update", "delete", "edit", "crud", "manage"}
	apiKeywords  = []string{"api", "route", "controller", "endpoint"}

	formContentPattern = regexp.MustCompile(`(?i)<form|onSubmit|handleSubmit|<input|useForm`)
)

// Extract runs every heuristic against the analysis result.
func Extract(a *analyzer.Result) *Result {
	res := &Result{}
	res.Flows = extractUserFlows(a)
	res.Features = extractFeatures(a)
	res.Endpoints = extractEndpoints(a)
	res.Components = extractComponents(a)
	res.Models = extractModels(a)
	return res
}

// extractUserFlows emits at most one flow per heuristic. A heuristic whose
// precondition fails emits nothing, never an empty flow.
func extractUserFlows(a *analyzer.Result) []UserFlow {
	var out []UserFlow

	if flow, ok := authFlow(a); ok {
		out = append(out, flow)
	}
	if flow, ok := dataFlow(a); ok {
		out = append(out, flow)
	}
	if flow, ok := formFlow(a); ok {
		out = append(out, flow)
	}
	return out
}

func authFlow(a *analyzer.Result) (UserFlow, bool) {
	var files []string
	for _, kf := range a.KeyFiles {
		lower := strings.ToLower(kf.RelPath)
		for _, kw := range authKeywords {
			if strings.Contains(lower, kw) {
				files = append(files, kf.RelPath)
				break
			}
		}
	}
	if len(files) == 0 {
		return UserFlow{}, false
	}

	// Steps are conditional on which path patterns actually exist.
	var steps []string
	if anyPathMatches(files, signupPattern) {
		steps = append(steps, "Create a new account")
	}
	if anyPathMatches(files, loginPattern) {
		steps = append(steps, "Log in with credentials")
	}
	if anyPathMatches(files, sessionPattern) {
		steps = append(steps, "Maintain an authenticated session")
	}
	steps = append(steps, "Access protected features")

	return UserFlow{
		ID:          "flow-auth",
		Name:        "User Authentication",
		Description: "Sign up, log in, and access the application as an authenticated user.",
		Steps:       steps,
		Type:        FlowAuthentication,
		Files:       files,
	}, true
}

// dataFlow requires a single key-file path to contain both a CRUD keyword
// and an API/route/controller keyword.
func dataFlow(a *analyzer.Result) (UserFlow, bool) {
	var files []string
	for _, kf := range a.KeyFiles {
		lower := strings.ToLower(kf.RelPath)
		if containsAny(lower, crudKeywords) && containsAny(lower, apiKeywords) {
			files = append(files, kf.RelPath)
		}
	}
	if len(files) == 0 {
		return UserFlow{}, false
	}
	return UserFlow{
		ID:          "flow-data",
		Name:        "Data Management",
		Description: "Create, review, update, and remove records through the application.",
		Steps: []string{
			"Navigate to the data section",
			"Create a new record",
			"Review and update existing records",
			"Remove records that are no longer needed",
		},
		Type:  FlowDataManagement,
		Files: files,
	}, true
}

func formFlow(a *analyzer.Result) (UserFlow, bool) {
	var files []string
	for _, kf := range a.KeyFiles {
		if strings.Contains(strings.ToLower(kf.RelPath), "form") ||
			(kf.Content != "" && formContentPattern.MatchString(kf.Content)) {
			files = append(files, kf.RelPath)
		}
	}
	if len(files) == 0 {
		return UserFlow{}, false
	}
	return UserFlow{
		ID:          "flow-form",
		Name:        "Form Interaction",
		Description: "Fill out and submit a form in the user interface.",
		Steps: []string{
			"Open the page containing the form",
			"Fill in the required fields",
			"Validate the input",
			"Submit the form",
			"See confirmation of the submission",
		},
		Type:  FlowUIInteraction,
		Files: files,
	}, true
}

func anyPathMatches(paths []string, re *regexp.Regexp) bool {
	for _, p := range paths {
		if re.MatchString(strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
