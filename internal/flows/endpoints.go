package flows

import (
	"path"
	"regexp"
	"strings"

	"demoreel/internal/analyzer"
)

var (
	// routerCallRe matches explicit router-method registrations like
	// app.get('/users') or router.post("/api/items").
	routerCallRe = regexp.MustCompile("(?m)\\b[A-Za-z_][A-Za-z0-9_]*\\.(get|post|put|patch|delete|all)\\(\\s*['\"`]([^'\"`]+)['\"`]")

	// handlerExportRe matches file-convention route handlers exported by
	// HTTP verb name, as in Next.js app-router route files.
	handlerExportRe = regexp.MustCompile(`(?m)export\s+(?:async\s+)?function\s+(GET|POST|PUT|PATCH|DELETE)\b`)

	// routeFileRe identifies files whose directory encodes the URL path.
	routeFileRe = regexp.MustCompile(`(?:^|/)route\.(ts|js|tsx|jsx)$`)
)

// extractEndpoints runs both extraction passes over every key file. The
// passes are independent and the same logical endpoint may appear twice;
// deduplication is deliberately not done here.
func extractEndpoints(a *analyzer.Result) []APIEndpoint {
	var out []APIEndpoint
	for _, kf := range a.KeyFiles {
		if kf.Content == "" {
			continue
		}
		out = append(out, routerCallEndpoints(kf)...)
		out = append(out, conventionEndpoints(kf)...)
	}
	return out
}

func routerCallEndpoints(kf analyzer.FileRecord) []APIEndpoint {
	var out []APIEndpoint
	for _, m := range routerCallRe.FindAllStringSubmatch(kf.Content, -1) {
		out = append(out, APIEndpoint{
			Method: strings.ToUpper(m[1]),
			Path:   m[2],
			File:   kf.RelPath,
		})
	}
	return out
}

// conventionEndpoints derives the URL path from the file's own directory:
// strip the app-router prefix and the route filename, keep the rest.
func conventionEndpoints(kf analyzer.FileRecord) []APIEndpoint {
	if !routeFileRe.MatchString(kf.RelPath) {
		return nil
	}
	urlPath := routePathFromFile(kf.RelPath)
	var out []APIEndpoint
	for _, m := range handlerExportRe.FindAllStringSubmatch(kf.Content, -1) {
		out = append(out, APIEndpoint{
			Method: m[1],
			Path:   urlPath,
			File:   kf.RelPath,
		})
	}
	return out
}

func routePathFromFile(relPath string) string {
	dir := path.Dir(relPath)
	for _, prefix := range []string{"src/app/", "src/app", "app/", "app"} {
		if dir == strings.TrimSuffix(prefix, "/") {
			dir = ""
			break
		}
		if strings.HasPrefix(dir, prefix) {
			dir = strings.TrimPrefix(dir, prefix)
			break
		}
	}
	if dir == "." {
		dir = ""
	}
	return "/" + strings.Trim(dir, "/")
}
