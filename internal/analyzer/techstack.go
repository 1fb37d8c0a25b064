package analyzer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

// frameworkPackages maps known npm package names to framework labels.
var frameworkPackages = map[string]string{
	"react":         "React",
	"react-dom":     "React",
	"next":          "Next.js",
	"vue":           "Vue.js",
	"nuxt":          "Nuxt",
	"@angular/core": "Angular",
	"svelte":        "Svelte",
	"express":       "Express",
	"fastify":       "Fastify",
	"koa":           "Koa",
	"@nestjs/core":  "NestJS",
	"hono":          "Hono",
	"remix":         "Remix",
	"astro":         "Astro",
}

// buildToolPackages maps known npm package names to build-tool labels.
var buildToolPackages = map[string]string{
	"vite":        "Vite",
	"webpack":     "Webpack",
	"esbuild":     "esbuild",
	"rollup":      "Rollup",
	"turbo":       "Turborepo",
	"parcel":      "Parcel",
	"tailwindcss": "Tailwind CSS",
}

// databasePackages are ORM/driver names consulted by downstream flow
// detection. Exported via HasDatabaseDependency.
var databasePackages = map[string]string{
	"prisma":                "Prisma",
	"@prisma/client":        "Prisma",
	"mongoose":              "Mongoose",
	"sequelize":             "Sequelize",
	"typeorm":               "TypeORM",
	"drizzle-orm":           "Drizzle",
	"pg":                    "PostgreSQL",
	"mysql2":                "MySQL",
	"sqlite3":               "SQLite",
	"better-sqlite3":        "SQLite",
	"mongodb":               "MongoDB",
	"@supabase/supabase-js": "Supabase",
	"redis":                 "Redis",
	"ioredis":               "Redis",
}

type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// detectTechStack fills in languages, frameworks, build tools, package
// manager, and Docker/CI flags. A missing or unparseable manifest yields
// empty dependency lists, never an error.
func detectTechStack(res *Result, scanned []FileRecord) {
	if kf := res.KeyFile("package.json"); kf != nil && kf.Content != "" {
		var m packageManifest
		if err := json.Unmarshal([]byte(kf.Content), &m); err == nil {
			applyManifest(res, m)
		}
	}

	// Extension-based languages are independent of the manifest.
	langSeen := make(map[string]bool)
	for _, l := range res.Stack.Languages {
		langSeen[l] = true
	}
	for _, f := range scanned {
		if lang, ok := extLanguages[f.Ext]; ok && !langSeen[lang] {
			langSeen[lang] = true
			res.Stack.Languages = append(res.Stack.Languages, lang)
		}
	}

	// First lockfile present wins; later ones are ignored.
	for _, lf := range []struct{ file, manager string }{
		{"package-lock.json", "npm"},
		{"yarn.lock", "yarn"},
		{"pnpm-lock.yaml", "pnpm"},
	} {
		if _, err := os.Stat(filepath.Join(res.Root, lf.file)); err == nil {
			res.Stack.PackageManager = lf.manager
			break
		}
	}

	for _, name := range []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml"} {
		if _, err := os.Stat(filepath.Join(res.Root, name)); err == nil {
			res.Stack.HasDocker = true
			break
		}
	}
	for _, name := range []string{".github/workflows", ".gitlab-ci.yml", ".circleci"} {
		if _, err := os.Stat(filepath.Join(res.Root, name)); err == nil {
			res.Stack.HasCI = true
			break
		}
	}
}

func applyManifest(res *Result, m packageManifest) {
	res.Dependencies = sortedKeys(m.Dependencies)
	res.DevDependencies = sortedKeys(m.DevDependencies)
	res.DependencyCount = len(res.Dependencies) + len(res.DevDependencies)

	res.Stack.Languages = append(res.Stack.Languages, "JavaScript")
	if _, ok := m.Dependencies["typescript"]; ok {
		res.Stack.Languages = append(res.Stack.Languages, "TypeScript")
	} else if _, ok := m.DevDependencies["typescript"]; ok {
		res.Stack.Languages = append(res.Stack.Languages, "TypeScript")
	}

	fwSeen := make(map[string]bool)
	btSeen := make(map[string]bool)
	for _, name := range append(res.Dependencies, res.DevDependencies...) {
		if label, ok := frameworkPackages[name]; ok && !fwSeen[label] {
			fwSeen[label] = true
			res.Stack.Frameworks = append(res.Stack.Frameworks, label)
		}
		if label, ok := buildToolPackages[name]; ok && !btSeen[label] {
			btSeen[label] = true
			res.Stack.BuildTools = append(res.Stack.BuildTools, label)
		}
	}
}

// HasDatabaseDependency reports whether any known ORM or database driver is
// among the production dependencies, and the label of the first match.
func (r *Result) HasDatabaseDependency() (string, bool) {
	for _, name := range r.Dependencies {
		if label, ok := databasePackages[name]; ok {
			return label, true
		}
	}
	return "", false
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
