package analyzer

import (
	"path/filepath"
	"strings"
)

// sourceExts is the allow-list of programming-language extensions.
var sourceExts = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".mts": true, ".cts": true,
	".py": true, ".go": true, ".rs": true, ".java": true, ".kt": true,
	".rb": true, ".php": true, ".cs": true, ".swift": true,
	".c": true, ".h": true, ".cpp": true, ".cc": true, ".hpp": true,
	".vue": true, ".svelte": true,
}

var docExts = map[string]bool{
	".md": true, ".mdx": true, ".rst": true, ".txt": true, ".adoc": true,
}

var assetExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true,
	".ico": true, ".webp": true, ".woff": true, ".woff2": true, ".ttf": true,
	".otf": true, ".eot": true, ".mp3": true, ".mp4": true, ".wav": true,
}

var configNames = map[string]bool{
	"package.json": true, "tsconfig.json": true, "jsconfig.json": true,
	"go.mod": true, "go.sum": true, "cargo.toml": true, "pyproject.toml": true,
	"requirements.txt": true, "gemfile": true, "pom.xml": true,
	"build.gradle": true, "makefile": true, "dockerfile": true,
	"docker-compose.yml": true, "docker-compose.yaml": true,
	".env.example": true, ".editorconfig": true, ".prettierrc": true,
	".eslintrc": true, ".eslintrc.json": true, ".babelrc": true,
}

var configExts = map[string]bool{
	".yml": true, ".yaml": true, ".toml": true, ".ini": true, ".conf": true,
}

// extLanguages maps extensions detected during the scan to language names.
// JavaScript and TypeScript are detected from the manifest instead, so they
// are deliberately absent here.
var extLanguages = map[string]string{
	".py":   "Python",
	".go":   "Go",
	".java": "Java",
	".rs":   "Rust",
}

// Categorize classifies a file by its repo-relative path and extension.
// The check order matters: documentation and configuration win over source,
// so a markdown file under src/ is still documentation.
func Categorize(relPath, ext string) Category {
	lower := strings.ToLower(filepath.ToSlash(relPath))
	base := filepath.Base(lower)
	ext = strings.ToLower(ext)

	switch {
	case strings.Contains(lower, "readme"), strings.Contains(lower, "contributing"), docExts[ext]:
		return CategoryDocumentation
	case configNames[base], configExts[ext], strings.HasPrefix(base, ".env"):
		return CategoryConfiguration
	case strings.Contains(lower, "test"), strings.Contains(lower, "spec"),
		strings.Contains(lower, "__tests__/"):
		return CategoryTest
	case strings.Contains(lower, "node_modules/"), strings.Contains(lower, "vendor/"),
		strings.Contains(lower, "bower_components/"):
		return CategoryDependency
	case assetExts[ext]:
		return CategoryAsset
	case sourceExts[ext]:
		return CategorySource
	default:
		return CategoryOther
	}
}
