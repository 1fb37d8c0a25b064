// Package analyzer walks a cloned repository tree and produces structural
// facts about it: file counts, a bounded key-file set with loaded content,
// detected tech stack, entry points, and manifest dependencies. Everything is
// heuristic; a single unreadable file never fails the scan.
package analyzer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// maxScanSize is the hard ceiling above which files are silently
	// excluded from the scan entirely.
	maxScanSize = 10 << 20
	// maxKeyFileSize caps content loading for key files.
	maxKeyFileSize = 100 << 10
	// maxPrioritySourceFiles bounds the extra source files promoted to key
	// files beyond the pattern matches.
	maxPrioritySourceFiles = 20
	// treeDepth bounds the rendered directory structure.
	treeDepth = 3
)

// excludedDirs are never descended into.
var excludedDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "vendor": true, "bower_components": true,
	"__pycache__": true, ".venv": true, "venv": true,
	"dist": true, "build": true, "out": true, "target": true,
	".next": true, ".nuxt": true, "coverage": true,
	".idea": true, ".vscode": true,
}

// excludedFiles are individual files skipped during the scan. Lockfiles are
// excluded here but still consulted directly for package-manager detection.
var excludedFiles = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	".ds_store": true, "thumbs.db": true,
}

// keyFilePatterns select files whose content is always loaded (size
// permitting). Matched with doublestar against the repo-relative path.
var keyFilePatterns = []string{
	"README*", "readme*",
	"package.json",
	"tsconfig.json",
	"go.mod",
	"Cargo.toml",
	"pyproject.toml",
	"requirements.txt",
	"Dockerfile",
	"docker-compose.{yml,yaml}",
	".env.example",
	"next.config.*",
	"vite.config.*",
	"main.*", "index.*", "app.*", "server.*",
	"src/main.*", "src/index.*", "src/app.*", "src/server.*",
	"cmd/*/main.go",
}

// prioritySourceDirs rank source files for key-file promotion.
var prioritySourceDirs = []string{"src/", "app/", "lib/", "pages/", "api/", "components/", "internal/", "cmd/"}

// priorityBasenames are conventional entry-point or route file names.
var priorityBasenames = map[string]bool{
	"main": true, "index": true, "app": true, "server": true,
	"route": true, "page": true, "layout": true,
}

// entryPointNames are repo-relative paths recognized as program entry points.
var entryPointNames = map[string]bool{
	"main.go": true, "main.py": true, "app.py": true, "manage.py": true,
	"index.js": true, "index.ts": true, "app.js": true, "server.js": true,
	"src/index.js": true, "src/index.ts": true, "src/index.tsx": true,
	"src/main.ts": true, "src/main.tsx": true, "src/app.ts": true,
	"src/server.ts": true,
}

// Analyze scans the repository rooted at root. It fails only when the root
// itself cannot be read; individual file errors are skipped.
func Analyze(ctx context.Context, root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("read repository root: %w", err)
	}

	res := &Result{Root: absRoot}
	var scanned []FileRecord

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			return nil // skip unreadable entries, keep walking
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		name := d.Name()
		if d.IsDir() {
			if path != absRoot && excludedDirs[strings.ToLower(name)] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if excludedFiles[strings.ToLower(name)] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxScanSize {
			return nil
		}

		rel, _ := filepath.Rel(absRoot, path)
		rel = filepath.ToSlash(rel)
		ext := strings.ToLower(filepath.Ext(path))

		scanned = append(scanned, FileRecord{
			Path:     path,
			RelPath:  rel,
			Size:     info.Size(),
			Ext:      ext,
			Category: Categorize(rel, ext),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan %s: %w", absRoot, walkErr)
	}

	res.TotalFiles = len(scanned)
	for _, f := range scanned {
		res.TotalBytes += f.Size
	}

	res.KeyFiles = selectKeyFiles(scanned)
	res.EntryPoints = detectEntryPoints(scanned)
	res.Tree = renderTree(scanned, treeDepth)
	detectTechStack(res, scanned)

	return res, nil
}

// selectKeyFiles is the union of pattern-matched files and up to
// maxPrioritySourceFiles additional source files ranked by path convention.
// Content is loaded here and nowhere else; oversized files stay key-file
// candidates by pattern but never get content.
func selectKeyFiles(scanned []FileRecord) []FileRecord {
	var keys []FileRecord
	taken := make(map[string]bool)

	for _, f := range scanned {
		if matchesKeyPattern(f.RelPath) {
			taken[f.RelPath] = true
			keys = append(keys, loadContent(f))
		}
	}

	type ranked struct {
		file  FileRecord
		score int
		order int
	}
	var candidates []ranked
	for i, f := range scanned {
		if taken[f.RelPath] || f.Category != CategorySource {
			continue
		}
		s := priorityScore(f.RelPath)
		if s > 0 {
			candidates = append(candidates, ranked{file: f, score: s, order: i})
		}
	}
	// Higher score first; ties broken by scan order.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})
	for i := 0; i < len(candidates) && i < maxPrioritySourceFiles; i++ {
		keys = append(keys, loadContent(candidates[i].file))
	}
	return keys
}

func matchesKeyPattern(relPath string) bool {
	for _, p := range keyFilePatterns {
		if ok, _ := doublestar.Match(p, relPath); ok {
			return true
		}
	}
	return false
}

func priorityScore(relPath string) int {
	score := 0
	lower := strings.ToLower(relPath)
	for _, dir := range prioritySourceDirs {
		if strings.HasPrefix(lower, dir) || strings.Contains(lower, "/"+dir) {
			score += 2
			break
		}
	}
	base := strings.TrimSuffix(filepath.Base(lower), filepath.Ext(lower))
	if priorityBasenames[base] {
		score++
	}
	return score
}

func loadContent(f FileRecord) FileRecord {
	if f.Size > maxKeyFileSize {
		return f
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return f // unreadable key file degrades to metadata-only
	}
	f.Content = string(data)
	return f
}

func detectEntryPoints(scanned []FileRecord) []string {
	var entries []string
	for _, f := range scanned {
		if entryPointNames[strings.ToLower(f.RelPath)] {
			entries = append(entries, f.RelPath)
		}
	}
	return entries
}

// renderTree produces a depth-limited directory listing for prompt context.
func renderTree(scanned []FileRecord, maxDepth int) string {
	dirs := make(map[string][]string)
	seen := make(map[string]bool)
	for _, f := range scanned {
		parts := strings.Split(f.RelPath, "/")
		if len(parts) > maxDepth {
			parts = parts[:maxDepth]
			parts[maxDepth-1] += "/..."
		}
		dir := strings.Join(parts[:len(parts)-1], "/")
		entry := parts[len(parts)-1]
		key := dir + "\x00" + entry
		if seen[key] {
			continue
		}
		seen[key] = true
		dirs[dir] = append(dirs[dir], entry)
		// Register ancestor directories so parents render before children.
		for i := 1; i < len(parts)-1; i++ {
			anc := strings.Join(parts[:i], "/")
			if _, ok := dirs[anc]; !ok {
				dirs[anc] = nil
			}
		}
	}

	var names []string
	for d := range dirs {
		names = append(names, d)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, d := range names {
		indent := 0
		if d != "" {
			indent = strings.Count(d, "/") + 1
			fmt.Fprintf(&b, "%s%s/\n", strings.Repeat("  ", indent-1), filepath.Base(d))
		}
		sort.Strings(dirs[d])
		for _, e := range dirs[d] {
			fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", indent), e)
		}
	}
	return b.String()
}
