// Package docs converts analysis output into a flat list of indexable
// documents with deterministic, content-addressed identifiers. Identifiers
// are stable across re-indexing of the same repository state, which makes
// upserts into a shared vector-store collection idempotent.
package docs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"demoreel/internal/analyzer"
	"demoreel/internal/flows"
)

// Document type tags.
const (
	TypeFile      = "file"
	TypeReadme    = "readme"
	TypeFeature   = "feature"
	TypeFlow      = "flow"
	TypeAPI       = "api"
	TypeComponent = "component"
	TypeModel     = "model"
)

// maxChunkChars bounds one chunk of source content.
const maxChunkChars = 1000

// Metadata travels with a document into the vector store and back out with
// search results.
type Metadata struct {
	Type     string
	Source   string
	Category string
	Path     string
	Language string
}

// Document is the unit of vector indexing and retrieval.
type Document struct {
	ID       string
	Content  string
	Metadata Metadata
}

// ID derives a deterministic identifier for a document: a truncated hash of
// "<type>:<source>", prefixed by the type so the store stays inspectable.
func ID(docType, source string) string {
	sum := sha256.Sum256([]byte(docType + ":" + source))
	return docType + "-" + hex.EncodeToString(sum[:])[:12]
}

// Prepare builds the full ordered document list for a repository. An empty
// result is legal here; the indexing layer treats it as fatal.
func Prepare(a *analyzer.Result, f *flows.Result) []Document {
	var out []Document

	if readme := findReadme(a); readme != nil {
		out = append(out, Document{
			ID:      ID(TypeReadme, readme.RelPath),
			Content: NormalizeWhitespace(readme.Content),
			Metadata: Metadata{
				Type:   TypeReadme,
				Source: readme.RelPath,
				Path:   readme.RelPath,
			},
		})
	}

	for _, kf := range a.KeyFiles {
		if kf.Category != analyzer.CategorySource || kf.Content == "" {
			continue
		}
		lang := languageForExt(kf.Ext)
		for i, chunk := range Chunk(kf.Content, maxChunkChars) {
			out = append(out, Document{
				ID:      ID(TypeFile, fmt.Sprintf("%s#%d", kf.RelPath, i)),
				Content: chunk,
				Metadata: Metadata{
					Type:     TypeFile,
					Source:   kf.RelPath,
					Path:     kf.RelPath,
					Language: lang,
				},
			})
		}
	}

	for _, feat := range f.Features {
		out = append(out, Document{
			ID:      ID(TypeFeature, feat.Name),
			Content: featureContent(feat),
			Metadata: Metadata{
				Type:     TypeFeature,
				Source:   feat.Name,
				Category: feat.Category,
			},
		})
	}

	for _, flow := range f.Flows {
		out = append(out, Document{
			ID:      ID(TypeFlow, flow.ID),
			Content: flowContent(flow),
			Metadata: Metadata{
				Type:     TypeFlow,
				Source:   flow.ID,
				Category: flow.Type,
			},
		})
	}

	for _, ep := range f.Endpoints {
		source := ep.Method + ":" + ep.Path + ":" + ep.File
		out = append(out, Document{
			ID:      ID(TypeAPI, source),
			Content: fmt.Sprintf("API endpoint: %s %s\nDefined in %s", ep.Method, ep.Path, ep.File),
			Metadata: Metadata{
				Type:   TypeAPI,
				Source: source,
				Path:   ep.File,
			},
		})
	}

	for i, name := range f.Components {
		if i == 50 {
			break
		}
		out = append(out, Document{
			ID:       ID(TypeComponent, name),
			Content:  "UI component: " + name,
			Metadata: Metadata{Type: TypeComponent, Source: name},
		})
	}

	for i, name := range f.Models {
		if i == 30 {
			break
		}
		out = append(out, Document{
			ID:       ID(TypeModel, name),
			Content:  "Data model: " + name,
			Metadata: Metadata{Type: TypeModel, Source: name},
		})
	}

	return out
}

func findReadme(a *analyzer.Result) *analyzer.FileRecord {
	for i := range a.KeyFiles {
		kf := &a.KeyFiles[i]
		if strings.Contains(strings.ToLower(kf.RelPath), "readme") && kf.Content != "" {
			return kf
		}
	}
	return nil
}

func featureContent(f flows.Feature) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feature: %s\nCategory: %s\n%s", f.Name, f.Category, f.Description)
	if len(f.Files) > 0 {
		fmt.Fprintf(&b, "\nRelated files: %s", strings.Join(f.Files, ", "))
	}
	return b.String()
}

func flowContent(f flows.UserFlow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User flow: %s (%s)\n%s\nSteps:", f.Name, f.Type, f.Description)
	for i, step := range f.Steps {
		fmt.Fprintf(&b, "\n%d. %s", i+1, step)
	}
	return b.String()
}

// NormalizeWhitespace converts CRLF to LF, tabs to two spaces, and trims the
// surrounding whitespace.
func NormalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\t", "  ")
	return strings.TrimSpace(s)
}

var chunkLanguages = map[string]string{
	".js": "JavaScript", ".jsx": "JavaScript", ".mjs": "JavaScript", ".cjs": "JavaScript",
	".ts": "TypeScript", ".tsx": "TypeScript",
	".py": "Python", ".go": "Go", ".rs": "Rust", ".java": "Java",
	".rb": "Ruby", ".php": "PHP", ".cs": "C#", ".swift": "Swift",
}

func languageForExt(ext string) string {
	return chunkLanguages[ext]
}
