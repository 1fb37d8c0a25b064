// Package store is the vector-store boundary. It offers two implementations
// behind one interface: a remote Qdrant collection over REST and a local
// SQLite database with the sqlite-vec extension. Both key documents by their
// deterministic ids, so re-indexing the same repository state is idempotent.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"demoreel/internal/docs"
)

// Result is one retrieved document with its similarity scores. Relevance is
// defined as 1 − distance and deliberately not clamped; with cosine distance
// it lands in [0,1], and anything else is passed through as-is.
type Result struct {
	ID        string
	Content   string
	Metadata  docs.Metadata
	Distance  float64
	Relevance float64
}

// VectorStore is what the pipeline needs from a vector database.
type VectorStore interface {
	// Ensure verifies the store is reachable and the collection can be
	// used. Called once before an indexing pass; a failure here means the
	// dependency is unavailable at the configuration level.
	Ensure(ctx context.Context, collection string) error
	// Upsert adds or overwrites documents by id.
	Upsert(ctx context.Context, collection string, documents []docs.Document) error
	// Query returns up to limit documents nearest to the query text.
	Query(ctx context.Context, collection, text string, limit int) ([]Result, error)
	Close() error
}

// Embedder turns text into vectors. Satisfied by embedder.Ollama.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

var (
	repoURLPattern      = regexp.MustCompile(`github\.com[:/]+([^/]+)/([^/\s?#]+)`)
	collectionSanitizer = regexp.MustCompile(`[^a-z0-9_]`)
)

// CollectionID derives a stable collection name from a repository URL:
// repo_<owner>_<name> lowercased with non-word characters replaced by
// underscores, or a hash of the whole URL when it doesn't look like a
// GitHub URL.
func CollectionID(repoURL string) string {
	if m := repoURLPattern.FindStringSubmatch(repoURL); m != nil {
		owner := strings.ToLower(m[1])
		name := strings.ToLower(strings.TrimSuffix(m[2], ".git"))
		return "repo_" + collectionSanitizer.ReplaceAllString(owner+"_"+name, "_")
	}
	sum := sha256.Sum256([]byte(repoURL))
	return "repo_" + hex.EncodeToString(sum[:])[:12]
}
