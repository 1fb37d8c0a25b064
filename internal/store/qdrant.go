package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"demoreel/internal/docs"
)

// Qdrant talks to a Qdrant instance over its REST API. Collections are
// created lazily with cosine distance; the vector dimension is taken from
// the first embedded batch.
type Qdrant struct {
	baseURL    string
	httpClient *http.Client
	embedder   Embedder
}

type qdrantPoint struct {
	ID      string            `json:"id"`
	Vector  []float32         `json:"vector"`
	Payload map[string]string `json:"payload"`
}

// NewQdrant creates a client for the given base URL.
func NewQdrant(baseURL string, emb Embedder) (*Qdrant, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	return &Qdrant{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		embedder:   emb,
	}, nil
}

func (q *Qdrant) Ensure(ctx context.Context, collection string) error {
	// A reachability probe; the collection itself is created on first
	// upsert once the vector dimension is known.
	if err := q.doRequest(ctx, http.MethodGet, "/collections", nil, nil); err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, collection string, documents []docs.Document) error {
	if len(documents) == 0 {
		return nil
	}
	texts := make([]string, len(documents))
	for i, d := range documents {
		texts[i] = d.Content
	}
	vectors, err := q.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return fmt.Errorf("embedder returned no vectors")
	}

	if err := q.ensureCollection(ctx, collection, len(vectors[0])); err != nil {
		return err
	}

	points := make([]qdrantPoint, len(documents))
	for i, d := range documents {
		points[i] = qdrantPoint{
			ID:     pointID(d.ID),
			Vector: vectors[i],
			Payload: map[string]string{
				"doc_id":   d.ID,
				"content":  d.Content,
				"type":     d.Metadata.Type,
				"source":   d.Metadata.Source,
				"category": d.Metadata.Category,
				"path":     d.Metadata.Path,
				"language": d.Metadata.Language,
			},
		}
	}
	body := map[string]any{"points": points}
	return q.doRequest(ctx, http.MethodPut,
		fmt.Sprintf("/collections/%s/points?wait=true", collection), body, nil)
}

func (q *Qdrant) Query(ctx context.Context, collection, text string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}
	vector, err := q.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64           `json:"score"`
			Payload map[string]string `json:"payload"`
		} `json:"result"`
	}
	err = q.doRequest(ctx, http.MethodPost,
		fmt.Sprintf("/collections/%s/points/search", collection), body, &resp)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(resp.Result))
	for _, item := range resp.Result {
		p := item.Payload
		// Qdrant reports cosine similarity; distance is its complement.
		results = append(results, Result{
			ID:      p["doc_id"],
			Content: p["content"],
			Metadata: docs.Metadata{
				Type:     p["type"],
				Source:   p["source"],
				Category: p["category"],
				Path:     p["path"],
				Language: p["language"],
			},
			Distance:  1 - item.Score,
			Relevance: item.Score,
		})
	}
	return results, nil
}

func (q *Qdrant) Close() error { return nil }

func (q *Qdrant) ensureCollection(ctx context.Context, collection string, dimension int) error {
	err := q.doRequest(ctx, http.MethodGet, "/collections/"+collection, nil, nil)
	if err == nil {
		return nil
	}
	if !strings.Contains(err.Error(), "404") {
		return err
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return q.doRequest(ctx, http.MethodPut, "/collections/"+collection, body, nil)
}

// pointID maps a document id onto a deterministic UUID, since Qdrant only
// accepts UUIDs or unsigned integers as point ids.
func pointID(docID string) string {
	sum := sha256.Sum256([]byte(docID))
	h := hex.EncodeToString(sum[:16])
	return fmt.Sprintf("%s-%s-%s-%s-%s", h[0:8], h[8:12], h[12:16], h[16:20], h[20:32])
}

func (q *Qdrant) doRequest(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qdrant response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant returned %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse qdrant response: %w", err)
	}
	return nil
}
