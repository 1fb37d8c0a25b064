// Package rag implements the retrieval-and-context-assembly half of the
// pipeline: multi-query semantic retrieval with merge/dedupe/rank, the
// query-set construction, and both context-assembly modes (retrieved
// documents, or raw analysis facts when no vector store is configured).
package rag

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"demoreel/internal/store"
)

// Retriever issues multiple queries against a vector store and merges the
// results into a single ranked list.
type Retriever struct {
	store store.VectorStore
	log   *zap.Logger
}

// NewRetriever wraps a store. A nil logger is replaced with a no-op one.
func NewRetriever(st store.VectorStore, log *zap.Logger) *Retriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{store: st, log: log}
}

// Retrieve runs every query with a per-query budget of ceil(total/queries),
// deduplicates by document id (last seen wins; content per id is stable),
// sorts by relevance descending, and truncates to total. A failing query is
// logged and skipped; only the overall deadline stops the loop early.
func (r *Retriever) Retrieve(ctx context.Context, collection string, queries []string, total int) ([]store.Result, error) {
	if len(queries) == 0 || total <= 0 {
		return nil, nil
	}
	perQuery := (total + len(queries) - 1) / len(queries)

	merged := make(map[string]store.Result)
	order := make([]string, 0, total)
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := r.store.Query(ctx, collection, q, perQuery)
		if err != nil {
			r.log.Warn("retrieval query failed",
				zap.String("collection", collection),
				zap.String("query", q),
				zap.Error(err))
			continue
		}
		for _, res := range results {
			if _, seen := merged[res.ID]; !seen {
				order = append(order, res.ID)
			}
			merged[res.ID] = res
		}
	}

	out := make([]store.Result, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	if len(out) > total {
		out = out[:total]
	}
	return out, nil
}
