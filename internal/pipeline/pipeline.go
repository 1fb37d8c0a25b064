// Package pipeline wires the full path from repository directory to finished
// demo script: static analysis, feature and flow extraction, document
// indexing, retrieval, prompt assembly, one generation call, and script
// post-processing. Retrieval is best-effort; generation is not.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"demoreel/internal/analyzer"
	"demoreel/internal/docs"
	"demoreel/internal/flows"
	"demoreel/internal/llm"
	"demoreel/internal/rag"
	"demoreel/internal/script"
	"demoreel/internal/store"
)

const (
	upsertBatchSize = 100
	retrieveTotal   = 10

	defaultDurationSeconds = 60
	defaultStyle           = "conversational"
)

// Options are the per-run request parameters.
type Options struct {
	RepoPath        string
	RepoURL         string // collection identity; defaults to RepoPath when empty
	Style           string
	DurationSeconds int
	Focus           []string
	DisableRAG      bool
}

// Deps are the injected collaborators. Store may be nil, in which case the
// pipeline runs in fallback mode on analysis facts alone. Generator is
// required for Run. Progress may be nil.
type Deps struct {
	Store     store.VectorStore
	Generator llm.Generator
	Log       *zap.Logger
	Progress  func(phase string, processed, total int)
}

// Analysis bundles the deterministic half of a run.
type Analysis struct {
	Repo  *analyzer.Result
	Flows *flows.Result
}

// IndexStats summarizes an indexing pass.
type IndexStats struct {
	Collection string
	Documents  int
	Batches    int
}

// Result is the output of a full generation run.
type Result struct {
	Analysis      *Analysis
	Script        *script.Script
	UsedRAG       bool
	RetrievedDocs int
}

// Pipeline is a configured runner. Zero-value Deps fields degrade per the
// rules documented on Deps.
type Pipeline struct {
	deps Deps
}

func New(deps Deps) *Pipeline {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Pipeline{deps: deps}
}

// Analyze runs the static analyzer and the flow extractor.
func (p *Pipeline) Analyze(ctx context.Context, repoPath string) (*Analysis, error) {
	p.progress("Analyzing repository...", 0, 0)
	repo, err := analyzer.Analyze(ctx, repoPath)
	if err != nil {
		return nil, wrap(KindAnalysis, "analyze repository", err)
	}
	fl := flows.Extract(repo)
	p.deps.Log.Info("analysis complete",
		zap.Int("files", repo.TotalFiles),
		zap.Int("features", len(fl.Features)),
		zap.Int("flows", len(fl.Flows)),
		zap.Int("endpoints", len(fl.Endpoints)))
	return &Analysis{Repo: repo, Flows: fl}, nil
}

// Index prepares documents from an analysis and upserts them into the vector
// store in batches. Producing zero documents is an indexing failure: a repo
// with nothing to index cannot support retrieval.
func (p *Pipeline) Index(ctx context.Context, an *Analysis, repoURL string) (*IndexStats, error) {
	if p.deps.Store == nil {
		return nil, wrap(KindInternal, "no vector store configured", nil)
	}
	collection := store.CollectionID(repoURL)

	p.progress("Preparing documents...", 0, 0)
	documents := docs.Prepare(an.Repo, an.Flows)
	if len(documents) == 0 {
		return nil, wrap(KindIndexing, "repository produced no indexable documents", nil)
	}

	stats := &IndexStats{Collection: collection, Documents: len(documents)}
	for start := 0; start < len(documents); start += upsertBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, wrap(KindIndexing, "indexing interrupted", err)
		}
		end := start + upsertBatchSize
		if end > len(documents) {
			end = len(documents)
		}
		if err := p.deps.Store.Upsert(ctx, collection, documents[start:end]); err != nil {
			return nil, wrap(KindIndexing, fmt.Sprintf("upsert batch %d", stats.Batches+1), err)
		}
		stats.Batches++
		p.progress("Indexing documents...", end, len(documents))
	}

	p.deps.Log.Info("indexing complete",
		zap.String("collection", collection),
		zap.Int("documents", stats.Documents),
		zap.Int("batches", stats.Batches))
	return stats, nil
}

// Run executes the whole pipeline and returns a structured script. When the
// store is missing, unreachable, or disabled, context assembly falls back to
// analysis facts; every path after that point still reaches the generator.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if p.deps.Generator == nil {
		return nil, wrap(KindInternal, "no generator configured", nil)
	}
	if opts.DurationSeconds <= 0 {
		opts.DurationSeconds = defaultDurationSeconds
	}
	if opts.Style == "" {
		opts.Style = defaultStyle
	}
	repoURL := opts.RepoURL
	if repoURL == "" {
		repoURL = opts.RepoPath
	}

	an, err := p.Analyze(ctx, opts.RepoPath)
	if err != nil {
		return nil, err
	}

	contextBlock, retrieved, usedRAG, err := p.assembleContext(ctx, an, repoURL, opts)
	if err != nil {
		return nil, err
	}

	repoName := repoDisplayName(opts.RepoURL, opts.RepoPath)
	prompt := rag.BuildPrompt(contextBlock, an.Repo, repoName, opts.Style, opts.DurationSeconds)

	p.progress("Generating script...", 0, 0)
	raw, err := p.deps.Generator.Complete(ctx, prompt)
	if err != nil {
		return nil, wrap(KindGeneration, "generate script", err)
	}

	sections, total := script.Parse(raw, opts.DurationSeconds)
	result := &script.Script{
		Raw:           raw,
		Sections:      sections,
		TotalDuration: total,
		Keywords:      script.Keywords(an.Repo, an.Flows),
		Metadata: script.Metadata{
			Style:         opts.Style,
			GeneratedAt:   time.Now(),
			Repository:    repoName,
			RetrievedDocs: retrieved,
		},
	}

	p.deps.Log.Info("script generated",
		zap.Int("sections", len(sections)),
		zap.Int("estimated_seconds", total),
		zap.Bool("rag", usedRAG))
	return &Result{Analysis: an, Script: result, UsedRAG: usedRAG, RetrievedDocs: retrieved}, nil
}

// assembleContext picks the context mode. RAG is attempted only when a store
// is configured, enabled, and reachable; an unreachable store downgrades to
// fallback with a warning. Once indexing has started, failures are fatal and
// surface under the generation stage since they abort script production.
func (p *Pipeline) assembleContext(ctx context.Context, an *Analysis, repoURL string, opts Options) (string, int, bool, error) {
	if p.deps.Store == nil || opts.DisableRAG {
		return rag.AssembleFallback(an.Repo, an.Flows), 0, false, nil
	}
	if err := p.deps.Store.Ensure(ctx, store.CollectionID(repoURL)); err != nil {
		p.deps.Log.Warn("vector store unreachable, falling back to analysis context", zap.Error(err))
		return rag.AssembleFallback(an.Repo, an.Flows), 0, false, nil
	}

	stats, err := p.Index(ctx, an, repoURL)
	if err != nil {
		if pe, ok := err.(*Error); ok && pe.Kind == KindIndexing && pe.Err == nil {
			return "", 0, false, err
		}
		return "", 0, false, wrap(KindGeneration, "index before retrieval", err)
	}

	queries := rag.BuildQueries(an.Repo, an.Flows, opts.Focus)
	retriever := rag.NewRetriever(p.deps.Store, p.deps.Log)
	p.progress("Retrieving context...", 0, len(queries))
	results, err := retriever.Retrieve(ctx, stats.Collection, queries, retrieveTotal)
	if err != nil {
		return "", 0, false, wrap(KindGeneration, "retrieve context", err)
	}
	if len(results) == 0 {
		p.deps.Log.Warn("retrieval returned no documents, falling back to analysis context")
		return rag.AssembleFallback(an.Repo, an.Flows), 0, false, nil
	}
	return rag.AssembleRAG(results), len(results), true, nil
}

func (p *Pipeline) progress(phase string, processed, total int) {
	if p.deps.Progress != nil {
		p.deps.Progress(phase, processed, total)
	}
}

// repoDisplayName derives a human name for the prompt: the last URL path
// segment when a URL is given, else the directory base name.
func repoDisplayName(repoURL, repoPath string) string {
	if repoURL != "" {
		trimmed := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
		if i := strings.LastIndex(trimmed, "/"); i >= 0 && i < len(trimmed)-1 {
			return trimmed[i+1:]
		}
		return trimmed
	}
	if repoPath != "" {
		return filepath.Base(repoPath)
	}
	return ""
}
