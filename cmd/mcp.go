package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"demoreel/internal/config"
	"demoreel/internal/pipeline"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing analysis and script generation tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s := mcpserver.NewMCPServer("demoreel", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(analyzeRepositoryTool(), makeAnalyzeHandler())
	s.AddTool(generateDemoScriptTool(), makeGenerateHandler(cfg))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func analyzeRepositoryTool() mcp.Tool {
	return mcp.NewTool("analyze_repository",
		mcp.WithDescription("Statically analyze a local repository: tech stack, key files, detected features, user flows, and API endpoints. No network calls."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to the repository root"),
		),
	)
}

func generateDemoScriptTool() mcp.Tool {
	return mcp.NewTool("generate_demo_script",
		mcp.WithDescription("Generate a spoken-style product demo script for a local repository. Indexes the repo, retrieves relevant context, and calls the configured generation model."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute or relative path to the repository root"),
		),
		mcp.WithNumber("duration",
			mcp.Description("Target script length in seconds (default 60)"),
		),
		mcp.WithString("style",
			mcp.Description("Narration style, e.g. 'conversational', 'energetic' (default conversational)"),
		),
		mcp.WithString("focus",
			mcp.Description("Comma-separated focus areas to steer retrieval"),
		),
	)
}

// --- Handler factories ---

func makeAnalyzeHandler() mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		root, err := filepath.Abs(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolve path: %v", err)), nil
		}

		p := pipeline.New(pipeline.Deps{Log: logger})
		an, err := p.Analyze(ctx, root)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatAnalysis(an)), nil
	}
}

func makeGenerateHandler(cfg *config.Config) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("path is required"), nil
		}
		root, err := filepath.Abs(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("resolve path: %v", err)), nil
		}

		gen, err := newGenerator(cfg)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("generator setup failed: %v", err)), nil
		}

		deps := pipeline.Deps{Generator: gen, Log: logger}
		if st := openStoreOrWarn(cfg, root); st != nil {
			defer st.Close()
			deps.Store = st
		}

		opts := pipeline.Options{
			RepoPath:        root,
			DurationSeconds: req.GetInt("duration", 0),
			Style:           req.GetString("style", ""),
		}
		if focus := req.GetString("focus", ""); focus != "" {
			for _, area := range strings.Split(focus, ",") {
				if area = strings.TrimSpace(area); area != "" {
					opts.Focus = append(opts.Focus, area)
				}
			}
		}

		result, err := pipeline.New(deps).Run(ctx, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatScript(result)), nil
	}
}

// --- Formatting helpers ---

func formatAnalysis(an *pipeline.Analysis) string {
	repo, fl := an.Repo, an.Flows

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Analysis of %s\n\n", repo.Root)
	fmt.Fprintf(&sb, "**Files:** %d  \n**Languages:** %s  \n**Frameworks:** %s\n\n",
		repo.TotalFiles,
		strings.Join(repo.Stack.Languages, ", "),
		strings.Join(repo.Stack.Frameworks, ", "))

	if len(fl.Features) > 0 {
		sb.WriteString("### Features\n")
		for _, f := range fl.Features {
			fmt.Fprintf(&sb, "- **%s**: %s\n", f.Name, f.Description)
		}
		sb.WriteString("\n")
	}
	if len(fl.Flows) > 0 {
		sb.WriteString("### User flows\n")
		for _, flow := range fl.Flows {
			fmt.Fprintf(&sb, "- **%s**: %s\n", flow.Name, strings.Join(flow.Steps, "; "))
		}
		sb.WriteString("\n")
	}
	if len(fl.Endpoints) > 0 {
		sb.WriteString("### API endpoints\n")
		for _, ep := range fl.Endpoints {
			fmt.Fprintf(&sb, "- `%s %s` (%s)\n", ep.Method, ep.Path, ep.File)
		}
	}
	return sb.String()
}

func formatScript(r *pipeline.Result) string {
	s := r.Script

	var sb strings.Builder
	sb.WriteString(s.Raw)
	fmt.Fprintf(&sb, "\n\n---\nEstimated duration: %ds across %d sections.\n",
		s.TotalDuration, len(s.Sections))
	for _, sec := range s.Sections {
		fmt.Fprintf(&sb, "- %ds [%s] %s\n", sec.Duration, sec.Type, sec.Title)
	}
	if r.UsedRAG {
		fmt.Fprintf(&sb, "\nGrounded in %d retrieved documents.\n", r.RetrievedDocs)
	}
	return sb.String()
}
