package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"demoreel/internal/pipeline"
	"demoreel/internal/tui"
)

var (
	flagScriptRepoURL  string
	flagScriptDuration int
	flagScriptStyle    string
	flagScriptFocus    []string
	flagScriptNoRAG    bool
	flagScriptJSON     bool
	flagScriptPlain    bool
)

var scriptCmd = &cobra.Command{
	Use:   "script <path>",
	Short: "Generate a spoken demo script for a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		gen, err := newGenerator(cfg)
		if err != nil {
			return err
		}

		// Store setup failure is not fatal: the pipeline falls back to
		// analysis-only context when no store is available.
		st := openStoreOrWarn(cfg, root)
		if st != nil {
			defer st.Close()
		}

		opts := pipeline.Options{
			RepoPath:        root,
			RepoURL:         flagScriptRepoURL,
			Style:           flagScriptStyle,
			DurationSeconds: flagScriptDuration,
			Focus:           flagScriptFocus,
			DisableRAG:      flagScriptNoRAG,
		}

		var result *pipeline.Result
		run := func(onProgress func(phase string, processed, total int)) error {
			deps := pipeline.Deps{Generator: gen, Log: logger, Progress: onProgress, Store: st}
			var runErr error
			result, runErr = pipeline.New(deps).Run(cmd.Context(), opts)
			return runErr
		}

		if flagScriptPlain || flagScriptJSON {
			err = run(nil)
		} else {
			err = tui.RunWithProgress("Generating demo script", run)
		}
		if err != nil {
			return err
		}

		if flagScriptJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(scriptReport(result))
		}
		return printScript(result)
	},
}

func init() {
	scriptCmd.Flags().StringVar(&flagScriptRepoURL, "repo-url", "", "repository URL used as collection identity")
	scriptCmd.Flags().IntVar(&flagScriptDuration, "duration", 60, "target script length in seconds")
	scriptCmd.Flags().StringVar(&flagScriptStyle, "style", "conversational", "narration style")
	scriptCmd.Flags().StringSliceVar(&flagScriptFocus, "focus", nil, "focus areas for retrieval (repeatable)")
	scriptCmd.Flags().BoolVar(&flagScriptNoRAG, "no-rag", false, "skip retrieval and use analysis facts only")
	scriptCmd.Flags().BoolVar(&flagScriptJSON, "json", false, "emit the structured script as JSON")
	scriptCmd.Flags().BoolVar(&flagScriptPlain, "plain", false, "disable the interactive progress display")
	rootCmd.AddCommand(scriptCmd)
}

type scriptJSON struct {
	Repository    string            `json:"repository"`
	Style         string            `json:"style"`
	GeneratedAt   string            `json:"generated_at"`
	UsedRAG       bool              `json:"used_rag"`
	RetrievedDocs int               `json:"retrieved_docs"`
	TotalDuration int               `json:"total_duration_seconds"`
	Keywords      []string          `json:"keywords"`
	Sections      []scriptJSONBlock `json:"sections"`
	Raw           string            `json:"raw"`
}

type scriptJSONBlock struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Duration int    `json:"duration_seconds"`
	Content  string `json:"content"`
}

func scriptReport(r *pipeline.Result) scriptJSON {
	s := r.Script
	out := scriptJSON{
		Repository:    s.Metadata.Repository,
		Style:         s.Metadata.Style,
		GeneratedAt:   s.Metadata.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		UsedRAG:       r.UsedRAG,
		RetrievedDocs: r.RetrievedDocs,
		TotalDuration: s.TotalDuration,
		Keywords:      s.Keywords,
		Raw:           s.Raw,
	}
	for _, sec := range s.Sections {
		out.Sections = append(out.Sections, scriptJSONBlock{
			Title:    sec.Title,
			Type:     sec.Type,
			Duration: sec.Duration,
			Content:  sec.Content,
		})
	}
	return out
}

func printScript(r *pipeline.Result) error {
	s := r.Script

	rendered := s.Raw
	if tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100)); err == nil {
		if out, err := tr.Render(s.Raw); err == nil {
			rendered = out
		}
	}
	fmt.Print(rendered)

	fmt.Printf("\n---\nEstimated duration: %ds", s.TotalDuration)
	if len(s.Sections) > 0 {
		fmt.Printf(" across %d sections:\n", len(s.Sections))
		for _, sec := range s.Sections {
			fmt.Printf("  %3ds  [%s] %s\n", sec.Duration, sec.Type, sec.Title)
		}
	} else {
		fmt.Println()
	}
	if len(s.Keywords) > 0 {
		fmt.Printf("Keywords: %v\n", s.Keywords)
	}
	if r.UsedRAG {
		fmt.Printf("Context: %d retrieved documents\n", r.RetrievedDocs)
	} else {
		fmt.Println("Context: analysis facts (no retrieval)")
	}
	return nil
}
