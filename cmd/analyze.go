package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"demoreel/internal/pipeline"
)

// Presentation caps applied at the output boundary, for both the
// human-readable report and the JSON report. The analysis itself is not
// limited by them.
const (
	showFeatures   = 20
	showEndpoints  = 20
	showComponents = 20
	showModels     = 20
	showDeps       = 20
	showDevDeps    = 10
)

var flagAnalyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <path>",
	Short: "Analyze a repository and report detected features and flows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		p := pipeline.New(pipeline.Deps{Log: logger})
		an, err := p.Analyze(cmd.Context(), root)
		if err != nil {
			return err
		}

		if flagAnalyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(analysisReport(an))
		}

		printAnalysis(an)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&flagAnalyzeJSON, "json", false, "emit the full analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

type report struct {
	Root            string          `json:"root"`
	TotalFiles      int             `json:"total_files"`
	TotalBytes      int64           `json:"total_bytes"`
	Languages       []string        `json:"languages"`
	Frameworks      []string        `json:"frameworks"`
	BuildTools      []string        `json:"build_tools"`
	Dependencies    []string        `json:"dependencies"`
	DevDependencies []string        `json:"dev_dependencies"`
	Features        []reportFeature `json:"features"`
	Flows           []reportFlow    `json:"flows"`
	Endpoints       []string        `json:"endpoints"`
	Components      []string        `json:"components"`
	Models          []string        `json:"models"`
}

type reportFeature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type reportFlow struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

func analysisReport(an *pipeline.Analysis) report {
	r := report{
		Root:            an.Repo.Root,
		TotalFiles:      an.Repo.TotalFiles,
		TotalBytes:      an.Repo.TotalBytes,
		Languages:       an.Repo.Stack.Languages,
		Frameworks:      an.Repo.Stack.Frameworks,
		BuildTools:      an.Repo.Stack.BuildTools,
		Dependencies:    capStrings(an.Repo.Dependencies, showDeps),
		DevDependencies: capStrings(an.Repo.DevDependencies, showDevDeps),
		Components:      capStrings(an.Flows.Components, showComponents),
		Models:          capStrings(an.Flows.Models, showModels),
	}
	for i, f := range an.Flows.Features {
		if i == showFeatures {
			break
		}
		r.Features = append(r.Features, reportFeature{Name: f.Name, Description: f.Description})
	}
	for _, fl := range an.Flows.Flows {
		r.Flows = append(r.Flows, reportFlow{Name: fl.Name, Steps: fl.Steps})
	}
	for i, ep := range an.Flows.Endpoints {
		if i == showEndpoints {
			break
		}
		r.Endpoints = append(r.Endpoints, fmt.Sprintf("%s %s", ep.Method, ep.Path))
	}
	return r
}

func capStrings(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func printAnalysis(an *pipeline.Analysis) {
	repo, fl := an.Repo, an.Flows

	fmt.Printf("Repository: %s\n", repo.Root)
	fmt.Printf("Files: %d (%d bytes scanned)\n", repo.TotalFiles, repo.TotalBytes)

	if len(repo.Stack.Languages) > 0 {
		fmt.Printf("Languages: %s\n", strings.Join(repo.Stack.Languages, ", "))
	}
	if len(repo.Stack.Frameworks) > 0 {
		fmt.Printf("Frameworks: %s\n", strings.Join(repo.Stack.Frameworks, ", "))
	}
	if repo.Stack.PackageManager != "" {
		fmt.Printf("Package manager: %s\n", repo.Stack.PackageManager)
	}

	if len(fl.Features) > 0 {
		fmt.Println("\nFeatures:")
		for i, f := range fl.Features {
			if i == showFeatures {
				fmt.Printf("  ... and %d more\n", len(fl.Features)-showFeatures)
				break
			}
			fmt.Printf("  - %s: %s\n", f.Name, f.Description)
		}
	}

	if len(fl.Flows) > 0 {
		fmt.Println("\nUser flows:")
		for _, flow := range fl.Flows {
			fmt.Printf("  - %s\n", flow.Name)
			for _, step := range flow.Steps {
				fmt.Printf("      %s\n", step)
			}
		}
	}

	if len(fl.Endpoints) > 0 {
		fmt.Println("\nAPI endpoints:")
		for i, ep := range fl.Endpoints {
			if i == showEndpoints {
				fmt.Printf("  ... and %d more\n", len(fl.Endpoints)-showEndpoints)
				break
			}
			fmt.Printf("  - %s %s  (%s)\n", ep.Method, ep.Path, ep.File)
		}
	}

	if len(fl.Components) > 0 {
		fmt.Println("\nUI components:")
		printCapped(fl.Components, showComponents)
	}
	if len(fl.Models) > 0 {
		fmt.Println("\nData models:")
		printCapped(fl.Models, showModels)
	}
	if len(repo.Dependencies) > 0 {
		fmt.Println("\nDependencies:")
		printCapped(repo.Dependencies, showDeps)
	}
	if len(repo.DevDependencies) > 0 {
		fmt.Println("\nDev dependencies:")
		printCapped(repo.DevDependencies, showDevDeps)
	}
}

func printCapped(items []string, limit int) {
	for i, item := range items {
		if i == limit {
			fmt.Printf("  ... and %d more\n", len(items)-limit)
			break
		}
		fmt.Printf("  - %s\n", item)
	}
}
