package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"demoreel/internal/pipeline"
	"demoreel/internal/store"
	"demoreel/internal/tui"
)

var (
	flagIndexRepoURL string
	flagIndexPlain   bool
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Analyze a repository and index it into the vector store",
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
		st, err := openStore(cfg, root)
		if err != nil {
			return err
		}
		defer st.Close()

		repoURL := flagIndexRepoURL
		if repoURL == "" {
			repoURL = root
		}
		if err := st.Ensure(cmd.Context(), store.CollectionID(repoURL)); err != nil {
			return fmt.Errorf("vector store unavailable: %w", err)
		}

		start := time.Now()
		var stats *pipeline.IndexStats
		run := func(onProgress func(phase string, processed, total int)) error {
			p := pipeline.New(pipeline.Deps{Store: st, Log: logger, Progress: onProgress})
			an, err := p.Analyze(cmd.Context(), root)
			if err != nil {
				return err
			}
			stats, err = p.Index(cmd.Context(), an, repoURL)
			return err
		}

		if flagIndexPlain {
			err = run(nil)
		} else {
			err = tui.RunWithProgress("Indexing", run)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Indexed %d documents into %s in %s\n",
			stats.Documents, stats.Collection, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&flagIndexRepoURL, "repo-url", "", "repository URL used as collection identity")
	indexCmd.Flags().BoolVar(&flagIndexPlain, "plain", false, "disable the interactive progress display")
	rootCmd.AddCommand(indexCmd)
}
