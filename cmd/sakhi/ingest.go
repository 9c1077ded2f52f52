package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/janmasethu/sakhi/internal/providers/rag"
	"github.com/janmasethu/sakhi/internal/service/indexer"
	"github.com/janmasethu/sakhi/internal/service/ui"
	"github.com/janmasethu/sakhi/pkg/log"
	"github.com/spf13/cobra"
)

var (
	ingestURL    string
	ingestStage  string
	ingestTitle  string
	ingestEmbed  bool
	ingestChunks int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [corpus.yaml]",
	Short: "Import knowledge into the store",
	Long:  `Imports a YAML corpus of life stages and FAQ/article items, or a single web article with --url.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		var corpus *indexer.Corpus
		switch {
		case len(args) == 1:
			c, err := indexer.LoadCorpus(args[0])
			if err != nil {
				return err
			}
			corpus = c
		case ingestURL != "":
			text, err := indexer.NewFetcher().FetchText(ctx, ingestURL)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", ingestURL, err)
			}
			title := ingestTitle
			if title == "" {
				title = ingestURL
			}
			corpus = &indexer.Corpus{Items: []indexer.CorpusItem{{
				Stage:      ingestStage,
				SourceType: "ARTICLE",
				Title:      title,
				Content:    text,
			}}}
			if ingestStage != "" {
				corpus.Stages = []indexer.CorpusStage{{Slug: ingestStage, Name: strings.ReplaceAll(ingestStage, "_", " ")}}
			}
		default:
			return fmt.Errorf("pass a corpus file or --url")
		}

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		chunkCfg := rag.DefaultChunkerConfig()
		if ingestChunks > 0 {
			chunkCfg.MaxTokens = ingestChunks
		} else if app.RAGCfg.ChunkTokens > 0 {
			chunkCfg.MaxTokens = app.RAGCfg.ChunkTokens
		}

		stats, err := indexer.Ingest(ctx, app.Knowledge, corpus, chunkCfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render("INGESTED"))
		fmt.Fprintf(out, "  stages %d  items %d  duplicates %d\n", stats.Stages, stats.Items, stats.Duplicates)

		if !ingestEmbed {
			fmt.Fprintln(out, ui.DescStyle.Render("  embeddings will be filled in by the indexer on `sakhi start`"))
			return nil
		}

		w := indexer.NewWorker(app.Knowledge, app.Embedder, app.RAGCfg)
		total := 0
		for {
			n, err := w.RunOnce(ctx)
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
			total += n
		}
		log.FromCtx(ctx).Info().Int("embedded", total).Msg("embedding pass finished")
		fmt.Fprintf(out, "  embedded %d\n", total)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "fetch a web article instead of reading a corpus file")
	ingestCmd.Flags().StringVar(&ingestStage, "stage", "", "life stage slug for --url")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "title for --url")
	ingestCmd.Flags().BoolVar(&ingestEmbed, "embed", false, "embed new entries before exiting")
	ingestCmd.Flags().IntVar(&ingestChunks, "chunk-tokens", 0, "max tokens per stored passage")
	rootCmd.AddCommand(ingestCmd)
}
