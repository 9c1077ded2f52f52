package indexer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/inbucket/html2text"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/providers/rag"
	"github.com/janmasethu/sakhi/pkg/log"
	"gopkg.in/yaml.v3"
)

// Corpus is the on-disk knowledge format read by `sakhi ingest`.
type Corpus struct {
	Stages []CorpusStage `yaml:"stages"`
	Items  []CorpusItem  `yaml:"items"`
}

type CorpusStage struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type CorpusItem struct {
	Stage          string `yaml:"stage"`
	SourceType     string `yaml:"source_type"`
	Title          string `yaml:"title"`
	Content        string `yaml:"content"`
	HTML           bool   `yaml:"html"`
	InfographicURL string `yaml:"infographic_url"`
	YouTubeLink    string `yaml:"youtube_link"`
}

type Stats struct {
	Stages     int
	Items      int
	Duplicates int
}

func LoadCorpus(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	return &c, nil
}

// Ingest stores a corpus. Long content is split into several items; only the
// first chunk keeps the media links so a turn never surfaces them twice.
// Embeddings are filled in later by the Worker.
func Ingest(ctx context.Context, repo core.KnowledgeRepository, c *Corpus, chunkCfg rag.ChunkerConfig) (Stats, error) {
	var stats Stats
	stageIDs := make(map[string]int64, len(c.Stages))

	for _, s := range c.Stages {
		if s.Slug == "" || s.Name == "" {
			return stats, fmt.Errorf("stage needs slug and name: %+v", s)
		}
		id, err := repo.UpsertStage(ctx, core.LifeStage{Slug: s.Slug, Name: s.Name, Description: strings.TrimSpace(s.Description)})
		if err != nil {
			return stats, err
		}
		stageIDs[s.Slug] = id
		stats.Stages++
	}

	for i, it := range c.Items {
		stageID, ok := stageIDs[it.Stage]
		if it.Stage != "" && !ok {
			return stats, fmt.Errorf("item %d: unknown stage %q", i, it.Stage)
		}

		content := it.Content
		if it.HTML {
			text, err := html2text.FromString(content, html2text.Options{OmitLinks: true})
			if err != nil {
				return stats, fmt.Errorf("item %d: convert html: %w", i, err)
			}
			content = text
		}
		content = strings.TrimSpace(content)
		if content == "" {
			log.FromCtx(ctx).Warn().Int("item", i).Str("title", it.Title).Msg("skipping empty knowledge item")
			continue
		}

		chunks, err := rag.ChunkText(content, chunkCfg)
		if err != nil {
			// Without a tokenizer the item is stored whole.
			log.FromCtx(ctx).Warn().Err(err).Msg("chunking unavailable, storing item unsplit")
			chunks = []rag.Chunk{{Text: content}}
		}

		sourceType := strings.ToUpper(strings.TrimSpace(it.SourceType))
		if sourceType == "" {
			sourceType = core.SourceArticle
		}

		for j, ch := range chunks {
			item := core.KnowledgeItem{
				LifeStageID: stageID,
				SourceType:  sourceType,
				Title:       it.Title,
				Content:     ch.Text,
			}
			if j == 0 {
				item.InfographicURL = strings.TrimSpace(it.InfographicURL)
				item.YouTubeLink = strings.TrimSpace(it.YouTubeLink)
			}

			_, created, err := repo.AddItem(ctx, item)
			if err != nil {
				return stats, fmt.Errorf("item %d chunk %d: %w", i, j, err)
			}
			if created {
				stats.Items++
			} else {
				stats.Duplicates++
			}
		}
	}

	return stats, nil
}
