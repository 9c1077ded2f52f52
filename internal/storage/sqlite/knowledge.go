package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/janmasethu/sakhi/internal/core"
)

// MaxEmbedAttempts is how many failed embedding attempts a row gets before
// the indexer stops picking it up. Rewriting a stage's text resets the count.
const MaxEmbedAttempts = 5

// KnowledgeRepo stores life stages and knowledge items with their embeddings.
// Similarity is computed in process over the stored vectors.
type KnowledgeRepo struct {
	db *sql.DB
}

func NewKnowledgeRepo(db *sql.DB) *KnowledgeRepo {
	return &KnowledgeRepo{db: db}
}

// UpsertStage inserts or updates a stage by slug. Changing the text clears the stored embedding.
func (r *KnowledgeRepo) UpsertStage(ctx context.Context, s core.LifeStage) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO life_stages (slug, name, description) VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			embedding = CASE
				WHEN life_stages.name = excluded.name AND life_stages.description = excluded.description
				THEN life_stages.embedding ELSE NULL END,
			embed_attempts = CASE
				WHEN life_stages.name = excluded.name AND life_stages.description = excluded.description
				THEN life_stages.embed_attempts ELSE 0 END,
			name = excluded.name,
			description = excluded.description
		RETURNING id`,
		s.Slug, s.Name, s.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert life stage %q: %w", s.Slug, err)
	}
	return id, nil
}

// AddItem inserts an item unless identical content already exists.
// It reports whether a new row was created.
func (r *KnowledgeRepo) AddItem(ctx context.Context, item core.KnowledgeItem) (int64, bool, error) {
	hash := contentHash(item)

	var stageID sql.NullInt64
	if item.LifeStageID > 0 {
		stageID = sql.NullInt64{Int64: item.LifeStageID, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO knowledge_items (life_stage_id, source_type, title, content, infographic_url, youtube_link, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO NOTHING`,
		stageID, item.SourceType, item.Title, item.Content, item.InfographicURL, item.YouTubeLink, hash,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert knowledge item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if affected > 0 {
		id, err := res.LastInsertId()
		return id, true, err
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM knowledge_items WHERE content_hash = ?`, hash).Scan(&id); err != nil {
		return 0, false, fmt.Errorf("failed to find existing knowledge item: %w", err)
	}
	return id, false, nil
}

// PendingStages returns stages without an embedding, least-failed first, so a
// row that keeps failing cannot hold back newer ones.
func (r *KnowledgeRepo) PendingStages(ctx context.Context, limit int) ([]core.LifeStage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, slug, name, description FROM life_stages
		WHERE embedding IS NULL AND embed_attempts < ?
		ORDER BY embed_attempts, id LIMIT ?`, MaxEmbedAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending stages: %w", err)
	}
	defer rows.Close()

	var stages []core.LifeStage
	for rows.Next() {
		var s core.LifeStage
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Description); err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

func (r *KnowledgeRepo) PendingItems(ctx context.Context, limit int) ([]core.KnowledgeItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(life_stage_id, 0), source_type, title, content, infographic_url, youtube_link
		FROM knowledge_items
		WHERE embedding IS NULL AND embed_attempts < ?
		ORDER BY embed_attempts, id LIMIT ?`, MaxEmbedAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending items: %w", err)
	}
	defer rows.Close()

	var items []core.KnowledgeItem
	for rows.Next() {
		var it core.KnowledgeItem
		if err := rows.Scan(&it.ID, &it.LifeStageID, &it.SourceType, &it.Title, &it.Content, &it.InfographicURL, &it.YouTubeLink); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *KnowledgeRepo) SetStageEmbedding(ctx context.Context, id int64, vec []float32) error {
	return r.setEmbedding(ctx, "life_stages", id, vec)
}

func (r *KnowledgeRepo) SetItemEmbedding(ctx context.Context, id int64, vec []float32) error {
	return r.setEmbedding(ctx, "knowledge_items", id, vec)
}

func (r *KnowledgeRepo) setEmbedding(ctx context.Context, table string, id int64, vec []float32) error {
	blob, err := serializeVector(vec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET embedding = ?, embed_attempts = 0 WHERE id = ?`, blob, id); err != nil {
		return fmt.Errorf("failed to store embedding in %s: %w", table, err)
	}
	return nil
}

func (r *KnowledgeRepo) MarkStageFailed(ctx context.Context, id int64) error {
	return r.markFailed(ctx, "life_stages", id)
}

func (r *KnowledgeRepo) MarkItemFailed(ctx context.Context, id int64) error {
	return r.markFailed(ctx, "knowledge_items", id)
}

func (r *KnowledgeRepo) markFailed(ctx context.Context, table string, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE `+table+` SET embed_attempts = embed_attempts + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to record embed attempt in %s: %w", table, err)
	}
	return nil
}

// SearchStages ranks embedded life stages by cosine similarity to query.
func (r *KnowledgeRepo) SearchStages(ctx context.Context, query []float32, k int) ([]core.ScoredStage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, slug, name, description, embedding FROM life_stages WHERE embedding IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("stage search failed: %w", err)
	}
	defer rows.Close()

	var results []core.ScoredStage
	for rows.Next() {
		var s core.ScoredStage
		var blob []byte
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Description, &blob); err != nil {
			return nil, err
		}
		vec, err := deserializeVector(blob)
		if err != nil {
			return nil, err
		}
		s.Score = cosine(query, vec)
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// SearchItems ranks embedded items by cosine similarity, restricted to stageIDs when given.
func (r *KnowledgeRepo) SearchItems(ctx context.Context, query []float32, stageIDs []int64, k int) ([]core.RetrievalItem, error) {
	q := `
		SELECT k.id, k.source_type, k.title, k.content, k.infographic_url, k.youtube_link,
			COALESCE(s.name, ''), k.embedding
		FROM knowledge_items k
		LEFT JOIN life_stages s ON s.id = k.life_stage_id
		WHERE k.embedding IS NOT NULL`
	args := make([]any, 0, len(stageIDs))
	if len(stageIDs) > 0 {
		q += ` AND k.life_stage_id IN (` + placeholders(len(stageIDs)) + `)`
		for _, id := range stageIDs {
			args = append(args, id)
		}
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("item search failed: %w", err)
	}
	defer rows.Close()

	var results []core.RetrievalItem
	for rows.Next() {
		var it core.RetrievalItem
		var blob []byte
		if err := rows.Scan(&it.ID, &it.SourceType, &it.Title, &it.Content, &it.InfographicURL, &it.YouTubeLink, &it.LifeStage, &blob); err != nil {
			return nil, err
		}
		vec, err := deserializeVector(blob)
		if err != nil {
			return nil, err
		}
		it.Score = cosine(query, vec)
		results = append(results, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Ties keep insertion order.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func contentHash(item core.KnowledgeItem) string {
	sum := sha256.Sum256([]byte(item.SourceType + "\x00" + item.Title + "\x00" + strings.TrimSpace(item.Content)))
	return hex.EncodeToString(sum[:])
}
