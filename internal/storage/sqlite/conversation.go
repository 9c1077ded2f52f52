package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"
	"time"

	"github.com/janmasethu/sakhi/internal/core"
)

const lockStripes = 64

// ConversationRepo is the append-only message log. Appends for one user are
// serialized so that the stored order always matches completion order.
// Users share a fixed set of lock stripes so memory does not grow with the
// number of users seen.
type ConversationRepo struct {
	db    *sql.DB
	locks [lockStripes]sync.Mutex
	now   func() time.Time
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func stripe(userID string) int {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return int(h.Sum32() % lockStripes)
}

func (r *ConversationRepo) lock(userID string) func() {
	mu := &r.locks[stripe(userID)]
	mu.Lock()
	return mu.Unlock
}

func (r *ConversationRepo) Append(ctx context.Context, userID string, role core.Role, content, language string) error {
	if userID == "" {
		return fmt.Errorf("append message: %w: empty user id", core.ErrInvalidRequest)
	}

	unlock := r.lock(userID)
	defer unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (user_id, role, content, language, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, string(role), content, language, r.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

func (r *ConversationRepo) LastN(ctx context.Context, userID string, n int) ([]core.Message, error) {
	if n <= 0 {
		return []core.Message{}, nil
	}

	// Fetch the newest n, then flip to chronological order.
	rows, err := r.db.QueryContext(ctx,
		`SELECT role, content, language, created_at FROM messages WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]core.Message, 0, n)
	for rows.Next() {
		var msg core.Message
		var role string
		if err := rows.Scan(&role, &msg.Content, &msg.Language, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = core.Role(role)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

// Count is used by the CLI and tests.
func (r *ConversationRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}
