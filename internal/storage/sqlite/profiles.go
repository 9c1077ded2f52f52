package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/janmasethu/sakhi/internal/core"
)

type ProfileRepo struct {
	db *sql.DB
}

func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, phone_number, name, gender, location, preferred_language, created_at`

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*core.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, userID)
	return scanProfile(row, "user "+userID)
}

func (r *ProfileRepo) GetByPhone(ctx context.Context, phone string) (*core.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE phone_number = ?`, normalizePhone(phone))
	return scanProfile(row, "phone "+phone)
}

// Upsert creates the profile when UserID is empty or unknown and updates it otherwise.
func (r *ProfileRepo) Upsert(ctx context.Context, p core.Profile) (*core.Profile, error) {
	if p.UserID == "" {
		p.UserID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	var phone sql.NullString
	if n := normalizePhone(p.PhoneNumber); n != "" {
		phone = sql.NullString{String: n, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			phone_number = excluded.phone_number,
			name = excluded.name,
			gender = excluded.gender,
			location = excluded.location,
			preferred_language = excluded.preferred_language`,
		p.UserID, phone, p.Name, p.Gender, p.Location, p.PreferredLanguage, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return r.Get(ctx, p.UserID)
}

func scanProfile(row *sql.Row, what string) (*core.Profile, error) {
	var p core.Profile
	var phone sql.NullString
	err := row.Scan(&p.UserID, &phone, &p.Name, &p.Gender, &p.Location, &p.PreferredLanguage, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile for %s: %w", what, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	p.PhoneNumber = phone.String
	return &p, nil
}

func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
