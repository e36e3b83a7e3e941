package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rom2555/VK-BOT/internal/domain"
)

// SessionRepository implements domain.SessionRepository on the SQL store
type SessionRepository struct {
	db *Database
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *Database) *SessionRepository {
	return &SessionRepository{db: db}
}

type sessionRow struct {
	OwnerID    int64  `db:"owner_id"`
	Step       string `db:"step"`
	Age        int    `db:"age"`
	Sex        int    `db:"sex"`
	CityID     int64  `db:"city_id"`
	Candidates string `db:"candidates"`
	CursorPos  int    `db:"cursor_pos"`
}

// Load returns the stored session or nil if the user has none
func (r *SessionRepository) Load(ctx context.Context, ownerID int64) (*domain.Session, error) {
	query := r.db.GetDB().Rebind(`
		SELECT owner_id, step, age, sex, city_id, candidates, cursor_pos
		FROM sessions
		WHERE owner_id = ?
	`)

	var row sessionRow
	err := r.db.GetDB().GetContext(ctx, &row, query, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var candidates []domain.Candidate
	if err := json.Unmarshal([]byte(row.Candidates), &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}

	return &domain.Session{
		OwnerID:    row.OwnerID,
		Step:       domain.Step(row.Step),
		Age:        row.Age,
		Sex:        domain.Sex(row.Sex),
		CityID:     row.CityID,
		Candidates: candidates,
		Cursor:     row.CursorPos,
	}, nil
}

// Save upserts the full session state
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	candidates := session.Candidates
	if candidates == nil {
		candidates = []domain.Candidate{}
	}
	encoded, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("failed to encode candidates: %w", err)
	}

	query := r.db.GetDB().Rebind(`
		INSERT INTO sessions (owner_id, step, age, sex, city_id, candidates, cursor_pos, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_id) DO UPDATE SET
			step = EXCLUDED.step,
			age = EXCLUDED.age,
			sex = EXCLUDED.sex,
			city_id = EXCLUDED.city_id,
			candidates = EXCLUDED.candidates,
			cursor_pos = EXCLUDED.cursor_pos,
			updated_at = EXCLUDED.updated_at
	`)

	_, err = r.db.GetDB().ExecContext(ctx, query,
		session.OwnerID,
		string(session.Step),
		session.Age,
		int(session.Sex),
		session.CityID,
		string(encoded),
		session.Cursor,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Clear removes the session
func (r *SessionRepository) Clear(ctx context.Context, ownerID int64) error {
	query := r.db.GetDB().Rebind(`DELETE FROM sessions WHERE owner_id = ?`)

	if _, err := r.db.GetDB().ExecContext(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
