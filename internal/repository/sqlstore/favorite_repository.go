package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rom2555/VK-BOT/internal/domain"
)

// FavoriteRepository implements domain.FavoriteRepository on the SQL store
type FavoriteRepository struct {
	db *Database
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *Database) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add stores the candidate snapshot and links it to the owner's favorites.
// The UNIQUE (owner_id, candidate_id) constraint makes repeated adds a no-op;
// the return value reports whether the link was newly inserted.
func (r *FavoriteRepository) Add(ctx context.Context, ownerID int64, candidate domain.Candidate) (bool, error) {
	photos := candidate.Photos
	if photos == nil {
		photos = []string{}
	}
	encoded, err := json.Marshal(photos)
	if err != nil {
		return false, fmt.Errorf("failed to encode photos: %w", err)
	}

	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	candidateQuery := tx.Rebind(`
		INSERT INTO candidates (id, first_name, last_name, profile_url, photos, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	if _, err := tx.ExecContext(ctx, candidateQuery,
		candidate.ID,
		candidate.FirstName,
		candidate.LastName,
		candidate.ProfileURL,
		string(encoded),
		now,
	); err != nil {
		return false, fmt.Errorf("failed to save candidate: %w", err)
	}

	favoriteQuery := tx.Rebind(`
		INSERT INTO favorites (owner_id, candidate_id, added_at)
		VALUES (?, ?, ?)
		ON CONFLICT (owner_id, candidate_id) DO NOTHING
	`)
	result, err := tx.ExecContext(ctx, favoriteQuery, ownerID, candidate.ID, now)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit favorite: %w", err)
	}

	return inserted > 0, nil
}

type favoriteRow struct {
	ID         int64     `db:"id"`
	FirstName  string    `db:"first_name"`
	LastName   string    `db:"last_name"`
	ProfileURL string    `db:"profile_url"`
	Photos     string    `db:"photos"`
	AddedAt    time.Time `db:"added_at"`
}

// List returns the owner's favorites, most recently added first
func (r *FavoriteRepository) List(ctx context.Context, ownerID int64) ([]domain.Favorite, error) {
	query := r.db.GetDB().Rebind(`
		SELECT c.id, c.first_name, c.last_name, c.profile_url, c.photos, f.added_at
		FROM favorites f
		JOIN candidates c ON c.id = f.candidate_id
		WHERE f.owner_id = ?
		ORDER BY f.added_at DESC
	`)

	var rows []favoriteRow
	if err := r.db.GetDB().SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	favorites := make([]domain.Favorite, 0, len(rows))
	for _, row := range rows {
		var photos []string
		if err := json.Unmarshal([]byte(row.Photos), &photos); err != nil {
			return nil, fmt.Errorf("failed to decode photos: %w", err)
		}

		favorites = append(favorites, domain.Favorite{
			Candidate: domain.Candidate{
				ID:         row.ID,
				FirstName:  row.FirstName,
				LastName:   row.LastName,
				ProfileURL: row.ProfileURL,
				Photos:     photos,
			},
			AddedAt: row.AddedAt,
		})
	}

	return favorites, nil
}
