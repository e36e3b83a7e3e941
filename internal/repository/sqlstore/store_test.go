package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rom2555/VK-BOT/internal/domain"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	// In-memory sqlite lives per connection; keep the pool at one
	db.GetDB().SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestSessionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	loaded, err := repo.Load(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	session := &domain.Session{
		OwnerID: 5,
		Step:    domain.StepShowing,
		Age:     25,
		Sex:     domain.SexMale,
		CityID:  1,
		Candidates: []domain.Candidate{
			{ID: 9, FirstName: "Анна", LastName: "Иванова", ProfileURL: "vk.com/id9", Photos: []string{"photo9_1"}},
		},
		Cursor: 1,
	}
	require.NoError(t, repo.Save(ctx, session))

	loaded, err = repo.Load(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *session, *loaded)
}

func TestSessionSaveIsUpsert(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Session{OwnerID: 5, Step: domain.StepWaitAge}))
	require.NoError(t, repo.Save(ctx, &domain.Session{OwnerID: 5, Step: domain.StepWaitSex, Age: 30}))

	loaded, err := repo.Load(ctx, 5)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, domain.StepWaitSex, loaded.Step)
	assert.Equal(t, 30, loaded.Age)
}

func TestSessionClear(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Session{OwnerID: 5, Step: domain.StepWaitAge}))
	require.NoError(t, repo.Clear(ctx, 5))

	loaded, err := repo.Load(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Clearing an absent session is not an error
	require.NoError(t, repo.Clear(ctx, 5))
}

func TestFavoriteUniqueConstraint(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	candidate := domain.Candidate{
		ID:         9,
		FirstName:  "Анна",
		LastName:   "Иванова",
		ProfileURL: "vk.com/id9",
		Photos:     []string{"photo9_1", "photo9_2"},
	}

	added, err := repo.Add(ctx, 5, candidate)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(ctx, 5, candidate)
	require.NoError(t, err)
	assert.False(t, added)

	favorites, err := repo.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, candidate, favorites[0].Candidate)
	assert.False(t, favorites[0].AddedAt.IsZero())
}

func TestFavoritesOrderedMostRecentFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		_, err := repo.Add(ctx, 5, domain.Candidate{
			ID:         id,
			FirstName:  "Имя",
			LastName:   "Фамилия",
			ProfileURL: "vk.com/id0",
		})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	favorites, err := repo.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, favorites, 3)
	assert.Equal(t, int64(3), favorites[0].Candidate.ID)
	assert.Equal(t, int64(1), favorites[2].Candidate.ID)
}

func TestSameCandidateForTwoOwners(t *testing.T) {
	db := newTestDB(t)
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	candidate := domain.Candidate{ID: 9, FirstName: "Анна", LastName: "Иванова", ProfileURL: "vk.com/id9"}

	added, err := repo.Add(ctx, 5, candidate)
	require.NoError(t, err)
	assert.True(t, added)

	// The shared candidate snapshot does not block another owner's favorite
	added, err = repo.Add(ctx, 6, candidate)
	require.NoError(t, err)
	assert.True(t, added)

	favorites, err := repo.List(ctx, 6)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
}
