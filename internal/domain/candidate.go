package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNothingShown is returned when a favorite is requested before any candidate was shown
	ErrNothingShown = errors.New("no candidate has been shown yet")
	// ErrUnknownStep is returned when a stored session carries an undefined step tag
	ErrUnknownStep = errors.New("unknown dialog step")
)

// Candidate is a snapshot of a searched profile at the moment it was shown
type Candidate struct {
	ID         int64    `json:"id"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	ProfileURL string   `json:"profile_url"`
	Photos     []string `json:"photos"`
}

// NewCandidate builds a candidate snapshot from a searched profile and its ranked photos
func NewCandidate(p Profile, photos []string) Candidate {
	return Candidate{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		ProfileURL: fmt.Sprintf("vk.com/id%d", p.ID),
		Photos:     photos,
	}
}

// FullName returns the candidate's display name
func (c Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Favorite is a candidate saved by a user, unique per (owner, candidate)
type Favorite struct {
	Candidate Candidate
	AddedAt   time.Time
}

// FavoriteRepository defines the interface for favorites storage
type FavoriteRepository interface {
	// Add stores the candidate in the owner's favorites.
	// Returns false if the pair already exists; the call is then a no-op.
	Add(ctx context.Context, ownerID int64, candidate Candidate) (bool, error)
	// List returns the owner's favorites, most recently added first
	List(ctx context.Context, ownerID int64) ([]Favorite, error)
}
