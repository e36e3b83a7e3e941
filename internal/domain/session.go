package domain

import "context"

// Step represents the current position of a user in the matchmaking dialog
type Step string

const (
	StepNone     Step = ""
	StepWaitAge  Step = "wait_age"
	StepWaitSex  Step = "wait_sex"
	StepWaitCity Step = "wait_city"
	StepShowing  Step = "showing"
)

// Valid reports whether the step is one of the defined dialog steps
func (s Step) Valid() bool {
	switch s {
	case StepNone, StepWaitAge, StepWaitSex, StepWaitCity, StepShowing:
		return true
	}
	return false
}

// Sex is the VK sex code of the profiles being searched for
type Sex int

const (
	SexUnknown Sex = 0
	SexFemale  Sex = 1
	SexMale    Sex = 2
)

// Age bounds accepted from the user
const (
	AgeMin = 14
	AgeMax = 90
)

// Session represents one user's matchmaking dialog state
type Session struct {
	OwnerID    int64
	Step       Step
	Age        int
	Sex        Sex
	CityID     int64
	Candidates []Candidate
	Cursor     int
}

// NewSession creates a fresh session positioned at the age question
func NewSession(ownerID int64) *Session {
	return &Session{
		OwnerID: ownerID,
		Step:    StepWaitAge,
	}
}

// Advance returns the candidate at the cursor and moves the cursor forward.
// Once the cursor is past the end it keeps returning ok=false without moving.
func (s *Session) Advance() (Candidate, bool) {
	if s.Cursor >= len(s.Candidates) {
		return Candidate{}, false
	}
	c := s.Candidates[s.Cursor]
	s.Cursor++
	return c, true
}

// Shown returns the most recently shown candidate (the one at cursor-1).
// Returns ErrNothingShown if no candidate has been shown yet.
func (s *Session) Shown() (Candidate, error) {
	if s.Cursor == 0 || s.Cursor > len(s.Candidates) {
		return Candidate{}, ErrNothingShown
	}
	return s.Candidates[s.Cursor-1], nil
}

// SessionRepository defines the interface for dialog state storage
type SessionRepository interface {
	// Load returns the stored session or nil if the user has none
	Load(ctx context.Context, ownerID int64) (*Session, error)
	// Save upserts the full session state
	Save(ctx context.Context, session *Session) error
	// Clear removes the session, ending the dialog
	Clear(ctx context.Context, ownerID int64) error
}
