package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/Rom2555/VK-BOT/internal/domain"
)

// Keyboard identifies which reply keyboard should accompany a message.
// Rendering to transport-specific markup happens in the bot layer.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardStart
	KeyboardSexChoice
	KeyboardActions
)

// Reply is an outbound message produced by the state machine
type Reply struct {
	Text        string
	Attachments []string
	Keyboard    Keyboard
}

// Settings tunes the search behavior
type Settings struct {
	// AgeWindow widens the requested age into [age-AgeWindow, age+AgeWindow]
	AgeWindow int
	// SearchLimit caps how many profiles one search materializes
	SearchLimit int
	// GatewayTimeout bounds every search gateway call
	GatewayTimeout time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.AgeWindow == 0 {
		s.AgeWindow = 5
	}
	if s.SearchLimit <= 0 {
		s.SearchLimit = 10
	}
	if s.GatewayTimeout <= 0 {
		s.GatewayTimeout = 10 * time.Second
	}
	return s
}

// Matchmaker drives the per-user matchmaking dialog: it interprets inbound
// text against the stored session step, calls the search gateway, persists
// the mutated session and returns the outbound replies. State is persisted
// before replies are handed back, so a crash between persisting and sending
// loses at most the outbound messages, never the dialog position.
type Matchmaker struct {
	sessions  domain.SessionRepository
	favorites domain.FavoriteRepository
	gateway   domain.SearchGateway
	logger    *zap.Logger
	settings  Settings
}

// NewMatchmaker creates a new Matchmaker
func NewMatchmaker(
	sessions domain.SessionRepository,
	favorites domain.FavoriteRepository,
	gateway domain.SearchGateway,
	logger *zap.Logger,
	settings Settings,
) *Matchmaker {
	return &Matchmaker{
		sessions:  sessions,
		favorites: favorites,
		gateway:   gateway,
		logger:    logger,
		settings:  settings.withDefaults(),
	}
}

// HandleMessage processes one inbound message from a user and returns the
// replies to send. A returned error means the store failed; the caller is
// expected to log it and keep consuming events.
func (m *Matchmaker) HandleMessage(ctx context.Context, userID int64, text string) ([]Reply, error) {
	input := strings.ToLower(strings.TrimSpace(text))

	if isStartTrigger(input) {
		session := domain.NewSession(userID)
		if err := m.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to reset session: %w", err)
		}
		return []Reply{{Text: msgAskAge}}, nil
	}

	session, err := m.sessions.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return []Reply{{Text: msgPressStart, Keyboard: KeyboardStart}}, nil
	}

	switch session.Step {
	case domain.StepWaitAge:
		return m.handleAge(ctx, session, input)
	case domain.StepWaitSex:
		return m.handleSex(ctx, session, input)
	case domain.StepWaitCity:
		return m.handleCity(ctx, session, input)
	case domain.StepShowing:
		return m.handleShowing(ctx, session, input)
	default:
		// Corrupted step tag: reset the session rather than the process
		m.logger.Warn("resetting session with unknown step",
			zap.Int64("user_id", userID),
			zap.String("step", string(session.Step)),
			zap.Error(domain.ErrUnknownStep))
		if err := m.sessions.Clear(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to clear session: %w", err)
		}
		return []Reply{{Text: msgStepError, Keyboard: KeyboardStart}}, nil
	}
}

func (m *Matchmaker) handleAge(ctx context.Context, session *domain.Session, input string) ([]Reply, error) {
	age, ok := parseAge(input)
	if !ok {
		return []Reply{{Text: msgBadAge}}, nil
	}

	session.Age = age
	session.Step = domain.StepWaitSex
	if err := m.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return []Reply{{Text: msgAskSex, Keyboard: KeyboardSexChoice}}, nil
}

func (m *Matchmaker) handleSex(ctx context.Context, session *domain.Session, input string) ([]Reply, error) {
	var target domain.Sex
	switch input {
	case "1":
		target = domain.SexMale
	case "2":
		target = domain.SexFemale
	default:
		return []Reply{{Text: msgBadSex, Keyboard: KeyboardSexChoice}}, nil
	}

	session.Sex = target
	session.Step = domain.StepWaitCity
	if err := m.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return []Reply{{Text: msgAskCity}}, nil
}

func (m *Matchmaker) handleCity(ctx context.Context, session *domain.Session, input string) ([]Reply, error) {
	if !looksLikeCityName(input) {
		return []Reply{{Text: msgBadCity}}, nil
	}

	city, ok := m.resolveCity(ctx, input)
	if !ok {
		return []Reply{{Text: msgCityNotFound}}, nil
	}
	session.CityID = city.ID

	candidates, err := m.searchCandidates(ctx, session)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		if err := m.sessions.Clear(ctx, session.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to clear session: %w", err)
		}
		return []Reply{{Text: msgNoCandidates, Keyboard: KeyboardStart}}, nil
	}

	session.Candidates = candidates
	session.Cursor = 0
	session.Step = domain.StepShowing

	first, _ := session.Advance()
	if err := m.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return []Reply{candidateReply(first)}, nil
}

func (m *Matchmaker) handleShowing(ctx context.Context, session *domain.Session, input string) ([]Reply, error) {
	switch input {
	case triggerNext, triggerNextLatin:
		candidate, ok := session.Advance()
		if !ok {
			return []Reply{{Text: msgExhausted, Keyboard: KeyboardActions}}, nil
		}
		if err := m.sessions.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		return []Reply{candidateReply(candidate)}, nil

	case triggerFavorite:
		candidate, err := session.Shown()
		if errors.Is(err, domain.ErrNothingShown) {
			return []Reply{{Text: msgNothingShown, Keyboard: KeyboardActions}}, nil
		}
		added, err := m.favorites.Add(ctx, session.OwnerID, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to add favorite: %w", err)
		}
		text := msgFavAdded
		if !added {
			text = msgFavExists
		}
		return []Reply{{Text: text, Keyboard: KeyboardActions}}, nil

	case triggerFavorites:
		favorites, err := m.favorites.List(ctx, session.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list favorites: %w", err)
		}
		if len(favorites) == 0 {
			return []Reply{{Text: msgNoFavorites, Keyboard: KeyboardActions}}, nil
		}
		replies := make([]Reply, 0, len(favorites)+1)
		for _, fav := range favorites {
			replies = append(replies, Reply{
				Text:        fmt.Sprintf("👤 %s\n📍 %s", fav.Candidate.FullName(), fav.Candidate.ProfileURL),
				Attachments: fav.Candidate.Photos,
			})
		}
		replies = append(replies, Reply{Text: msgFavoritesEnd, Keyboard: KeyboardActions})
		return replies, nil

	default:
		return []Reply{{Text: msgShowingHint, Keyboard: KeyboardActions}}, nil
	}
}

// resolveCity queries the gateway and applies the pick policy. Gateway
// failures are logged and reported as "not found".
func (m *Matchmaker) resolveCity(ctx context.Context, query string) (domain.City, bool) {
	gctx, cancel := context.WithTimeout(ctx, m.settings.GatewayTimeout)
	defer cancel()

	cities, err := m.gateway.FindCities(gctx, query)
	if err != nil {
		m.logger.Warn("city lookup failed", zap.String("query", query), zap.Error(err))
		return domain.City{}, false
	}
	return domain.MatchCity(query, cities)
}

// searchCandidates materializes the candidate list for the session's
// criteria, excluding profiles already in the owner's favorites. Gateway
// failures are logged and reported as no results.
func (m *Matchmaker) searchCandidates(ctx context.Context, session *domain.Session) ([]domain.Candidate, error) {
	req := domain.SearchRequest{
		AgeFrom: maxInt(16, session.Age-m.settings.AgeWindow),
		AgeTo:   session.Age + m.settings.AgeWindow,
		Sex:     session.Sex,
		CityID:  session.CityID,
		Count:   m.settings.SearchLimit,
	}

	gctx, cancel := context.WithTimeout(ctx, m.settings.GatewayTimeout)
	profiles, err := m.gateway.SearchProfiles(gctx, req)
	cancel()
	if err != nil {
		m.logger.Warn("candidate search failed", zap.Int64("user_id", session.OwnerID), zap.Error(err))
		return nil, nil
	}

	favorites, err := m.favorites.List(ctx, session.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	favored := make(map[int64]bool, len(favorites))
	for _, fav := range favorites {
		favored[fav.Candidate.ID] = true
	}

	candidates := make([]domain.Candidate, 0, len(profiles))
	for _, profile := range profiles {
		if favored[profile.ID] {
			continue
		}
		candidates = append(candidates, domain.NewCandidate(profile, m.topPhotos(ctx, profile.ID)))
	}
	return candidates, nil
}

// topPhotos fetches the profile's ranked photos; a failure only costs the
// attachments, not the candidate.
func (m *Matchmaker) topPhotos(ctx context.Context, ownerID int64) []string {
	gctx, cancel := context.WithTimeout(ctx, m.settings.GatewayTimeout)
	defer cancel()

	photos, err := m.gateway.TopPhotos(gctx, ownerID)
	if err != nil {
		m.logger.Warn("photo lookup failed", zap.Int64("profile_id", ownerID), zap.Error(err))
		return nil
	}
	return photos
}

func candidateReply(c domain.Candidate) Reply {
	return Reply{
		Text:        fmt.Sprintf("👤 %s\n📍 %s", c.FullName(), c.ProfileURL),
		Attachments: c.Photos,
		Keyboard:    KeyboardActions,
	}
}

func isStartTrigger(input string) bool {
	for _, trigger := range startTriggers {
		if input == trigger {
			return true
		}
	}
	return false
}

func parseAge(input string) (int, bool) {
	if input == "" {
		return 0, false
	}
	age := 0
	for _, r := range input {
		if r < '0' || r > '9' {
			return 0, false
		}
		age = age*10 + int(r-'0')
		if age > domain.AgeMax {
			return 0, false
		}
	}
	if age < domain.AgeMin {
		return 0, false
	}
	return age, true
}

func looksLikeCityName(input string) bool {
	for _, r := range input {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
