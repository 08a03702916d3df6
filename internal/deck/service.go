package deck

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcanaduel/arcana-server-go/internal/catalog"
	"github.com/arcanaduel/arcana-server-go/internal/game"
)

var ErrDeckNotFound = errors.New("deck not found")

// Deck is one saved deck list.
type Deck struct {
	ID          string    `json:"id"`
	PlayerID    string    `json:"-"`
	Name        string    `json:"name"`
	TemplateIDs []string  `json:"templateIds"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Service holds saved decks in memory, one namespace per player. Players
// without a saved active deck duel with the stock starter list.
type Service struct {
	mu     sync.RWMutex
	decks  map[string]map[string]*Deck // playerID -> deckID -> deck
	index  *catalog.Index
	logger *zap.Logger
}

// NewService creates an empty deck service over the template index.
func NewService(index *catalog.Index, logger *zap.Logger) *Service {
	return &Service{
		decks:  make(map[string]map[string]*Deck),
		index:  index,
		logger: logger,
	}
}

// Validate checks a deck list against the building rules: exactly 40 known
// cards, at most 3 copies of any card, at least 20 monsters.
func (s *Service) Validate(templateIDs []string) error {
	if len(templateIDs) != game.DeckSize {
		return fmt.Errorf("deck must have exactly %d cards, got %d", game.DeckSize, len(templateIDs))
	}
	copies := make(map[string]int, len(templateIDs))
	monsters := 0
	for _, id := range templateIDs {
		template := s.index.Template(id)
		if template == nil {
			return fmt.Errorf("unknown card %q", id)
		}
		copies[id]++
		if copies[id] > game.MaxCopiesPerCard {
			return fmt.Errorf("at most %d copies of %q allowed", game.MaxCopiesPerCard, id)
		}
		if template.Kind == catalog.KindMonster {
			monsters++
		}
	}
	if monsters < game.MinMonstersInDeck {
		return fmt.Errorf("deck needs at least %d monsters, got %d", game.MinMonstersInDeck, monsters)
	}
	return nil
}

// Save validates and stores a deck. An empty id creates a new deck; a known
// id overwrites it. The first saved deck becomes active automatically.
func (s *Service) Save(playerID, deckID, name string, templateIDs []string) (*Deck, error) {
	if err := s.Validate(templateIDs); err != nil {
		return nil, err
	}
	if name == "" {
		name = "Unnamed Deck"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.decks[playerID]
	if byID == nil {
		byID = make(map[string]*Deck)
		s.decks[playerID] = byID
	}

	deck := byID[deckID]
	if deck == nil {
		deck = &Deck{
			ID:       uuid.NewString(),
			PlayerID: playerID,
			Active:   len(byID) == 0,
		}
		byID[deck.ID] = deck
	}
	deck.Name = name
	deck.TemplateIDs = append([]string(nil), templateIDs...)
	deck.UpdatedAt = time.Now()

	s.logger.Info("deck saved",
		zap.String("player_id", playerID),
		zap.String("deck_id", deck.ID),
		zap.String("name", deck.Name),
	)
	return deck, nil
}

// List returns the player's saved decks, newest first.
func (s *Service) List(playerID string) []*Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := s.decks[playerID]
	out := make([]*Deck, 0, len(byID))
	for _, deck := range byID {
		out = append(out, deck)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

// Delete removes a deck. Deleting the active deck falls the player back to
// the starter list.
func (s *Service) Delete(playerID, deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.decks[playerID]
	if byID == nil || byID[deckID] == nil {
		return ErrDeckNotFound
	}
	delete(byID, deckID)
	return nil
}

// SetActive marks one deck as the duel deck.
func (s *Service) SetActive(playerID, deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID := s.decks[playerID]
	target := byID[deckID]
	if target == nil {
		return ErrDeckNotFound
	}
	for _, deck := range byID {
		deck.Active = deck.ID == deckID
	}
	return nil
}

// ActiveList returns the template ids the player duels with: the active
// saved deck, or the stock starter list.
func (s *Service) ActiveList(playerID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, deck := range s.decks[playerID] {
		if deck.Active {
			return append([]string(nil), deck.TemplateIDs...)
		}
	}
	return append([]string(nil), catalog.BaseDeckTemplateIDs...)
}
