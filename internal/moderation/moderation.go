package moderation

import (
	"context"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/adserve-labs/adengine/internal/models"
	"github.com/adserve-labs/adengine/internal/observability"
)

// WordStore persists the abusive-word blocklist and the auto-moderate
// singleton.
type WordStore interface {
	AddObsceneWord(ctx context.Context, word string) error
	RemoveObsceneWord(ctx context.Context, word string) error
	ListObsceneWords(ctx context.Context) ([]string, error)
	GetAutoModerate(ctx context.Context) (bool, error)
	SetAutoModerate(ctx context.Context, enabled bool) error
}

// Service fuzzy-matches campaign text against the blocklist. The word
// list is read through an in-memory cache; admin writes refresh it.
type Service struct {
	store       WordStore
	sensitivity float64
	metrics     observability.MetricsRegistry

	mu    sync.RWMutex
	words []string // normalized
	ready bool
}

// NewService builds a moderation service. sensitivity in [0,1] scales the
// allowed edit distance with the blocked word's length.
func NewService(store WordStore, sensitivity float64, metrics observability.MetricsRegistry) *Service {
	return &Service{store: store, sensitivity: sensitivity, metrics: metrics}
}

func (s *Service) cachedWords(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	if s.ready {
		words := s.words
		s.mu.RUnlock()
		return words, nil
	}
	s.mu.RUnlock()
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) ([]string, error) {
	stored, err := s.store.ListObsceneWords(ctx)
	if err != nil {
		return nil, err
	}
	words := make([]string, 0, len(stored))
	for _, w := range stored {
		words = append(words, normalize(w))
	}
	s.mu.Lock()
	s.words = words
	s.ready = true
	s.mu.Unlock()
	return words, nil
}

func (s *Service) threshold(word string) int {
	return int(math.Round(float64(len([]rune(word))) * s.sensitivity))
}

// match returns the first blocked word the token fuzzy-matches, if any.
func (s *Service) match(token string, blocked []string) (string, bool) {
	normalized := []rune(normalize(token))
	for _, w := range blocked {
		if levenshtein(normalized, []rune(w)) <= s.threshold(w) {
			return w, true
		}
	}
	return "", false
}

// Check rejects the texts if any whitespace-separated word fuzzy-matches
// a blocked word, short-circuiting on the first hit.
func (s *Service) Check(ctx context.Context, texts ...string) error {
	blocked, err := s.cachedWords(ctx)
	if err != nil {
		return err
	}
	if len(blocked) == 0 {
		return nil
	}
	for _, text := range texts {
		for _, token := range strings.Fields(text) {
			if word, hit := s.match(token, blocked); hit {
				s.metrics.IncrementCensorship()
				zap.L().Info("moderation rejected text", zap.String("matched", word))
				return models.NewCensorship(word)
			}
		}
	}
	return nil
}

// Mask replaces each matched word with "***", preserving the surrounding
// whitespace-separated structure.
func (s *Service) Mask(ctx context.Context, text string) (string, error) {
	blocked, err := s.cachedWords(ctx)
	if err != nil {
		return "", err
	}
	if len(blocked) == 0 {
		return text, nil
	}
	tokens := strings.Fields(text)
	for i, token := range tokens {
		if _, hit := s.match(token, blocked); hit {
			tokens[i] = "***"
		}
	}
	return strings.Join(tokens, " "), nil
}

// AddWords appends lowercased, deduplicated words to the blocklist and
// refreshes the cache.
func (s *Service) AddWords(ctx context.Context, words []string) error {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		if err := s.store.AddObsceneWord(ctx, w); err != nil {
			return err
		}
	}
	_, err := s.refresh(ctx)
	return err
}

// RemoveWords deletes words from the blocklist and refreshes the cache.
func (s *Service) RemoveWords(ctx context.Context, words []string) error {
	for _, w := range words {
		if err := s.store.RemoveObsceneWord(ctx, strings.ToLower(strings.TrimSpace(w))); err != nil {
			return err
		}
	}
	_, err := s.refresh(ctx)
	return err
}

// ListWords returns the stored blocklist.
func (s *Service) ListWords(ctx context.Context) ([]string, error) {
	return s.store.ListObsceneWords(ctx)
}

// AutoModerate reads the singleton toggle.
func (s *Service) AutoModerate(ctx context.Context) (bool, error) {
	return s.store.GetAutoModerate(ctx)
}

// SetAutoModerate flips the singleton toggle.
func (s *Service) SetAutoModerate(ctx context.Context, enabled bool) error {
	return s.store.SetAutoModerate(ctx, enabled)
}
