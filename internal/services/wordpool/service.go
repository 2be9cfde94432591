package wordpool

import (
	"bufio"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mcoot/codenames-go/internal/model"
	"github.com/mcoot/codenames-go/internal/services/board"
	"github.com/mcoot/codenames-go/internal/storage"
)

//go:embed default_words.txt
var defaultWords string

// Service holds the candidate words boards are dealt from
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu     sync.RWMutex
	words  []string
	index  map[string]struct{}
	loaded bool
}

// New creates a new word pool Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		index:   make(map[string]struct{}),
	}
}

// LoadFromStorage loads a previously persisted pool
func (s *Service) LoadFromStorage(ctx context.Context) error {
	words, err := s.storage.GetWordPool(ctx)
	if err != nil {
		return err
	}
	s.set(words)
	return nil
}

// LoadFromFile loads words from a file (one word per line) and persists them
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening word list: %w", err)
	}
	defer file.Close()

	words, err := readWords(file)
	if err != nil {
		return fmt.Errorf("reading word list %s: %w", path, err)
	}
	return s.LoadWords(ctx, words)
}

// LoadDefault loads the built-in word list
func (s *Service) LoadDefault(ctx context.Context) error {
	words, err := readWords(strings.NewReader(defaultWords))
	if err != nil {
		return err
	}
	return s.LoadWords(ctx, words)
}

// LoadWords normalises and persists a slice of words
func (s *Service) LoadWords(ctx context.Context, words []string) error {
	words = board.Normalize(words)
	if err := s.storage.SaveWordPool(ctx, words); err != nil {
		return err
	}
	s.set(words)
	s.logger.Info("word pool loaded", "words", len(words))
	return nil
}

func (s *Service) set(words []string) {
	words = board.Normalize(words)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.words = words
	s.index = make(map[string]struct{}, len(words))
	for _, w := range words {
		s.index[w] = struct{}{}
	}
	s.loaded = true
}

func readWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// Words returns a copy of the pool
func (s *Service) Words() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, model.ErrWordPoolNotLoaded
	}
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out, nil
}

// Contains reports whether a word is in the pool, ignoring case
func (s *Service) Contains(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[strings.ToUpper(strings.TrimSpace(word))]
	return ok
}

// IsLoaded returns whether a pool has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// WordCount returns the number of words in the pool
func (s *Service) WordCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Interface for dependency injection
type ServiceInterface interface {
	Words() ([]string, error)
	Contains(word string) bool
	IsLoaded() bool
	WordCount() int
}

var _ ServiceInterface = (*Service)(nil)
