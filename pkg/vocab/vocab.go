// Package vocab tracks the reader's vocabulary: words being learned and
// words already mastered, persisted as JSON. A word holds exactly one
// status at a time.
package vocab

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jmhart/lexiread/pkg/db"
)

// Status is a word's place in the vocabulary.
type Status int

const (
	StatusLearning Status = iota
	StatusMastered
)

func (s Status) String() string {
	if s == StatusMastered {
		return "mastered"
	}
	return "learning"
}

// Item is one vocabulary entry. Word is stored lowercased.
type Item struct {
	Word         string
	Translation  string
	Phonetic     string
	AddedAt      time.Time
	ReviewCount  int
	LastReviewed time.Time
}

// ErrNotFound is returned by operations on words absent from both lists.
var ErrNotFound = &VocabError{"word not in vocabulary"}

// VocabError provides a simple typed error for vocabulary operations.
type VocabError struct{ msg string }

func (e *VocabError) Error() string { return e.msg }

// Store holds the two vocabulary lists and persists them to a JSON file.
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	path     string
	logger   *log.Logger
	learning map[string]*Item
	mastered map[string]*Item

	now func() time.Time
}

// Open creates a store backed by path and loads any existing file. A
// missing file starts empty; a malformed file is an error.
func Open(path string, logger *log.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		logger:   logger,
		learning: make(map[string]*Item),
		mastered: make(map[string]*Item),
		now:      time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Add puts a word on the learning list, replacing any previous status.
// Empty translation or phonetic leave existing values untouched.
func (s *Store) Add(word, translation, phonetic string) error {
	lower := db.LowerWord(word)
	if lower == "" {
		return fmt.Errorf("word must be non-empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.learning[lower]
	if item == nil {
		if prev, ok := s.mastered[lower]; ok {
			delete(s.mastered, lower)
			item = prev
		}
	}
	if item == nil {
		item = &Item{Word: lower, AddedAt: s.now()}
	}
	if translation != "" {
		item.Translation = translation
	}
	if phonetic != "" {
		item.Phonetic = phonetic
	}
	s.learning[lower] = item
	return s.save()
}

// SetStatus moves an existing word between the lists.
func (s *Store) SetStatus(word string, status Status) error {
	lower := db.LowerWord(word)
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := s.learning, s.mastered
	if status == StatusLearning {
		from, to = s.mastered, s.learning
	}
	if _, ok := to[lower]; ok {
		return nil
	}
	item, ok := from[lower]
	if !ok {
		return ErrNotFound
	}
	delete(from, lower)
	to[lower] = item
	return s.save()
}

// Remove drops a word from whichever list holds it.
func (s *Store) Remove(word string) error {
	lower := db.LowerWord(word)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.learning[lower]; ok {
		delete(s.learning, lower)
		return s.save()
	}
	if _, ok := s.mastered[lower]; ok {
		delete(s.mastered, lower)
		return s.save()
	}
	return ErrNotFound
}

// Clear empties both lists.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learning = make(map[string]*Item)
	s.mastered = make(map[string]*Item)
	return s.save()
}

// Get looks a word up in either list.
func (s *Store) Get(word string) (Item, Status, bool) {
	lower := db.LowerWord(word)
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.learning[lower]; ok {
		return *item, StatusLearning, true
	}
	if item, ok := s.mastered[lower]; ok {
		return *item, StatusMastered, true
	}
	return Item{}, StatusLearning, false
}

// List returns the items with the given status, oldest first.
func (s *Store) List(status Status) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := s.learning
	if status == StatusMastered {
		src = s.mastered
	}
	items := make([]Item, 0, len(src))
	for _, item := range src {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].Word < items[j].Word
	})
	return items
}

// Review records a review of a learning word.
func (s *Store) Review(word string) (Item, error) {
	lower := db.LowerWord(word)
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.learning[lower]
	if !ok {
		return Item{}, ErrNotFound
	}
	item.ReviewCount++
	item.LastReviewed = s.now()
	if err := s.save(); err != nil {
		return Item{}, err
	}
	return *item, nil
}

// Counts reports the size of each list.
func (s *Store) Counts() (learning, mastered int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.learning), len(s.mastered)
}

// Words returns set views of both lists for the analyzer.
func (s *Store) Words() (learning, mastered map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	learning = make(map[string]bool, len(s.learning))
	for w := range s.learning {
		learning[w] = true
	}
	mastered = make(map[string]bool, len(s.mastered))
	for w := range s.mastered {
		mastered[w] = true
	}
	return learning, mastered
}
