package vocab

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unicode"

	"github.com/jmhart/lexiread/pkg/db"
)

const formatVersion = 1

// itemPayload is the on-disk shape of one entry's metadata.
type itemPayload struct {
	Translation  string     `json:"translation,omitempty"`
	Phonetic     string     `json:"phonetic,omitempty"`
	AddedDate    time.Time  `json:"addedDate"`
	ReviewCount  int        `json:"reviewCount,omitempty"`
	LastReviewed *time.Time `json:"lastReviewed,omitempty"`
}

// pair serializes as a two-element [word, metadata] array.
type pair struct {
	Word string
	Item itemPayload
}

func (p pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{p.Word, p.Item})
}

func (p *pair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("vocabulary entry must be a [word, data] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Word); err != nil {
		return fmt.Errorf("entry word: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Item); err != nil {
		return fmt.Errorf("entry data for %q: %w", p.Word, err)
	}
	return nil
}

type fileFormat struct {
	Version       int    `json:"version"`
	LearningWords []pair `json:"learningWords"`
	MasteredWords []pair `json:"masteredWords"`
}

func toPair(item *Item) pair {
	p := pair{
		Word: item.Word,
		Item: itemPayload{
			Translation: item.Translation,
			Phonetic:    item.Phonetic,
			AddedDate:   item.AddedAt,
			ReviewCount: item.ReviewCount,
		},
	}
	if !item.LastReviewed.IsZero() {
		t := item.LastReviewed
		p.Item.LastReviewed = &t
	}
	return p
}

func fromPair(p pair) *Item {
	item := &Item{
		Word:        db.LowerWord(p.Word),
		Translation: p.Item.Translation,
		Phonetic:    p.Item.Phonetic,
		AddedAt:     p.Item.AddedDate,
		ReviewCount: p.Item.ReviewCount,
	}
	if p.Item.LastReviewed != nil {
		item.LastReviewed = *p.Item.LastReviewed
	}
	return item
}

// snapshot builds the wire form of the current state. Callers hold s.mu.
func (s *Store) snapshot() *fileFormat {
	ff := &fileFormat{Version: formatVersion}
	for _, item := range s.sortedLocked(s.learning) {
		ff.LearningWords = append(ff.LearningWords, toPair(item))
	}
	for _, item := range s.sortedLocked(s.mastered) {
		ff.MasteredWords = append(ff.MasteredWords, toPair(item))
	}
	return ff
}

func (s *Store) sortedLocked(m map[string]*Item) []*Item {
	items := make([]*Item, 0, len(m))
	for _, item := range m {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].Word < items[j].Word
	})
	return items
}

// decode parses either the current versioned object form or the legacy
// flat word array, which is treated as an all-learning list.
func decode(data []byte) (*fileFormat, error) {
	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	if len(trimmed) == 0 {
		return &fileFormat{Version: formatVersion}, nil
	}
	if trimmed[0] == '[' {
		var words []string
		if err := json.Unmarshal(data, &words); err != nil {
			return nil, fmt.Errorf("parse legacy vocabulary list: %w", err)
		}
		ff := &fileFormat{Version: formatVersion}
		for _, w := range words {
			if w == "" {
				continue
			}
			ff.LearningWords = append(ff.LearningWords, pair{Word: w})
		}
		return ff, nil
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parse vocabulary file: %w", err)
	}
	if ff.Version < 1 {
		return nil, fmt.Errorf("vocabulary file has no version")
	}
	return &ff, nil
}

// apply replaces the store's state with ff. Later duplicates lose, and a
// word on both lists keeps only its learning entry. Callers hold s.mu.
func (s *Store) apply(ff *fileFormat) {
	s.learning = make(map[string]*Item, len(ff.LearningWords))
	s.mastered = make(map[string]*Item, len(ff.MasteredWords))
	for _, p := range ff.LearningWords {
		item := fromPair(p)
		if item.Word == "" {
			continue
		}
		if _, ok := s.learning[item.Word]; !ok {
			s.learning[item.Word] = item
		}
	}
	for _, p := range ff.MasteredWords {
		item := fromPair(p)
		if item.Word == "" {
			continue
		}
		_, inLearning := s.learning[item.Word]
		_, seen := s.mastered[item.Word]
		if !inLearning && !seen {
			s.mastered[item.Word] = item
		}
	}
}

func (s *Store) load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read vocabulary file: %w", err)
	}
	ff, err := decode(data)
	if err != nil {
		return err
	}
	s.apply(ff)
	s.logf("vocabulary loaded: %d learning, %d mastered", len(s.learning), len(s.mastered))
	return nil
}

// save writes the current state to the backing file via a temp-file
// rename. Callers hold s.mu. A store with no path is memory-only.
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create vocabulary dir: %w", err)
	}
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write vocabulary file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace vocabulary file: %w", err)
	}
	return nil
}

// Export writes the vocabulary as pretty-printed JSON.
func (s *Store) Export(w io.Writer) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Import replaces the vocabulary with the contents of r. A malformed
// payload leaves the store untouched.
func (s *Store) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	ff, err := decode(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(ff)
	return s.save()
}

// Sync merges the vocabulary two ways with the file at path and writes
// the merged result to both sides. Words present on both sides keep the
// local list membership; review history keeps the higher count and the
// most recent timestamp. A missing sync file just receives a copy.
func (s *Store) Sync(path string) error {
	var remote *fileFormat
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		remote = &fileFormat{Version: formatVersion}
	case err != nil:
		return fmt.Errorf("read sync file: %w", err)
	default:
		remote, err = decode(data)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	for _, p := range remote.LearningWords {
		s.mergeLocked(fromPair(p), StatusLearning)
	}
	for _, p := range remote.MasteredWords {
		s.mergeLocked(fromPair(p), StatusMastered)
	}
	if err := s.save(); err != nil {
		s.mu.Unlock()
		return err
	}
	merged, err := json.MarshalIndent(s.snapshot(), "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(merged, '\n'), 0o644); err != nil {
		return fmt.Errorf("write sync file: %w", err)
	}
	return nil
}

// mergeLocked folds one remote item in. Callers hold s.mu.
func (s *Store) mergeLocked(remote *Item, status Status) {
	if remote.Word == "" {
		return
	}
	local := s.learning[remote.Word]
	if local == nil {
		local = s.mastered[remote.Word]
	}
	if local == nil {
		// Unknown locally: adopt with the remote status.
		if status == StatusMastered {
			s.mastered[remote.Word] = remote
		} else {
			s.learning[remote.Word] = remote
		}
		return
	}
	if local.Translation == "" {
		local.Translation = remote.Translation
	}
	if local.Phonetic == "" {
		local.Phonetic = remote.Phonetic
	}
	if !remote.AddedAt.IsZero() && (local.AddedAt.IsZero() || remote.AddedAt.Before(local.AddedAt)) {
		local.AddedAt = remote.AddedAt
	}
	if remote.ReviewCount > local.ReviewCount {
		local.ReviewCount = remote.ReviewCount
	}
	if remote.LastReviewed.After(local.LastReviewed) {
		local.LastReviewed = remote.LastReviewed
	}
}
