package analyze

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmhart/lexiread/pkg/db"
	"github.com/jmhart/lexiread/pkg/lemma"
	"github.com/jmhart/lexiread/pkg/worddb"
)

func TestExtractWords(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"The hello, world!", []string{"The", "hello", "world"}},
		{"don't stop", []string{"don", "stop"}},
		{"a I ok", []string{"ok"}},
		{"", nil},
		{"  ...  ", nil},
		{"naïve café", []string{"naïve", "café"}},
		{"word2word again", []string{"word", "word", "again"}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, ExtractWords(tc.text)); diff != "" {
			t.Errorf("ExtractWords(%q) mismatch (-want +got):\n%s", tc.text, diff)
		}
	}
}

func emptyVocab() VocabSets {
	return VocabSets{Learning: map[string]bool{}, Mastered: map[string]bool{}}
}

func testAnalyzer() *Analyzer {
	return &Analyzer{
		Tiers: NewTiers(map[Tier][]string{
			TierCommon:   {"the"},
			TierBeginner: {"hello"},
		}),
		Lemmatizer: lemma.New(nil),
	}
}

func TestAnalyzeUnknownMode(t *testing.T) {
	a := testAnalyzer()
	res, err := a.AnalyzeText(context.Background(), "The hello world", TierBeginner, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}

	wantHighlight := map[string]bool{"the": false, "hello": false, "world": true}
	if len(res.Words) != len(wantHighlight) {
		t.Fatalf("got %d words, want %d", len(res.Words), len(wantHighlight))
	}
	for word, want := range wantHighlight {
		ws, ok := res.Lookup(word)
		if !ok {
			t.Fatalf("missing word %q", word)
		}
		if ws.Highlight != want {
			t.Errorf("%q highlight = %v, want %v", word, ws.Highlight, want)
		}
	}
	if ws, _ := res.Lookup("world"); ws.Tier != TierExpert || ws.Score != 100 {
		t.Errorf("world resolved as %s/%d, want expert/100", ws.Tier, ws.Score)
	}
	// mean of 0, 25 and 100, rounded.
	if res.DifficultyScore != 42 {
		t.Errorf("DifficultyScore = %d, want 42", res.DifficultyScore)
	}
	if diff := cmp.Diff([]string{"world"}, res.NewWords); diff != "" {
		t.Errorf("NewWords mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeAllModeMasteredSuppressed(t *testing.T) {
	a := testAnalyzer()
	vocab := emptyVocab()
	vocab.Mastered["world"] = true
	res, err := a.AnalyzeText(context.Background(), "The hello world", TierBeginner, ModeAll, vocab)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	for _, word := range []string{"the", "hello"} {
		if ws, _ := res.Lookup(word); !ws.Highlight {
			t.Errorf("%q should be highlighted in mode all", word)
		}
	}
	if ws, _ := res.Lookup("world"); ws.Highlight {
		t.Error("mastered word must never be highlighted")
	}
}

func TestAnalyzeLearningAlwaysHighlighted(t *testing.T) {
	a := testAnalyzer()
	vocab := emptyVocab()
	vocab.Learning["the"] = true
	res, err := a.AnalyzeText(context.Background(), "the hello", TierBeginner, ModeUnknown, vocab)
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	ws, _ := res.Lookup("the")
	if !ws.Highlight {
		t.Error("learning word must be highlighted even below the reader's level")
	}
	if len(res.NewWords) != 0 {
		t.Errorf("learning words are not new; NewWords = %v", res.NewWords)
	}
}

func TestAnalyzeDifficultMode(t *testing.T) {
	a := testAnalyzer()
	res, err := a.AnalyzeText(context.Background(), "the hello world", TierCommon, ModeDifficult, emptyVocab())
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	wantHighlight := map[string]bool{"the": false, "hello": true, "world": true}
	for word, want := range wantHighlight {
		if ws, _ := res.Lookup(word); ws.Highlight != want {
			t.Errorf("%q highlight = %v, want %v", word, ws.Highlight, want)
		}
	}
}

func TestAnalyzeDeduplicatesCaseInsensitively(t *testing.T) {
	a := testAnalyzer()
	res, err := a.AnalyzeText(context.Background(), "The THE the hello", TierBeginner, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if len(res.Words) != 2 {
		t.Fatalf("got %d unique words, want 2", len(res.Words))
	}
	if res.Words[0].Word != "the" || res.Words[1].Word != "hello" {
		t.Errorf("first-seen order not preserved: %v", res.Words)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := testAnalyzer()
	res, err := a.AnalyzeText(context.Background(), "", TierBeginner, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	if len(res.Words) != 0 || res.DifficultyScore != 0 {
		t.Errorf("empty text: words=%d score=%d, want 0/0", len(res.Words), res.DifficultyScore)
	}
}

func TestAnalyzeLemmatizerFallback(t *testing.T) {
	a := &Analyzer{
		Tiers:      NewTiers(map[Tier][]string{TierCommon: {"run", "study"}}),
		Lemmatizer: lemma.New(nil),
	}
	res, err := a.AnalyzeText(context.Background(), "running studies", TierAdvanced, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	for _, word := range []string{"running", "studies"} {
		ws, _ := res.Lookup(word)
		if ws.Tier != TierCommon {
			t.Errorf("%q resolved as %s, want common via lemma", word, ws.Tier)
		}
	}
}

func TestAnalyzeExchangeLemmaAndTranslation(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()
	conn.SetMaxOpenConns(1)
	if err := db.InitWordSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	rec := &db.WordRecord{
		Word:        "went",
		Translation: "past tense of <go>",
		Exchange:    "0:go",
	}
	if err := db.UpsertWord(conn, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	wdb := worddb.New()
	wdb.Initialize(nil, conn, "")

	a := &Analyzer{
		Tiers:      NewTiers(map[Tier][]string{TierCommon: {"go"}}),
		Lemmatizer: lemma.New(nil),
		DB:         wdb,
	}
	res, err := a.AnalyzeText(context.Background(), "went", TierAdvanced, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	ws, ok := res.Lookup("went")
	if !ok {
		t.Fatal("missing word went")
	}
	if ws.Tier != TierCommon {
		t.Errorf("went resolved as %s, want common via exchange lemma", ws.Tier)
	}
	if ws.Translation != "past tense of <go>" {
		t.Errorf("Translation = %q", ws.Translation)
	}

	segments := ProcessTextForDisplay("went home", res)
	if segments[0].Translation != "past tense of &lt;go&gt;" {
		t.Errorf("segment translation not escaped: %q", segments[0].Translation)
	}
}

func TestAnalyzeParallelMatchesSequential(t *testing.T) {
	words := []string{
		"the", "hello", "alpha", "beta", "gamma", "delta", "epsilon", "zeta",
		"eta", "theta", "iota", "kappa", "lambda", "omicron", "sigma", "tau",
		"upsilon", "omega", "running", "studies",
	}
	seq := testAnalyzer()
	par := testAnalyzer()
	par.Workers = 4

	want, err := seq.AnalyzeWords(context.Background(), words, TierBeginner, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	got, err := par.AnalyzeWords(context.Background(), words, TierBeginner, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if diff := cmp.Diff(want.Words, got.Words); diff != "" {
		t.Errorf("parallel result diverges (-seq +par):\n%s", diff)
	}
	if want.DifficultyScore != got.DifficultyScore {
		t.Errorf("score %d != %d", want.DifficultyScore, got.DifficultyScore)
	}
}

func TestProcessTextForDisplayRoundTrip(t *testing.T) {
	a := testAnalyzer()
	text := "The hello, world!\n  (again)"
	res, err := a.AnalyzeText(context.Background(), text, TierBeginner, ModeUnknown, emptyVocab())
	if err != nil {
		t.Fatalf("AnalyzeText: %v", err)
	}
	segments := ProcessTextForDisplay(text, res)

	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
	}
	if sb.String() != text {
		t.Fatalf("segments do not reproduce input:\n%q\n%q", text, sb.String())
	}
	var highlighted []string
	for _, seg := range segments {
		if seg.IsWord && seg.Highlight {
			highlighted = append(highlighted, seg.Text)
		}
	}
	if diff := cmp.Diff([]string{"world", "again"}, highlighted); diff != "" {
		t.Errorf("highlighted segments mismatch (-want +got):\n%s", diff)
	}
}
