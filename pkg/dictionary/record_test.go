package dictionary

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmhart/lexiread/pkg/db"
)

func TestParseRow(t *testing.T) {
	fields := []string{
		"Run", "rʌn", "to move quickly", "跑", "v", "5", "1",
		"cet4 zk gk", "320", "411", "p:ran/d:run/i:running/3:runs", "", "",
	}
	got, err := ParseRow(fields)
	if err != nil {
		t.Fatalf("parse row: %v", err)
	}
	want := &db.WordRecord{
		Word:         "Run",
		WordLower:    "run",
		Phonetic:     "rʌn",
		Definition:   "to move quickly",
		Translation:  "跑",
		PartOfSpeech: "v",
		Collins:      5,
		Oxford:       true,
		Tag:          "cet4 zk gk",
		BNC:          320,
		Frq:          411,
		Exchange:     "p:ran/d:run/i:running/3:runs",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRowBadColumnCount(t *testing.T) {
	if _, err := ParseRow([]string{"word", "phonetic"}); err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestParseRowTolerantNumbers(t *testing.T) {
	fields := []string{"hello", "", "", "", "", "", "", "", "", "not-a-number", "", "", ""}
	got, err := ParseRow(fields)
	if err != nil {
		t.Fatalf("parse row: %v", err)
	}
	if got.Frq != 0 || got.Collins != 0 || got.Oxford {
		t.Errorf("expected zero values for empty/garbage numerics, got %+v", got)
	}
}

func TestDecodeChunkSkipsMalformedRows(t *testing.T) {
	payload := "the,ðə,definite article,这,art,5,1,zk,1,1,,,\n" +
		"garbage row\n" +
		"hello,həˈləʊ,greeting,你好,int,4,1,zk,1045,709,,,\n"
	records, err := DecodeChunk([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].WordLower != "the" || records[1].WordLower != "hello" {
		t.Errorf("unexpected records: %v, %v", records[0], records[1])
	}
}

func TestDecodeChunkEmpty(t *testing.T) {
	if _, err := DecodeChunk([]byte("")); err == nil {
		t.Fatal("expected error for empty chunk")
	}
}

func TestDedupe(t *testing.T) {
	records := []*db.WordRecord{
		{Word: "The", WordLower: "the", BNC: 1},
		{Word: "hello", WordLower: "hello"},
		{Word: "the", WordLower: "the", BNC: 99},
	}
	out := Dedupe(records)
	if len(out) != 2 {
		t.Fatalf("expected 2 after dedupe, got %d", len(out))
	}
	// First occurrence wins.
	if out[0].BNC != 1 {
		t.Errorf("expected first record kept, got BNC=%d", out[0].BNC)
	}
}
