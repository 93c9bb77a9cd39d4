package tokenizer

import (
	"path/filepath"
	"reflect"
	"testing"

	pb "github.com/jamesainslie/go-spmconv/internal/proto"
)

var testPieces = []string{"<unk>", "a", "b", "c", "ab", "bc", "abc"}

func TestNewExtractor(t *testing.T) {
	ext, err := NewExtractor(writeTestModel(t, pb.TrainerSpec_BPE, testPieces...))
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	if ext.PieceCount() != len(testPieces) {
		t.Errorf("expected %d pieces, got %d", len(testPieces), ext.PieceCount())
	}

	vocab := ext.Vocab()
	for i, p := range testPieces {
		if vocab[p] != i {
			t.Errorf("vocab[%q] = %d, want %d", p, vocab[p], i)
		}
	}
}

func TestNewExtractor_FileNotFound(t *testing.T) {
	_, err := NewExtractor(filepath.Join(t.TempDir(), "missing.model"))
	if err == nil {
		t.Error("expected error for non-existent model")
	}
}

func TestExtract_NaturalOrder(t *testing.T) {
	ext, err := NewExtractor(writeTestModel(t, pb.TrainerSpec_BPE, testPieces...))
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	_, merges := ext.Extract(nil)

	want := []Merge{
		{"a", "b"},  // ab (4)
		{"b", "c"},  // bc (5)
		{"a", "bc"}, // abc (6), left id 1
		{"ab", "c"}, // abc (6), left id 4
	}
	if !reflect.DeepEqual(merges, want) {
		t.Errorf("merges = %v, want %v", merges, want)
	}
}

func TestExtract_ScoreOverride(t *testing.T) {
	ext, err := NewExtractor(writeTestModel(t, pb.TrainerSpec_BPE, testPieces...))
	if err != nil {
		t.Fatalf("NewExtractor failed: %v", err)
	}

	scores := []ScoredPiece{
		{"abc", -1},
		{"ab", -2},
		{"bc", -1},
	}
	_, merges := ext.Extract(scores)

	// abc and bc tie at -1 and keep their order in scores.
	want := []Merge{
		{"a", "bc"},
		{"ab", "c"},
		{"b", "c"},
		{"a", "b"},
	}
	if !reflect.DeepEqual(merges, want) {
		t.Errorf("merges = %v, want %v", merges, want)
	}
}

func TestExtract_DuplicateOverrideKeepsFirstPosition(t *testing.T) {
	ext := NewExtractorFromModel(modelOf(testPieces...))

	scores := []ScoredPiece{
		{"ab", 0},
		{"bc", 0},
		{"ab", 0},
	}
	_, merges := ext.Extract(scores)

	want := []Merge{{"a", "b"}, {"b", "c"}}
	if !reflect.DeepEqual(merges, want) {
		t.Errorf("merges = %v, want %v", merges, want)
	}
}

func TestExtract_EmptyOverride(t *testing.T) {
	ext := NewExtractorFromModel(modelOf(testPieces...))

	_, merges := ext.Extract([]ScoredPiece{})
	if len(merges) != 0 {
		t.Errorf("expected no merges for empty override, got %v", merges)
	}
}

func TestExtract_SplitsOnRuneBoundaries(t *testing.T) {
	ext := NewExtractorFromModel(modelOf("▁", "h", "é", "▁h", "hé", "▁hé"))

	_, merges := ext.Extract(nil)

	want := []Merge{
		{"▁", "h"},
		{"h", "é"},
		{"▁", "hé"},
		{"▁h", "é"},
	}
	if !reflect.DeepEqual(merges, want) {
		t.Errorf("merges = %v, want %v", merges, want)
	}
}

func TestExtract_EverySplitPointOnce(t *testing.T) {
	pieces := []string{"x", "y", "xy", "yx", "xyx", "xyxy", "yxy"}
	ext := NewExtractorFromModel(modelOf(pieces...))
	vocab, merges := ext.Extract(nil)

	counts := make(map[Merge]int)
	for _, m := range merges {
		if _, ok := vocab[m.Left]; !ok {
			t.Errorf("left half %q not in vocab", m.Left)
		}
		if _, ok := vocab[m.Right]; !ok {
			t.Errorf("right half %q not in vocab", m.Right)
		}
		counts[m]++
	}

	expected := 0
	for _, p := range pieces {
		runes := []rune(p)
		for i := 1; i < len(runes); i++ {
			left, right := string(runes[:i]), string(runes[i:])
			_, okL := vocab[left]
			_, okR := vocab[right]
			if okL && okR {
				expected++
				if counts[Merge{left, right}] < 1 {
					t.Errorf("missing merge %q + %q", left, right)
				}
			}
		}
	}
	if len(merges) != expected {
		t.Errorf("expected %d merges, got %d", expected, len(merges))
	}
}

func TestExtract_NaturalOrderIsAscending(t *testing.T) {
	pieces := []string{"x", "y", "xyxy", "xy", "yx", "xyx"}
	ext := NewExtractorFromModel(modelOf(pieces...))
	vocab, merges := ext.Extract(nil)

	last := -1
	for _, m := range merges {
		id := vocab[m.Left+m.Right]
		if id < last {
			t.Fatalf("merge %v (piece id %d) after piece id %d", m, id, last)
		}
		last = id
	}
}

func modelOf(pieces ...string) *Model {
	m := &Model{}
	for i, p := range pieces {
		m.Pieces = append(m.Pieces, Piece{Piece: p, Score: -float32(i)})
	}
	return m
}
