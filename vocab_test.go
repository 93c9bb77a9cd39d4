package spmconv

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	pb "github.com/jamesainslie/go-spmconv/internal/proto"
	"github.com/jamesainslie/go-spmconv/pipeline"
	"github.com/jamesainslie/go-spmconv/tokenizer"
)

func writeVocabJSON(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, CanonicalVocabFile), []byte(content), 0o600); err != nil {
		t.Fatalf("writing vocab.json: %v", err)
	}
}

func TestCanonicalOrder_Vocab(t *testing.T) {
	canonical, err := NewCanonicalOrder(map[string]int{"a": 0, "b": 1, "c": 2})
	if err != nil {
		t.Fatalf("NewCanonicalOrder failed: %v", err)
	}

	model := &tokenizer.Model{Pieces: pieces("a", -1.0, "c", -2.0)}
	vocab, diags := canonical.Vocab(model)

	want := []pipeline.VocabEntry{
		{Piece: "a", Score: -1},
		{Piece: "<NIL>", Score: -100},
		{Piece: "c", Score: -2},
	}
	if !reflect.DeepEqual(vocab, want) {
		t.Errorf("vocab = %v, want %v", vocab, want)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestCanonicalOrder_MissingPiece(t *testing.T) {
	canonical, err := NewCanonicalOrder(map[string]int{"a": 0, "c": 3})
	if err != nil {
		t.Fatalf("NewCanonicalOrder failed: %v", err)
	}
	if canonical.Size() != 4 {
		t.Errorf("Size() = %d, want 4", canonical.Size())
	}

	model := &tokenizer.Model{Pieces: pieces("a", -1.0, "zz", -5.0, "c", -2.0)}
	vocab, diags := canonical.Vocab(model)

	want := []pipeline.VocabEntry{
		{Piece: "a", Score: -1},
		{Piece: "<NIL>", Score: -100},
		{Piece: "<NIL>", Score: -100},
		{Piece: "c", Score: -2},
	}
	if !reflect.DeepEqual(vocab, want) {
		t.Errorf("vocab = %v, want %v", vocab, want)
	}
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	if diags[0].Kind != DiagMissingPiece || diags[0].Piece != "zz" {
		t.Errorf("unexpected diagnostic %+v", diags[0])
	}
}

func TestNewCanonicalOrder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		ids  map[string]int
		want error
	}{
		{"empty", map[string]int{}, ErrEmptyCanonicalVocab},
		{"nil", nil, ErrEmptyCanonicalVocab},
		{"negative id", map[string]int{"a": 0, "b": -1}, ErrInvalidCanonicalVocab},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCanonicalOrder(tc.ids)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadCanonicalOrder_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeVocabJSON(t, dir, `{"a": "zero"}`)

	if _, err := LoadCanonicalOrder(filepath.Join(dir, CanonicalVocabFile)); err == nil {
		t.Error("expected error for non-integer ids")
	}
}

func TestNativeOrder_Vocab(t *testing.T) {
	model := &tokenizer.Model{Pieces: pieces("x", -0.5, "y", -1.0)}
	vocab, diags := NativeOrder{}.Vocab(model)

	want := []pipeline.VocabEntry{{Piece: "x", Score: -0.5}, {Piece: "y", Score: -1}}
	if !reflect.DeepEqual(vocab, want) {
		t.Errorf("vocab = %v, want %v", vocab, want)
	}
	if diags != nil {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func marianBundle(t *testing.T) (Reference, string) {
	t.Helper()

	dir := t.TempDir()
	source := writeModel(t, dir, "source.spm", testModel{
		modelType: pb.TrainerSpec_UNIGRAM,
		pieces:    pieces("</s>", 0.0, "<unk>", 0.0, "▁hello", -1.0),
		unkID:     1,
	})

	// The target model lives elsewhere; vocab.json is still read next to source.spm.
	target := writeModel(t, t.TempDir(), "target.spm", testModel{
		modelType: pb.TrainerSpec_UNIGRAM,
		pieces:    pieces("</s>", 0.0, "<unk>", 0.0, "▁你好", -1.5, "▁extra", -9.0),
		unkID:     1,
	})

	writeVocabJSON(t, dir, `{"</s>": 0, "<unk>": 1, "▁hello": 2, "▁你好": 3, "<pad>": 4}`)
	return Reference{SpmFiles: []string{source, target}}, dir
}

func TestConvertMarian(t *testing.T) {
	ref, _ := marianBundle(t)

	tests := []struct {
		name      string
		index     int
		wantVocab []pipeline.VocabEntry
		wantDiags []string
	}{
		{
			name:  "source",
			index: 0,
			wantVocab: []pipeline.VocabEntry{
				{Piece: "</s>", Score: 0},
				{Piece: "<unk>", Score: 0},
				{Piece: "▁hello", Score: -1},
				{Piece: "<NIL>", Score: -100},
				{Piece: "<NIL>", Score: -100},
			},
		},
		{
			name:  "target",
			index: 1,
			wantVocab: []pipeline.VocabEntry{
				{Piece: "</s>", Score: 0},
				{Piece: "<unk>", Score: 0},
				{Piece: "<NIL>", Score: -100},
				{Piece: "▁你好", Score: -1.5},
				{Piece: "<NIL>", Score: -100},
			},
			wantDiags: []string{"▁extra"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tok, diags, err := ConvertMarian(ref, tc.index)
			if err != nil {
				t.Fatalf("ConvertMarian failed: %v", err)
			}

			model, ok := tok.Model.(pipeline.Unigram)
			if !ok {
				t.Fatalf("expected Unigram model, got %T", tok.Model)
			}
			if !reflect.DeepEqual(model.Vocab, tc.wantVocab) {
				t.Errorf("vocab = %v, want %v", model.Vocab, tc.wantVocab)
			}
			if *model.UnkID != 1 {
				t.Errorf("unk id = %d, want 1", *model.UnkID)
			}

			var missing []string
			for _, d := range diags {
				if d.Kind == DiagMissingPiece {
					missing = append(missing, d.Piece)
				}
			}
			if !reflect.DeepEqual(missing, tc.wantDiags) {
				t.Errorf("missing pieces = %v, want %v", missing, tc.wantDiags)
			}
		})
	}
}

func TestNewMarian_IndexOutOfRange(t *testing.T) {
	ref, _ := marianBundle(t)

	for _, index := range []int{-1, 2} {
		_, err := NewMarian(ref, index)
		if !errors.Is(err, ErrModelIndex) {
			t.Errorf("index %d: expected ErrModelIndex, got %v", index, err)
		}
	}
}

func TestNewMarian_NoFiles(t *testing.T) {
	_, err := NewMarian(Reference{}, 0)
	if !errors.Is(err, ErrNoModelFile) {
		t.Errorf("expected ErrNoModelFile, got %v", err)
	}
}

func TestNewMarian_MissingVocabJSON(t *testing.T) {
	ref, dir := marianBundle(t)
	if err := os.Remove(filepath.Join(dir, CanonicalVocabFile)); err != nil {
		t.Fatalf("removing vocab.json: %v", err)
	}

	_, err := NewMarian(ref, 0)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestNewWithStrategy(t *testing.T) {
	ref, _ := marianBundle(t)

	canonical, err := NewCanonicalOrder(map[string]int{"<unk>": 0, "</s>": 1})
	if err != nil {
		t.Fatalf("NewCanonicalOrder failed: %v", err)
	}

	c, err := NewWithStrategy(ref, ref.SpmFiles[0], canonical)
	if err != nil {
		t.Fatalf("NewWithStrategy failed: %v", err)
	}
	if c.ModelFile() != ref.SpmFiles[0] {
		t.Errorf("ModelFile() = %q", c.ModelFile())
	}

	vocab, diags := c.Vocab(c.Record())
	if vocab[0].Piece != "<unk>" || vocab[1].Piece != "</s>" {
		t.Errorf("unexpected vocab %v", vocab)
	}
	if len(diags) != 1 || diags[0].Piece != "▁hello" {
		t.Errorf("unexpected diagnostics %v", diags)
	}

	if _, err := NewWithStrategy(ref, "", canonical); !errors.Is(err, ErrNoModelFile) {
		t.Errorf("expected ErrNoModelFile, got %v", err)
	}
}

func TestConvertMarian_BPEDropsMergesOutsideVocab(t *testing.T) {
	dir := t.TempDir()
	path := writeModel(t, dir, "source.spm", testModel{
		modelType: pb.TrainerSpec_BPE,
		pieces:    pieces("<unk>", 0.0, "a", -1.0, "b", -2.0, "c", -3.0, "ab", -4.0, "ac", -5.0),
	})
	writeVocabJSON(t, dir, `{"<unk>": 0, "a": 1, "c": 2, "ab": 3, "ac": 4}`)

	tok, diags, err := ConvertMarian(Reference{SpmFiles: []string{path}}, 0)
	if err != nil {
		t.Fatalf("ConvertMarian failed: %v", err)
	}

	model, ok := tok.Model.(pipeline.BPE)
	if !ok {
		t.Fatalf("expected BPE model, got %T", tok.Model)
	}

	vocab := model.Vocab.Map()
	for _, m := range model.Merges {
		for _, half := range m {
			if _, ok := vocab[half]; !ok {
				t.Errorf("merge %v: %q not in vocab", m, half)
			}
		}
	}
	if want := []pipeline.MergePair{{"a", "c"}}; !reflect.DeepEqual(model.Merges, want) {
		t.Errorf("merges = %v, want %v", model.Merges, want)
	}

	var missing []string
	var dropped [][2]string
	for _, d := range diags {
		switch d.Kind {
		case DiagMissingPiece:
			missing = append(missing, d.Piece)
		case DiagDroppedMerge:
			dropped = append(dropped, d.Merge)
		}
	}
	if !reflect.DeepEqual(missing, []string{"b"}) {
		t.Errorf("missing pieces = %v, want [b]", missing)
	}
	if want := [][2]string{{"a", "b"}}; !reflect.DeepEqual(dropped, want) {
		t.Errorf("dropped merges = %v, want %v", dropped, want)
	}

	saved := filepath.Join(t.TempDir(), "tokenizer.json")
	if err := tok.Save(saved); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := pipeline.Load(saved); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
}
