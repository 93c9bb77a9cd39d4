package tokenizer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	pb "github.com/jamesainslie/go-spmconv/internal/proto"
)

// writeTestModel serializes a model with the given pieces into a temp dir.
func writeTestModel(t *testing.T, modelType pb.TrainerSpec_ModelType, pieces ...string) string {
	t.Helper()

	m := &Model{
		TrainerSpec: &pb.TrainerSpec{ModelType: modelType.Enum()},
	}
	for i, p := range pieces {
		m.Pieces = append(m.Pieces, Piece{Piece: p, Score: -float32(i)})
	}

	path := filepath.Join(t.TempDir(), "spiece.model")
	if err := WriteModel(path, m); err != nil {
		t.Fatalf("WriteModel failed: %v", err)
	}
	return path
}

func TestLoadModel(t *testing.T) {
	path := writeTestModel(t, pb.TrainerSpec_UNIGRAM, "<unk>", "<s>", "</s>", "▁the")

	model, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel failed: %v", err)
	}

	if len(model.Pieces) != 4 {
		t.Fatalf("expected 4 pieces, got %d", len(model.Pieces))
	}
	if model.Pieces[0].Piece != "<unk>" {
		t.Errorf("expected piece[0] = <unk>, got %s", model.Pieces[0].Piece)
	}
	if model.Pieces[3].Piece != "▁the" {
		t.Errorf("expected piece[3] = ▁the, got %s", model.Pieces[3].Piece)
	}
	if model.Pieces[3].Score != -3 {
		t.Errorf("expected score[3] = -3, got %v", model.Pieces[3].Score)
	}
	if model.Pieces[3].Type != pb.ModelProto_SentencePiece_NORMAL {
		t.Errorf("expected NORMAL piece type, got %v", model.Pieces[3].Type)
	}
}

func TestLoadModel_ModelType(t *testing.T) {
	tests := []struct {
		name      string
		modelType pb.TrainerSpec_ModelType
	}{
		{"unigram", pb.TrainerSpec_UNIGRAM},
		{"bpe", pb.TrainerSpec_BPE},
		{"word", pb.TrainerSpec_WORD},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model, err := LoadModel(writeTestModel(t, tc.modelType, "<unk>"))
			if err != nil {
				t.Fatalf("LoadModel failed: %v", err)
			}
			if model.TrainerSpec == nil {
				t.Fatal("expected trainer_spec to be present")
			}
			if got := model.ModelType(); got != tc.modelType {
				t.Errorf("expected %v model type, got %v", tc.modelType, got)
			}
		})
	}
}

func TestLoadModel_Defaults(t *testing.T) {
	model, err := ParseModel(nil)
	if err != nil {
		t.Fatalf("ParseModel failed: %v", err)
	}

	if model.ModelType() != pb.TrainerSpec_UNIGRAM {
		t.Errorf("expected UNIGRAM default, got %v", model.ModelType())
	}
	if model.UnkPiece() != "<unk>" {
		t.Errorf("expected <unk> default, got %q", model.UnkPiece())
	}
	if model.ByteFallback() {
		t.Error("expected byte_fallback to default to false")
	}
	if model.PrecompiledCharsmap() != nil {
		t.Error("expected no precompiled charsmap")
	}
}

func TestLoadModel_FileNotFound(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "nonexistent.model"))
	if err == nil {
		t.Fatal("expected error for non-existent file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got: %v", err)
	}
}

func TestLoadModel_InvalidProtobuf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.model")
	if err := os.WriteFile(path, []byte{0xff, 0xff, 0xff}, 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := LoadModel(path); err == nil {
		t.Error("expected error for invalid protobuf data")
	}
}
