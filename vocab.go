package spmconv

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jamesainslie/go-spmconv/pipeline"
	"github.com/jamesainslie/go-spmconv/tokenizer"
)

const (
	// CanonicalVocabFile is the shared vocabulary of a multi-model bundle.
	CanonicalVocabFile = "vocab.json"

	// NilPiece fills canonical ids no model piece maps to.
	NilPiece = "<NIL>"

	// NilScore is the score of NilPiece slots.
	NilScore = -100
)

// VocabStrategy decides which id each model piece receives.
type VocabStrategy interface {
	Vocab(m *tokenizer.Model) ([]pipeline.VocabEntry, []Diagnostic)
}

// NativeOrder keeps pieces in model order: a piece's id is its index.
type NativeOrder struct{}

// Vocab returns the model pieces with their scores, in model order.
func (NativeOrder) Vocab(m *tokenizer.Model) ([]pipeline.VocabEntry, []Diagnostic) {
	vocab := make([]pipeline.VocabEntry, len(m.Pieces))
	for i, p := range m.Pieces {
		vocab[i] = pipeline.VocabEntry{Piece: p.Piece, Score: float64(p.Score)}
	}
	return vocab, nil
}

// CanonicalOrder places pieces at the ids of an external token -> id mapping.
type CanonicalOrder struct {
	ids  map[string]int
	size int
}

// NewCanonicalOrder validates ids and derives the vocabulary size (max id + 1).
func NewCanonicalOrder(ids map[string]int) (*CanonicalOrder, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyCanonicalVocab
	}

	maxID := -1
	for piece, id := range ids {
		if id < 0 {
			return nil, fmt.Errorf("%w: piece %q has id %d", ErrInvalidCanonicalVocab, piece, id)
		}
		maxID = max(maxID, id)
	}

	return &CanonicalOrder{ids: ids, size: maxID + 1}, nil
}

// LoadCanonicalOrder reads a JSON token -> id mapping.
func LoadCanonicalOrder(path string) (*CanonicalOrder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading canonical vocabulary: %w", err)
	}

	var ids map[string]int
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing canonical vocabulary %s: %w", path, err)
	}

	return NewCanonicalOrder(ids)
}

// Size returns the number of ids in the canonical vocabulary.
func (c *CanonicalOrder) Size() int {
	return c.size
}

// Vocab places each model piece at its canonical id and fills the
// remaining ids with NilPiece. Pieces without a canonical id are reported
// as DiagMissingPiece.
func (c *CanonicalOrder) Vocab(m *tokenizer.Model) ([]pipeline.VocabEntry, []Diagnostic) {
	vocab := make([]pipeline.VocabEntry, c.size)
	for i := range vocab {
		vocab[i] = pipeline.VocabEntry{Piece: NilPiece, Score: NilScore}
	}

	var diags []Diagnostic
	for _, p := range m.Pieces {
		id, ok := c.ids[p.Piece]
		if !ok {
			diags = append(diags, missingPiece(p.Piece))
			continue
		}
		vocab[id] = pipeline.VocabEntry{Piece: p.Piece, Score: float64(p.Score)}
	}
	return vocab, diags
}
