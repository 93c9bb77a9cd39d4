package tokenizer

import (
	"fmt"
	"maps"
	"sort"
)

// ScoredPiece is an entry of a caller-supplied ranking used to order merges.
type ScoredPiece struct {
	Piece string
	Score float64
}

// Merge is a BPE merge rule: Left and Right concatenate to a known piece.
type Merge struct {
	Left  string
	Right string
}

// Extractor recovers a piece vocabulary and a BPE merge list from a
// SentencePiece model.
type Extractor struct {
	pieces    map[string]int // piece -> index in the model (last occurrence wins)
	idToPiece []string
}

// NewExtractor loads the SentencePiece model at modelPath.
func NewExtractor(modelPath string) (*Extractor, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	return NewExtractorFromModel(model), nil
}

// NewExtractorFromModel builds an Extractor from an already decoded model.
func NewExtractorFromModel(model *Model) *Extractor {
	e := &Extractor{
		pieces:    make(map[string]int, len(model.Pieces)),
		idToPiece: make([]string, len(model.Pieces)),
	}
	for i, p := range model.Pieces {
		e.pieces[p.Piece] = i
		e.idToPiece[i] = p.Piece
	}
	return e
}

// PieceCount returns the number of pieces in the model.
func (e *Extractor) PieceCount() int {
	return len(e.idToPiece)
}

// Vocab returns a copy of the piece -> id mapping in model enumeration order.
func (e *Extractor) Vocab() map[string]int {
	return maps.Clone(e.pieces)
}

type rankedPiece struct {
	piece string
	rank  float64
}

type mergeCandidate struct {
	Merge
	rank float64
}

// Extract returns the vocabulary and the merge list.
//
// With scores == nil merges are ranked by the vocabulary index of the piece
// they produce, lowest first. Otherwise they are ranked by the supplied score,
// highest first, with ties kept in the order the pieces appear in scores.
func (e *Extractor) Extract(scores []ScoredPiece) (map[string]int, []Merge) {
	order, descending := e.rankSource(scores)

	var candidates []mergeCandidate
	for _, rp := range order {
		var local []mergeCandidate
		for i := range rp.piece {
			if i == 0 {
				continue
			}
			left, right := rp.piece[:i], rp.piece[i:]
			_, okLeft := e.pieces[left]
			_, okRight := e.pieces[right]
			if okLeft && okRight {
				local = append(local, mergeCandidate{Merge: Merge{Left: left, Right: right}, rank: rp.rank})
			}
		}

		sort.SliceStable(local, func(a, b int) bool {
			la, lb := e.pieces[local[a].Left], e.pieces[local[b].Left]
			if la != lb {
				return la < lb
			}
			return e.pieces[local[a].Right] < e.pieces[local[b].Right]
		})
		candidates = append(candidates, local...)
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if descending {
			return candidates[a].rank > candidates[b].rank
		}
		return candidates[a].rank < candidates[b].rank
	})

	merges := make([]Merge, len(candidates))
	for i, c := range candidates {
		merges[i] = c.Merge
	}
	return e.Vocab(), merges
}

// rankSource lists the pieces to split with their rank keys.
func (e *Extractor) rankSource(scores []ScoredPiece) ([]rankedPiece, bool) {
	if scores == nil {
		order := make([]rankedPiece, 0, len(e.pieces))
		seen := make(map[string]bool, len(e.pieces))
		for _, piece := range e.idToPiece {
			if seen[piece] {
				continue
			}
			seen[piece] = true
			order = append(order, rankedPiece{piece: piece, rank: float64(e.pieces[piece])})
		}
		return order, false
	}

	// A repeated piece keeps its first position and takes its last score.
	order := make([]rankedPiece, 0, len(scores))
	pos := make(map[string]int, len(scores))
	for _, s := range scores {
		if i, ok := pos[s.Piece]; ok {
			order[i].rank = s.Score
			continue
		}
		pos[s.Piece] = len(order)
		order = append(order, rankedPiece{piece: s.Piece, rank: s.Score})
	}
	return order, true
}
