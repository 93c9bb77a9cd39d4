package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// VocabEntry is a scored Unigram piece, encoded as [piece, score].
type VocabEntry struct {
	Piece string
	Score float64
}

// MarshalJSON encodes e as [piece, score].
func (e VocabEntry) MarshalJSON() ([]byte, error) {
	return marshal([]any{e.Piece, e.Score})
}

// UnmarshalJSON decodes a [piece, score] pair.
func (e *VocabEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("vocab entry: expected [piece, score], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Piece); err != nil {
		return fmt.Errorf("vocab entry piece: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Score); err != nil {
		return fmt.Errorf("vocab entry score: %w", err)
	}
	return nil
}

// Unigram is a SentencePiece-style unigram language model.
type Unigram struct {
	UnkID        *int         `json:"unk_id"`
	Vocab        []VocabEntry `json:"vocab"`
	ByteFallback bool         `json:"byte_fallback"`
}

// NewUnigram returns a Unigram model over vocab with the given unknown id.
func NewUnigram(vocab []VocabEntry, unkID int) Unigram {
	return Unigram{UnkID: &unkID, Vocab: vocab}
}

// ModelType implements Model.
func (Unigram) ModelType() string { return "Unigram" }

// MarshalJSON encodes u with its "type" discriminator.
func (u Unigram) MarshalJSON() ([]byte, error) {
	type body Unigram
	if u.Vocab == nil {
		u.Vocab = []VocabEntry{}
	}
	return marshal(struct {
		Type string `json:"type"`
		body
	}{u.ModelType(), body(u)})
}

// TokenID pairs a token with its id.
type TokenID struct {
	Token string
	ID    int
}

// OrderedVocab is a token -> id mapping that keeps id order when encoded.
type OrderedVocab []TokenID

// NewOrderedVocab sorts m by id, then by token for equal ids.
func NewOrderedVocab(m map[string]int) OrderedVocab {
	v := make(OrderedVocab, 0, len(m))
	for token, id := range m {
		v = append(v, TokenID{Token: token, ID: id})
	}
	sort.Slice(v, func(i, j int) bool {
		if v[i].ID != v[j].ID {
			return v[i].ID < v[j].ID
		}
		return v[i].Token < v[j].Token
	})
	return v
}

// Map returns the vocabulary as a map.
func (v OrderedVocab) Map() map[string]int {
	m := make(map[string]int, len(v))
	for _, e := range v {
		m[e.Token] = e.ID
	}
	return m
}

// MarshalJSON encodes v as a JSON object with keys in id order.
func (v OrderedVocab) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(e.Token)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.ID))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (v *OrderedVocab) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*v = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("vocab: expected object, got %v", tok)
	}

	out := OrderedVocab{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("vocab: expected string key, got %v", keyTok)
		}
		var id int
		if err := dec.Decode(&id); err != nil {
			return fmt.Errorf("vocab %q: %w", key, err)
		}
		out = append(out, TokenID{Token: key, ID: id})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*v = out
	return nil
}

// MergePair is a BPE merge rule, encoded as [left, right].
type MergePair [2]string

// UnmarshalJSON accepts both [left, right] and the older "left right" form.
func (m *MergePair) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		left, right, ok := strings.Cut(s, " ")
		if !ok {
			return fmt.Errorf("merge %q: expected \"left right\"", s)
		}
		*m = MergePair{left, right}
		return nil
	}

	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("merge: expected 2 elements, got %d", len(pair))
	}
	*m = MergePair{pair[0], pair[1]}
	return nil
}

// BPE is a byte-pair encoding model.
type BPE struct {
	Dropout                 *float64     `json:"dropout"`
	UnkToken                *string      `json:"unk_token"`
	ContinuingSubwordPrefix *string      `json:"continuing_subword_prefix"`
	EndOfWordSuffix         *string      `json:"end_of_word_suffix"`
	FuseUnk                 bool         `json:"fuse_unk"`
	ByteFallback            bool         `json:"byte_fallback"`
	IgnoreMerges            bool         `json:"ignore_merges"`
	Vocab                   OrderedVocab `json:"vocab"`
	Merges                  []MergePair  `json:"merges"`
}

// NewBPE returns a BPE model. fuseUnk merges runs of unknown tokens into one.
func NewBPE(vocab OrderedVocab, merges []MergePair, unkToken string, fuseUnk bool) BPE {
	return BPE{
		UnkToken: &unkToken,
		FuseUnk:  fuseUnk,
		Vocab:    vocab,
		Merges:   merges,
	}
}

// ModelType implements Model.
func (BPE) ModelType() string { return "BPE" }

// MarshalJSON encodes b with its "type" discriminator.
func (b BPE) MarshalJSON() ([]byte, error) {
	type body BPE
	if b.Merges == nil {
		b.Merges = []MergePair{}
	}
	return marshal(struct {
		Type string `json:"type"`
		body
	}{b.ModelType(), body(b)})
}

func decodeModel(raw json.RawMessage) (Model, error) {
	typ, ok, err := componentType(raw)
	if err != nil || !ok {
		return nil, err
	}

	switch typ {
	case "Unigram":
		var u Unigram
		if err := json.Unmarshal(raw, &u); err != nil {
			return nil, err
		}
		return u, nil
	case "BPE":
		var b BPE
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: model %q", ErrUnknownComponent, typ)
	}
}
