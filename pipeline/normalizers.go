package pipeline

import (
	"encoding/json"
	"fmt"
)

// Sequence applies its normalizers in order.
type Sequence struct {
	Normalizers []Normalizer
}

// NewSequence returns a Sequence of the given normalizers.
func NewSequence(normalizers ...Normalizer) Sequence {
	return Sequence{Normalizers: normalizers}
}

// NormalizerType implements Normalizer.
func (Sequence) NormalizerType() string { return "Sequence" }

// MarshalJSON encodes s with its "type" discriminator.
func (s Sequence) MarshalJSON() ([]byte, error) {
	normalizers := s.Normalizers
	if normalizers == nil {
		normalizers = []Normalizer{}
	}
	return marshal(struct {
		Type        string       `json:"type"`
		Normalizers []Normalizer `json:"normalizers"`
	}{s.NormalizerType(), normalizers})
}

// Precompiled applies a SentencePiece precompiled character map. The map is
// opaque here and is interpreted by the tokenization engine.
type Precompiled struct {
	PrecompiledCharsmap []byte `json:"precompiled_charsmap"`
}

// NewPrecompiled wraps a SentencePiece precompiled_charsmap blob.
func NewPrecompiled(charsmap []byte) Precompiled {
	return Precompiled{PrecompiledCharsmap: charsmap}
}

// NormalizerType implements Normalizer.
func (Precompiled) NormalizerType() string { return "Precompiled" }

// MarshalJSON encodes p with the charsmap in base64.
func (p Precompiled) MarshalJSON() ([]byte, error) {
	type body Precompiled
	return marshal(struct {
		Type string `json:"type"`
		body
	}{p.NormalizerType(), body(p)})
}

// Pattern is either a literal string or a regular expression.
type Pattern struct {
	String string `json:"String,omitempty"`
	Regex  string `json:"Regex,omitempty"`
}

// Replace substitutes every match of Pattern with Content.
type Replace struct {
	Pattern Pattern `json:"pattern"`
	Content string  `json:"content"`
}

// NewRegexReplace returns a Replace normalizer matching a regular expression.
func NewRegexReplace(regex, content string) Replace {
	return Replace{Pattern: Pattern{Regex: regex}, Content: content}
}

// NormalizerType implements Normalizer.
func (Replace) NormalizerType() string { return "Replace" }

// MarshalJSON encodes r with its "type" discriminator.
func (r Replace) MarshalJSON() ([]byte, error) {
	type body Replace
	return marshal(struct {
		Type string `json:"type"`
		body
	}{r.NormalizerType(), body(r)})
}

func decodeNormalizer(raw json.RawMessage) (Normalizer, error) {
	typ, ok, err := componentType(raw)
	if err != nil || !ok {
		return nil, err
	}

	switch typ {
	case "Sequence":
		var body struct {
			Normalizers []json.RawMessage `json:"normalizers"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		seq := Sequence{Normalizers: make([]Normalizer, 0, len(body.Normalizers))}
		for i, r := range body.Normalizers {
			n, err := decodeNormalizer(r)
			if err != nil {
				return nil, fmt.Errorf("sequence[%d]: %w", i, err)
			}
			if n != nil {
				seq.Normalizers = append(seq.Normalizers, n)
			}
		}
		return seq, nil
	case "Precompiled":
		var p Precompiled
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case "Replace":
		var r Replace
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: normalizer %q", ErrUnknownComponent, typ)
	}
}
