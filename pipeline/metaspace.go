package pipeline

import (
	"encoding/json"
	"fmt"
)

// PrependScheme controls where Metaspace inserts the boundary marker.
type PrependScheme string

const (
	// PrependAlways prefixes every word.
	PrependAlways PrependScheme = "always"
	// PrependFirst prefixes only the first word of a sequence.
	PrependFirst PrependScheme = "first"
	// PrependNever never prefixes.
	PrependNever PrependScheme = "never"
)

// Valid reports whether p is one of the known schemes.
func (p PrependScheme) Valid() bool {
	switch p {
	case PrependAlways, PrependFirst, PrependNever:
		return true
	}
	return false
}

// DefaultReplacement is the SentencePiece whitespace marker (U+2581).
const DefaultReplacement = "▁"

// Metaspace replaces spaces with Replacement and splits on it. The same
// description serves as the pre-tokenizer and as its inverse decoder.
type Metaspace struct {
	Replacement   string        `json:"replacement"`
	PrependScheme PrependScheme `json:"prepend_scheme"`
	Split         bool          `json:"split"`
}

// NewMetaspace returns a splitting Metaspace stage.
func NewMetaspace(replacement string, scheme PrependScheme) Metaspace {
	return Metaspace{Replacement: replacement, PrependScheme: scheme, Split: true}
}

// PreTokenizerType implements PreTokenizer.
func (Metaspace) PreTokenizerType() string { return "Metaspace" }

// DecoderType implements Decoder.
func (Metaspace) DecoderType() string { return "Metaspace" }

// MarshalJSON encodes m with its "type" discriminator.
func (m Metaspace) MarshalJSON() ([]byte, error) {
	type body Metaspace
	return marshal(struct {
		Type string `json:"type"`
		body
	}{"Metaspace", body(m)})
}

func decodeMetaspace(raw json.RawMessage) (Metaspace, error) {
	var body struct {
		Metaspace
		AddPrefixSpace *bool `json:"add_prefix_space"`
	}
	// Split defaults to true when absent.
	body.Split = true
	if err := json.Unmarshal(raw, &body); err != nil {
		return Metaspace{}, err
	}

	m := body.Metaspace
	if m.PrependScheme == "" {
		// Files written before prepend_scheme existed carry add_prefix_space.
		m.PrependScheme = PrependAlways
		if body.AddPrefixSpace != nil && !*body.AddPrefixSpace {
			m.PrependScheme = PrependNever
		}
	}
	if !m.PrependScheme.Valid() {
		return Metaspace{}, fmt.Errorf("metaspace: invalid prepend_scheme %q", m.PrependScheme)
	}
	return m, nil
}

func decodePreTokenizer(raw json.RawMessage) (PreTokenizer, error) {
	typ, ok, err := componentType(raw)
	if err != nil || !ok {
		return nil, err
	}
	if typ != "Metaspace" {
		return nil, fmt.Errorf("%w: pre_tokenizer %q", ErrUnknownComponent, typ)
	}
	m, err := decodeMetaspace(raw)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func decodeDecoder(raw json.RawMessage) (Decoder, error) {
	typ, ok, err := componentType(raw)
	if err != nil || !ok {
		return nil, err
	}
	if typ != "Metaspace" {
		return nil, fmt.Errorf("%w: decoder %q", ErrUnknownComponent, typ)
	}
	m, err := decodeMetaspace(raw)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func decodePostProcessor(raw json.RawMessage) (PostProcessor, error) {
	typ, ok, err := componentType(raw)
	if err != nil || !ok {
		return nil, err
	}
	return nil, fmt.Errorf("%w: post_processor %q", ErrUnknownComponent, typ)
}
