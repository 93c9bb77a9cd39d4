// Package pipeline describes a fast tokenizer pipeline (normalizer,
// pre-tokenizer, model, decoder and optional post-processor) and serializes
// it in the HuggingFace tokenizer.json layout.
package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// FormatVersion is the tokenizer.json layout version written by Save.
const FormatVersion = "1.0"

// ErrUnknownComponent is returned when deserializing a component type this
// package does not describe.
var ErrUnknownComponent = errors.New("pipeline: unknown component type")

// Normalizer rewrites input text before pre-tokenization.
type Normalizer interface {
	NormalizerType() string
}

// PreTokenizer splits normalized text into words.
type PreTokenizer interface {
	PreTokenizerType() string
}

// Model maps words to token ids.
type Model interface {
	ModelType() string
}

// Decoder turns tokens back into text.
type Decoder interface {
	DecoderType() string
}

// PostProcessor adds special tokens around encoded sequences.
type PostProcessor interface {
	PostProcessorType() string
}

// Tokenizer is a complete pipeline description. Model and Decoder are always
// set on converted pipelines; the other stages are optional.
type Tokenizer struct {
	Normalizer    Normalizer
	PreTokenizer  PreTokenizer
	Model         Model
	Decoder       Decoder
	PostProcessor PostProcessor
}

// New returns a pipeline with only its model set.
func New(model Model) *Tokenizer {
	return &Tokenizer{Model: model}
}

type wireTokenizer struct {
	Version       string            `json:"version"`
	Truncation    json.RawMessage   `json:"truncation"`
	Padding       json.RawMessage   `json:"padding"`
	AddedTokens   []json.RawMessage `json:"added_tokens"`
	Normalizer    any               `json:"normalizer"`
	PreTokenizer  any               `json:"pre_tokenizer"`
	PostProcessor any               `json:"post_processor"`
	Decoder       any               `json:"decoder"`
	Model         any               `json:"model"`
}

// MarshalJSON implements json.Marshaler.
func (t Tokenizer) MarshalJSON() ([]byte, error) {
	w := wireTokenizer{
		Version:     FormatVersion,
		AddedTokens: []json.RawMessage{},
	}
	// Assign only non-nil interfaces so absent stages encode as null.
	if t.Normalizer != nil {
		w.Normalizer = t.Normalizer
	}
	if t.PreTokenizer != nil {
		w.PreTokenizer = t.PreTokenizer
	}
	if t.PostProcessor != nil {
		w.PostProcessor = t.PostProcessor
	}
	if t.Decoder != nil {
		w.Decoder = t.Decoder
	}
	if t.Model != nil {
		w.Model = t.Model
	}
	return marshal(w)
}

type rawTokenizer struct {
	Version       string          `json:"version"`
	Normalizer    json.RawMessage `json:"normalizer"`
	PreTokenizer  json.RawMessage `json:"pre_tokenizer"`
	PostProcessor json.RawMessage `json:"post_processor"`
	Decoder       json.RawMessage `json:"decoder"`
	Model         json.RawMessage `json:"model"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tokenizer) UnmarshalJSON(data []byte) error {
	var raw rawTokenizer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Tokenizer
	var err error
	if out.Normalizer, err = decodeNormalizer(raw.Normalizer); err != nil {
		return fmt.Errorf("normalizer: %w", err)
	}
	if out.PreTokenizer, err = decodePreTokenizer(raw.PreTokenizer); err != nil {
		return fmt.Errorf("pre_tokenizer: %w", err)
	}
	if out.Model, err = decodeModel(raw.Model); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if out.Decoder, err = decodeDecoder(raw.Decoder); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	if out.PostProcessor, err = decodePostProcessor(raw.PostProcessor); err != nil {
		return fmt.Errorf("post_processor: %w", err)
	}

	*t = out
	return nil
}

// Save writes the pipeline to path as indented JSON.
func (t *Tokenizer) Save(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encoding tokenizer: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // tokenizer.json is meant to be shared
		return fmt.Errorf("writing tokenizer: %w", err)
	}
	return nil
}

// Load reads a pipeline previously written by Save.
func Load(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tokenizer: %w", err)
	}

	var t Tokenizer
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tokenizer: %w", err)
	}
	return &t, nil
}

// componentType extracts the "type" discriminator. ok is false for null.
func componentType(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return "", false, err
	}
	return head.Type, true, nil
}

// marshal encodes v without HTML escaping so pieces like "<unk>" stay literal.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
