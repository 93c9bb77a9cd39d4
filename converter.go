package spmconv

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	pb "github.com/jamesainslie/go-spmconv/internal/proto"
	"github.com/jamesainslie/go-spmconv/pipeline"
	"github.com/jamesainslie/go-spmconv/tokenizer"
)

// collapseSpaces matches the runs of spaces SentencePiece squeezes to one.
const collapseSpaces = " {2,}"

// Converter turns a SentencePiece model into a fast tokenizer pipeline.
type Converter struct {
	ref       Reference
	modelFile string
	record    *tokenizer.Model
	vocab     VocabStrategy
	cfg       config
	diags     []Diagnostic
}

// New creates a Converter for a single-model tokenizer. Pieces keep the ids
// they have in the model.
func New(ref Reference, opts ...Option) (*Converter, error) {
	if ref.VocabFile == "" {
		return nil, ErrNoModelFile
	}
	return newConverter(ref, ref.VocabFile, NativeOrder{}, opts)
}

// NewMarian creates a Converter for the index-th model of a multi-model
// bundle. Pieces take their ids from the bundle's vocab.json, which lives in
// the directory of the first model file.
func NewMarian(ref Reference, index int, opts ...Option) (*Converter, error) {
	if len(ref.SpmFiles) == 0 {
		return nil, ErrNoModelFile
	}
	if index < 0 || index >= len(ref.SpmFiles) {
		return nil, fmt.Errorf("%w: %d (bundle has %d)", ErrModelIndex, index, len(ref.SpmFiles))
	}

	canonical, err := LoadCanonicalOrder(filepath.Join(filepath.Dir(ref.SpmFiles[0]), CanonicalVocabFile))
	if err != nil {
		return nil, err
	}

	return newConverter(ref, ref.SpmFiles[index], canonical, opts)
}

// NewWithStrategy creates a Converter for modelFile using a caller-chosen
// vocabulary strategy.
func NewWithStrategy(ref Reference, modelFile string, strategy VocabStrategy, opts ...Option) (*Converter, error) {
	if modelFile == "" {
		return nil, ErrNoModelFile
	}
	return newConverter(ref, modelFile, strategy, opts)
}

func newConverter(ref Reference, modelFile string, strategy VocabStrategy, opts []Option) (*Converter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	record, err := tokenizer.LoadModel(modelFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", modelFile, err)
	}

	c := &Converter{
		ref:       ref,
		modelFile: modelFile,
		record:    record,
		vocab:     strategy,
		cfg:       cfg,
	}
	c.logModel()

	if record.ByteFallback() {
		d := Diagnostic{Kind: DiagByteFallback, Message: byteFallbackMessage}
		c.diags = append(c.diags, d)
		c.log(d)
	}

	return c, nil
}

// Record returns the decoded model.
func (c *Converter) Record() *tokenizer.Model {
	return c.record
}

// ModelFile returns the path the model was decoded from.
func (c *Converter) ModelFile() string {
	return c.modelFile
}

// Diagnostics returns the issues found while constructing the Converter.
// Vocabulary and merge diagnostics are returned by Vocab, Model and Converted.
func (c *Converter) Diagnostics() []Diagnostic {
	return slices.Clone(c.diags)
}

// Vocab returns the scored vocabulary in id order.
func (c *Converter) Vocab(m *tokenizer.Model) ([]pipeline.VocabEntry, []Diagnostic) {
	return c.vocab.Vocab(m)
}

// UnkID returns the model's unknown-piece id.
func (c *Converter) UnkID(m *tokenizer.Model) int {
	return m.UnkID()
}

// Model builds the subword model for m's training algorithm.
func (c *Converter) Model(m *tokenizer.Model) (pipeline.Model, []Diagnostic, error) {
	switch m.ModelType() {
	case pb.TrainerSpec_UNIGRAM:
		vocab, diags := c.Vocab(m)
		return pipeline.NewUnigram(vocab, c.UnkID(m)), diags, nil

	case pb.TrainerSpec_BPE:
		vocab, diags := c.Vocab(m)

		ext, err := tokenizer.NewExtractor(c.modelFile)
		if err != nil {
			return nil, nil, fmt.Errorf("extracting merges: %w", err)
		}
		_, merges := ext.Extract(nil)

		ids := make(map[string]int, len(vocab))
		for i, e := range vocab {
			ids[e.Piece] = i
		}

		// Merges come from the model's own pieces; a re-indexed vocabulary
		// may lack some of them.
		pairs := make([]pipeline.MergePair, 0, len(merges))
		for _, mg := range merges {
			_, okLeft := ids[mg.Left]
			_, okRight := ids[mg.Right]
			if !okLeft || !okRight {
				diags = append(diags, droppedMerge(mg.Left, mg.Right))
				continue
			}
			pairs = append(pairs, pipeline.MergePair{mg.Left, mg.Right})
		}

		return pipeline.NewBPE(pipeline.NewOrderedVocab(ids), pairs, m.UnkPiece(), true), diags, nil

	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrUnsupportedModelType, m.ModelType())
	}
}

// Normalizer applies the model's precompiled charsmap, if any, then collapses
// runs of spaces.
func (c *Converter) Normalizer(m *tokenizer.Model) pipeline.Normalizer {
	collapse := pipeline.NewRegexReplace(collapseSpaces, " ")
	if charsmap := m.PrecompiledCharsmap(); len(charsmap) > 0 {
		return pipeline.NewSequence(pipeline.NewPrecompiled(charsmap), collapse)
	}
	return pipeline.NewSequence(collapse)
}

// PreTokenizer returns the Metaspace pre-tokenizer.
func (c *Converter) PreTokenizer(replacement string, addPrefixSpace bool) pipeline.PreTokenizer {
	return pipeline.NewMetaspace(replacement, PrependSchemeFor(addPrefixSpace, c.ref))
}

// Decoder returns the Metaspace decoder matching PreTokenizer.
func (c *Converter) Decoder(replacement string, addPrefixSpace bool) pipeline.Decoder {
	return pipeline.NewMetaspace(replacement, PrependSchemeFor(addPrefixSpace, c.ref))
}

// PostProcessor returns nil: converted pipelines add no special tokens.
func (c *Converter) PostProcessor(*tokenizer.Model) pipeline.PostProcessor {
	return nil
}

// Converted assembles the full pipeline. The returned diagnostics include
// those found at construction.
func (c *Converter) Converted() (*pipeline.Tokenizer, []Diagnostic, error) {
	model, vocabDiags, err := c.Model(c.record)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range vocabDiags {
		c.log(d)
	}

	tok := pipeline.New(model)
	if n := c.Normalizer(c.record); n != nil {
		tok.Normalizer = n
	}
	if p := c.PreTokenizer(c.cfg.replacement, c.cfg.addPrefixSpace); p != nil {
		tok.PreTokenizer = p
	}
	tok.Decoder = c.Decoder(c.cfg.replacement, c.cfg.addPrefixSpace)
	if pp := c.PostProcessor(c.record); pp != nil {
		tok.PostProcessor = pp
	}

	return tok, append(c.Diagnostics(), vocabDiags...), nil
}

func (c *Converter) logModel() {
	ts, ns := c.record.TrainerSpec, c.record.NormalizerSpec
	c.cfg.logger.Debug("loaded SentencePiece model",
		"model", c.modelFile,
		"type", c.record.ModelType().String(),
		"pieces", len(c.record.Pieces),
		"vocab_size", ts.GetVocabSize(),
		slog.Group("special",
			"unk", specialPiece(ts.GetUnkPiece(), ts.GetUnkId()),
			"bos", specialPiece(ts.GetBosPiece(), ts.GetBosId()),
			"eos", specialPiece(ts.GetEosPiece(), ts.GetEosId()),
			"pad", specialPiece(ts.GetPadPiece(), ts.GetPadId()),
		),
		slog.Group("normalizer",
			"name", ns.GetName(),
			"charsmap_bytes", len(ns.GetPrecompiledCharsmap()),
			"add_dummy_prefix", ns.GetAddDummyPrefix(),
			"remove_extra_whitespaces", ns.GetRemoveExtraWhitespaces(),
			"escape_whitespaces", ns.GetEscapeWhitespaces(),
		),
	)
}

// specialPiece formats a special piece as "piece=id"; disabled ids are -1.
func specialPiece(piece string, id int32) string {
	return fmt.Sprintf("%s=%d", piece, id)
}

func (c *Converter) log(d Diagnostic) {
	switch d.Kind {
	case DiagMissingPiece:
		c.cfg.logger.Debug("ignored missing piece", "piece", d.Piece, "model", c.modelFile)
	case DiagDroppedMerge:
		c.cfg.logger.Debug("dropped merge", "left", d.Merge[0], "right", d.Merge[1], "model", c.modelFile)
	default:
		c.cfg.logger.Warn(d.Message, "kind", d.Kind.String(), "model", c.modelFile)
	}
}

// Convert converts a single-model tokenizer.
func Convert(ref Reference, opts ...Option) (*pipeline.Tokenizer, []Diagnostic, error) {
	c, err := New(ref, opts...)
	if err != nil {
		return nil, nil, err
	}
	return c.Converted()
}

// ConvertMarian converts the index-th model of a multi-model bundle.
func ConvertMarian(ref Reference, index int, opts ...Option) (*pipeline.Tokenizer, []Diagnostic, error) {
	c, err := NewMarian(ref, index, opts...)
	if err != nil {
		return nil, nil, err
	}
	return c.Converted()
}
