package spmconv

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrNoModelFile indicates the reference tokenizer names no SentencePiece model.
	ErrNoModelFile = errors.New("spmconv: no SentencePiece model file")

	// ErrModelIndex indicates a model file index outside the bundle.
	ErrModelIndex = errors.New("spmconv: model file index out of range")

	// ErrUnsupportedModelType indicates the model was trained with an
	// algorithm other than Unigram or BPE.
	ErrUnsupportedModelType = errors.New("spmconv: unsupported model type")

	// ErrEmptyCanonicalVocab indicates vocab.json holds no entries.
	ErrEmptyCanonicalVocab = errors.New("spmconv: canonical vocabulary is empty")

	// ErrInvalidCanonicalVocab indicates vocab.json holds a negative id.
	ErrInvalidCanonicalVocab = errors.New("spmconv: invalid canonical vocabulary")
)
