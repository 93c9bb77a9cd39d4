package spmconv

import "github.com/jamesainslie/go-spmconv/pipeline"

// Reference describes the slow tokenizer being converted.
type Reference struct {
	// VocabFile is the SentencePiece model of a single-model tokenizer.
	VocabFile string

	// SpmFiles are the SentencePiece models of a multi-model bundle, one per
	// direction. The canonical vocab.json sits next to SpmFiles[0].
	SpmFiles []string

	// Legacy mirrors the tokenizer's "legacy" flag; nil when it has none.
	Legacy *bool
}

// PrependSchemeFor derives where the boundary marker is inserted.
func PrependSchemeFor(addPrefixSpace bool, ref Reference) pipeline.PrependScheme {
	if !addPrefixSpace {
		return pipeline.PrependNever
	}
	if ref.Legacy != nil && !*ref.Legacy {
		return pipeline.PrependFirst
	}
	return pipeline.PrependAlways
}
