// Package spmconv converts SentencePiece tokenizers into fast tokenizer
// pipeline descriptions (HuggingFace tokenizer.json).
//
// # Quick Start
//
//	tok, diags, err := spmconv.Convert(spmconv.Reference{VocabFile: "spiece.model"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, d := range diags {
//	    log.Println(d)
//	}
//	if err := tok.Save("tokenizer.json"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Multi-model bundles
//
// Marian-style bundles ship one SentencePiece model per direction
// (source.spm, target.spm) and a shared vocab.json. ConvertMarian converts
// one of them, placing every piece at its vocab.json id:
//
//	ref := spmconv.Reference{SpmFiles: []string{"source.spm", "target.spm"}}
//	src, _, err := spmconv.ConvertMarian(ref, 0)
//
// # Fidelity
//
// Conversion never fails on data-quality issues. Byte fallback and pieces
// missing from vocab.json are returned as Diagnostics and logged through the
// configured slog.Logger (see WithLogger).
package spmconv
