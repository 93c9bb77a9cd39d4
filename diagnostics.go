package spmconv

import "fmt"

// DiagnosticKind classifies a non-fatal fidelity issue found during conversion.
type DiagnosticKind int

const (
	// DiagByteFallback means the model uses byte fallback, which the fast
	// pipeline does not reproduce: it may emit the unknown token where the
	// SentencePiece model would emit byte pieces.
	DiagByteFallback DiagnosticKind = iota + 1

	// DiagMissingPiece means a model piece has no id in the canonical
	// vocabulary and was left out.
	DiagMissingPiece

	// DiagDroppedMerge means a BPE merge had a half outside the converted
	// vocabulary and was left out.
	DiagDroppedMerge
)

// String returns the snake_case name of the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagByteFallback:
		return "byte_fallback"
	case DiagMissingPiece:
		return "missing_piece"
	case DiagDroppedMerge:
		return "dropped_merge"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic reports a conversion fidelity gap.
type Diagnostic struct {
	Kind    DiagnosticKind
	Piece   string    // set for DiagMissingPiece
	Merge   [2]string // set for DiagDroppedMerge
	Message string
}

// String formats the diagnostic as "kind: message".
func (d Diagnostic) String() string {
	return d.Kind.String() + ": " + d.Message
}

const byteFallbackMessage = "the SentencePiece model uses byte fallback, which the fast tokenizer does not implement; " +
	"it can produce unknown tokens where the SentencePiece model would produce byte tokens"

func missingPiece(piece string) Diagnostic {
	return Diagnostic{
		Kind:    DiagMissingPiece,
		Piece:   piece,
		Message: fmt.Sprintf("ignored piece %q missing from canonical vocabulary", piece),
	}
}

func droppedMerge(left, right string) Diagnostic {
	return Diagnostic{
		Kind:    DiagDroppedMerge,
		Merge:   [2]string{left, right},
		Message: fmt.Sprintf("dropped merge %q + %q: piece missing from converted vocabulary", left, right),
	}
}
