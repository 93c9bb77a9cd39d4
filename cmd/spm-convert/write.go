package main

import (
	"fmt"

	spmconv "github.com/jamesainslie/go-spmconv"
	"github.com/jamesainslie/go-spmconv/pipeline"
)

type convertResult struct {
	tok   *pipeline.Tokenizer
	diags []spmconv.Diagnostic
}

// write runs convert and saves its pipeline to path, reporting diagnostics.
func (c *converter) write(path string, convert func() (convertResult, error)) error {
	res, err := convert()
	if err != nil {
		return err
	}

	missing, dropped := 0, 0
	for _, d := range res.diags {
		switch d.Kind {
		case spmconv.DiagMissingPiece:
			missing++
		case spmconv.DiagDroppedMerge:
			dropped++
		default:
			fmt.Fprintf(c.stderr, "%s: %s\n", path, d)
		}
	}
	if missing > 0 {
		fmt.Fprintf(c.stderr, "%s: %d pieces missing from %s were ignored\n", path, missing, spmconv.CanonicalVocabFile)
	}
	if dropped > 0 {
		fmt.Fprintf(c.stderr, "%s: %d merges over ignored pieces were dropped\n", path, dropped)
	}

	if err := res.tok.Save(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	fmt.Fprintf(c.stdout, "Wrote %s\n", path)
	return nil
}
