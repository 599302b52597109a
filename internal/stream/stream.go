// Package stream evaluates a compiled query lazily over a sequence of
// decoded documents.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/jacoelho/jpath/internal/document"
	"github.com/jacoelho/jpath/internal/jsonpath"
)

// Result is a single match.
type Result struct {
	Document int    // zero-based position of the document in the input
	Path     string // normalized path of the node within its document
	Value    any
}

// Documents decodes r lazily, yielding one value per document. Iteration
// stops after the first decoding error or once ctx is cancelled.
func Documents(ctx context.Context, r io.Reader, format document.Format) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec, err := document.NewDecoder(r, format)
		if err != nil {
			yield(nil, err)
			return
		}

		for n := 0; ; n++ {
			if ctx.Err() != nil {
				yield(nil, ctx.Err())
				return
			}

			doc, err := dec.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("document %d: %w", n, err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Query resolves q against each document of docs and yields the matches in
// document order. Errors from docs are passed through and end the iteration.
func Query(ctx context.Context, q *jsonpath.Query, docs iter.Seq2[any, error]) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		n := 0
		for doc, err := range docs {
			if err != nil {
				yield(Result{}, err)
				return
			}

			nodes, err := q.Resolve(doc)
			if err != nil {
				yield(Result{}, err)
				return
			}

			for _, node := range nodes {
				if ctx.Err() != nil {
					yield(Result{}, ctx.Err())
					return
				}
				if !yield(Result{Document: n, Path: node.Path(), Value: node.Value}, nil) {
					return
				}
			}
			n++
		}
	}
}
