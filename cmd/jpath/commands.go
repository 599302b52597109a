package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacoelho/jpath/internal/config"
	"github.com/jacoelho/jpath/internal/document"
	"github.com/jacoelho/jpath/internal/formatter/stdout"
	"github.com/jacoelho/jpath/internal/jsonpath"
	"github.com/jacoelho/jpath/internal/stream"
)

// errStop ends a query run early once --first has its match.
var errStop = errors.New("stop")

func newRootCommand(stdin io.Reader) *cobra.Command {
	root := &cobra.Command{
		Use:           "jpath",
		Short:         "Evaluate RFC 9535 JSONPath queries",
		Long:          config.Usage(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(queryCommand(stdin))
	root.AddCommand(checkCommand())
	root.AddCommand(functionsCommand())
	return root
}

func queryCommand(stdin io.Reader) *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "query <expr> [files...]",
		Short: "Print the nodes a query selects from each input document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.SetArgs(args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Debug)
			return runQuery(cmd.Context(), cfg, stdin, cmd.OutOrStdout(), logger)
		},
	}

	cfg.RegisterFlags(cmd.Flags())
	return cmd
}

func checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <expr>",
		Short: "Compile a query and report the first error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := jsonpath.Compile(args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

func functionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the filter functions and their signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			funcs := jsonpath.StandardFunctions()
			for _, name := range funcs.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), funcs[name].Signature(name)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// runQuery evaluates the query over every input in order. Document indexes
// continue across inputs so each match keeps a unique document number.
func runQuery(ctx context.Context, cfg *config.Config, stdin io.Reader, w io.Writer, logger *slog.Logger) error {
	q, err := jsonpath.Compile(cfg.Query)
	if err != nil {
		return err
	}
	logger.Debug("compiled query", "query", q.String())

	inputs := cfg.Files
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	var results []stream.Result
	offset := 0
	for _, name := range inputs {
		found, docs, err := queryInput(ctx, cfg, q, name, stdin, logger)
		for _, r := range found {
			r.Document += offset
			results = append(results, r)
		}
		offset += docs

		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(name), err)
		}
	}

	f := stdout.NewWithWriter(w, stdout.Options{
		Output:  cfg.OutputFormat(),
		Compact: cfg.Compact,
		Count:   cfg.Count,
	})
	return f.Format(results...)
}

// queryInput returns the matches found in one input and the number of
// documents it decoded.
func queryInput(ctx context.Context, cfg *config.Config, q *jsonpath.Query, name string, stdin io.Reader, logger *slog.Logger) ([]stream.Result, int, error) {
	in, err := openInput(name, stdin)
	if err != nil {
		return nil, 0, err
	}
	defer in.Close()

	format := cfg.InputFormat(name)
	logger.Debug("reading input", "input", displayName(name), "format", format)

	docs := 0
	counted := iter.Seq2[any, error](func(yield func(any, error) bool) {
		for doc, err := range stream.Documents(ctx, in, format) {
			if err == nil {
				docs++
			}
			if !yield(doc, err) {
				return
			}
		}
	})

	var results []stream.Result
	matches := make(map[int]int)
	for r, err := range stream.Query(ctx, q, counted) {
		if err != nil {
			return results, docs, err
		}
		results = append(results, r)
		matches[r.Document]++

		if cfg.First {
			logger.Debug("stopping after first match", "input", displayName(name), "document", r.Document)
			return results, docs, errStop
		}
	}

	for i := range docs {
		logger.Debug("evaluated document", "input", displayName(name), "document", i, "matches", matches[i])
	}
	return results, docs, nil
}

func openInput(name string, stdin io.Reader) (io.ReadCloser, error) {
	if name == "-" {
		return document.Open(stdin)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	rc, err := document.Open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &inputFile{ReadCloser: rc, file: f}, nil
}

// inputFile closes both the decompressor and the underlying file.
type inputFile struct {
	io.ReadCloser
	file *os.File
}

func (f *inputFile) Close() error {
	return errors.Join(f.ReadCloser.Close(), f.file.Close())
}

func displayName(name string) string {
	if name == "-" {
		return "<stdin>"
	}
	return name
}
