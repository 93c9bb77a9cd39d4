package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	spmconv "github.com/jamesainslie/go-spmconv"
	"github.com/jamesainslie/go-spmconv/pretrained"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	dir := flag.String("dir", "", "Local directory holding the SentencePiece tokenizer")
	repo := flag.String("repo", "", "HuggingFace Hub repository id")
	index := flag.Int("index", allModels, "Model index of a multi-model bundle (-1 converts all)")
	out := flag.String("out", "tokenizer", "Output filename prefix")
	manifestPath := flag.String("manifest", "", "YAML manifest of conversion jobs")
	verbose := flag.Bool("v", false, "Verbose logging")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("spm-convert %s (%s, %s)\n", version, commit, date)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var jobs []job
	if *manifestPath != "" {
		var err error
		jobs, err = loadManifest(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		j := job{Dir: *dir, Repo: *repo, Index: index, Out: *out}
		if err := j.validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Usage: spm-convert (-dir DIR | -repo REPO) [OPTIONS]")
			fmt.Fprintln(os.Stderr, "       spm-convert -manifest FILE")
			flag.PrintDefaults()
			os.Exit(1)
		}
		jobs = []job{j}
	}

	c := &converter{
		logger:  logger,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		resolve: resolveSource,
	}
	failed := false
	for _, j := range jobs {
		if err := c.run(j); err != nil {
			fmt.Fprintf(os.Stderr, "Error converting %s: %v\n", j.source(), err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func resolveSource(j job) (spmconv.Reference, error) {
	if j.Dir != "" {
		return pretrained.FromDir(j.Dir)
	}
	return pretrained.FromHub(j.Repo, pretrained.WithAuthToken(os.Getenv("HF_TOKEN")))
}

type converter struct {
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	resolve func(job) (spmconv.Reference, error)
}

// run converts one job and writes a tokenizer.json per converted model.
func (c *converter) run(j job) error {
	ref, err := c.resolve(j)
	if err != nil {
		return err
	}

	out := j.Out
	if out == "" {
		out = "tokenizer"
	}
	opts := []spmconv.Option{spmconv.WithLogger(c.logger)}

	if len(ref.SpmFiles) == 0 {
		if j.index() > 0 {
			return fmt.Errorf("%w: %d (single-model tokenizer)", spmconv.ErrModelIndex, j.index())
		}
		return c.write(out+".json", func() (convertResult, error) {
			tok, diags, err := spmconv.Convert(ref, opts...)
			return convertResult{tok, diags}, err
		})
	}

	indices := []int{j.index()}
	if j.index() == allModels {
		indices = indices[:0]
		for i := range ref.SpmFiles {
			indices = append(indices, i)
		}
	}

	for _, i := range indices {
		if i >= len(ref.SpmFiles) {
			return fmt.Errorf("%w: %d (bundle has %d)", spmconv.ErrModelIndex, i, len(ref.SpmFiles))
		}
		name := out + "-" + modelName(ref.SpmFiles[i]) + ".json"
		err := c.write(name, func() (convertResult, error) {
			tok, diags, err := spmconv.ConvertMarian(ref, i, opts...)
			return convertResult{tok, diags}, err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// modelName is a model file's base name without extension: "source" for
// "source.spm".
func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
