// Package pretrained resolves the files of a SentencePiece-based tokenizer,
// from a local directory or a HuggingFace Hub repository, into an
// spmconv.Reference.
package pretrained

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gomlx/go-huggingface/hub"

	spmconv "github.com/jamesainslie/go-spmconv"
)

// ErrNoTokenizerFiles is returned when no SentencePiece model is found.
var ErrNoTokenizerFiles = errors.New("pretrained: no SentencePiece model files found")

const configFile = "tokenizer_config.json"

// modelFiles are the names single-model tokenizers store their model under,
// in lookup order.
var modelFiles = []string{
	"spiece.model",
	"sentencepiece.bpe.model",
	"tokenizer.model",
	"sentencepiece.model",
}

// marianFiles make up a multi-model bundle. The canonical vocabulary must be
// fetched alongside the first model.
var marianFiles = []string{"source.spm", "target.spm"}

// fileSource is a place tokenizer files can be fetched from.
type fileSource interface {
	HasFile(name string) bool
	// DownloadFile returns a local path for name.
	DownloadFile(name string) (string, error)
}

type dirSource string

func (d dirSource) HasFile(name string) bool {
	info, err := os.Stat(filepath.Join(string(d), name))
	return err == nil && !info.IsDir()
}

func (d dirSource) DownloadFile(name string) (string, error) {
	return filepath.Join(string(d), name), nil
}

// FromDir resolves the tokenizer stored in dir.
func FromDir(dir string) (spmconv.Reference, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return spmconv.Reference{}, fmt.Errorf("opening %s: %w", dir, err)
	}
	if !info.IsDir() {
		return spmconv.Reference{}, fmt.Errorf("%s is not a directory", dir)
	}
	return resolve(dirSource(dir))
}

// HubOption configures FromHub.
type HubOption func(*hubConfig)

type hubConfig struct {
	authToken string
	cacheDir  string
}

// WithAuthToken authenticates Hub requests, for gated or private repos.
func WithAuthToken(token string) HubOption {
	return func(c *hubConfig) {
		c.authToken = token
	}
}

// WithCacheDir sets where downloaded files are cached.
func WithCacheDir(dir string) HubOption {
	return func(c *hubConfig) {
		c.cacheDir = dir
	}
}

// FromHub downloads and resolves the tokenizer of a HuggingFace Hub repo,
// e.g. "Helsinki-NLP/opus-mt-en-de".
func FromHub(repoID string, opts ...HubOption) (spmconv.Reference, error) {
	var cfg hubConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := hub.New(repoID)
	if cfg.authToken != "" {
		repo = repo.WithAuth(cfg.authToken)
	}
	if cfg.cacheDir != "" {
		repo = repo.WithCacheDir(cfg.cacheDir)
	}

	if err := repo.DownloadInfo(false); err != nil {
		return spmconv.Reference{}, fmt.Errorf("fetching %s info: %w", repoID, err)
	}
	return resolve(repo)
}

func resolve(src fileSource) (spmconv.Reference, error) {
	var ref spmconv.Reference

	if hasAll(src, marianFiles...) && src.HasFile(spmconv.CanonicalVocabFile) {
		for _, name := range marianFiles {
			path, err := src.DownloadFile(name)
			if err != nil {
				return spmconv.Reference{}, fmt.Errorf("downloading %s: %w", name, err)
			}
			ref.SpmFiles = append(ref.SpmFiles, path)
		}
		if _, err := src.DownloadFile(spmconv.CanonicalVocabFile); err != nil {
			return spmconv.Reference{}, fmt.Errorf("downloading %s: %w", spmconv.CanonicalVocabFile, err)
		}
	} else {
		for _, name := range modelFiles {
			if !src.HasFile(name) {
				continue
			}
			path, err := src.DownloadFile(name)
			if err != nil {
				return spmconv.Reference{}, fmt.Errorf("downloading %s: %w", name, err)
			}
			ref.VocabFile = path
			break
		}
	}

	if ref.VocabFile == "" && len(ref.SpmFiles) == 0 {
		return spmconv.Reference{}, ErrNoTokenizerFiles
	}

	legacy, err := readLegacy(src)
	if err != nil {
		return spmconv.Reference{}, err
	}
	ref.Legacy = legacy

	return ref, nil
}

func hasAll(src fileSource, names ...string) bool {
	for _, name := range names {
		if !src.HasFile(name) {
			return false
		}
	}
	return true
}

// tokenizerConfig is the subset of tokenizer_config.json the conversion reads.
type tokenizerConfig struct {
	Legacy *bool `json:"legacy"`
}

// readLegacy returns the config's legacy flag, or nil when the config or the
// flag is absent.
func readLegacy(src fileSource) (*bool, error) {
	if !src.HasFile(configFile) {
		return nil, nil //nolint:nilnil // absent flag
	}

	path, err := src.DownloadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", configFile, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", configFile, err)
	}

	var cfg tokenizerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configFile, err)
	}
	return cfg.Legacy, nil
}
