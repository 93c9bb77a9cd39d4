package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// allModels selects every model of a multi-model bundle.
const allModels = -1

// job is one conversion: a tokenizer source and where to write the result.
type job struct {
	Dir   string `yaml:"dir"`
	Repo  string `yaml:"repo"`
	Index *int   `yaml:"index"`
	Out   string `yaml:"out"`
}

type manifest struct {
	Jobs []job `yaml:"jobs"`
}

var errNoSource = errors.New("job needs exactly one of dir or repo")

func (j job) validate() error {
	if (j.Dir == "") == (j.Repo == "") {
		return errNoSource
	}
	if j.Index != nil && *j.Index < allModels {
		return fmt.Errorf("invalid index %d", *j.Index)
	}
	return nil
}

func (j job) index() int {
	if j.Index == nil {
		return allModels
	}
	return *j.Index
}

func (j job) source() string {
	if j.Dir != "" {
		return j.Dir
	}
	return j.Repo
}

// loadManifest reads a YAML list of jobs.
func loadManifest(path string) ([]job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("manifest %s has no jobs", path)
	}

	for i, j := range m.Jobs {
		if err := j.validate(); err != nil {
			return nil, fmt.Errorf("manifest job %d: %w", i, err)
		}
	}
	return m.Jobs, nil
}
