package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rgonek/gutencard/fragment"
	"github.com/rgonek/gutencard/richtext"
	"gopkg.in/yaml.v3"
)

const (
	presetFaithful = "faithful"
	presetMarkup   = "markup"
	presetStrict   = "strict"
)

// fileConfig is the shape of the --config file.
type fileConfig struct {
	Preset   string          `yaml:"preset"`
	Fragment fragment.Config `yaml:"fragment"`
	Richtext richtext.Config `yaml:"richtext"`
}

func presetConfig(preset string) (fragment.Config, error) {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "", presetFaithful:
		return fragment.Config{}, nil
	case presetMarkup:
		return fragment.Config{
			StyleSource: fragment.StyleFromMarkup,
		}, nil
	case presetStrict:
		return fragment.Config{
			StyleSource:   fragment.StyleFromMarkup,
			UnknownInline: fragment.InlineSkip,
		}, nil
	default:
		return fragment.Config{}, fmt.Errorf("unknown preset %q (allowed: faithful, markup, strict)", preset)
	}
}

// resolveConfig applies the values set in file on top of the preset. A
// preset given on the command line wins over the one named in the file.
func resolveConfig(preset string, file fileConfig) (fragment.Config, error) {
	if preset == "" {
		preset = file.Preset
	}
	cfg, err := presetConfig(preset)
	if err != nil {
		return fragment.Config{}, err
	}

	if file.Fragment.StyleSource != "" {
		cfg.StyleSource = file.Fragment.StyleSource
	}
	if file.Fragment.UnknownInline != "" {
		cfg.UnknownInline = file.Fragment.UnknownInline
	}
	if file.Fragment.BlockNamespace != "" {
		cfg.BlockNamespace = file.Fragment.BlockNamespace
	}

	return cfg, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return cfg, nil
}
