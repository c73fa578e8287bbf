package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rgonek/gutencard/fragment"
	"github.com/rgonek/gutencard/richtext"
	"github.com/rgonek/gutencard/schema"
	"github.com/rgonek/gutencard/variants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath   string
	variantsPath string
	preset       string
	verbose      bool
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	log      *zap.Logger
	registry *schema.Registry
	parser   *fragment.Parser
	renderer *fragment.Renderer
	richtext *richtext.Converter
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:           "gutencard",
		Short:         "Parse, render and edit card block fragments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file with fragment and richtext sections")
	cmd.PersistentFlags().StringVar(&opts.variantsPath, "variants", "", "YAML file with additional variant definitions")
	cmd.PersistentFlags().StringVar(&opts.preset, "preset", "", "Preset: faithful|markup|strict")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(
		variantsCmd(a),
		parseCmd(a),
		renderCmd(a),
		editCmd(a),
	)

	return cmd
}

func (a *app) setup(opts *rootOptions) error {
	log, err := newLogger(opts.verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.log = log

	file, err := loadFileConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(opts.preset, file)
	if err != nil {
		return err
	}
	cfg.Logger = log

	a.registry = schema.NewRegistry(log)
	if err := variants.RegisterBuiltins(a.registry); err != nil {
		return fmt.Errorf("failed to register built-in variants: %w", err)
	}
	if opts.variantsPath != "" {
		data, err := os.ReadFile(opts.variantsPath)
		if err != nil {
			return fmt.Errorf("failed to read variants %q: %w", opts.variantsPath, err)
		}
		defs, err := variants.Load(data)
		if err != nil {
			return err
		}
		if err := variants.Register(a.registry, defs); err != nil {
			return err
		}
	}

	if a.parser, err = fragment.NewParser(cfg); err != nil {
		return err
	}
	if a.renderer, err = fragment.NewRenderer(cfg); err != nil {
		return err
	}

	rtCfg := file.Richtext
	rtCfg.Logger = log
	if a.richtext, err = richtext.New(rtCfg); err != nil {
		return fmt.Errorf("invalid richtext config: %w", err)
	}
	return nil
}

func (a *app) variant(name string) (*schema.Variant, error) {
	return a.registry.Lookup(name)
}

// readInput reads a file, or stdin when name is "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", name, err)
	}
	return data, nil
}
