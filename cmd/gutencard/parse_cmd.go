package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rgonek/gutencard/fragment"
	"github.com/rgonek/gutencard/schema"
	"github.com/spf13/cobra"
)

type parseOptions struct {
	block  bool
	strict bool
}

func parseCmd(a *app) *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse VARIANT FILE",
		Short: "Read a stored fragment into a record and print it as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.variant(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			var result fragment.Result
			if opts.block {
				result = a.parser.ParseDocument(string(data), v)
			} else {
				result = a.parser.ParseVariant(string(data), nil, v)
			}

			printWarnings(cmd.ErrOrStderr(), result.Warnings)
			if opts.strict && len(result.Warnings) > 0 {
				return fmt.Errorf("parse reported %d warning(s)", len(result.Warnings))
			}

			return writeRecord(cmd.OutOrStdout(), result.Record, v.Schema())
		},
	}

	cmd.Flags().BoolVar(&opts.block, "block", false, "Input is a block document with a comment envelope")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when any value had to fall back to its default")

	return cmd
}

func printWarnings(w io.Writer, warnings []fragment.Warning) {
	for _, warning := range warnings {
		if warning.Field != "" {
			_, _ = fmt.Fprintf(w, "warning: %s %s: %s\n", warning.Type, warning.Field, warning.Message)
			continue
		}
		_, _ = fmt.Fprintf(w, "warning: %s: %s\n", warning.Type, warning.Message)
	}
}

func writeRecord(w io.Writer, rec schema.Record, s *schema.Schema) error {
	data, err := schema.MarshalRecord(rec, s)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("failed to format record JSON: %w", err)
	}
	pretty.WriteByte('\n')
	_, err = w.Write(pretty.Bytes())
	return err
}
