package main

import (
	"fmt"

	"github.com/rgonek/gutencard/schema"
	"github.com/spf13/cobra"
)

func renderCmd(a *app) *cobra.Command {
	var block bool

	cmd := &cobra.Command{
		Use:   "render VARIANT FILE",
		Short: "Render a record JSON file as a fragment",
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
			rec, err := schema.UnmarshalRecord(data, v.Schema(), v.Defaults())
			if err != nil {
				return err
			}

			var out string
			if block {
				out, err = a.renderer.RenderBlock(rec, v)
			} else {
				out, err = a.renderer.Render(rec, v.Schema())
			}
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", v.Name(), err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&block, "block", false, "Wrap the fragment in a block comment envelope with its attributes")

	return cmd
}
