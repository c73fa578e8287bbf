package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rgonek/gutencard/schema"
	"github.com/spf13/cobra"
)

func variantsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "variants [NAME]",
		Short: "List registered variants or show the fields of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if len(args) == 0 {
				_, _ = fmt.Fprintln(w, "NAME\tTITLE\tFIELDS")
				for _, name := range a.registry.Names() {
					v, err := a.variant(name)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", v.Name(), v.Title(), v.Schema().Len())
				}
				return w.Flush()
			}

			v, err := a.variant(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(w, "%s (root %s)\n", v.Title(), v.Schema().Root())
			_, _ = fmt.Fprintln(w, "ID\tKIND\tLOCATION\tOPTIONS")
			for _, field := range v.Schema().Fields() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", field.ID, field.Kind, describeLocation(field), strings.Join(field.Options, ","))
			}
			return w.Flush()
		},
	}
}

func describeLocation(field schema.FieldSpec) string {
	if field.Kind.InMetadata() && field.StyleProperty == "" {
		return "(metadata)"
	}
	location := field.Location.Selector
	if location == "" {
		location = "(root)"
	}
	if field.Location.Attribute != "" {
		location += "@" + field.Location.Attribute
	}
	if field.StyleProperty != "" {
		location += " {" + field.StyleProperty + "}"
	}
	return location
}
