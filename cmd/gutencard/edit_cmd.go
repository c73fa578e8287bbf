package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rgonek/gutencard/richtext"
	"github.com/rgonek/gutencard/schema"
	"github.com/rgonek/gutencard/session"
	"github.com/spf13/cobra"
)

type editOptions struct {
	clear    []string
	set      []string
	style    []string
	layout   []string
	markdown []string
	media    []string
	library  string
	strict   bool
	record   bool
}

func editCmd(a *app) *cobra.Command {
	opts := &editOptions{}

	cmd := &cobra.Command{
		Use:   "edit VARIANT [FILE]",
		Short: "Apply field updates to a block document and print the result",
		Long: "Edit reads a block document (or starts from the variant defaults when no file is given),\n" +
			"applies the updates in the order clear, set, style, layout, markdown, media and prints the re-rendered block.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.variant(args[0])
			if err != nil {
				return err
			}

			sessionOpts := []session.Option{session.WithLogger(a.log)}
			if opts.library != "" {
				library, err := loadMediaLibrary(opts.library)
				if err != nil {
					return err
				}
				mode := session.ResolutionBestEffort
				if opts.strict {
					mode = session.ResolutionStrict
				}
				sessionOpts = append(sessionOpts, session.WithMediaResolver(libraryResolver(library), mode))
			}

			var s *session.Session
			if len(args) == 2 {
				data, err := readInput(cmd, args[1])
				if err != nil {
					return err
				}
				result := a.parser.ParseDocument(string(data), v)
				printWarnings(cmd.ErrOrStderr(), result.Warnings)
				s = session.Open(v, result.Record, sessionOpts...)
			} else {
				s = session.New(v, sessionOpts...)
			}

			if err := a.applyEdits(cmd.Context(), cmd.ErrOrStderr(), s, opts); err != nil {
				return err
			}
			rec := s.Finish()

			if opts.record {
				return writeRecord(cmd.OutOrStdout(), rec, v.Schema())
			}
			out, err := a.renderer.RenderBlock(rec, v)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", v.Name(), err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&opts.clear, "clear", nil, "Reset a field to its default (repeatable)")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "Set a field: id=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.style, "style", nil, "Set one style key: id.key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.layout, "layout", nil, "Set a layout field: id=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.markdown, "markdown", nil, "Set a rich text field from Markdown: id=text (repeatable)")
	cmd.Flags().StringArrayVar(&opts.media, "media", nil, "Select an image: idField=ID[,URL[,ALT]] (repeatable)")
	cmd.Flags().StringVar(&opts.library, "media-library", "", "YAML map of media id to url and alt, used to resolve --media ids")
	cmd.Flags().BoolVar(&opts.strict, "strict-media", false, "Fail when a --media id is not in the media library")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Print the final record as JSON instead of the block")

	return cmd
}

func (a *app) applyEdits(ctx context.Context, stderr io.Writer, s *session.Session, opts *editOptions) error {
	sch := s.Variant().Schema()

	for _, id := range opts.clear {
		if _, err := lookupField(sch, id); err != nil {
			return err
		}
		s.ClearField(id)
	}

	for _, assignment := range opts.set {
		id, raw, err := splitAssignment(assignment)
		if err != nil {
			return err
		}
		field, err := lookupField(sch, id)
		if err != nil {
			return err
		}
		if field.Kind == schema.KindEnum {
			if err := s.SetLayout(id, raw); err != nil {
				return err
			}
			continue
		}
		value, err := schema.ParseValue(field, raw)
		if err != nil {
			return fmt.Errorf("--set %s: %w", id, err)
		}
		s.SetField(id, value)
	}

	for _, assignment := range opts.style {
		target, value, err := splitAssignment(assignment)
		if err != nil {
			return err
		}
		id, key, ok := strings.Cut(target, ".")
		if !ok || key == "" {
			return fmt.Errorf("invalid style update %q: expected id.key=value", assignment)
		}
		field, err := lookupField(sch, id)
		if err != nil {
			return err
		}
		if field.Kind != schema.KindStyleObject {
			return fmt.Errorf("field %q is %s, not %s", id, field.Kind, schema.KindStyleObject)
		}
		s.SetStyle(id, key, value)
	}

	for _, assignment := range opts.layout {
		id, value, err := splitAssignment(assignment)
		if err != nil {
			return err
		}
		if err := s.SetLayout(id, value); err != nil {
			return err
		}
	}

	for _, assignment := range opts.markdown {
		id, md, err := splitAssignment(assignment)
		if err != nil {
			return err
		}
		field, err := lookupField(sch, id)
		if err != nil {
			return err
		}
		if field.Kind != schema.KindRichRun {
			return fmt.Errorf("field %q is %s, not %s", id, field.Kind, schema.KindRichRun)
		}
		result := a.richtext.FromMarkdown(md)
		printRichtextWarnings(stderr, id, result.Warnings)
		s.SetRuns(id, result.Runs)
	}

	for _, assignment := range opts.media {
		id, raw, err := splitAssignment(assignment)
		if err != nil {
			return err
		}
		slot, err := mediaSlotFor(sch, id)
		if err != nil {
			return err
		}
		media, err := parseMedia(raw)
		if err != nil {
			return err
		}
		if err := s.SelectMedia(ctx, slot, media); err != nil {
			return err
		}
	}

	return nil
}

func lookupField(sch *schema.Schema, id string) (schema.FieldSpec, error) {
	field, ok := sch.Field(id)
	if !ok {
		return schema.FieldSpec{}, fmt.Errorf("%w %q", schema.ErrUnknownField, id)
	}
	return field, nil
}

func splitAssignment(assignment string) (string, string, error) {
	key, value, ok := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid update %q: expected key=value", assignment)
	}
	return key, value, nil
}

func printRichtextWarnings(w io.Writer, id string, warnings []richtext.Warning) {
	for _, warning := range warnings {
		_, _ = fmt.Fprintf(w, "warning: %s %s (%s): %s\n", warning.Type, id, warning.NodeType, warning.Message)
	}
}
