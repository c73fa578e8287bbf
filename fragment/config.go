package fragment

import (
	"fmt"

	"go.uber.org/zap"
)

// StyleSource controls where style_object fields get their value at parse
// time.
type StyleSource string

const (
	// StyleFromDefaults seeds style fields from the field default and ignores
	// inline styles in the markup.
	StyleFromDefaults StyleSource = "defaults"
	// StyleFromMarkup overlays the inline style found at the field location
	// on the default.
	StyleFromMarkup StyleSource = "markup"
)

// InlinePolicy controls how unrecognized inline elements inside rich text
// are handled at parse time.
type InlinePolicy string

const (
	// InlineText keeps the text of unknown inline elements, unmarked.
	InlineText InlinePolicy = "text"
	// InlineSkip drops unknown inline elements and their text.
	InlineSkip InlinePolicy = "skip"
)

// Config holds parser and renderer options.
type Config struct {
	StyleSource   StyleSource  `json:"styleSource,omitempty" yaml:"styleSource,omitempty"`
	UnknownInline InlinePolicy `json:"unknownInline,omitempty" yaml:"unknownInline,omitempty"`
	// BlockNamespace is the comment prefix of the block envelope ("wp").
	BlockNamespace string      `json:"blockNamespace,omitempty" yaml:"blockNamespace,omitempty"`
	Logger         *zap.Logger `json:"-" yaml:"-"`
}

func (c Config) applyDefaults() Config {
	if c.StyleSource == "" {
		c.StyleSource = StyleFromDefaults
	}
	if c.UnknownInline == "" {
		c.UnknownInline = InlineText
	}
	if c.BlockNamespace == "" {
		c.BlockNamespace = DefaultBlockNamespace
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.StyleSource != StyleFromDefaults && c.StyleSource != StyleFromMarkup {
		return fmt.Errorf("invalid styleSource %q", c.StyleSource)
	}
	if c.UnknownInline != InlineText && c.UnknownInline != InlineSkip {
		return fmt.Errorf("invalid unknownInline %q", c.UnknownInline)
	}
	if !blockNamespacePattern.MatchString(c.BlockNamespace) {
		return fmt.Errorf("invalid blockNamespace %q", c.BlockNamespace)
	}
	return nil
}
