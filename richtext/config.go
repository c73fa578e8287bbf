package richtext

import (
	"fmt"

	"go.uber.org/zap"
)

// HTMLMarkStyle controls how marks without a Markdown delimiter (underline,
// subscript, superscript) are written.
type HTMLMarkStyle string

const (
	// HTMLMarkTags writes the mark as inline HTML, e.g. <u>text</u>.
	HTMLMarkTags HTMLMarkStyle = "html"
	// HTMLMarkIgnore writes the text without the mark.
	HTMLMarkIgnore HTMLMarkStyle = "ignore"
)

// Config holds Markdown conversion options.
type Config struct {
	UnderlineStyle HTMLMarkStyle `json:"underlineStyle,omitempty" yaml:"underlineStyle,omitempty"`
	SubSupStyle    HTMLMarkStyle `json:"subSupStyle,omitempty" yaml:"subSupStyle,omitempty"`
	// BlockBreaks is the number of hard breaks (1 or 2) placed between
	// paragraphs read from Markdown.
	BlockBreaks int         `json:"blockBreaks,omitempty" yaml:"blockBreaks,omitempty"`
	Logger      *zap.Logger `json:"-" yaml:"-"`
}

func (c Config) applyDefaults() Config {
	if c.UnderlineStyle == "" {
		c.UnderlineStyle = HTMLMarkTags
	}
	if c.SubSupStyle == "" {
		c.SubSupStyle = HTMLMarkTags
	}
	if c.BlockBreaks == 0 {
		c.BlockBreaks = 1
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.UnderlineStyle != HTMLMarkTags && c.UnderlineStyle != HTMLMarkIgnore {
		return fmt.Errorf("invalid underlineStyle %q", c.UnderlineStyle)
	}
	if c.SubSupStyle != HTMLMarkTags && c.SubSupStyle != HTMLMarkIgnore {
		return fmt.Errorf("invalid subSupStyle %q", c.SubSupStyle)
	}
	if c.BlockBreaks < 1 || c.BlockBreaks > 2 {
		return fmt.Errorf("blockBreaks must be 1 or 2, got %d", c.BlockBreaks)
	}
	return nil
}
