package fragment

import "github.com/rgonek/gutencard/schema"

// Result holds the output of a parse.
type Result struct {
	Record   schema.Record `json:"record"`
	Warnings []Warning     `json:"warnings,omitempty"`
}

// WarningType categorizes parse warnings.
type WarningType string

const (
	WarningUnparsableMarkup WarningType = "unparsable_markup"
	WarningMalformedBlock   WarningType = "malformed_block"
	WarningVariantMismatch  WarningType = "variant_mismatch"
	WarningMissingRoot      WarningType = "missing_root"
	WarningMissingElement   WarningType = "missing_element"
	WarningInvalidNumber    WarningType = "invalid_number"
	WarningInvalidEnum      WarningType = "invalid_enum"
	WarningUnknownInline    WarningType = "unknown_inline"
	WarningUnknownStyleKey  WarningType = "unknown_style_key"
)

// Warning is a value that could not be read from the fragment and was
// replaced by its default. Warnings never stop a parse.
type Warning struct {
	Type    WarningType `json:"type"`
	Field   string      `json:"field,omitempty"`
	Message string      `json:"message"`
}
