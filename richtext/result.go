package richtext

import "github.com/rgonek/gutencard/schema"

// Result holds the runs read from Markdown.
type Result struct {
	Runs     schema.Runs `json:"runs"`
	Warnings []Warning   `json:"warnings,omitempty"`
}

// WarningType categorizes conversion warnings.
type WarningType string

const (
	WarningFlattenedBlock WarningType = "flattened_block"
	WarningDroppedFeature WarningType = "dropped_feature"
	WarningUnknownHTML    WarningType = "unknown_html"
)

// Warning represents a non-fatal issue encountered during conversion.
type Warning struct {
	Type     WarningType `json:"type"`
	NodeType string      `json:"nodeType,omitempty"`
	Message  string      `json:"message"`
}
