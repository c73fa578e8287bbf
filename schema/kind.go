package schema

// Kind identifies the value type of a field and the rule used to extract it
// from a fragment.
type Kind string

const (
	KindPlainText   Kind = "plain_text"
	KindRichRun     Kind = "rich_run"
	KindAttribute   Kind = "attribute"
	KindStyleObject Kind = "style_object"
	KindNumber      Kind = "number"
	KindEnum        Kind = "enum"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPlainText, KindRichRun, KindAttribute, KindStyleObject, KindNumber, KindEnum:
		return true
	default:
		return false
	}
}

// RequiresDefault reports whether a field of this kind must declare a default.
func (k Kind) RequiresDefault() bool {
	return k == KindStyleObject || k == KindEnum
}

// InMetadata reports whether values of this kind live in the companion
// metadata store rather than in the fragment body.
func (k Kind) InMetadata() bool {
	return k == KindNumber || k == KindEnum
}

// IsContent reports whether the kind fills an element's children.
func (k Kind) IsContent() bool {
	return k == KindPlainText || k == KindRichRun
}

// zeroValue returns the value a field of this kind holds when nothing else
// is known about it.
func (k Kind) zeroValue() Value {
	switch k {
	case KindRichRun:
		return Runs(nil)
	case KindStyleObject:
		return Style{}
	case KindNumber:
		return Number(0)
	case KindEnum:
		return Enum("")
	default:
		return Text("")
	}
}

// Accepts reports whether v is a valid value for a field of kind k.
func (k Kind) Accepts(v Value) bool {
	switch v.(type) {
	case Text:
		return k == KindPlainText || k == KindAttribute
	case Runs:
		return k == KindRichRun
	case Style:
		return k == KindStyleObject
	case Number:
		return k == KindNumber
	case Enum:
		return k == KindEnum
	default:
		return false
	}
}
