package schema

import "errors"

var (
	// ErrInvalidSchema indicates a programmer error in a variant definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrDuplicateVariant indicates a variant name was registered twice.
	ErrDuplicateVariant = errors.New("duplicate variant")
	// ErrUnknownVariant indicates a lookup for a name that was never registered.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrInvalidEnumValue indicates a value outside a field's allowed set.
	ErrInvalidEnumValue = errors.New("invalid enum value")
	// ErrUnknownField indicates an identifier the schema does not declare.
	ErrUnknownField = errors.New("unknown field")
)
