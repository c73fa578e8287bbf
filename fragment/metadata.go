package fragment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rgonek/gutencard/schema"
)

// Metadata is the companion attribute store of a block instance. It holds
// the values of number and enum fields, keyed by field id, as decoded from
// JSON.
type Metadata map[string]any

// Attributes collects the number and enum values of rec into the companion
// metadata store.
func Attributes(rec schema.Record, s *schema.Schema) Metadata {
	meta := make(Metadata)
	for _, field := range s.Fields() {
		switch field.Kind {
		case schema.KindNumber:
			if value, ok := rec[field.ID].(schema.Number); ok {
				meta[field.ID] = int64(value)
			}
		case schema.KindEnum:
			if value, ok := rec[field.ID].(schema.Enum); ok {
				meta[field.ID] = string(value)
			}
		}
	}
	return meta
}

// metadataNumber converts a decoded JSON value to an integer.
func metadataNumber(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
