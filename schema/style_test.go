package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStyleValue(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{value: "red", valid: true},
		{value: "#ffffff", valid: true},
		{value: "", valid: true},
		{value: "   ", valid: true},
		{value: "rgb(0, 0, 0)", valid: true},
		{value: "url(https://example.com/a.png) no-repeat", valid: true},
		{value: `"Helvetica Neue", sans-serif`, valid: true},
		{value: "1px solid black", valid: true},
		{value: "red;background:url(javascript:x)", valid: false},
		{value: "red; top: 0", valid: false},
		{value: "top:0", valid: false},
		{value: "red}", valid: false},
		{value: "rgb(0, 0", valid: false},
		{value: "url(https://example.com", valid: false},
		{value: "red)", valid: false},
		{value: `"unterminated`, valid: false},
		{value: "red /* note", valid: false},
		{value: "<!-- red", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidStyleValue(tt.value))
		})
	}
}
