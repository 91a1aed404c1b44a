package utils

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Nil", nil, 0},
		{"Int", 7, 7},
		{"Float", 2025.0, 2025},
		{"JSONNumber", json.Number("12"), 12},
		{"JSONNumberFraction", json.Number("12.9"), 12},
		{"String", " 3 ", 3},
		{"Garbage", "abc", 0},
		{"Bool", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "42", ToString(json.Number("42")))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "true", ToString(true))
	assert.Equal(t, `{"a":1}`, ToString(map[string]any{"a": 1}))
	assert.Equal(t, "x", ToTrimmedString("  x\n"))
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"Nil", nil, "0"},
		{"JSONNumber", json.Number("50000.50"), "50000.5"},
		{"Float", 0.1, "0.1"},
		{"Int", 100, "100"},
		{"String", " 19.99 ", "19.99"},
		{"Empty", "", "0"},
		{"Invalid", "n/a", "0"},
		{"Decimal", decimal.RequireFromString("3.25"), "3.25"},
		{"Bool", false, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToDecimal(tt.in).String())
		})
	}
}
