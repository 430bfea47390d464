package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want float64
	}{
		{name: "plain number", cell: "1234.5", want: 1234.5},
		{name: "currency symbol", cell: "$1,234.50", want: 1234.5},
		{name: "thousands separators", cell: "1,234,567", want: 1234567},
		{name: "parenthesized negative", cell: "(1,200.50)", want: -1200.5},
		{name: "blank", cell: "", want: 0},
		{name: "whitespace", cell: "   ", want: 0},
		{name: "dash placeholder", cell: "-", want: 0},
		{name: "em dash placeholder", cell: "—", want: 0},
		{name: "garbage", cell: "n/a", want: 0},
		{name: "explicit negative", cell: "-42", want: -42},
		{name: "padded", cell: " $500 ", want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseAmount(tt.cell), 1e-9)
		})
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Month
		ok    bool
	}{
		{name: "bare abbreviation", label: "Jan", want: Jan, ok: true},
		{name: "year suffix", label: "Jan 23", want: Jan, ok: true},
		{name: "upper with dash year", label: "JAN-2023", want: Jan, ok: true},
		{name: "full name", label: "January", want: Jan, ok: true},
		{name: "lower case", label: "december", want: Dec, ok: true},
		{name: "padded", label: "  Sep 24 ", want: Sep, ok: true},
		{name: "quarter label", label: "Q1", ok: false},
		{name: "total column", label: "TOTAL", ok: false},
		{name: "empty", label: "", ok: false},
		{name: "two letters", label: "Ja", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseMonth(tt.label)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMonthOrdering(t *testing.T) {
	months := Months()
	assert.Len(t, months, 12)
	assert.Equal(t, Jan, months[0])
	assert.Equal(t, Dec, months[11])
	assert.True(t, Feb < Mar, "calendar order is the numeric order")
	assert.Equal(t, "Oct", Oct.String())
}
