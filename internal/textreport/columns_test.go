package textreport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitColumns(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"delimiter bounded", "|a|b|c|", []string{"a", "b", "c"}},
		{"padded cells", "| a  |  b | c |", []string{"a", "b", "c"}},
		{"internal empties kept", "|a||c|", []string{"a", "", "c"}},
		{"leading indentation", "   |a|b|  ", []string{"a", "b"}},
		{"not bounded on the right", "|a|b", []string{"", "a", "b"}},
		{"not bounded at all", "a|b", []string{"a", "b"}},
		{"only delimiters", "||", []string{""}},
		{"blank", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitColumns(tt.line))
		})
	}
}

func TestSplitCompact(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, SplitCompact("|a|  |c|"))
	assert.Equal(t, []string{"a", "b", "c"}, SplitCompact("|a|b|c|"))
	assert.Empty(t, SplitCompact("| | |"))
}
