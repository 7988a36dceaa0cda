package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "procurement/pkg/domain"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "nil", input: nil, want: nil},
		{name: "only blanks", input: []string{"", "  "}, want: []string{}},
		{name: "trims and keeps order", input: []string{" ST2B ", "ST1A", "ST2B"}, want: []string{"ST2B", "ST1A"}},
		{name: "case sensitive", input: []string{"st1a", "ST1A"}, want: []string{"st1a", "ST1A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimPrincipals(t *testing.T) {
	got := DedupeAndTrim([]id.Principal{"ST1A", " ST1A", "ST9Z"})
	assert.Equal(t, []id.Principal{"ST1A", "ST9Z"}, got)
}
