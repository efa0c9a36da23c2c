package sentence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "simple sentence", in: "Pt denied pain.", want: []string{"pt", "denied", "pain"}},
		{name: "digits become separators", in: "2nd note: stable.", want: []string{"nd", "note", "stable"}},
		{name: "vitals", in: "BP 120/80, HR 72\nresting", want: []string{"bp", "hr", "resting"}},
		{name: "numbers only", in: "123 456", want: nil},
		{name: "empty", in: "", want: nil},
		{name: "non-ascii letters", in: "Café naïve", want: []string{"caf", "na", "ve"}},
		{name: "hyphenated", in: "follow-up in two-weeks", want: []string{"follow", "up", "in", "two", "weeks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"Pt denied pain.",
		"2nd note: stable.",
		"Lives w/ daughter; SW f/u re: housing\n\nPlan d/c 3/14",
		"  MIXED case\tTabs\r\nand  spaces ",
		"Café",
	}

	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(strings.Join(once, " "))
		assert.Equal(t, once, twice, "input %q", in)
	}
}
