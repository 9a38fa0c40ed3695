package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePlanKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		matchID   int64
		matchName string
		want      bool
	}{
		{name: "numeric id matches id", input: "42", matchID: 42, matchName: "Starter", want: true},
		{name: "numeric id ignores name", input: "42", matchID: 7, matchName: "42", want: false},
		{name: "name matches exactly", input: "Starter", matchID: 42, matchName: "Starter", want: true},
		{name: "name is case sensitive", input: "starter", matchID: 42, matchName: "Starter", want: false},
		{name: "input is trimmed", input: "  Starter ", matchID: 42, matchName: "Starter", want: true},
		{name: "plan name is trimmed", input: "Starter", matchID: 42, matchName: " Starter ", want: true},
		{name: "trimmed numeric input is numeric", input: " 42 ", matchID: 42, matchName: "", want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			key := ParsePlanKey(tt.input)
			assert.Equal(t, tt.want, key.Matches(tt.matchID, tt.matchName))
		})
	}
}

func TestPlanKeyIsZero(t *testing.T) {
	t.Parallel()

	assert.True(t, ParsePlanKey("").IsZero())
	assert.True(t, ParsePlanKey("   ").IsZero())
	assert.False(t, ParsePlanKey("0").IsZero())
	assert.False(t, ParsePlanKey("Starter").IsZero())
}

func TestPlanKeyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42", ParsePlanKey(" 42 ").String())
	assert.Equal(t, "Starter", ParsePlanKey("Starter").String())
}
