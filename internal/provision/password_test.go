package provision

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePasswordMeetsPolicy(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		password, err := GeneratePassword()
		require.NoError(t, err)

		assert.Len(t, password, 15)
		assert.True(t, strings.ContainsAny(password, lowerChars), "missing lowercase: %q", password)
		assert.True(t, strings.ContainsAny(password, upperChars), "missing uppercase: %q", password)
		assert.True(t, strings.ContainsAny(password, digitChars), "missing digit: %q", password)
		assert.True(t, strings.ContainsAny(password, symbolChars), "missing symbol: %q", password)
	}
}

func TestGeneratePasswordIsNotConstant(t *testing.T) {
	t.Parallel()

	a, err := GeneratePassword()
	require.NoError(t, err)
	b, err := GeneratePassword()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
