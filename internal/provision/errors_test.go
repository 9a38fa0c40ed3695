package provision

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUpstreamWithJSONBody(t *testing.T) {
	t.Parallel()

	ue := &UpstreamError{Status: 422, Body: []byte(`{"message":"domain already exists"}`)}
	err := Normalize(ue, nil, nil, "")

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindUpstream, pe.Kind)
	assert.Equal(t, "Provider API request failed with status 422", pe.Message)
	assert.Equal(t, 422, pe.Data["response_code"])
	assert.Equal(t, map[string]any{"message": "domain already exists"}, pe.Data["response_data"])
	assert.NotContains(t, pe.Debug, "response_body")
	assert.ErrorIs(t, err, ue)
}

func TestNormalizeUpstreamWithOpaqueBody(t *testing.T) {
	t.Parallel()

	ue := &UpstreamError{Status: 502, Body: []byte("<html>Bad Gateway</html>")}
	err := Normalize(ue, nil, nil, "")

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 502, pe.Data["response_code"])
	assert.NotContains(t, pe.Data, "response_data")
	assert.Equal(t, "<html>Bad Gateway</html>", pe.Debug["response_body"])
}

func TestNormalizeUpstreamMessageOverride(t *testing.T) {
	t.Parallel()

	ue := &UpstreamError{Status: 500}
	err := Normalize(ue, nil, nil, "Failed to create subscription")

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Failed to create subscription", pe.Message)
}

func TestNormalizeMergesIntoExistingError(t *testing.T) {
	t.Parallel()

	err := error(NotFound("plan not found").WithData("package", "Starter"))
	err = Normalize(err, map[string]any{"customer_id": "org-1"}, map[string]any{"step": "create"}, "")
	err = Normalize(err, map[string]any{"customer_id": "org-2"}, nil, "")

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindNotFound, pe.Kind)
	assert.Equal(t, "plan not found", pe.Message)
	// later values win, earlier keys survive
	assert.Equal(t, "org-2", pe.Data["customer_id"])
	assert.Equal(t, "Starter", pe.Data["package"])
	assert.Equal(t, "create", pe.Debug["step"])
}

func TestNormalizeOverridesExistingMessage(t *testing.T) {
	t.Parallel()

	err := Normalize(BadInput("original"), nil, nil, "replaced")

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "replaced", pe.Message)
	assert.Equal(t, KindBadInput, pe.Kind)
}

func TestNormalizePassesThroughUnknownErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("nil pointer somewhere")
	got := Normalize(boom, map[string]any{"ignored": true}, nil, "also ignored")
	assert.Same(t, boom, got)

	wrapped := fmt.Errorf("context: %w", boom)
	assert.Same(t, wrapped, Normalize(wrapped, nil, nil, ""))
}

func TestIsNotFoundMatchesWrappedErrors(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("lookup failed: %w", NotFound("gone"))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("gone")))
	assert.False(t, IsNotFound(BadInput("bad")))
}
