package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformByName(t *testing.T) {
	for _, name := range []string{"stringify", "join", "first", "length"} {
		fn, err := TransformByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn, name)
	}

	_, err := TransformByName("reverse")
	assert.ErrorContains(t, err, `unknown transform "reverse"`)
}

func TestTransformNames(t *testing.T) {
	names := TransformNames()
	assert.ElementsMatch(t, []string{"stringify", "join", "first", "length"}, names)
}

func TestStringify(t *testing.T) {
	out, err := transformStringify("already")
	require.NoError(t, err)
	assert.Equal(t, "already", out)

	out, err = transformStringify(42)
	require.NoError(t, err)
	assert.Equal(t, "42", out)
}

func TestJoin(t *testing.T) {
	out, err := transformJoin([]any{"a", "b", 3})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n3", out)

	_, err = transformJoin("not a list")
	assert.ErrorContains(t, err, "join expects a list")
}

func TestFirst(t *testing.T) {
	out, err := transformFirst([]any{"head", "tail"})
	require.NoError(t, err)
	assert.Equal(t, "head", out)

	_, err = transformFirst([]any{})
	assert.ErrorContains(t, err, "non-empty list")

	_, err = transformFirst(7)
	assert.ErrorContains(t, err, "first expects a list")
}

func TestLength(t *testing.T) {
	out, err := transformLength("abcd")
	require.NoError(t, err)
	assert.Equal(t, 4, out)

	out, err = transformLength([]any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, out)

	out, err = transformLength(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, out)

	_, err = transformLength(3.14)
	assert.ErrorContains(t, err, "length expects")
}
