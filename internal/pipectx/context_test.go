package pipectx

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskpipe/internal/result"
)

func TestNewBindsExternalInputs(t *testing.T) {
	c := New(map[string]any{"topic": "AI"})

	v, err := c.GetPath("user_input.topic")
	require.NoError(t, err)
	assert.Equal(t, "AI", v)

	assert.Equal(t, []string{ExternalNode}, c.Names())
}

func TestNewWithNilExternal(t *testing.T) {
	c := New(nil)
	res, ok := c.GetResult(ExternalNode)
	require.True(t, ok)
	require.True(t, res.OK())
	assert.Equal(t, map[string]any{}, res.Data())
}

func TestSetOnce(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Set("search", result.Ok("hits")))

	err := c.Set("search", result.Ok("again"))
	require.Error(t, err)
	var dup *DuplicateWriteError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "search", dup.Task)

	// First write survives.
	v, err := c.GetPath("search")
	require.NoError(t, err)
	assert.Equal(t, "hits", v)
}

func TestGetPath(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Set("search", result.Ok(map[string]any{
		"results": map[string]any{
			"urls":  []any{"https://a.example", "https://b.example"},
			"count": 2,
		},
		"tags": []string{"news", "tech"},
	})))

	t.Run("whole payload", func(t *testing.T) {
		v, err := c.GetPath("search")
		require.NoError(t, err)
		assert.Contains(t, v, "results")
	})

	t.Run("nested map", func(t *testing.T) {
		v, err := c.GetPath("search.results.count")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("list index", func(t *testing.T) {
		v, err := c.GetPath("search.results.urls.1")
		require.NoError(t, err)
		assert.Equal(t, "https://b.example", v)
	})

	t.Run("string slice index", func(t *testing.T) {
		v, err := c.GetPath("search.tags.0")
		require.NoError(t, err)
		assert.Equal(t, "news", v)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := c.GetPath("nope.field")
		var nf *PathNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "nope", nf.Segment)
	})

	t.Run("missing field", func(t *testing.T) {
		_, err := c.GetPath("search.results.missing")
		var nf *PathNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.Segment)
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := c.GetPath("search.results.urls.9")
		assert.Error(t, err)
	})

	t.Run("non-numeric index on list", func(t *testing.T) {
		_, err := c.GetPath("search.results.urls.first")
		assert.Error(t, err)
	})

	t.Run("descend into scalar", func(t *testing.T) {
		_, err := c.GetPath("search.results.count.deeper")
		assert.Error(t, err)
	})
}

func TestGetPathSkipsFailureEntries(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Set("broken", result.Fail(result.KindExecution, "boom")))

	_, err := c.GetPath("broken")
	assert.Error(t, err)

	res, ok := c.GetResult("broken")
	require.True(t, ok)
	assert.False(t, res.OK())
}

func TestNamesCompletionOrder(t *testing.T) {
	c := New(nil)
	require.NoError(t, c.Set("b", result.Ok(nil)))
	require.NoError(t, c.Set("a", result.Ok(nil)))
	assert.Equal(t, []string{ExternalNode, "b", "a"}, c.Names())
}

func TestConcurrentWrites(t *testing.T) {
	c := New(nil)
	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Set(fmt.Sprintf("task_%d", i), result.Ok(i))
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.Names(), n+1)
	for i := 0; i < n; i++ {
		v, err := c.GetPath(fmt.Sprintf("task_%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
}
