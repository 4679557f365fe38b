package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/taskpipe/internal/scheduler"
	"github.com/vk/taskpipe/internal/testutil"
)

// TestHclFeatures_OptionalAndFallbackInputs validates the three declarative
// input kinds end to end: required delivered, optional omitted when the
// source is missing, fallback replaced by its default.
func TestHclFeatures_OptionalAndFallbackInputs(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "producer" {
				kind = "producer_stub"
			}
			task "consumer" {
				kind = "echo"
				input "title" {
					source = "producer.title"
				}
				input "subtitle" {
					source = "producer.subtitle"
					kind   = "optional"
				}
				input "tone" {
					source  = "producer.tone"
					kind    = "fallback"
					default = "neutral"
				}
			}
		}
	`
	producer := testutil.StaticModule("producer_stub", map[string]any{"title": "Go news"})
	echo := testutil.EchoModule("echo")

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, producer, echo)
	require.NoError(t, res.Err)

	out, _ := res.RunResult.Outcome("consumer")
	require.Equal(t, scheduler.Succeeded, out.State)

	payload := out.Result.Data().(map[string]any)
	assert.Equal(t, "Go news", payload["title"])
	assert.Equal(t, "neutral", payload["tone"])
	_, present := payload["subtitle"]
	assert.False(t, present, "optional input with a missing source must be omitted")
}

// TestHclFeatures_FallbackCoversFailedProducer validates that a fallback
// input supplies its default when the producing task failed, keeping the
// consumer runnable.
func TestHclFeatures_FallbackCoversFailedProducer(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "flaky" {
				kind = "broken"
			}
			task "consumer" {
				kind = "echo"
				input "tone" {
					source  = "flaky.tone"
					kind    = "fallback"
					default = "neutral"
				}
			}
		}
	`
	broken := testutil.FailingModule("broken", "boom")
	echo := testutil.EchoModule("echo")

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, broken, echo)
	require.NoError(t, res.Err)

	assert.Equal(t, scheduler.PartialFailure, res.RunResult.Status)
	out, _ := res.RunResult.Outcome("consumer")
	require.Equal(t, scheduler.Succeeded, out.State)
	payload := out.Result.Data().(map[string]any)
	assert.Equal(t, "neutral", payload["tone"])
}

// TestHclFeatures_ArgumentReferencesSubstituted validates that task
// references in argument strings are substituted against the shared context
// at dispatch time, including bare references to structured payloads.
func TestHclFeatures_ArgumentReferencesSubstituted(t *testing.T) {
	t.Parallel()
	pipelineHCL := `
		pipeline "p" {
			task "search" {
				kind = "search_stub"
			}
			task "summarize" {
				kind = "echo"
				input "gate" {
					source = "search.query"
				}
				arguments {
					prompt = "Summarize results for: ${search.query}"
					urls   = search.urls
				}
			}
		}
	`
	search := testutil.StaticModule("search_stub", map[string]any{
		"query": "latest AI news",
		"urls":  []any{"https://a.example"},
	})
	echo := testutil.EchoModule("echo")

	res := testutil.RunPipelineTest(t, map[string]string{"main.hcl": pipelineHCL}, nil, search, echo)
	require.NoError(t, res.Err)

	out, _ := res.RunResult.Outcome("summarize")
	require.Equal(t, scheduler.Succeeded, out.State)
	payload := out.Result.Data().(map[string]any)
	assert.Equal(t, "Summarize results for: latest AI news", payload["prompt"])
	assert.Equal(t, `["https://a.example"]`, payload["urls"])
}

// TestHclFeatures_PipelineSplitAcrossFiles validates that a pipeline
// directory with one pipeline block loads, and that extra pipeline blocks in
// sibling files are rejected.
func TestHclFeatures_PipelineSplitAcrossFiles(t *testing.T) {
	t.Parallel()

	t.Run("single block in directory", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"pipelines/main.hcl": `
				pipeline "p" {
					task "only" {
						kind = "steady"
					}
				}
			`,
		}
		res := testutil.RunPipelineTest(t, files, nil, testutil.StaticModule("steady", "ok"))
		require.NoError(t, res.Err)
		assert.Equal(t, scheduler.AllSucceeded, res.RunResult.Status)
	})

	t.Run("second block rejected", func(t *testing.T) {
		t.Parallel()
		files := map[string]string{
			"a.hcl": `pipeline "one" {}`,
			"b.hcl": `pipeline "two" {}`,
		}
		res := testutil.RunPipelineTest(t, files, nil, testutil.StaticModule("steady", "ok"))
		require.Error(t, res.Err)
		assert.ErrorContains(t, res.Err, "expected exactly one")
	})
}
