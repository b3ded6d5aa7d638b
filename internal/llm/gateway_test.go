package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmclient "ctxoptimizer/internal/llm/client"
)

type report struct {
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
}

func TestCompleteDecodesCleanJSON(t *testing.T) {
	gw := NewGateway(NewFakeClient(json.RawMessage(`{"score": 8.5, "summary": "ok"}`)))

	var out report
	require.NoError(t, gw.Complete(context.Background(), "evaluate", map[string]any{"a": 1}, &out))
	assert.Equal(t, 8.5, out.Score)
	assert.Equal(t, "ok", out.Summary)
}

func TestCompleteRepairsFencedOutput(t *testing.T) {
	gw := NewGateway(NewFakeClient(json.RawMessage("```json\n{\"score\": 6, \"summary\": \"fenced\",}\n```")))

	var out report
	require.NoError(t, gw.Complete(context.Background(), "evaluate", nil, &out))
	assert.Equal(t, float64(6), out.Score)
	assert.Equal(t, "fenced", out.Summary)
}

func TestCompleteReturnsSchemaErrorWithRaw(t *testing.T) {
	gw := NewGateway(NewFakeClient(json.RawMessage("I refuse to answer in JSON.")))

	var out report
	err := gw.Complete(context.Background(), "evaluate", nil, &out)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, string(schemaErr.Raw), "refuse")
}

func TestCompletePropagatesCallError(t *testing.T) {
	fake := NewFakeClient()
	fake.Fail(&llmclient.CallError{Kind: llmclient.KindRateLimit, Provider: "FakeLLM", Err: errors.New("429")})
	gw := NewGateway(fake)

	var out report
	err := gw.Complete(context.Background(), "evaluate", nil, &out)
	var callErr *llmclient.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, llmclient.KindRateLimit, callErr.Kind)
}

func TestWrapOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next llmclient.Client) llmclient.Client {
			return &tagged{next: next, name: name, order: &order}
		}
	}
	c := Wrap(NewFakeClient(json.RawMessage(`{}`)), tag("outer"), tag("inner"))
	_, err := c.GenerateJSON(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type tagged struct {
	next  llmclient.Client
	name  string
	order *[]string
}

func (c *tagged) Name() string { return c.next.Name() }
func (c *tagged) Close() error { return c.next.Close() }
func (c *tagged) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	*c.order = append(*c.order, c.name)
	return c.next.GenerateJSON(ctx, prompt, input)
}

func TestCachedGatewayMemoizesByPromptAndInput(t *testing.T) {
	fake := NewFakeClient(json.RawMessage(`{"score": 1}`), json.RawMessage(`{"score": 2}`))
	gw := NewCachedGateway(fake, 16, time.Minute)

	var first, second, third report
	require.NoError(t, gw.Complete(context.Background(), "p", map[string]any{"k": "v"}, &first))
	require.NoError(t, gw.Complete(context.Background(), "p", map[string]any{"k": "v"}, &second))
	assert.Equal(t, first, second)
	assert.Len(t, fake.Prompts, 1)

	require.NoError(t, gw.Complete(context.Background(), "p", map[string]any{"k": "other"}, &third))
	assert.NotEqual(t, first, third)
	assert.Len(t, fake.Prompts, 2)
}

func TestCachedGatewayDoesNotCacheErrors(t *testing.T) {
	fake := NewFakeClient(json.RawMessage(`{"score": 1}`))
	fake.Fail(errors.New("boom"))
	gw := NewCachedGateway(fake, 16, time.Minute)

	var out report
	require.Error(t, gw.Complete(context.Background(), "p", nil, &out))

	fake.Fail(nil)
	require.NoError(t, gw.Complete(context.Background(), "p", nil, &out))
	assert.Equal(t, float64(1), out.Score)
}

func TestCachedGatewayDoesNotCacheSchemaFailures(t *testing.T) {
	fake := NewFakeClient(
		json.RawMessage("I refuse to answer in JSON."),
		json.RawMessage(`{"score": 9, "summary": "recovered"}`),
	)
	gw := NewCachedGateway(fake, 16, time.Minute)

	var out report
	err := gw.Complete(context.Background(), "p", nil, &out)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)

	// The rerun must reach the provider again instead of replaying the
	// unusable response for the TTL.
	require.NoError(t, gw.Complete(context.Background(), "p", nil, &out))
	assert.Equal(t, "recovered", out.Summary)
	assert.Len(t, fake.Prompts, 2)

	var again report
	require.NoError(t, gw.Complete(context.Background(), "p", nil, &again))
	assert.Equal(t, out, again)
	assert.Len(t, fake.Prompts, 2)
}

func TestCachedGatewayStoresRepairedOutput(t *testing.T) {
	fake := NewFakeClient(json.RawMessage("```json\n{\"score\": 4, \"summary\": \"fenced\",}\n```"))
	gw := NewCachedGateway(fake, 16, time.Minute)

	var first, second report
	require.NoError(t, gw.Complete(context.Background(), "p", nil, &first))
	require.NoError(t, gw.Complete(context.Background(), "p", nil, &second))
	assert.Equal(t, first, second)
	assert.Len(t, fake.Prompts, 1)
}

func TestWithLoggingPassesThrough(t *testing.T) {
	var buf strings.Builder
	logger := log.New(&buf, "", 0)
	c := Wrap(NewFakeClient(json.RawMessage(`{"ok": true}`)), WithLogging(logger))

	raw, err := c.GenerateJSON(context.Background(), "prompt", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(raw))
	assert.Contains(t, buf.String(), "llm request")
	assert.Contains(t, buf.String(), "llm response")
}
