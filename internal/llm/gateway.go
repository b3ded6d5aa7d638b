// Package llm turns a provider client into a typed completion gateway: one
// call, decode into the caller's struct, with a single repair attempt when
// the model's JSON is damaged.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"ctxoptimizer/internal/jsonutil"
	llmclient "ctxoptimizer/internal/llm/client"
	"ctxoptimizer/internal/llm/jsonrepair"
)

// SchemaError means the model answered but the payload never became valid
// JSON for the expected shape, even after repair. Raw keeps the original
// output for diagnostics.
type SchemaError struct {
	Raw []byte
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model output did not match expected schema: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Gateway wraps a Client with decode-and-repair semantics and an optional
// response cache. Only responses that decoded into the caller's schema are
// cached, so a rerun after a SchemaError reaches the provider again.
type Gateway struct {
	client llmclient.Client
	cache  *expirable.LRU[string, json.RawMessage]
}

func NewGateway(client llmclient.Client) *Gateway {
	return &Gateway{client: client}
}

// NewCachedGateway memoizes decoded responses for identical prompt+input
// pairs, so reruns of the same session inputs skip the provider. Errors and
// unusable output are never cached.
func NewCachedGateway(client llmclient.Client, size int, ttl time.Duration) *Gateway {
	if size <= 0 {
		size = 128
	}
	return &Gateway{
		client: client,
		cache:  expirable.NewLRU[string, json.RawMessage](size, nil, ttl),
	}
}

// Complete sends the prompt (plus optional input document) and decodes the
// response into out. On a decode failure the raw output is repaired once and
// retried; a second failure returns a SchemaError carrying the raw bytes.
func (g *Gateway) Complete(ctx context.Context, prompt string, input any, out any) error {
	key := ""
	if g.cache != nil {
		key = cacheKey(g.client.Name(), prompt, input)
		if raw, ok := g.cache.Get(key); ok {
			return jsonutil.UnmarshalFlex(raw, out)
		}
	}

	raw, err := g.client.GenerateJSON(ctx, prompt, input)
	if err != nil {
		return err
	}
	if err := jsonutil.UnmarshalFlex(raw, out); err == nil {
		g.remember(key, raw)
		return nil
	}
	repaired, ok := jsonrepair.Repair(raw)
	if !ok {
		return &SchemaError{Raw: raw, Err: llmclient.ErrInvalidJSON}
	}
	if err := jsonutil.UnmarshalFlex(repaired, out); err != nil {
		return &SchemaError{Raw: raw, Err: err}
	}
	g.remember(key, repaired)
	return nil
}

func (g *Gateway) remember(key string, raw json.RawMessage) {
	if g.cache == nil || key == "" {
		return
	}
	g.cache.Add(key, raw)
}

func cacheKey(name, prompt string, input any) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	in, _ := json.Marshal(input)
	h.Write(in)
	return hex.EncodeToString(h.Sum(nil))
}
