package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/openai"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, path string, handler func(body map[string]any) any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(handler(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := openai.NewClient("")

	assert.Equal(t, ragdoc.ECONFIG, ragdoc.ErrorCode(err))
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("returns vectors in input order", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		srv := newTestServer(t, "/embeddings", func(body map[string]any) any {
			got = body
			return map[string]any{
				"object": "list",
				"model":  openai.DefaultEmbeddingModel,
				"data": []map[string]any{
					{"object": "embedding", "index": 1, "embedding": []float64{0, 1}},
					{"object": "embedding", "index": 0, "embedding": []float64{1, 0}},
				},
				"usage": map[string]any{"prompt_tokens": 2, "total_tokens": 2},
			}
		})
		client, err := openai.NewClient("test-key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
		require.NoError(t, err)

		vectors, err := openai.NewEmbedder(client, "", 2).Embed(context.Background(), []string{"first", "second"})

		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
		assert.Equal(t, openai.DefaultEmbeddingModel, got["model"])
		assert.Equal(t, []any{"first", "second"}, got["input"])
		assert.Equal(t, float64(2), got["dimensions"])
	})

	t.Run("count mismatch", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, "/embeddings", func(map[string]any) any {
			return map[string]any{
				"object": "list",
				"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float64{1}}},
			}
		})
		client, err := openai.NewClient("test-key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
		require.NoError(t, err)

		_, err = openai.NewEmbedder(client, "", 0).Embed(context.Background(), []string{"a", "b"})

		assert.Equal(t, ragdoc.EINTERNAL, ragdoc.ErrorCode(err))
	})

	t.Run("no texts makes no request", func(t *testing.T) {
		t.Parallel()

		vectors, err := openai.NewEmbedder(nil, "", 0).Embed(context.Background(), nil)

		require.NoError(t, err)
		assert.Nil(t, vectors)
	})
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("sends prompt as user message", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		srv := newTestServer(t, "/chat/completions", func(body map[string]any) any {
			got = body
			return map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 1,
				"model":   openai.DefaultChatModel,
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": "Use `ragdoc crawl`."},
				}},
			}
		})
		client, err := openai.NewClient("test-key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
		require.NoError(t, err)

		answer, err := openai.NewGenerator(client, "", 0.2).Generate(context.Background(), "How?")

		require.NoError(t, err)
		assert.Equal(t, "Use `ragdoc crawl`.", answer)
		assert.Equal(t, openai.DefaultChatModel, got["model"])
		assert.InDelta(t, 0.2, got["temperature"], 1e-9)
		messages := got["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])
		assert.Equal(t, "How?", messages[0].(map[string]any)["content"])
	})

	t.Run("api error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)
		client, err := openai.NewClient("test-key", option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
		require.NoError(t, err)

		_, err = openai.NewGenerator(client, "", 0.2).Generate(context.Background(), "How?")

		require.Error(t, err)
	})

	t.Run("empty prompt", func(t *testing.T) {
		t.Parallel()

		_, err := openai.NewGenerator(nil, "", 0).Generate(context.Background(), "")

		assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(err))
	})
}
