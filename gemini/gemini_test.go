package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *genai.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return client
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	t.Run("returns model text", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		var gotBody map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Use crawl."}]}}]}`))
		})

		answer, err := gemini.NewGenerator(client, "", 0.2).Generate(context.Background(), "How?")

		require.NoError(t, err)
		assert.Equal(t, "Use crawl.", answer)
		assert.True(t, strings.HasSuffix(gotPath, "models/"+gemini.DefaultChatModel+":generateContent"), gotPath)
		assert.Contains(t, gotBody, "contents")
	})

	t.Run("empty prompt", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.NewGenerator(nil, "", 0).Generate(context.Background(), "")

		assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(err))
	})

	t.Run("api error", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`, http.StatusInternalServerError)
		})

		_, err := gemini.NewGenerator(client, "", 0).Generate(context.Background(), "How?")

		require.Error(t, err)
	})
}

func TestEmbedder_Embed(t *testing.T) {
	t.Parallel()

	t.Run("no texts makes no request", func(t *testing.T) {
		t.Parallel()

		vectors, err := gemini.NewEmbedder(nil, "", 0).Embed(context.Background(), nil)

		require.NoError(t, err)
		assert.Nil(t, vectors)
	})

	t.Run("splits large inputs into api batches", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var sizes []int
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Requests []json.RawMessage `json:"requests"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			mu.Lock()
			sizes = append(sizes, len(body.Requests))
			mu.Unlock()

			type embedding struct {
				Values []float32 `json:"values"`
			}
			resp := struct {
				Embeddings []embedding `json:"embeddings"`
			}{}
			for range body.Requests {
				resp.Embeddings = append(resp.Embeddings, embedding{Values: []float32{0.1, 0.2}})
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		})

		texts := make([]string, 150)
		for i := range texts {
			texts[i] = "chunk"
		}

		vectors, err := gemini.NewEmbedder(client, "", 2).Embed(context.Background(), texts)

		require.NoError(t, err)
		assert.Len(t, vectors, 150)
		assert.Equal(t, []float32{0.1, 0.2}, vectors[0])
		assert.Equal(t, []int{100, 50}, sizes)
	})
}
