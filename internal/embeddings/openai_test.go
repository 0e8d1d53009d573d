package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbeddingServer answers /embeddings with un-normalised vectors whose
// first component encodes the input position.
func fakeEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		for i := range req.Input {
			data[i] = item{Object: "embedding", Embedding: []float32{float32(i + 1), 0, 0, 2}, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestOpenAIProvider_EmbedBatch(t *testing.T) {
	srv := fakeEmbeddingServer(t)
	defer srv.Close()

	p, err := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL + "/v1", Model: "custom-model"})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Dimension())

	vecs, err := p.EmbedBatch(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	for _, v := range vecs {
		assert.Len(t, v, 4)
		assert.InDelta(t, 1.0, norm(v), 1e-5)
	}
	assert.Equal(t, 4, p.Dimension())
}

func TestOpenAIProvider_Embed(t *testing.T) {
	srv := fakeEmbeddingServer(t)
	defer srv.Close()

	p, err := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL + "/v1", Model: "custom-model", Dimension: 4})
	require.NoError(t, err)

	vec, err := p.Embed(context.Background(), "query")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, norm(vec), 1e-5)

	_, err = p.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL + "/v1", Model: "custom-model"})
	require.NoError(t, err)

	_, err = p.EmbedBatch(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}
