package main_test

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/fwojciec/ragdoc/mock"
)

const testDimension = 256

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// wordEmbedder hashes lowercased words into a normalized bag-of-words
// vector, so texts sharing words score higher under cosine similarity.
func wordEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, text := range texts {
				out[i] = embedWords(text)
			}
			return out, nil
		},
	}
}

func embedWords(text string) []float32 {
	v := make([]float32, testDimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%testDimension]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x * x)
	}
	if norm == 0 {
		v[0] = 1
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / math.Sqrt(norm))
	}
	return v
}

func sitePages() map[string]string {
	return map[string]string{
		"https://docs.example.com/webhooks": `<html><head><title>Webhooks</title></head><body>
<nav>Home Guides</nav>
<main><h1>Webhooks</h1><p>Configure webhooks in the project settings panel.
Each webhook delivers signed events to your endpoint.</p></main></body></html>`,
		"https://docs.example.com/install": `<html><head><title>Install</title></head><body>
<main><h1>Installation</h1><p>Install the command line tool with your package manager.</p></main></body></html>`,
	}
}
