package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeBlock(t *testing.T) {
	raw := `[{"text":"moonwalk","difficulty":"easy"}]`

	assert.Equal(t, raw, stripCodeBlock(raw))
	assert.Equal(t, raw, stripCodeBlock("```json\n"+raw+"\n```"))
	assert.Equal(t, raw, stripCodeBlock("```\n"+raw+"\n```"))
	assert.Equal(t, raw, stripCodeBlock("Here you go:\n```json\n"+raw+"\n```\nEnjoy!"))
	assert.Equal(t, raw, stripCodeBlock("  "+raw+"\n"))
}

func TestGenerateCardsDummyMode(t *testing.T) {
	cfg := testConfig()
	cfg.dummyCards = true

	gen := newCardGenerator(cfg)

	cards, err := gen.GenerateCards(context.Background(), cardRequest{Context: "80s movies"})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "medium", cards[0].Difficulty, "difficulty defaults to medium")
}

func geminiUpstream(t *testing.T, text string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": text}},
				},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateCardsParsesFencedOutput(t *testing.T) {
	upstream := geminiUpstream(t, "```json\n[{\"text\":\"moonwalk\",\"difficulty\":\"easy\"},{\"text\":\"submarine\",\"difficulty\":\"easy\"}]\n```")
	defer upstream.Close()

	gen := newCardGenerator(testConfig())
	gen.endpoint = upstream.URL

	cards, err := gen.GenerateCards(context.Background(), cardRequest{Context: "things", Difficulty: "easy", NumCards: 2})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "moonwalk", cards[0].Text)
	assert.Equal(t, "easy", cards[1].Difficulty)
}

func TestGenerateCardsNeedsContext(t *testing.T) {
	upstream := geminiUpstream(t, "Please provide me with the context so I can generate charades.")
	defer upstream.Close()

	gen := newCardGenerator(testConfig())
	gen.endpoint = upstream.URL

	_, err := gen.GenerateCards(context.Background(), cardRequest{Context: "x"})
	assert.ErrorIs(t, err, errNeedsContext)
}

func TestGenerateCardsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	gen := newCardGenerator(testConfig())
	gen.endpoint = upstream.URL

	_, err := gen.GenerateCards(context.Background(), cardRequest{Context: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func newCharadesAPI(cfg *Config) *httptest.Server {
	mux := httprouter.New()
	mux.POST("/api/generate-charades", serveGenerateCharades(cfg, newCardGenerator(cfg)))
	return httptest.NewServer(mux)
}

func TestGenerateCharadesHandler(t *testing.T) {
	cfg := testConfig()
	cfg.dummyCards = true

	srv := newCharadesAPI(cfg)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate-charades", "application/json",
		strings.NewReader(`{"context":"90s sitcoms","difficulty":"hard"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Items []Card `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "hard", body.Items[0].Difficulty)
}

func TestGenerateCharadesHandlerMissingContext(t *testing.T) {
	cfg := testConfig()
	cfg.dummyCards = true

	srv := newCharadesAPI(cfg)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate-charades", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
