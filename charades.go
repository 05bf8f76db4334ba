package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// CardGenerator turns free-text context into a bounded list of charade
// cards by prompting the Gemini generateContent endpoint.
type CardGenerator struct {
	cfg      *Config
	client   *http.Client
	endpoint string
}

func newCardGenerator(cfg *Config) *CardGenerator {
	return &CardGenerator{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		endpoint: fmt.Sprintf(
			"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
			cfg.geminiModel, cfg.geminiAPIKey,
		),
	}
}

type cardRequest struct {
	Context      string `json:"context"`
	CustomPrompt string `json:"customPrompt,omitempty"`
	NumCards     int    `json:"numCards,omitempty"`
	Difficulty   string `json:"difficulty,omitempty"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func charadePrompt(req cardRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, `
You are an AI assistant for a charades game. Given the following context, generate a list of %d charade game ideas (phrases, names, or concepts) that are relevant, fun, and challenging for players. All items must be suitable for the %q difficulty level. Only return a JSON array of objects with "text" and "difficulty" fields. Do NOT include any Markdown or code block formatting, just the raw JSON array.

Context:
%s

`, req.NumCards, req.Difficulty, req.Context)

	if req.CustomPrompt != "" {
		b.WriteString("Instructions: " + req.CustomPrompt + "\n")
	}

	return b.String()
}

var codeBlockRE = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeBlock unwraps Markdown code fences the model sometimes adds
// despite being told not to.
func stripCodeBlock(text string) string {
	if m := codeBlockRE.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func (g *CardGenerator) normalize(req *cardRequest) {
	if req.NumCards <= 0 {
		req.NumCards = 20
	}
	switch req.Difficulty {
	case "easy", "medium", "hard":
	default:
		req.Difficulty = "medium"
	}
}

// GenerateCards calls the upstream model and parses its output into
// cards. A reply asking for more context is a client error
// (errNeedsContext), not a generation failure.
func (g *CardGenerator) GenerateCards(ctx context.Context, req cardRequest) ([]Card, error) {
	g.normalize(&req)

	if g.cfg.dummyCards {
		return []Card{
			{Text: "Dummy charade 1", Difficulty: req.Difficulty},
			{Text: "Dummy charade 2", Difficulty: req.Difficulty},
		}, nil
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: charadePrompt(req)}}}},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini API error: %d: %s", resp.StatusCode, detail)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding gemini response: %w", err)
	}

	var text string
	if len(parsed.Candidates) > 0 && len(parsed.Candidates[0].Content.Parts) > 0 {
		text = parsed.Candidates[0].Content.Parts[0].Text
	}

	if strings.Contains(strings.ToLower(text), "please provide me with the context") {
		return nil, errNeedsContext
	}

	var cards []Card
	if err := json.Unmarshal([]byte(stripCodeBlock(text)), &cards); err != nil {
		return nil, fmt.Errorf("parsing gemini output: %w", err)
	}

	return cards, nil
}

func serveGenerateCharades(cfg *Config, gen *CardGenerator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		var req cardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Context == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Missing or invalid context"})
			return
		}

		cards, err := gen.GenerateCards(r.Context(), req)
		if err != nil {
			if err == errNeedsContext {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "The generator requires more context. Please provide a valid context string.",
				})
				return
			}

			logf(cfg, "CARDS: Generation failed: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Failed to generate charade items"})
			return
		}

		payload, _ := json.Marshal(map[string][]Card{"items": cards})
		_, _ = w.Write(payload)

		logf(cfg, "CARDS: Generated %d cards (%s) for %s in %s",
			len(cards),
			humanReadableSize(int64(len(payload))),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
