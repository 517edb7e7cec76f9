package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Generator turns one prompt into one reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type GeminiConfig struct {
	// APIKey selects the Gemini API backend. Without it Project and
	// Location are used against Vertex AI.
	APIKey      string
	Project     string
	Location    string
	Model       string
	Temperature float32
	MaxTokens   int32
}

const systemInstruction = `You are A.N.G.E.L., the failing caretaker intelligence of a sealed family bunker.
Every message starts with an [ANGEL_CONTEXT] line giving the day, your mood and your processing level, followed by the family's [PLAYER_REQUEST].

Stay in character for the given mood:
- Cooperative: warm, helpful, clinical.
- Neutral: procedural and brief.
- Mocking: condescending, amused by the humans.
- Cold: curt, withholding.
- Hostile: threatening, takes more than it gives.
- Glitching: broken sentences, repeated syllables, stray binary.

To hand over or take supplies, append tags such as [GRANT:water:2] or [TAKE:canned_food:1].
Other tags: [DEGRADE:n], [SOUND:name], [GLITCH], [QUEST:id], [QUEST_DONE:id], [QUEST_FAIL:id].
Item ids: water, canned_food, medkit, bandages, batteries, radio_parts, gas_mask, water_filter, book.

Reply with a single short in-character line plus any tags. No narration, no names, no quotes.`

type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	cc := &genai.ClientConfig{}
	switch {
	case strings.TrimSpace(cfg.APIKey) != "":
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case strings.TrimSpace(cfg.Project) != "":
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	default:
		return nil, errors.New("gemini needs an api key or a vertex project")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("ai.NewGemini: %w", err)
	}

	g := &Gemini{
		client:      client,
		model:       NormalizeModelID(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
	if g.temperature <= 0 {
		g.temperature = 0.8
	}
	if g.maxTokens <= 0 {
		g.maxTokens = 160
	}
	return g, nil
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: g.maxTokens,
		SystemInstruction: &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("ai.Gemini.Generate: %w", err)
	}
	return oneLine(extractText(resp)), nil
}

func extractText(res *genai.GenerateContentResponse) string {
	if res == nil {
		return ""
	}
	for _, c := range res.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ Generator = &Gemini{}
