package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/model"
)

// TextGenerator is the surface the content generator needs from the
// model client.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)})
}

// ContentRequest carries everything the prompt is built from.
type ContentRequest struct {
	FileType      model.FileType
	Params        model.GenerationParams
	Transcription string
}

// Generator turns an upload into a viral-copy JSON document. It never
// fails the caller: malformed or erroring responses are replaced with a
// fixed placeholder document so the pipeline can keep moving.
type Generator struct {
	gen   TextGenerator
	retry RetryPolicy
	log   *logging.Logger
}

func NewGenerator(gen TextGenerator, retry RetryPolicy, log *logging.Logger) *Generator {
	return &Generator{gen: gen, retry: retry, log: log}
}

func (g *Generator) Generate(ctx context.Context, req ContentRequest) string {
	prompt := buildPrompt(req)
	var raw string
	err := g.retry.Do(ctx, "generate content", g.log, func() error {
		var err error
		raw, err = g.gen.GenerateText(ctx, prompt)
		return err
	})
	if err != nil {
		g.log.Errorf("content generation failed: %v", err)
		return PlaceholderDocument()
	}
	doc := stripCodeFence(raw)
	if !ValidDocument(doc) {
		g.log.Errorf("content generation returned malformed document, using placeholder")
		return PlaceholderDocument()
	}
	return doc
}

// ValidDocument checks the response carries the fields downstream
// consumers read.
func ValidDocument(doc string) bool {
	if !gjson.Valid(doc) {
		return false
	}
	r := gjson.Parse(doc)
	return r.Get("title").Exists() &&
		r.Get("description").Exists() &&
		r.Get("hashtags").IsArray() &&
		r.Get("target_audience").Exists()
}

// PlaceholderDocument is the fixed document substituted when the
// external generator cannot produce usable content.
func PlaceholderDocument() string {
	return `{"title":"Content generation unavailable","description":"The text generation service could not produce content for this upload.","hooks":[],"hashtags":[],"platform_tips":[],"target_audience":"general"}`
}

// OverlayText extracts the text burned onto videos: the title, plus the
// first hook when one exists.
func OverlayText(doc string) string {
	r := gjson.Parse(doc)
	title := r.Get("title").String()
	if hook := r.Get("hooks.0").String(); hook != "" {
		return title + "\n" + hook
	}
	return title
}

func buildPrompt(req ContentRequest) string {
	p := req.Params
	var b strings.Builder
	fmt.Fprintf(&b, "You are a social media strategist. Create viral %s content for a %s clip.\n", p.Platform, req.FileType)
	fmt.Fprintf(&b, "Tone: %s. Length: %s. Language: %s.\n", p.Tone, p.Length, p.Language)
	fmt.Fprintf(&b, "Format: %s. Target emotion: %s. Call to action: %s.\n", p.ContentFormat, p.TargetEmotion, p.CallToAction)
	fmt.Fprintf(&b, "Visual theme: %s, effect intensity: %s.\n", p.Theme, p.Intensity)
	if req.Transcription != "" {
		fmt.Fprintf(&b, "Transcription of the clip:\n%s\n", req.Transcription)
	} else {
		b.WriteString("No transcription is available; write from the theme alone.\n")
	}
	b.WriteString(`Respond with JSON only, no markdown fences, with exactly these keys:
{"title": string, "description": string, "hooks": [3 strings], "hashtags": [strings], "platform_tips": [strings], "target_audience": string}`)
	return b.String()
}

// stripCodeFence unwraps ```json fenced responses some models insist
// on.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
