// Package minutes turns a raw meeting transcript into structured meeting
// minutes using a fixed two-message prompt against the completion model.
package minutes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const (
	// maxOutputTokens bounds the generated minutes document.
	maxOutputTokens = 2000

	// temperature is the fixed sampling temperature for minutes generation.
	temperature = 0.7
)

// systemInstruction fixes the assistant's role as a minutes writer.
const systemInstruction = "You are an assistant that produces professional meeting minutes " +
	"from audio transcripts. Create comprehensive minutes in markdown format with clear " +
	"structure and actionable insights."

// SectionHeadings are the six fixed sections every minutes document is asked
// to contain, in order.
var SectionHeadings = []string{
	"Meeting Summary",
	"Attendees",
	"Key Discussion Points",
	"Action Items",
	"Next Steps",
	"Additional Notes",
}

const promptTemplate = `Below is a transcript from a recorded meeting. Please analyze the transcript and create professional meeting minutes in markdown format. Include:

1. **Meeting Summary** - Overview of the meeting purpose and key outcomes
2. **Attendees** - List of participants (extract names mentioned)
3. **Key Discussion Points** - Main topics and decisions discussed
4. **Action Items** - Specific tasks with owners and deadlines (if mentioned)
5. **Next Steps** - Follow-up actions or future meetings
6. **Additional Notes** - Any other important information

Transcript:
%s`

// Generator produces meeting minutes from transcripts.
type Generator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// New creates a minutes generator on top of an existing Gemini client.
func New(client *genai.Client, model string, logger *slog.Logger) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, model: model, logger: logger}
}

// BuildPrompt renders the user message embedding the six-section outline and
// the verbatim transcript.
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(promptTemplate, transcript)
}

// Generate submits the fixed two-message prompt with the transcript and
// returns the generated markdown minutes.
func (g *Generator) Generate(ctx context.Context, transcript string) (string, error) {
	g.logger.Debug("generating meeting minutes",
		"model", g.model, "transcript_chars", len(transcript))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](temperature),
		MaxOutputTokens:   maxOutputTokens,
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(BuildPrompt(transcript)), config)
	if err != nil {
		return "", fmt.Errorf("minutes generation failed: %w", err)
	}

	text, err := extractText(result)
	if err != nil {
		return "", fmt.Errorf("minutes generation returned no text: %w", err)
	}

	return strings.TrimSpace(text), nil
}

func extractText(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	text := ""
	for _, part := range result.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text, nil
}
