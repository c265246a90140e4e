// Package transcribe converts a local audio artifact into plain text by
// submitting it whole to the speech-to-text model.
package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the speech-to-text model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// MaxFileSizeMB is the upper bound on audio files submitted for
// transcription. Files are sent whole, without chunking.
const MaxFileSizeMB = 25

// transcriptionInstruction fixes the model's task to verbatim transcription.
const transcriptionInstruction = "Transcribe this meeting recording verbatim. " +
	"Return only the plain-text transcript with no commentary, headers or timestamps."

// supportedMimeTypes maps the audio extensions we accept to their MIME types.
var supportedMimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".aac":  "audio/aac",
	".ogg":  "audio/ogg",
	".wma":  "audio/x-ms-wma",
}

// Stage transcribes audio via the Gemini API.
type Stage struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// New creates a transcription stage on top of an existing Gemini client.
func New(client *genai.Client, model string, logger *slog.Logger) *Stage {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{client: client, model: model, logger: logger}
}

// ValidateFile checks that path points to an existing audio file within the
// size limit and with a supported extension.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("audio file does not exist: %w", err)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	if sizeMB > MaxFileSizeMB {
		return fmt.Errorf("file size (%.1fMB) exceeds the %dMB limit", sizeMB, MaxFileSizeMB)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedMimeTypes[ext]; !ok {
		return fmt.Errorf("unsupported file format %q, supported formats: %s",
			ext, strings.Join(supportedExtensions(), ", "))
	}

	return nil
}

// Transcribe reads the audio file in binary form and submits it whole,
// returning the plain-text transcript.
func (s *Stage) Transcribe(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	mimeType := supportedMimeTypes[strings.ToLower(filepath.Ext(path))]
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}

	s.logger.Debug("submitting audio for transcription",
		"model", s.model, "bytes", len(data), "mime_type", mimeType)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcriptionInstruction),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	text, err := extractText(result)
	if err != nil {
		return "", fmt.Errorf("transcription returned no text: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// extractText flattens the text parts of the first candidate.
func extractText(result *genai.GenerateContentResponse) (string, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

func supportedExtensions() []string {
	exts := make([]string, 0, len(supportedMimeTypes))
	for ext := range supportedMimeTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
