package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"google.golang.org/genai"
)

// newFakeGemini serves the generateContent endpoint, capturing the request
// body and answering with a single text candidate or an error status.
func newFakeGemini(t *testing.T, status int, text string, capture *map[string]any) *genai.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			_ = json.NewDecoder(r.Body).Decode(capture)
		}
		if status != http.StatusOK {
			http.Error(w, `{"error":{"code":500,"message":"backend exploded"}}`, status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`, text)
	}))
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	if err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}
	return client
}

func writeAudioFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeReturnsPlainText(t *testing.T) {
	var captured map[string]any
	client := newFakeGemini(t, http.StatusOK, "hello from the meeting\n", &captured)
	stage := New(client, "", nil)

	path := writeAudioFile(t, "meeting.mp3", []byte("binary audio"))

	text, err := stage.Transcribe(context.Background(), path)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello from the meeting" {
		t.Errorf("Transcribe = %q, want trimmed transcript", text)
	}

	// The audio must be submitted whole as inline binary data.
	raw, _ := json.Marshal(captured)
	if !strings.Contains(string(raw), "audio/mpeg") {
		t.Errorf("Expected audio/mpeg inline data in request, got %s", raw)
	}
}

func TestTranscribeMissingFile(t *testing.T) {
	client := newFakeGemini(t, http.StatusOK, "unused", nil)
	stage := New(client, "", nil)

	_, err := stage.Transcribe(context.Background(), filepath.Join(t.TempDir(), "gone.mp3"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestTranscribeAPIErrorSurfacesMessage(t *testing.T) {
	client := newFakeGemini(t, http.StatusInternalServerError, "", nil)
	stage := New(client, "", nil)

	path := writeAudioFile(t, "meeting.wav", []byte("x"))

	_, err := stage.Transcribe(context.Background(), path)
	if err == nil {
		t.Fatal("Expected transcription error")
	}
	if !strings.Contains(err.Error(), "transcription request failed") {
		t.Errorf("Expected wrapped transcription error, got %v", err)
	}
}

func TestValidateFile(t *testing.T) {
	valid := writeAudioFile(t, "ok.mp3", []byte("x"))
	unsupported := writeAudioFile(t, "notes.txt", []byte("x"))

	big := writeAudioFile(t, "big.mp3", nil)
	if err := os.Truncate(big, (MaxFileSizeMB+1)*1024*1024); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "valid file", path: valid},
		{name: "missing file", path: filepath.Join(t.TempDir(), "none.mp3"), wantErr: "does not exist"},
		{name: "unsupported extension", path: unsupported, wantErr: "unsupported file format"},
		{name: "over size limit", path: big, wantErr: "exceeds the 25MB limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.path)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected valid file, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
