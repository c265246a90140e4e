package minutes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

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

func TestBuildPromptContainsOutlineAndTranscript(t *testing.T) {
	prompt := BuildPrompt("Alice: let's ship on Friday.")

	for _, heading := range SectionHeadings {
		if !strings.Contains(prompt, heading) {
			t.Errorf("Expected prompt to contain section %q", heading)
		}
	}
	if !strings.Contains(prompt, "Alice: let's ship on Friday.") {
		t.Error("Expected prompt to embed the verbatim transcript")
	}
}

func TestGenerate(t *testing.T) {
	var captured map[string]any
	client := newFakeGemini(t, http.StatusOK, "## Meeting Summary\nShip Friday.\n", &captured)
	gen := New(client, "", nil)

	doc, err := gen.Generate(context.Background(), "some transcript")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if doc != "## Meeting Summary\nShip Friday." {
		t.Errorf("Generate = %q, want trimmed minutes", doc)
	}

	raw, _ := json.Marshal(captured)
	body := string(raw)
	if !strings.Contains(body, "professional meeting minutes") {
		t.Error("Expected system instruction in request")
	}
	if !strings.Contains(body, "some transcript") {
		t.Error("Expected transcript embedded in request")
	}
	if !strings.Contains(body, "maxOutputTokens") {
		t.Error("Expected bounded output length in request")
	}
	if !strings.Contains(body, "temperature") {
		t.Error("Expected fixed sampling temperature in request")
	}
}

func TestGenerateAPIError(t *testing.T) {
	client := newFakeGemini(t, http.StatusBadGateway, "", nil)
	gen := New(client, "", nil)

	_, err := gen.Generate(context.Background(), "transcript")
	if err == nil {
		t.Fatal("Expected generation error")
	}
	if !strings.Contains(err.Error(), "minutes generation failed") {
		t.Errorf("Expected wrapped generation error, got %v", err)
	}
}
