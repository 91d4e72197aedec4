package vertexclient

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
)

func TestParseContentResponse_Nil(t *testing.T) {
	text, finish := parseContentResponse(nil)
	if text != "" || finish != "" {
		t.Fatalf("expected empty result, got %q %q", text, finish)
	}
}

func TestParseContentResponse_ConcatenatesTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				FinishReason: genai.FinishReasonStop,
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text("## Summary\n"), genai.Text("Temperature is stable.")},
				},
			},
			{Content: nil},
		},
	}

	text, finish := parseContentResponse(resp)
	if text != "## Summary\nTemperature is stable." {
		t.Fatalf("unexpected text %q", text)
	}
	if finish == "" {
		t.Fatalf("expected finish reason")
	}
}
