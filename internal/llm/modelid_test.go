package llm

import (
	"strings"
	"testing"
)

func TestParseModelID(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		wantProvider string
		wantModel    string
		wantErr      string
	}{
		{name: "openai", in: "openai:gpt-4o-mini", wantProvider: "openai", wantModel: "gpt-4o-mini"},
		{name: "claude", in: "claude:claude-sonnet-4-5-20250929", wantProvider: "claude", wantModel: "claude-sonnet-4-5-20250929"},
		{name: "anthropic alias", in: "anthropic:claude-3-haiku", wantProvider: "claude", wantModel: "claude-3-haiku"},
		{name: "uppercase provider", in: "OpenAI:gpt-4o", wantProvider: "openai", wantModel: "gpt-4o"},
		{name: "surrounding space", in: "  openai:gpt-4o  ", wantProvider: "openai", wantModel: "gpt-4o"},
		{name: "model with colon", in: "openai:ft:gpt-4o:org", wantProvider: "openai", wantModel: "ft:gpt-4o:org"},
		{name: "missing colon", in: "gpt-4o", wantErr: "missing provider separator"},
		{name: "empty provider", in: ":gpt-4o", wantErr: "empty provider or model"},
		{name: "empty model", in: "openai:", wantErr: "empty provider or model"},
		{name: "empty string", in: "", wantErr: "missing provider separator"},
		{name: "unsupported provider", in: "mistral:large", wantErr: "unsupported provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, model, err := ParseModelID(tt.in)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("ParseModelID(%q): expected error", tt.in)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error: got %q want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModelID(%q): %v", tt.in, err)
			}
			if provider != tt.wantProvider || model != tt.wantModel {
				t.Fatalf("ParseModelID(%q): got (%q, %q) want (%q, %q)", tt.in, provider, model, tt.wantProvider, tt.wantModel)
			}
		})
	}
}
