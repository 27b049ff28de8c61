package llm

import (
	"fmt"
	"strings"
)

// Provider aliases map user-facing names to registry names.
var supportedProviders = map[string]string{
	"openai":    "openai",
	"claude":    "claude",
	"anthropic": "claude",
}

// ParseModelID splits a "<provider>:<model-id>" identifier, e.g.
// "openai:gpt-4o-mini". Run records persist this string, so the format must
// stay stable.
func ParseModelID(s string) (provider string, model string, err error) {
	s = strings.TrimSpace(s)
	i := strings.Index(s, ":")
	if i < 0 {
		return "", "", fmt.Errorf("llm: model id %q: missing provider separator", s)
	}

	provider = strings.ToLower(strings.TrimSpace(s[:i]))
	model = strings.TrimSpace(s[i+1:])
	if provider == "" || model == "" {
		return "", "", fmt.Errorf("llm: model id %q: empty provider or model", s)
	}

	canonical, ok := supportedProviders[provider]
	if !ok {
		return "", "", fmt.Errorf("llm: model id %q: unsupported provider %q", s, provider)
	}
	return canonical, model, nil
}
