package llm

import (
	"fmt"
	"strings"
)

type Registry struct {
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

func (r *Registry) Register(p Provider) {
	if r == nil || p == nil {
		return
	}
	name := strings.ToLower(strings.TrimSpace(p.Name()))
	if name == "" {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[name] = p
}

func (r *Registry) Get(name string) (Provider, bool) {
	if r == nil || r.providers == nil {
		return nil, false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, false
	}
	p, ok := r.providers[name]
	return p, ok
}

// Resolve parses a "<provider>:<model-id>" identifier and returns the
// registered provider together with the bare model name.
func (r *Registry) Resolve(modelID string) (Provider, string, error) {
	providerName, model, err := ParseModelID(modelID)
	if err != nil {
		return nil, "", err
	}
	p, ok := r.Get(providerName)
	if !ok {
		return nil, "", fmt.Errorf("llm: provider %q not configured", providerName)
	}
	return p, model, nil
}

// Embedder returns the first registered provider that supports embeddings.
func (r *Registry) Embedder() (Embedder, bool) {
	if r == nil {
		return nil, false
	}
	// Prefer openai, the only embedding-capable provider today.
	if p, ok := r.Get("openai"); ok {
		if e, ok := p.(Embedder); ok {
			return e, true
		}
	}
	for _, p := range r.providers {
		if e, ok := p.(Embedder); ok {
			return e, true
		}
	}
	return nil, false
}
