package llm

import (
	"fmt"
	"sync"

	"github.com/IstiaqueAhmd/fitness-agent/internal/config"
	"github.com/IstiaqueAhmd/fitness-agent/internal/logging"
)

// ProviderError is returned when a model provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status code when known (401, 429, 500, ...)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Registry manages model provider clients and resolves model references.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // model alias → provider name
	fallback string            // default provider name
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Info().Str("provider", name).Msg("registered model provider")
}

// Alias maps a model name to a provider, so configs can reference models
// directly (e.g. "gpt-4o-mini" resolves to the "openai" provider).
func (r *Registry) Alias(model, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[model] = provider
}

// SetFallback sets the provider used when no model/provider match is found.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Resolve returns the Client for the given model reference.
// Resolution order: exact provider name → alias → fallback.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[model]; ok {
		return c, nil
	}
	if provider, ok := r.aliases[model]; ok {
		if c, ok := r.clients[provider]; ok {
			return c, nil
		}
	}
	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no model provider for %q", model)
}

// List returns all registered provider names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	return names
}

// NewRegistryFromConfig builds a Registry from the model configuration.
// Both providers speak the OpenAI chat-completions wire format; "ollama"
// differs only in its default endpoint and optional API key.
func NewRegistryFromConfig(cfg config.ModelConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)

	switch cfg.Provider {
	case "openai":
		if cfg.APIKey != "" && cfg.Model != "" {
			reg.Register("openai", NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL))
			reg.SetFallback("openai")
			reg.Alias(cfg.Model, "openai")
			for _, alias := range []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini"} {
				reg.Alias(alias, "openai")
			}
		}

	case "ollama":
		if cfg.Model != "" {
			baseURL := cfg.BaseURL
			if baseURL == "" {
				baseURL = "http://localhost:11434/v1"
			}
			reg.Register("ollama", NewOpenAIClient(cfg.APIKey, cfg.Model, baseURL))
			reg.SetFallback("ollama")
			reg.Alias(cfg.Model, "ollama")
			for _, alias := range []string{"llama3", "mistral", "qwen2.5"} {
				reg.Alias(alias, "ollama")
			}
		}
	}

	return reg
}
