package config

// Config is the root configuration for the fitness agent service.
type Config struct {
	Model   ModelConfig   `yaml:"model,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Agent   AgentConfig   `yaml:"agent,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ModelConfig selects the chat-completion provider.
type ModelConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "openai" | "ollama"
	APIKey      string   `yaml:"apiKey,omitempty"`   // supports ${ENV_VAR} references
	Model       string   `yaml:"model,omitempty"`
	BaseURL     string   `yaml:"baseUrl,omitempty"` // custom OpenAI-compatible endpoint
	Fallbacks   []string `yaml:"fallbacks,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port           int        `yaml:"port,omitempty"`
	Bind           string     `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string     `yaml:"customBindHost,omitempty"`
	Auth           ServerAuth `yaml:"auth,omitempty"`
	AllowedOrigins []string   `yaml:"allowedOrigins,omitempty"`
}

// ServerAuth configures API authentication. An empty token disables auth.
type ServerAuth struct {
	Token string `yaml:"token,omitempty"` // supports ${ENV_VAR} references
}

// StoreConfig controls plan and session persistence.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // "sqlite" | "memory"
	Path    string `yaml:"path,omitempty"`    // defaults to <data dir>/fitness.db
}

// AgentConfig customizes the assistant.
type AgentConfig struct {
	Name        string `yaml:"name,omitempty"`
	ExtraPrompt string `yaml:"extraPrompt,omitempty"` // appended to the system prompt
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}
