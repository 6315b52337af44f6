package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	temp := 0.7
	return Config{
		Model: ModelConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   1000,
			Temperature: &temp,
		},
		Server: ServerConfig{
			Port: 8080,
			Bind: "loopback",
		},
		Store: StoreConfig{
			Backend: "sqlite",
		},
		Agent: AgentConfig{
			Name: "FitBot",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
