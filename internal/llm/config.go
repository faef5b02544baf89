package llm

import (
	"fmt"
	"net/url"
)

// Config holds the configuration for the LLM client.
// Any OpenAI-compatible endpoint works; the default targets a local Ollama server.
//
// Environment Variables (read by internal/config):
// - LLM_API_URL: API endpoint URL (default: http://localhost:11434/v1)
// - LLM_API_KEY: API key, optional for local servers
// - LLM_MODEL: default model name
// - LLM_TEMPERATURE: sampling temperature (default: 0.1)
// - LLM_TIMEOUT: per-request timeout in seconds (default: 30)
type Config struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("API URL is required")
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API URL %q is not an absolute URL", c.APIURL)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max tokens must not be negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.Timeout < 1 {
		return fmt.Errorf("timeout must be greater than 0")
	}
	return nil
}

// GetHeaders returns the headers for the LLM API request
func (c *Config) GetHeaders() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if c.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.APIKey
	}
	return headers
}
