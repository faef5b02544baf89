// Package prompt resolves the system instruction sent with every translation request.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

//go:embed fallback.txt
var fallbackPrompt string

// Fallback returns the built-in system prompt.
func Fallback() string {
	return strings.TrimSpace(fallbackPrompt)
}

// Prompts is the on-disk prompt resource. JSON files parse as well since
// JSON is a subset of YAML.
type Prompts struct {
	DefaultPrompt string `yaml:"default_prompt"`
	AltPrompt     string `yaml:"alt_prompt"`
}

type Provider struct {
	path string
}

// NewProvider returns a provider reading from path. An empty path always
// yields the built-in prompt.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Resolve returns the alternate prompt when requested and present, otherwise
// the default prompt, otherwise the built-in one. Configured prompts are
// returned exactly as written. It never fails.
func (p *Provider) Resolve(useAlternate bool) string {
	prompts, err := p.load()
	if err != nil {
		log.Debug("Error loading prompts: %v. Using fallback prompt.", err)
		return Fallback()
	}

	if useAlternate {
		if strings.TrimSpace(prompts.AltPrompt) != "" {
			return prompts.AltPrompt
		}
		log.Debug("alt_prompt missing in %s, using default_prompt", p.path)
	}
	if strings.TrimSpace(prompts.DefaultPrompt) != "" {
		return prompts.DefaultPrompt
	}

	log.Debug("default_prompt missing in %s. Using fallback prompt.", p.path)
	return Fallback()
}

func (p *Provider) load() (*Prompts, error) {
	if p == nil || p.path == "" {
		return nil, fmt.Errorf("no prompts file configured")
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", p.path, err)
	}
	return &prompts, nil
}
