package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/etklam/srt-subtitle-translator/internal/conflict"
	"github.com/etklam/srt-subtitle-translator/internal/lang"
	"github.com/etklam/srt-subtitle-translator/internal/llm"
	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
)

// Config holds all application configuration.
// Values come from, in increasing priority: built-in defaults, the TOML
// config file, environment variables, and Options (CLI flags).
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_URL: inference endpoint (default: http://localhost:11434/v1)
// - LLM_API_KEY: bearer token, usually unset for a local server
// - LLM_MODEL: model name
// - LLM_MAX_TOKENS: maximum tokens per response (default: 0, server decides)
// - LLM_TEMPERATURE: sampling temperature (default: 0.1)
// - LLM_TIMEOUT: per-request timeout in seconds (default: 30)
// - LLM_PARALLEL: requests the server handles at once (default: 5)
//
// Translate Configuration:
// - SOURCE_LANGUAGE, TARGET_LANGUAGE (default: English, Traditional Chinese)
// - BATCH_SIZE (default: 10), TRANSLATE_WORKERS (default: 4)
// - REPLACE_ORIGINAL, ALT_PROMPT, CLEAN, DEBUG
// - PROMPTS_FILE, OUTPUT_ENCODING (default: utf-8)
// - CONFLICT_POLICY: prompt, overwrite, rename or skip (default: prompt)
// - CONFLICT_COUNTDOWN: seconds before a conflict defaults to rename (default: 5)
//
// Watch Configuration:
// - WATCH_DIRS: comma separated directories
// - CRON_EXPR (default: */30 * * * *), WATCH_LOCK_FILE
//
// History and logging:
// - HISTORY_ENABLED (default: true), HISTORY_DB
// - LOG_LEVEL (default: info), LOG_FILE
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Translate TranslateConfig `toml:"translate"`
	Watch     WatchConfig     `toml:"watch"`
	History   HistoryConfig   `toml:"history"`
	Log       LogConfig       `toml:"log"`
}

// LLMConfig holds the configuration for the inference client.
type LLMConfig struct {
	APIURL      string  `toml:"api_url"`
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
	Timeout     int     `toml:"timeout"`
	Parallel    int     `toml:"parallel"`
}

type TranslateConfig struct {
	SourceLanguage    string `toml:"source_language"`
	TargetLanguage    string `toml:"target_language"`
	BatchSize         int    `toml:"batch_size"`
	Workers           int    `toml:"workers"`
	ReplaceOriginal   bool   `toml:"replace_original"`
	AltPrompt         bool   `toml:"alt_prompt"`
	Clean             bool   `toml:"clean"`
	Debug             bool   `toml:"debug"`
	PromptsFile       string `toml:"prompts_file"`
	Encoding          string `toml:"encoding"`
	ConflictPolicy    string `toml:"conflict_policy"`
	ConflictCountdown int    `toml:"conflict_countdown"`
}

type WatchConfig struct {
	Dirs     []string `toml:"dirs"`
	CronExpr string   `toml:"cron_expr"`
	LockFile string   `toml:"lock_file"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// PolicyPrompt asks the user on conflicts; the other policies are fixed answers.
const PolicyPrompt = "prompt"

func Default() Config {
	return Config{
		LLM: LLMConfig{
			APIURL:      "http://localhost:11434/v1",
			Temperature: 0.1,
			Timeout:     30,
			Parallel:    5,
		},
		Translate: TranslateConfig{
			SourceLanguage:    lang.English.String(),
			TargetLanguage:    lang.TraditionalChinese.String(),
			BatchSize:         10,
			Workers:           4,
			Encoding:          "utf-8",
			ConflictPolicy:    PolicyPrompt,
			ConflictCountdown: 5,
		},
		Watch: WatchConfig{
			CronExpr: "*/30 * * * *",
			LockFile: filepath.Join(os.TempDir(), "srt-translator-watch.lock"),
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  defaultDataPath("history.db"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Option is a function type for configuring Config
type Option func(*Config)

// Load builds the configuration. An empty path looks for
// ~/.config/srt-translator/config.toml and ./srt-translator.toml and falls
// back to defaults when neither exists; an explicit path must exist.
func Load(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if exists {
		f, err := os.Open(resolved)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()

		if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	cfg.applyEnv()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	candidates := []string{"srt-translator.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append([]string{filepath.Join(home, ".config", "srt-translator", "config.toml")}, candidates...)
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && !info.IsDir() {
			return c, true, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return "", false, nil
}

// applyEnv overrides file values with environment variables that are set.
func (c *Config) applyEnv() {
	c.LLM.APIURL = getEnvString("LLM_API_URL", c.LLM.APIURL)
	c.LLM.APIKey = getEnvString("LLM_API_KEY", c.LLM.APIKey)
	c.LLM.Model = getEnvString("LLM_MODEL", c.LLM.Model)
	c.LLM.MaxTokens = getEnvInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Temperature = getEnvFloat("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvInt("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.Parallel = getEnvInt("LLM_PARALLEL", c.LLM.Parallel)

	c.Translate.SourceLanguage = getEnvString("SOURCE_LANGUAGE", c.Translate.SourceLanguage)
	c.Translate.TargetLanguage = getEnvString("TARGET_LANGUAGE", c.Translate.TargetLanguage)
	c.Translate.BatchSize = getEnvInt("BATCH_SIZE", c.Translate.BatchSize)
	c.Translate.Workers = getEnvInt("TRANSLATE_WORKERS", c.Translate.Workers)
	c.Translate.ReplaceOriginal = getEnvBool("REPLACE_ORIGINAL", c.Translate.ReplaceOriginal)
	c.Translate.AltPrompt = getEnvBool("ALT_PROMPT", c.Translate.AltPrompt)
	c.Translate.Clean = getEnvBool("CLEAN", c.Translate.Clean)
	c.Translate.Debug = getEnvBool("DEBUG", c.Translate.Debug)
	c.Translate.PromptsFile = getEnvString("PROMPTS_FILE", c.Translate.PromptsFile)
	c.Translate.Encoding = getEnvString("OUTPUT_ENCODING", c.Translate.Encoding)
	c.Translate.ConflictPolicy = getEnvString("CONFLICT_POLICY", c.Translate.ConflictPolicy)
	c.Translate.ConflictCountdown = getEnvInt("CONFLICT_COUNTDOWN", c.Translate.ConflictCountdown)

	c.Watch.Dirs = getEnvList("WATCH_DIRS", c.Watch.Dirs)
	c.Watch.CronExpr = getEnvString("CRON_EXPR", c.Watch.CronExpr)
	c.Watch.LockFile = getEnvString("WATCH_LOCK_FILE", c.Watch.LockFile)

	c.History.Enabled = getEnvBool("HISTORY_ENABLED", c.History.Enabled)
	c.History.DBPath = getEnvString("HISTORY_DB", c.History.DBPath)

	c.Log.Level = getEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnvString("LOG_FILE", c.Log.File)
}

func (c *Config) normalize() error {
	c.LLM.APIURL = strings.TrimSpace(c.LLM.APIURL)
	c.Translate.ConflictPolicy = strings.ToLower(strings.TrimSpace(c.Translate.ConflictPolicy))

	var err error
	for i, dir := range c.Watch.Dirs {
		if c.Watch.Dirs[i], err = ExpandPath(dir); err != nil {
			return err
		}
	}
	for _, p := range []*string{&c.Translate.PromptsFile, &c.Watch.LockFile, &c.History.DBPath, &c.Log.File} {
		if *p == "" {
			continue
		}
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that every value is usable before any work starts.
func (c *Config) Validate() error {
	u, err := url.Parse(c.LLM.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("llm.api_url must be an absolute URL, got %q", c.LLM.APIURL)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	if c.LLM.Timeout < 1 {
		return fmt.Errorf("llm.timeout must be at least 1 second")
	}
	if c.LLM.Parallel < 1 {
		return fmt.Errorf("llm.parallel must be at least 1")
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must not be negative")
	}

	if c.Translate.SourceLanguage != "" {
		if _, err := lang.Parse(c.Translate.SourceLanguage); err != nil {
			return fmt.Errorf("translate.source_language: %w", err)
		}
	}
	if _, err := lang.Parse(c.Translate.TargetLanguage); err != nil {
		return fmt.Errorf("translate.target_language: %w", err)
	}
	if c.Translate.BatchSize < 1 {
		return fmt.Errorf("translate.batch_size must be at least 1")
	}
	if c.Translate.Workers < 1 {
		return fmt.Errorf("translate.workers must be at least 1")
	}
	if c.Translate.ConflictCountdown < 0 {
		return fmt.Errorf("translate.conflict_countdown must not be negative")
	}
	if c.Translate.ConflictPolicy != PolicyPrompt {
		if _, err := conflict.ParseResolution(c.Translate.ConflictPolicy); err != nil {
			return fmt.Errorf("translate.conflict_policy: %w", err)
		}
	}
	if _, err := subtitle.LookupEncoding(c.Translate.Encoding); err != nil {
		return fmt.Errorf("translate.encoding: %w", err)
	}

	if _, err := cron.ParseStandard(c.Watch.CronExpr); err != nil {
		return fmt.Errorf("invalid watch.cron_expr: %w", err)
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path is required when history is enabled")
	}
	return nil
}

func (c *Config) SourceLanguage() lang.Language {
	l, _ := lang.Parse(c.Translate.SourceLanguage)
	return l
}

func (c *Config) TargetLanguage() lang.Language {
	l, _ := lang.Parse(c.Translate.TargetLanguage)
	return l
}

func (c *Config) ConflictCountdown() time.Duration {
	return time.Duration(c.Translate.ConflictCountdown) * time.Second
}

// ClientConfig converts the LLM section for llm.NewClient.
func (c LLMConfig) ClientConfig() *llm.Config {
	return &llm.Config{
		APIKey:      c.APIKey,
		APIURL:      c.APIURL,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func defaultDataPath(name string) string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "srt-translator", name)
	}
	return filepath.Join(os.TempDir(), "srt-translator", name)
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	ret := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ret = append(ret, part)
		}
	}
	return ret
}
