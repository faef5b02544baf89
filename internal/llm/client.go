package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client represents a generic OpenAI-compatible LLM API client
// Thread-safe for concurrent use: the only shared state is the http.Client.
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new LLM client with the given configuration
//
// Example:
//
//	client, err := llm.NewClient(&llm.Config{
//		APIURL:  "http://localhost:11434/v1",
//		Model:   "llama3",
//		Timeout: 30,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("invalid configuration: config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client := &Client{
		config:  config,
		baseURL: strings.TrimRight(config.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}

	return client, nil
}

// ChatCompletion creates a non-streaming chat completion request
//
// Example:
//
//	messages := []llm.Message{
//		{Role: "user", Content: "Hello, how are you?"},
//	}
//	response, err := client.ChatCompletion(ctx, messages, nil)
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, opts *ChatCompletionOptions) (*ChatResponse, error) {
	if opts == nil {
		opts = NewChatCompletionOptions()
	}

	if opts.SystemPrompt != "" {
		systemMessage := Message{
			Role:    "system",
			Content: opts.SystemPrompt,
		}
		messages = append([]Message{systemMessage}, messages...)
	}

	request := ChatRequest{
		Model:       c.getModel(opts),
		Messages:    messages,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.getTemperature(opts),
		Stream:      false,
	}

	var response ChatResponse
	if err := c.makeRequest(ctx, http.MethodPost, "/chat/completions", request, &response); err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if response.Error != nil && response.Error.Message != "" {
		return nil, fmt.Errorf("chat completion failed: %w", response.Error)
	}

	return &response, nil
}

// Complete sends prompt as the single user message and returns the first
// choice's content
//
// Example:
//
//	opts := llm.NewChatCompletionOptions().WithSystemPrompt("You are a helpful assistant.")
//	response, err := client.Complete(ctx, "What is Go?", opts)
func (c *Client) Complete(ctx context.Context, prompt string, opts *ChatCompletionOptions) (string, error) {
	messages := []Message{
		{Role: "user", Content: prompt},
	}

	response, err := c.ChatCompletion(ctx, messages, opts)
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return response.Choices[0].Message.Content, nil
}

// ListModels returns the ids of the models served by the endpoint
//
// Example:
//
//	models, err := client.ListModels(ctx)
//	if err != nil {
//		log.Printf("Failed to get models: %v", err)
//	}
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var list ModelList
	if err := c.makeRequest(ctx, http.MethodGet, "/models", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to get models: %w", err)
	}
	if list.Error != nil && list.Error.Message != "" {
		return nil, fmt.Errorf("failed to get models: %w", list.Error)
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

// makeRequest makes a raw HTTP request to the configured LLM API and decodes
// the JSON response into out
func (c *Client) makeRequest(ctx context.Context, method, path string, payload, out interface{}) error {
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.config.GetHeaders() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("request timed out: %w", err)
		}
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error *Error `json:"error"`
		}
		if json.Unmarshal(responseBody, &apiErr) == nil && apiErr.Error != nil && apiErr.Error.Message != "" {
			return fmt.Errorf("API request failed with status %d: %w", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(responseBody), 200))
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// getModel returns the model to use for the request
func (c *Client) getModel(opts *ChatCompletionOptions) string {
	if opts.Model != "" {
		return opts.Model
	}
	return c.config.Model
}

// getTemperature returns the temperature to use for the request
func (c *Client) getTemperature(opts *ChatCompletionOptions) float64 {
	if opts.Temperature >= 0 && opts.Temperature <= 2 {
		return opts.Temperature
	}
	return c.config.Temperature
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
