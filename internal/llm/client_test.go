package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chatResponseBody = `{
	"id": "test-id",
	"object": "chat.completion",
	"created": 1234567890,
	"model": "test-model",
	"choices": [{
		"index": 0,
		"message": {
			"role": "assistant",
			"content": "Hello! This is a test response."
		},
		"finish_reason": "stop"
	}],
	"usage": {
		"prompt_tokens": 10,
		"completion_tokens": 20,
		"total_tokens": 30
	}
}`

func testConfig(url string) *Config {
	return &Config{
		APIURL:      url,
		Model:       "test-model",
		Temperature: 0.1,
		Timeout:     30,
	}
}

func TestNewClient(t *testing.T) {
	config := testConfig("http://localhost:11434/v1/")

	client, err := NewClient(config)
	require.NoError(t, err)
	assert.Equal(t, config, client.config)
	assert.Equal(t, "http://localhost:11434/v1", client.baseURL)
	assert.NotNil(t, client.httpClient)

	_, err = NewClient(&Config{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid without api key", mutate: func(c *Config) {}},
		{name: "missing url", mutate: func(c *Config) { c.APIURL = "" }, wantErr: "API URL is required"},
		{name: "relative url", mutate: func(c *Config) { c.APIURL = "localhost/v1" }, wantErr: "not an absolute URL"},
		{name: "temperature", mutate: func(c *Config) { c.Temperature = 3 }, wantErr: "temperature"},
		{name: "timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: "timeout"},
		{name: "max tokens", mutate: func(c *Config) { c.MaxTokens = -1 }, wantErr: "max tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig("http://localhost:11434/v1")
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetHeaders(t *testing.T) {
	c := testConfig("http://localhost:11434/v1")
	assert.NotContains(t, c.GetHeaders(), "Authorization")

	c.APIKey = "secret"
	assert.Equal(t, "Bearer secret", c.GetHeaders()["Authorization"])
}

func TestClientWithMockServer(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponseBody))
	}))
	defer server.Close()

	config := testConfig(server.URL)
	config.APIKey = "test-key"
	client, err := NewClient(config)
	require.NoError(t, err)

	opts := NewChatCompletionOptions().WithSystemPrompt("be terse").WithModel("other-model")
	response, err := client.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "Hello"}}, opts)
	require.NoError(t, err)
	require.Len(t, response.Choices, 1)
	assert.Equal(t, "Hello! This is a test response.", response.Choices[0].Message.Content)
	assert.Equal(t, 30, response.Usage.TotalTokens)

	assert.Equal(t, "other-model", got["model"])
	assert.Equal(t, false, got["stream"])
	assert.InDelta(t, 0.1, got["temperature"], 1e-9)
	messages := got["messages"].([]interface{})
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])
	assert.Equal(t, "be terse", messages[0].(map[string]interface{})["content"])
	assert.Equal(t, "user", messages[1].(map[string]interface{})["role"])
}

func TestClientErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"message": "model \"nope\" not found", "type": "api_error"}}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "Hello"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "api_error", apiErr.Type)
}

func TestClientErrorHandling_PlainBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "Hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponseBody))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	response, err := client.Complete(context.Background(), "Hello", NewChatCompletionOptions().WithSystemPrompt("You are a helpful assistant"))
	require.NoError(t, err)
	assert.Equal(t, "Hello! This is a test response.", response)
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "Hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestClientListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"object": "list",
			"data": [
				{"id": "llama3:8b", "object": "model", "owned_by": "library"},
				{"id": "qwen2.5:7b", "object": "model", "owned_by": "library"}
			]
		}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3:8b", "qwen2.5:7b"}, models)
}

func TestClientConcurrentRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatResponseBody))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "Hello"}}, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestInvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.ChatCompletion(context.Background(), []Message{{Role: "user", Content: "Hello"}}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, "Hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

// TestOllamaIntegration talks to a real local server.
// Set OLLAMA_INTEGRATION=1 and LLM_MODEL (optionally in a .env file) to run it.
func TestOllamaIntegration(t *testing.T) {
	_ = godotenv.Load("../../.env")
	if os.Getenv("OLLAMA_INTEGRATION") == "" {
		t.Skip("OLLAMA_INTEGRATION not set, skipping integration test")
	}

	url := os.Getenv("LLM_API_URL")
	if url == "" {
		url = "http://localhost:11434/v1"
	}
	config := testConfig(url)
	config.Model = os.Getenv("LLM_MODEL")

	client, err := NewClient(config)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	models, err := client.ListModels(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, models)
	if config.Model == "" {
		config.Model = models[0]
	}

	response, err := client.Complete(ctx, "Translate the following text to French:\nGood morning",
		NewChatCompletionOptions().WithSystemPrompt("Output only the translation.").WithModel(config.Model))
	require.NoError(t, err)
	assert.NotEmpty(t, response)
	t.Logf("model %s answered %q", config.Model, response)
}
