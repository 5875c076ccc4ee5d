package app

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chriscorrea/nodellm/internal/config"
	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/llm/mock"
	"github.com/chriscorrea/nodellm/internal/media"
	"github.com/chriscorrea/nodellm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures attempt observations
type recorder struct {
	mu         sync.Mutex
	categories []string
}

func (r *recorder) ObserveAttempt(provider, kind, category string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, category)
}

func mockConfig() common.Configuration {
	return BaseConfig(mock.New().DefaultBaseURL(), "sk-mock-0000", "mock-model")
}

func TestOpenRouterBaseConfig(t *testing.T) {
	cfg := OpenRouterBaseConfig("", "sk-or-123456", "", "https://example.com", "Node Graph")

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.APIBase)
	assert.Equal(t, "google/gemini-3-pro-image-preview", cfg.Model)
	assert.Equal(t, "https://example.com", cfg.SiteURL)
	assert.Equal(t, "Node Graph", cfg.SiteName)

	custom := OpenRouterBaseConfig(" https://gateway.example.com/api/v1/ ", "k", "google/gemini-2.5-flash-image", "", "")
	assert.Equal(t, "https://gateway.example.com/api/v1", custom.APIBase)
	assert.Equal(t, "google/gemini-2.5-flash-image", custom.Model)
}

func TestParams_DoNotModifyInput(t *testing.T) {
	base := BaseConfig("https://api.example.com/v1", "key", "model")

	chat := ChatParams(base, 0.2, 512)
	image := ImageParams(base, "16:9", "2k", 0.9)

	assert.Nil(t, base.Temperature)
	assert.Empty(t, base.AspectRatio)

	chatCfg, err := chat.Chat()
	require.NoError(t, err)
	assert.Equal(t, 0.2, chatCfg.Temperature)
	assert.Equal(t, 512, chatCfg.MaxTokens)

	imageCfg, err := image.Image()
	require.NoError(t, err)
	assert.Equal(t, "2K", imageCfg.ImageSize)
	assert.Equal(t, 0.9, imageCfg.Temperature)
}

func TestApp_Chat_Mock(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := NewApp(nil, logger, false)
	text, err := a.Chat(context.Background(), "mock", ChatParams(mockConfig(), 0.7, 100), common.ChatInput{Prompt: "hello"})

	require.NoError(t, err)
	assert.Equal(t, mock.Response, text)
	assert.Contains(t, logs.String(), "request_id=")
	assert.Contains(t, logs.String(), "provider=mock")
}

func TestApp_Chat_InvalidConfig(t *testing.T) {
	a := NewApp(nil, nil, false)

	_, err := a.Chat(context.Background(), "mock", BaseConfig("http://127.0.0.1:8080/v1", "k", "m"), common.ChatInput{})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Equal(t, ExitInvalidConfig, ExitCode(err))
}

func TestApp_Chat_UnknownProvider(t *testing.T) {
	a := NewApp(nil, nil, false)

	_, err := a.Chat(context.Background(), "entropic", mockConfig(), common.ChatInput{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "Available providers")
}

func TestApp_Image_Mock(t *testing.T) {
	a := NewApp(nil, nil, false)
	cfg := ImageParams(mockConfig(), "1:1", "1K", 1.0)

	batch, err := a.Image(context.Background(), "mock", cfg, common.ImageInput{Prompt: "A cat", N: 3})
	require.NoError(t, err)
	assert.Len(t, batch, 3)
}

func TestApp_Image_MissingImageConfigReturnsPlaceholder(t *testing.T) {
	a := NewApp(nil, nil, false)

	batch, err := a.Image(context.Background(), "mock", mockConfig(), common.ImageInput{Prompt: "A cat"})
	assert.ErrorIs(t, err, common.ErrMissingImageConfig)
	require.Len(t, batch, 1)
	assert.Equal(t, [3]int{512, 512, 3}, batch[0].Shape())
}

func TestApp_Image_OpenRouter(t *testing.T) {
	img, err := media.EncodeDataURL(media.NewImage(8, 8, 3))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Node Graph", r.Header.Get("X-Title"))
		assert.Equal(t, "nodellm/9.9.9", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","images":[{"type":"image_url","image_url":{"url":"` + img + `"}}]}}]}`))
	}))
	defer server.Close()

	rec := &recorder{}
	a := NewApp(nil, nil, false, WithHTTPClient(testutil.RedirectClient(server)), WithRecorder(rec), WithUserAgent("nodellm/9.9.9"))
	cfg := ImageParams(OpenRouterBaseConfig("http://openrouter.example.com/api/v1", "sk-or-123456", "", "", "Node Graph"), "4:3", "1K", 1.0)

	batch, err := a.Image(context.Background(), "openrouter", cfg, common.ImageInput{Prompt: "A cat", N: 2})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, [3]int{8, 8, 3}, batch[1].Shape())
	assert.Equal(t, []string{common.CategoryOK}, rec.categories)
}

func TestApp_Image_ConfiguredAttempts(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable"}}`))
	}))
	defer server.Close()

	profile := &config.Config{}
	profile.Parameters.MaxAttempts = 1

	rec := &recorder{}
	a := NewApp(profile, nil, false, WithHTTPClient(testutil.RedirectClient(server)), WithRecorder(rec))
	cfg := ImageParams(OpenRouterBaseConfig("http://openrouter.example.com/api/v1", "sk-or-123456", "", "", ""), "1:1", "1K", 1.0)

	batch, err := a.Image(context.Background(), "openrouter", cfg, common.ImageInput{Prompt: "A cat"})
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, ExitHTTP, ExitCode(err))
	assert.Equal(t, []string{common.CategoryHTTP}, rec.categories)

	require.Len(t, batch, 1, "failures still hand the host a placeholder")
	assert.Equal(t, [3]int{512, 512, 3}, batch[0].Shape())
}

func TestApp_Spinner(t *testing.T) {
	var out bytes.Buffer
	a := NewApp(nil, nil, false, WithSpinner(&out))

	_, err := a.Chat(context.Background(), "mock", mockConfig(), common.ChatInput{Prompt: "hi"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\r"+strings.Repeat(" ", 80)+"\r", "spinner line is cleared")
}

func TestGetSpinner(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		speed    int
	}{
		{provider: "openrouter", model: "google/gemini-3-pro-image-preview", speed: 500},
		{provider: "openai", model: "gpt-image-1", speed: 125},
		{provider: "litellm", model: "claude-sonnet", speed: 333},
		{provider: "mock", model: "mock-model", speed: 200},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			glyphs, speed := getSpinner(tt.provider, tt.model)
			assert.NotEmpty(t, glyphs)
			assert.Equal(t, tt.speed, speed)
		})
	}
}
