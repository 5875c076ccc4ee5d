package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chriscorrea/nodellm/internal/config"
	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/media"
	"github.com/chriscorrea/nodellm/internal/registry"
	"github.com/chriscorrea/nodellm/internal/verbose"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// App runs chat and image requests on behalf of the host and holds their dependencies
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	verbose    bool
	recorder   common.Recorder
	httpClient *http.Client
	userAgent  string
	spinner    io.Writer
}

// Option configures an App
type Option func(*App)

// WithRecorder reports every request attempt to r
func WithRecorder(r common.Recorder) Option {
	return func(a *App) {
		a.recorder = r
	}
}

// WithHTTPClient replaces the default guarded HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(a *App) {
		a.httpClient = client
	}
}

// WithUserAgent identifies the calling application, e.g. nodellm/0.1.0
func WithUserAgent(userAgent string) Option {
	return func(a *App) {
		a.userAgent = userAgent
	}
}

// WithSpinner draws a progress spinner on w while a request is in flight
func WithSpinner(w io.Writer) Option {
	return func(a *App) {
		a.spinner = w
	}
}

// NewApp creates a new App instance with the provided configuration, logger, and verbose setting.
// cfg may be nil, in which case every binding keeps its own retry policy.
func NewApp(cfg *config.Config, logger *slog.Logger, verbose bool, opts ...Option) *App {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		verbose: verbose,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chat sends a chat request through the named provider and returns the assistant text
func (a *App) Chat(ctx context.Context, providerName string, cfg common.Configuration, in common.ChatInput) (string, error) {
	chatCfg, err := cfg.Chat()
	if err != nil {
		return "", err
	}

	logger := a.requestLogger(providerName, common.KindChat)
	client, err := a.client(providerName, logger)
	if err != nil {
		return "", err
	}

	if a.verbose {
		verbose.PrintRequestParameters(common.KindChat, providerName, cfg, verbose.DefaultOutputConfig(os.Stderr))
	}
	if logger != nil {
		logger.Info("Preparing chat request",
			"model", chatCfg.Model,
			"temperature", chatCfg.Temperature,
			"max_tokens", chatCfg.MaxTokens,
			"system_prompt_length", len(in.System),
			"user_prompt_length", len(in.Prompt),
			"images", media.Count(in.Images...))
	}

	stop := a.startSpinner(ctx, providerName, chatCfg.Model)
	text, err := client.Chat(ctx, chatCfg, in)
	stop()

	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	return text, nil
}

// Image sends an image generation request through the named provider.
// On failure it returns the placeholder batch together with the error, so the
// host always has an image to pass downstream.
func (a *App) Image(ctx context.Context, providerName string, cfg common.Configuration, in common.ImageInput) (media.Batch, error) {
	imageCfg, err := cfg.Image()
	if err != nil {
		return media.Placeholder(), err
	}

	logger := a.requestLogger(providerName, common.KindImage)
	client, err := a.client(providerName, logger)
	if err != nil {
		return media.Placeholder(), err
	}

	if a.verbose {
		verbose.PrintRequestParameters(common.KindImage, providerName, cfg, verbose.DefaultOutputConfig(os.Stderr))
	}
	if logger != nil {
		logger.Info("Preparing image request",
			"model", imageCfg.Model,
			"aspect_ratio", imageCfg.AspectRatio,
			"image_size", imageCfg.ImageSize,
			"temperature", imageCfg.Temperature,
			"n", in.N,
			"reference_images", media.Count(in.Images...))
	}

	stop := a.startSpinner(ctx, providerName, imageCfg.Model)
	batch, err := client.Image(ctx, imageCfg, in)
	stop()

	if err != nil {
		return media.Placeholder(), fmt.Errorf("failed to generate image: %w", err)
	}
	return batch, nil
}

// requestLogger tags every log line of one invocation with a fresh request id
func (a *App) requestLogger(providerName, kind string) *slog.Logger {
	if a.logger == nil {
		return nil
	}
	return a.logger.With("request_id", uuid.NewString(), "provider", providerName, "kind", kind)
}

// client creates a provider client carrying the app's logger, recorder and attempt count
func (a *App) client(providerName string, logger *slog.Logger) (common.Client, error) {
	opts := []common.ClientOption{common.WithLogger(logger)}
	if a.recorder != nil {
		opts = append(opts, common.WithRecorder(a.recorder))
	}
	if a.httpClient != nil {
		opts = append(opts, common.WithHTTPClient(a.httpClient))
	}
	if a.userAgent != "" {
		opts = append(opts, common.WithUserAgent(a.userAgent))
	}
	if attempts := a.attempts(providerName); attempts > 0 {
		opts = append(opts, common.WithMaxAttempts(attempts))
	}

	client, err := registry.CreateProvider(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return client, nil
}

// attempts returns the configured attempt count, or zero to keep the binding default
func (a *App) attempts(providerName string) int {
	if a.cfg == nil {
		return 0
	}
	settings, err := a.cfg.Provider(providerName)
	if err != nil {
		return 0
	}
	return a.cfg.Attempts(settings)
}

// getSpinner returns spinner glyphs and speed
// just for fun, these can vary based on provider/model
func getSpinner(providerName, modelName string) (glyphs []string, speed int) {
	searchText := strings.ToLower(providerName + " " + modelName)

	switch {
	case strings.Contains(searchText, "gemini"):
		glyphs = []string{"✶", "✸", "✺", "✹", "✷"}
		speed = 500
	case strings.Contains(searchText, "open"):
		glyphs = []string{"⠋", "⠙", "⠚", "⠒", "⠂", "⠂", "⠒", "⠲", "⠴", "⠦", "⠖", "⠒", "⠐", "⠐", "⠒", "⠓", "⠋"}
		speed = 125
	case strings.Contains(searchText, "litellm"):
		glyphs = []string{"◜", "◠", "◝", "◞", "◡", "◟"}
		speed = 333
	default:
		glyphs = []string{"⠄", "⠆", "⠇", "⠋", "⠙", "⠸", "⠰", "⠠", "⠰", "⠸", "⠙", "⠋", "⠇", "⠆"}
		speed = 200
	}
	return
}

// startSpinner draws the spinner until the returned func is called;
// it is a no-op unless WithSpinner was given
func (a *App) startSpinner(ctx context.Context, providerName, modelName string) func() {
	if a.spinner == nil {
		return func() {}
	}
	w := a.spinner

	// force color output for spinner, even in chained commands
	// (where TTY detection might cause color to be disabled)
	color.NoColor = false

	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		defer func() {
			// always clear this line when the goroutine exits
			fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", 80))
		}()

		spinGlyphs, spinSpeed := getSpinner(providerName, modelName)
		cyan := color.New(color.FgCyan).SprintFunc()
		ticker := time.NewTicker(time.Duration(spinSpeed) * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i = (i + 1) % len(spinGlyphs) {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				message := fmt.Sprintf("%s %s is generating...", spinGlyphs[i], modelName)
				fmt.Fprintf(w, "\r%s", cyan(message))
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
