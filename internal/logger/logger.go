package logger

import (
	"io"
	"log/slog"

	"github.com/chriscorrea/nodellm/internal/llm/common"
)

// creates a new structured logger writing to w (w/ specified debug level)
func New(w io.Writer, debug bool) *slog.Logger {
	var handler slog.Handler

	if !debug {
		// create a handler that discards all log messages
		handler = slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError, // Set to a high level to discard everything
		})
	} else {
		// create a text handler with debug level enabled
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:       slog.LevelDebug,
			ReplaceAttr: redactKeys,
		})
	}

	return slog.New(handler)
}

// redactKeys masks any attribute that carries a credential
func redactKeys(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case "api_key", "authorization":
		return slog.String(a.Key, common.RedactKey(a.Value.String()))
	}
	return a
}
