package common

import (
	"fmt"
	"log/slog"
)

// raw bodies can carry megabytes of base64; debug output keeps only the head
const maxLoggedBodyLength = 1024

// LogAPIRequest logs standardized API request information
// for consistent request logging across all providers
func LogAPIRequest(logger *slog.Logger, providerName, kind string, ep Endpoint, messageCount, images int) {
	if logger == nil {
		return
	}
	logger.Debug(fmt.Sprintf("Sending %s request to %s API", kind, providerName),
		"model", ep.Model,
		"api_base", ep.BaseURL,
		"api_key", RedactKey(ep.APIKey),
		"message_count", messageCount,
		"image_count", images)
}

// LogHTTPResponse logs basic HTTP response information
func LogHTTPResponse(logger *slog.Logger, statusCode int, bodyLength int) {
	if logger == nil {
		return
	}
	logger.Debug("Received API response",
		"status_code", statusCode,
		"body_length", bodyLength)
}

// LogRawResponse logs the head of the raw API response body for debugging
func LogRawResponse(logger *slog.Logger, body string, statusCode int) {
	if logger == nil {
		return
	}
	if len(body) > maxLoggedBodyLength {
		body = body[:maxLoggedBodyLength] + "...(truncated)"
	}
	logger.Debug("Raw API response",
		"body", body,
		"status_code", statusCode)
}

// LogRequestCompletion logs successful request completion
func LogRequestCompletion(logger *slog.Logger, kind string, resultSize int) {
	if logger == nil {
		return
	}
	logger.Debug("API request completed successfully",
		"kind", kind,
		"result_size", resultSize)
}

// LogRequestExecution logs request execution details
func LogRequestExecution(logger *slog.Logger, url string, attempt, maxAttempts int) {
	if logger == nil {
		return
	}
	logger.Debug("Executing API request",
		"url", url,
		"attempt", attempt,
		"max_attempts", maxAttempts)
}

// LogRetry logs a failed attempt that will be retried
func LogRetry(logger *slog.Logger, attempt, maxAttempts int, err error) {
	if logger == nil {
		return
	}
	logger.Warn("Request attempt failed, retrying",
		"attempt", attempt,
		"max_attempts", maxAttempts,
		"category", Categorize(err),
		"error", err)
}

// LogRequestFailure logs request execution failures
func LogRequestFailure(logger *slog.Logger, err error, attempts int) {
	if logger == nil {
		return
	}
	logger.Error("API request failed after retries",
		"error", err,
		"attempts", attempts)
}

// LogImageSkipped logs an image entry that could not be used
func LogImageSkipped(logger *slog.Logger, index int, reason error) {
	if logger == nil {
		return
	}
	logger.Warn("Skipping image in response",
		"index", index,
		"reason", reason)
}

// LogJSONUnmarshalError logs JSON parsing errors with context
func LogJSONUnmarshalError(logger *slog.Logger, err error, responseBody string) {
	if logger == nil {
		return
	}
	if len(responseBody) > maxLoggedBodyLength {
		responseBody = responseBody[:maxLoggedBodyLength] + "...(truncated)"
	}
	logger.Error("Failed to parse JSON response",
		"error", err,
		"response_body", responseBody)
}
