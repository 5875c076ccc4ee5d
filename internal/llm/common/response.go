package common

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chriscorrea/nodellm/internal/media"
)

// NoResponse is returned in place of empty chat content
const NoResponse = "No response from model"

// ImageEntryShape enumerates the layouts an entry of message.images may take
type ImageEntryShape int

const (
	// ShapeUnknown entries carry no usable URL
	ShapeUnknown ImageEntryShape = iota
	// ShapeString is a bare data URL string
	ShapeString
	// ShapeURL is {"url": "..."}
	ShapeURL
	// ShapeNestedImageURL is {"image_url": {"url": "..."}}
	ShapeNestedImageURL
	// ShapeImageURLString is {"image_url": "..."}
	ShapeImageURLString
)

func (s ImageEntryShape) String() string {
	switch s {
	case ShapeString:
		return "string"
	case ShapeURL:
		return "url"
	case ShapeNestedImageURL:
		return "image_url.url"
	case ShapeImageURLString:
		return "image_url"
	default:
		return "unknown"
	}
}

// ImageEntry is a normalized entry of message.images
type ImageEntry struct {
	Shape ImageEntryShape
	URL   string
}

// NormalizeImageEntry maps any supported entry layout onto a single URL
func NormalizeImageEntry(r gjson.Result) ImageEntry {
	switch {
	case r.Type == gjson.String:
		return ImageEntry{Shape: ShapeString, URL: r.Str}
	case !r.IsObject():
		return ImageEntry{Shape: ShapeUnknown}
	}

	if u := r.Get("url"); u.Exists() {
		return ImageEntry{Shape: ShapeURL, URL: u.String()}
	}
	if iu := r.Get("image_url"); iu.Exists() {
		if iu.IsObject() {
			return ImageEntry{Shape: ShapeNestedImageURL, URL: iu.Get("url").String()}
		}
		return ImageEntry{Shape: ShapeImageURLString, URL: iu.String()}
	}
	return ImageEntry{Shape: ShapeUnknown}
}

// CheckResponse validates the envelope shared by every chat-completions response
// and returns the first choice's message
func CheckResponse(body []byte, logger *slog.Logger) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		LogJSONUnmarshalError(logger, ErrMalformedResponse, string(body))
		return gjson.Result{}, ErrMalformedResponse
	}

	root := gjson.ParseBytes(body)
	if e := root.Get("error"); e.Exists() && e.Type != gjson.Null {
		msg := e.Get("message").String()
		if e.Type == gjson.String {
			msg = e.Str
		}
		if msg == "" {
			msg = "request failed"
		}
		return gjson.Result{}, &ProviderError{Message: msg}
	}

	choices := root.Get("choices")
	if !choices.IsArray() || len(choices.Array()) == 0 {
		return gjson.Result{}, ErrEmptyResponse
	}
	return choices.Get("0.message"), nil
}

// ParseChatContent extracts the assistant text. Content may be a string or an
// array of text parts; empty content yields NoResponse rather than an error.
func ParseChatContent(body []byte, logger *slog.Logger) (string, error) {
	message, err := CheckResponse(body, logger)
	if err != nil {
		return "", err
	}

	text := contentText(message.Get("content"))
	if strings.TrimSpace(text) == "" {
		return NoResponse, nil
	}
	return text, nil
}

// ParseImageURLs extracts the data URLs of choices[0].message.images
func ParseImageURLs(body []byte, logger *slog.Logger) ([]string, error) {
	message, err := CheckResponse(body, logger)
	if err != nil {
		return nil, err
	}

	images := message.Get("images").Array()
	if len(images) == 0 {
		if content := contentText(message.Get("content")); strings.TrimSpace(content) != "" {
			return nil, ErrUnexpectedModality
		}
		return nil, ErrNoImages
	}

	urls := make([]string, 0, len(images))
	for i, r := range images {
		entry := NormalizeImageEntry(r)
		if entry.Shape == ShapeUnknown || entry.URL == "" {
			LogImageSkipped(logger, i, fmt.Errorf("unsupported image entry shape"))
			continue
		}
		urls = append(urls, entry.URL)
	}
	if len(urls) == 0 {
		return nil, ErrNoImages
	}
	return urls, nil
}

// DecodeImages decodes every data URL independently. An image that fails to decode
// is dropped; the call fails with ErrNoImages only if none decode.
func DecodeImages(urls []string, logger *slog.Logger) (media.Batch, error) {
	batch := make(media.Batch, 0, len(urls))
	var decodeErrs []error
	for i, u := range urls {
		img, err := media.DecodeDataURL(u)
		if err != nil {
			LogImageSkipped(logger, i, err)
			decodeErrs = append(decodeErrs, err)
			continue
		}
		batch = append(batch, img)
	}
	if len(batch) == 0 {
		return nil, errors.Join(append([]error{ErrNoImages}, decodeErrs...)...)
	}
	return batch, nil
}

func contentText(content gjson.Result) string {
	if content.IsArray() {
		var sb strings.Builder
		for _, part := range content.Array() {
			if part.Type == gjson.String {
				sb.WriteString(part.Str)
				continue
			}
			if t := part.Get("type").String(); t != "" && t != BlockText {
				continue
			}
			sb.WriteString(part.Get("text").String())
		}
		return sb.String()
	}
	if content.Type == gjson.String {
		return content.Str
	}
	return ""
}
