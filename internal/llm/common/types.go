package common

import (
	"encoding/json"
	"time"
)

// message roles
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// content block types
const (
	BlockText     = "text"
	BlockImageURL = "image_url"
)

// ContentBlock is one unit of multimodal message content
type ContentBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL wraps an image reference, always a data URL here
type ImageURL struct {
	URL string `json:"url"`
}

// TextBlock creates a text content block
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// ImageBlock creates an image_url content block
func ImageBlock(url string) ContentBlock {
	return ContentBlock{Type: BlockImageURL, ImageURL: &ImageURL{URL: url}}
}

// Content is either plain text or an ordered sequence of blocks.
// A non-nil Blocks slice always wins and serializes as a JSON array.
type Content struct {
	Text   string
	Blocks []ContentBlock
}

// TextContent creates plain text content
func TextContent(text string) Content {
	return Content{Text: text}
}

// BlockContent creates block-sequence content
func BlockContent(blocks ...ContentBlock) Content {
	if blocks == nil {
		blocks = []ContentBlock{}
	}
	return Content{Blocks: blocks}
}

// IsBlocks reports whether the content uses the block-sequence form
func (c Content) IsBlocks() bool {
	return c.Blocks != nil
}

// MarshalJSON emits a JSON string or a JSON array of blocks
func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsBlocks() {
		return json.Marshal(c.Blocks)
	}
	return json.Marshal(c.Text)
}

// Message represents a message in a conversation
type Message struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// ChatRequest is the chat-completions payload for text chat
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// ImageGenerationConfig is the Gemini image_config object
type ImageGenerationConfig struct {
	AspectRatio string `json:"aspect_ratio"`
	ImageSize   string `json:"image_size"`
}

// ImageRequest is the chat-completions payload for image generation
type ImageRequest struct {
	Model       string                 `json:"model"`
	Messages    []Message              `json:"messages"`
	Temperature float64                `json:"temperature"`
	Modalities  []string               `json:"modalities,omitempty"`
	ImageConfig *ImageGenerationConfig `json:"image_config,omitempty"`
}

// Payload is a provider request ready to be marshaled and sent
type Payload struct {
	// Path is appended to the base URL, e.g. "/chat/completions"
	Path    string
	Body    interface{}
	Timeout time.Duration
}

// endpoint paths
const (
	ChatCompletionsPath  = "/chat/completions"
	ImageGenerationsPath = "/images/generations"
)
